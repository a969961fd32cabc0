package transfer

import "github.com/promura/backend/internal/models"

type IngestSummary struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
}

type IngestResult struct {
	Message    string            `json:"message"`
	Captions   []*models.Caption `json:"captions"`
	Categories []string          `json:"categories"`
	Summary    IngestSummary     `json:"summary"`
}

type CaptionStats struct {
	Total      int               `json:"total"`
	Categories map[string]int    `json:"categories"`
	MostUsed   []*models.Caption `json:"most_used"`
	Recent     []*models.Caption `json:"recent"`
}

type MediaStats struct {
	TotalItems  int               `json:"total_items"`
	TotalImages int               `json:"total_images"`
	TotalVideos int               `json:"total_videos"`
	TotalSize   string            `json:"total_size"`
	UniqueTags  int               `json:"unique_tags"`
	MostUsed    *models.MediaItem `json:"most_used"`
}

type TemplateStats struct {
	TotalTemplates int              `json:"total_templates"`
	TotalUses      int              `json:"total_uses"`
	MostPopular    *models.Template `json:"most_popular"`
	RecentlyUsed   int              `json:"recently_used"`
}
