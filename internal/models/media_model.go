package models

import "time"

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

type MediaItem struct {
	ID            string     `json:"id"`
	Filename      string     `json:"filename"`
	OriginalName  string     `json:"original_name"`
	Type          string     `json:"type"` // image, video
	Path          string     `json:"path"`
	ThumbnailPath string     `json:"thumbnail_path"`
	URL           string     `json:"url"`
	ThumbnailURL  string     `json:"thumbnail_url"`
	UploadDate    time.Time  `json:"upload_date"`
	FileSize      string     `json:"file_size"`
	FileSizeBytes int64      `json:"file_size_bytes"`
	UsageCount    int        `json:"used_count"`
	LastUsed      *time.Time `json:"last_used,omitempty"`
	Tags          []string   `json:"tags"`
	Description   string     `json:"description"`
	Width         int        `json:"width,omitempty"`
	Height        int        `json:"height,omitempty"`
	Dimensions    string     `json:"dimensions,omitempty"`
}

// MediaLibrary is the persisted library document: item lists per media type
// plus the global tag set.
type MediaLibrary struct {
	Images     []*MediaItem `json:"images"`
	Videos     []*MediaItem `json:"videos"`
	Tags       []string     `json:"tags"`
	TotalItems int          `json:"total_items"`
}
