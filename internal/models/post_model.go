package models

import "time"

const (
	PostStatusScheduled = "scheduled"
	PostStatusPosting   = "posting"
	PostStatusCompleted = "completed"
	PostStatusFailed    = "failed"
)

const (
	MediaSourceLibrary = "library"
	MediaSourceUpload  = "upload"
)

// PostMedia is a media reference attached to a post: either a library item
// resolved to its on-disk path, or a freshly uploaded file.
type PostMedia struct {
	Path     string `json:"path"`
	Source   string `json:"source"` // library, upload
	MediaID  string `json:"id,omitempty"`
	Filename string `json:"filename,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Post lives only in process memory; the queue is never persisted and is
// lost on restart.
type Post struct {
	ID           string      `json:"id"`
	Content      string      `json:"content"`
	Models       []string    `json:"models"`
	MediaFiles   []PostMedia `json:"media_files"`
	LibraryCount int         `json:"library_media_count"`
	UploadCount  int         `json:"upload_media_count"`
	ScheduleTime *string     `json:"schedule_time"`
	Status       string      `json:"status"`
	Engagement   float64     `json:"engagement"`
	CreatedAt    time.Time   `json:"timestamp"`
	CompletedAt  *time.Time  `json:"completed_at"`
	Error        string      `json:"error,omitempty"`
}
