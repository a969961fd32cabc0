package models

import "time"

// Template is a named, reusable post shape. It is not itself postable; the
// dashboard expands it into a new post.
type Template struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Content         string     `json:"content"`
	Models          []string   `json:"models"`
	Tags            []string   `json:"tags"`
	MediaIDs        []string   `json:"media_ids"`
	SchedulePattern string     `json:"schedule_pattern,omitempty"`
	CreatedBy       string     `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	UsageCount      int        `json:"usage_count"`
	LastUsed        *time.Time `json:"last_used,omitempty"`
}
