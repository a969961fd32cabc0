package models

import "time"

type Caption struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Category   string     `json:"category"`
	Source     string     `json:"source"`
	CreatedBy  string     `json:"created_by,omitempty"`
	UsageCount int        `json:"usage_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	LastUsed   *time.Time `json:"last_used,omitempty"`
}
