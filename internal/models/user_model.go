package models

import "time"

type Role string

const (
	RoleOwner     Role = "owner"
	RoleManager   Role = "manager"
	RoleAssistant Role = "assistant"
)

const (
	PermissionAll      = "all"
	PermissionSchedule = "schedule"
	PermissionView     = "view"
	PermissionEdit     = "edit"
	PermissionQueue    = "queue"
	PermissionCaptions = "captions"
	PermissionMetrics  = "metrics"
)

// PermissionSet is a set of capability tags. The literal "all" tag grants
// every permission; there is no hierarchy or prefix matching.
type PermissionSet []string

func (p PermissionSet) Has(permission string) bool {
	for _, perm := range p {
		if perm == PermissionAll || perm == permission {
			return true
		}
	}
	return false
}

// DefaultPermissions returns the capability set granted to a role at
// creation time. Unknown roles get view-only access.
func DefaultPermissions(role Role) PermissionSet {
	switch role {
	case RoleOwner:
		return PermissionSet{PermissionAll}
	case RoleManager:
		return PermissionSet{PermissionSchedule, PermissionView, PermissionEdit, PermissionQueue, PermissionCaptions, PermissionMetrics}
	case RoleAssistant:
		return PermissionSet{PermissionView, PermissionSchedule, PermissionCaptions}
	default:
		return PermissionSet{PermissionView}
	}
}

type User struct {
	Username          string        `json:"username"`
	PasswordHash      string        `json:"password_hash"`
	Role              Role          `json:"role"`
	Permissions       PermissionSet `json:"permissions"`
	FullName          string        `json:"full_name"`
	Email             string        `json:"email"`
	Active            bool          `json:"active"`
	CreatedBy         string        `json:"created_by,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	PasswordChangedAt *time.Time    `json:"password_changed_at,omitempty"`
}
