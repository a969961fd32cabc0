package models

import "time"

// MaxAuditEntries caps the persisted audit document. The oldest entries are
// dropped on save once the cap is exceeded.
const MaxAuditEntries = 10000

type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	Endpoint  string    `json:"endpoint,omitempty"`
	Method    string    `json:"method,omitempty"`
}
