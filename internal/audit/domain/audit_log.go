package domain

import "time"

// AuditLog is one recorded authentication event.
type AuditLog struct {
	ID        string
	AccountID string // empty for events with no resolved account (e.g. unknown username)
	Action    string
	IP        string
	Metadata  string // free-form JSON or key=value details
	CreatedAt time.Time
}
