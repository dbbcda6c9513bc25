package domain

import "time"

// Session is the server-side record tying a refresh credential to an account
// and its origin.
type Session struct {
	ID           string
	AccountID    string
	RefreshToken string // current refresh-credential value; rotated on refresh
	CreatedAt    time.Time
	LastActivity time.Time
	IP           string
	UserAgent    string
	Revoked      bool
}

// Summary is the read-only projection of a session handed to callers. It
// never carries the refresh-credential value.
type Summary struct {
	ID           string
	CreatedAt    time.Time
	LastActivity time.Time
	IP           string
	UserAgent    string
}

// Summary returns the public projection of the session.
func (s *Session) Summary() Summary {
	return Summary{
		ID:           s.ID,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
		IP:           s.IP,
		UserAgent:    s.UserAgent,
	}
}
