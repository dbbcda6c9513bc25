// Package store holds the in-memory session registry. It is the single owner
// of session mutation: the authenticator drives it, the sweeper evicts
// through it, and nothing else writes to it.
package store

import "sessiongate/internal/session/domain"

// Store is the session registry. Implementations must serialize mutations per
// session so that a revoke always wins over a concurrently in-flight touch or
// rotation, and must keep the by-id and by-refresh-value indexes consistent
// with each other at every observable point.
type Store interface {
	// Create allocates a new session for the account with creation and
	// last-activity set to now. The refresh index is populated later via
	// BindRefresh, once a refresh credential has been minted.
	Create(accountID, ip, userAgent string) *domain.Session
	// GetByID returns a copy of the session, or false if it does not exist.
	GetByID(id string) (*domain.Session, bool)
	// GetByRefresh returns a copy of the session currently bound to the
	// refresh-credential value, or false if none is.
	GetByRefresh(refreshToken string) (*domain.Session, bool)
	// BindRefresh atomically replaces the session's refresh-credential value,
	// unbinding the previous one. Returns false if the session is gone.
	BindRefresh(sessionID, refreshToken string) bool
	// CurrentRefresh returns the refresh value currently bound to the session.
	CurrentRefresh(sessionID string) (string, bool)
	// Touch updates last-activity to now. A missing session is a no-op, not
	// an error: callers treat it as invalid/expired.
	Touch(sessionID string)
	// Revoke marks the session revoked and drops it from both indexes.
	// Idempotent; reports whether a session was actually found.
	Revoke(sessionID string) bool
	// RevokeAll revokes every live session owned by the account and returns
	// how many were revoked.
	RevokeAll(accountID string) int
	// ListActive returns summaries of the account's live sessions, ordered
	// least-recently-active first.
	ListActive(accountID string) []domain.Summary
	// IDs returns a snapshot of all live session ids, for the sweeper.
	IDs() []string
	// Len returns the number of live sessions.
	Len() int
}
