package security

import "time"

// Test secrets for unit tests only. Do not use in production.
const (
	testAccessSecret  = "test-access-secret-0123456789abcdef"
	testRefreshSecret = "test-refresh-secret-0123456789abcdef"
)

// NewTestTokenCodec returns a TokenCodec using fixed test secrets.
// For unit tests only. Callers must not use in production.
func NewTestTokenCodec() *TokenCodec {
	return NewTokenCodec(
		[]byte(testAccessSecret),
		[]byte(testRefreshSecret),
		"test-issuer",
		15*time.Minute,
		24*time.Hour,
	)
}

// NewShortLivedTestTokenCodec returns a TokenCodec whose tokens expire after
// the given TTLs, for tests that exercise expiry.
func NewShortLivedTestTokenCodec(accessTTL, refreshTTL time.Duration) *TokenCodec {
	return NewTokenCodec(
		[]byte(testAccessSecret),
		[]byte(testRefreshSecret),
		"test-issuer",
		accessTTL,
		refreshTTL,
	)
}
