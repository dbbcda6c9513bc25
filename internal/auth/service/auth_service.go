// Package service implements the authenticator: the state machine that drives
// a session from login through refresh rotation to revocation or expiry. It
// composes the token codec, the session store, and the lockout tracker, and
// emits audit events through a fire-and-forget sink.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	accountdomain "sessiongate/internal/account/domain"
	accountrepo "sessiongate/internal/account/repository"
	"sessiongate/internal/audit"
	"sessiongate/internal/lockout"
	"sessiongate/internal/security"
	sessiondomain "sessiongate/internal/session/domain"
	"sessiongate/internal/session/store"
)

var (
	// ErrMissingCredentials is returned when username or password is empty.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidCredentials is returned for an unknown username and for a
	// wrong password alike, so callers cannot probe which usernames exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked is the sentinel matched by errors.Is against the typed
	// LockedError that login actually returns.
	ErrAccountLocked = errors.New("account locked")
	// ErrAccountInactive is returned when the account is disabled.
	ErrAccountInactive = errors.New("account inactive")
	// ErrTwoFactorRequired is returned when the account has two-factor enabled
	// and no token was supplied.
	ErrTwoFactorRequired = errors.New("two-factor token required")
	// ErrInvalidTwoFactor is returned when the supplied two-factor token fails
	// verification.
	ErrInvalidTwoFactor = errors.New("invalid two-factor token")
	// ErrInvalidToken is returned for malformed tokens, bad signatures, wrong
	// token kinds, and replayed refresh credentials.
	ErrInvalidToken = security.ErrInvalidToken
	// ErrTokenExpired is returned when a token's expiry has passed.
	ErrTokenExpired = security.ErrTokenExpired
	// ErrSessionNotFound is returned on refresh when the token's session no
	// longer exists.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionRevoked is returned on authorize when the access token is
	// valid but its session has been revoked or swept.
	ErrSessionRevoked = errors.New("session revoked")
	// ErrForbidden is returned when the required permissions are not a subset
	// of the token's permission snapshot.
	ErrForbidden = errors.New("forbidden")
	// ErrUnavailable wraps failures of external collaborators (account store,
	// signing). It is the only transient error kind; callers may retry.
	ErrUnavailable = errors.New("unavailable")
)

// LockedError is the AccountLocked error returned by Login. It carries when
// the lock expires so the caller can tell the user when to retry, and matches
// ErrAccountLocked under errors.Is.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked until %s", e.Until.Format(time.RFC3339))
}

// Is makes errors.Is(err, ErrAccountLocked) succeed for LockedError values.
func (e *LockedError) Is(target error) bool {
	return target == ErrAccountLocked
}

// unavailable wraps an external-dependency failure so that errors.Is(err,
// ErrUnavailable) holds while the cause stays readable in the message.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

// PasswordVerifier compares a plaintext password against a stored hash.
type PasswordVerifier interface {
	Compare(plaintext, hash string) bool
}

// TwoFactorVerifier checks a one-time token for an account.
type TwoFactorVerifier interface {
	Verify(ctx context.Context, accountID, token string) bool
}

// TokenPair is the credential pair returned by login and refresh.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// LoginResult carries the minted credentials plus the authenticated account.
type LoginResult struct {
	Tokens    TokenPair
	Account   *accountdomain.Account
	SessionID string
}

// AccountContext is the authenticated identity attached to a request after a
// successful authorize.
type AccountContext struct {
	AccountID   string
	Username    string
	Roles       []string
	Permissions []string
	SessionID   string
}

// Config holds the authenticator's policy knobs.
type Config struct {
	// MaxConcurrentSessions caps live sessions per account; at the cap a new
	// login evicts the least-recently-active session instead of failing.
	MaxConcurrentSessions int
	// RotateRefreshTokens controls whether each refresh mints a new refresh
	// credential and invalidates the old one. Disabling it keeps the old
	// refresh value valid across refreshes, which weakens replay detection.
	RotateRefreshTokens bool
}

// AuthService orchestrates login, refresh, logout, and authorization. It is
// the only writer to the session store and the lockout tracker.
type AuthService struct {
	accounts  accountrepo.Repository
	passwords PasswordVerifier
	twoFactor TwoFactorVerifier // may be nil; two-factor accounts then cannot log in
	codec     *security.TokenCodec
	sessions  store.Store
	lockouts  lockout.Tracker
	audit     audit.Logger // may be nil
	cfg       Config
	nowF      func() time.Time

	// capMu serializes the list-evict-create sequence so concurrent logins
	// for one account cannot race past the session cap.
	capMu sync.Mutex
}

// NewAuthService wires the authenticator. twoFactor and auditLog may be nil.
func NewAuthService(
	accounts accountrepo.Repository,
	passwords PasswordVerifier,
	twoFactor TwoFactorVerifier,
	codec *security.TokenCodec,
	sessions store.Store,
	lockouts lockout.Tracker,
	auditLog audit.Logger,
	cfg Config,
) *AuthService {
	if cfg.MaxConcurrentSessions <= 0 {
		cfg.MaxConcurrentSessions = 5
	}
	return &AuthService{
		accounts:  accounts,
		passwords: passwords,
		twoFactor: twoFactor,
		codec:     codec,
		sessions:  sessions,
		lockouts:  lockouts,
		audit:     auditLog,
		cfg:       cfg,
		nowF:      func() time.Time { return time.Now().UTC() },
	}
}

// Login authenticates the credentials and opens a session. Checks run in a
// fixed order, short-circuiting on the first failure: non-empty inputs,
// account lookup, lock state, password, active flag, two-factor. An unknown
// username and a wrong password return the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password, ip, userAgent, twoFactorToken string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	a, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		return nil, unavailable("account lookup", err)
	}
	if a == nil {
		s.record(ctx, "", audit.EventLoginFailure, fmt.Sprintf("unknown username %q", username))
		return nil, ErrInvalidCredentials
	}

	if locked, until := s.lockouts.IsLocked(ctx, a); locked {
		s.record(ctx, a.ID, audit.EventLoginFailure, "attempt while locked")
		return nil, &LockedError{Until: until}
	}

	hash, err := s.accounts.GetPasswordHash(ctx, a.ID)
	if err != nil {
		return nil, unavailable("password hash lookup", err)
	}
	if !s.passwords.Compare(password, hash) {
		st := s.lockouts.RecordFailure(ctx, a)
		if st.Locked(s.nowF()) {
			s.record(ctx, a.ID, audit.EventAccountLocked, fmt.Sprintf("locked after %d failures", st.FailedAttempts))
			return nil, &LockedError{Until: *st.LockedUntil}
		}
		s.record(ctx, a.ID, audit.EventLoginFailure, fmt.Sprintf("wrong password, attempt %d", st.FailedAttempts))
		return nil, ErrInvalidCredentials
	}

	if !a.Active {
		s.record(ctx, a.ID, audit.EventLoginFailure, "account inactive")
		return nil, ErrAccountInactive
	}

	if a.TwoFactorEnabled {
		if twoFactorToken == "" {
			return nil, ErrTwoFactorRequired
		}
		if s.twoFactor == nil || !s.twoFactor.Verify(ctx, a.ID, twoFactorToken) {
			s.record(ctx, a.ID, audit.EventLoginFailure, "invalid two-factor token")
			return nil, ErrInvalidTwoFactor
		}
	}

	s.lockouts.RecordSuccess(ctx, a)

	// At the session cap, evict least-recently-active sessions rather than
	// rejecting the login.
	s.capMu.Lock()
	var evicted []string
	for active := s.sessions.ListActive(a.ID); len(active) >= s.cfg.MaxConcurrentSessions; active = active[1:] {
		s.sessions.Revoke(active[0].ID)
		evicted = append(evicted, active[0].ID)
	}
	sess := s.sessions.Create(a.ID, ip, userAgent)
	s.capMu.Unlock()
	for _, id := range evicted {
		s.record(ctx, a.ID, audit.EventSessionEvicted, fmt.Sprintf("session %s evicted by new login", id))
	}
	pair, err := s.mintPair(identityOf(a), sess.ID)
	if err != nil {
		s.sessions.Revoke(sess.ID)
		return nil, err
	}

	s.record(ctx, a.ID, audit.EventLoginSuccess, fmt.Sprintf("session %s from %s", sess.ID, ip))
	return &LoginResult{Tokens: *pair, Account: a, SessionID: sess.ID}, nil
}

// Refresh exchanges a refresh token for a new credential pair. Presenting a
// refresh value that has already been rotated out is treated as a replay: the
// session is revoked and the caller gets the same ErrInvalidToken as for any
// bad token, deliberately not revealing that a replay was detected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, ip string) (*TokenPair, error) {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	sess, ok := s.sessions.GetByID(claims.SessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.AccountID != claims.Subject {
		return nil, ErrInvalidToken
	}

	current, ok := s.sessions.CurrentRefresh(claims.SessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if current != refreshToken {
		s.sessions.Revoke(claims.SessionID)
		s.record(ctx, claims.Subject, audit.EventReplayDetected, fmt.Sprintf("rotated refresh credential replayed for session %s from %s", claims.SessionID, ip))
		return nil, ErrInvalidToken
	}

	s.sessions.Touch(claims.SessionID)

	// Re-read the account so the new tokens carry a fresh role/permission
	// snapshot, and so a deactivated account cannot keep refreshing.
	a, err := s.accounts.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, unavailable("account lookup", err)
	}
	if a == nil {
		return nil, ErrInvalidToken
	}
	if !a.Active {
		return nil, ErrAccountInactive
	}

	id := identityOf(a)
	if !s.cfg.RotateRefreshTokens {
		access, accessExp, err := s.codec.IssueAccess(id, claims.SessionID)
		if err != nil {
			return nil, unavailable("token signing", err)
		}
		return &TokenPair{
			AccessToken:      access,
			AccessExpiresAt:  accessExp,
			RefreshToken:     refreshToken,
			RefreshExpiresAt: claims.ExpiresAt.Time,
		}, nil
	}

	pair, err := s.mintPair(id, claims.SessionID)
	if err != nil {
		return nil, err
	}
	s.record(ctx, a.ID, audit.EventRefreshRotated, fmt.Sprintf("session %s", claims.SessionID))
	return pair, nil
}

// Logout revokes a single session. Idempotent: reports whether a session was
// actually found, and never errors.
func (s *AuthService) Logout(ctx context.Context, sessionID string) bool {
	found := s.sessions.Revoke(sessionID)
	if found {
		s.record(ctx, "", audit.EventLogout, fmt.Sprintf("session %s", sessionID))
	}
	return found
}

// LogoutAll revokes every live session of the account and returns how many
// were revoked.
func (s *AuthService) LogoutAll(ctx context.Context, accountID string) int {
	n := s.sessions.RevokeAll(accountID)
	s.record(ctx, accountID, audit.EventLogoutAll, fmt.Sprintf("%d sessions revoked", n))
	return n
}

// ListSessions returns summaries of the account's live sessions, least
// recently active first. Refresh credential values are never exposed.
func (s *AuthService) ListSessions(accountID string) []sessiondomain.Summary {
	return s.sessions.ListActive(accountID)
}

// Authorize verifies an access token, confirms its session is still live,
// touches the session, and checks that required is a subset of the token's
// permission snapshot.
func (s *AuthService) Authorize(ctx context.Context, accessToken string, required []string) (*AccountContext, error) {
	claims, err := s.codec.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}

	if _, ok := s.sessions.GetByID(claims.SessionID); !ok {
		return nil, ErrSessionRevoked
	}
	s.sessions.Touch(claims.SessionID)

	if !accountdomain.Subset(required, claims.Permissions) {
		return nil, ErrForbidden
	}

	return &AccountContext{
		AccountID:   claims.Subject,
		Username:    claims.Username,
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
		SessionID:   claims.SessionID,
	}, nil
}

// mintPair issues an access+refresh pair and binds the refresh value to the
// session so a rotated-out value is recognizable on replay.
func (s *AuthService) mintPair(id security.Identity, sessionID string) (*TokenPair, error) {
	access, accessExp, err := s.codec.IssueAccess(id, sessionID)
	if err != nil {
		return nil, unavailable("token signing", err)
	}
	refresh, refreshExp, err := s.codec.IssueRefresh(id, sessionID)
	if err != nil {
		return nil, unavailable("token signing", err)
	}
	if !s.sessions.BindRefresh(sessionID, refresh) {
		// Session revoked between creation and binding.
		return nil, ErrSessionNotFound
	}
	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *AuthService) record(ctx context.Context, accountID, action, metadata string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, accountID, action, metadata)
}

func identityOf(a *accountdomain.Account) security.Identity {
	return security.Identity{
		AccountID:   a.ID,
		Username:    a.Username,
		Roles:       a.Roles,
		Permissions: a.Permissions,
	}
}
