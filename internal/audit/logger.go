package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"sessiongate/internal/audit/domain"
	auditrepo "sessiongate/internal/audit/repository"
)

// Event names emitted by the auth core.
const (
	EventLoginSuccess   = "login_success"
	EventLoginFailure   = "login_failure"
	EventAccountLocked  = "account_locked"
	EventRefreshRotated = "refresh_rotated"
	EventReplayDetected = "replay_detected"
	EventLogout         = "logout"
	EventLogoutAll      = "logout_all"
	EventSessionEvicted = "session_evicted"
)

// IPExtractor returns the client IP from the request context (e.g. gRPC metadata or peer).
type IPExtractor func(context.Context) string

// Logger records a single audit event. Used by the authenticator and the
// sweeper. Record is fire-and-forget: failures are logged and never abort the
// authentication flow.
type Logger interface {
	Record(ctx context.Context, accountID, action, metadata string)
}

// RepoLogger implements Logger using the audit repository and an optional IP extractor.
type RepoLogger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
}

// NewRepoLogger returns a Logger that persists to repo and uses ipExtractor for client IP.
// ipExtractor may be nil; then IP is recorded as "unknown".
func NewRepoLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *RepoLogger {
	return &RepoLogger{repo: repo, ipExtractor: ipExtractor}
}

// Record writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *RepoLogger) Record(ctx context.Context, accountID, action, metadata string) {
	if l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Action:    action,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to record event %s: %v", action, err)
	}
}
