package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"sessiongate/internal/audit/domain"
)

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
	fail    bool
}

func (r *memAuditRepo) Create(ctx context.Context, a *domain.AuditLog) error {
	if r.fail {
		return errors.New("sink down")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, a)
	return nil
}

func (r *memAuditRepo) ListByAccount(ctx context.Context, accountID string, limit, offset int32) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AuditLog
	for _, e := range r.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestRepoLogger_Record(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewRepoLogger(repo, func(context.Context) string { return "10.0.0.1" })

	l.Record(context.Background(), "a1", EventLoginSuccess, `{"session":"s1"}`)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.ID == "" || e.AccountID != "a1" || e.Action != EventLoginSuccess || e.IP != "10.0.0.1" {
		t.Errorf("entry = %+v", e)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestRepoLogger_NilExtractorAndRepo(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewRepoLogger(repo, nil)
	l.Record(context.Background(), "", EventLoginFailure, "")
	if repo.entries[0].IP != "unknown" {
		t.Errorf("IP = %q, want unknown", repo.entries[0].IP)
	}

	// nil repo: Record is a no-op, not a panic.
	NewRepoLogger(nil, nil).Record(context.Background(), "a1", EventLogout, "")
}

func TestRepoLogger_SinkFailureDoesNotPropagate(t *testing.T) {
	l := NewRepoLogger(&memAuditRepo{fail: true}, nil)
	// Must not panic or return anything; failure is logged and swallowed.
	l.Record(context.Background(), "a1", EventReplayDetected, "")
}
