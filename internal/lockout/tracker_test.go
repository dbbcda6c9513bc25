package lockout

import (
	"context"
	"sync"
	"testing"
	"time"

	"sessiongate/internal/account/domain"
)

type recordingUpdater struct {
	mu    sync.Mutex
	calls int
	last  *domain.Account
}

func (u *recordingUpdater) Update(ctx context.Context, a *domain.Account) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	cp := *a
	u.last = &cp
	return nil
}

func TestMemoryTracker_ThresholdTripsLock(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tr := NewMemoryTracker(3, 15*time.Minute, nil)
	tr.nowF = func() time.Time { return base }
	ctx := context.Background()
	acct := &domain.Account{ID: "a1", Username: "alice"}

	for i := 1; i <= 2; i++ {
		st := tr.RecordFailure(ctx, acct)
		if st.FailedAttempts != i {
			t.Fatalf("attempt %d: FailedAttempts = %d", i, st.FailedAttempts)
		}
		if st.LockedUntil != nil {
			t.Fatalf("attempt %d: lock should not be armed yet", i)
		}
	}

	st := tr.RecordFailure(ctx, acct)
	if st.FailedAttempts != 3 {
		t.Errorf("FailedAttempts = %d, want 3", st.FailedAttempts)
	}
	if st.LockedUntil == nil || !st.LockedUntil.Equal(base.Add(15*time.Minute)) {
		t.Errorf("LockedUntil = %v, want %v", st.LockedUntil, base.Add(15*time.Minute))
	}
	if locked, until := tr.IsLocked(ctx, acct); !locked || !until.Equal(base.Add(15*time.Minute)) {
		t.Errorf("IsLocked = %v until %v", locked, until)
	}

	// Further failures keep the counter at the threshold.
	st = tr.RecordFailure(ctx, acct)
	if st.FailedAttempts != 3 {
		t.Errorf("post-threshold FailedAttempts = %d, want 3", st.FailedAttempts)
	}
}

func TestMemoryTracker_LockExpiryDoesNotResetCounter(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	tr := NewMemoryTracker(2, 10*time.Minute, nil)
	tr.nowF = func() time.Time { return now }
	ctx := context.Background()
	acct := &domain.Account{ID: "a1", Username: "alice"}

	tr.RecordFailure(ctx, acct)
	tr.RecordFailure(ctx, acct)
	if locked, _ := tr.IsLocked(ctx, acct); !locked {
		t.Fatal("account should be locked at the threshold")
	}

	// Past the window the lock lapses, but the counter stays.
	now = base.Add(11 * time.Minute)
	if locked, _ := tr.IsLocked(ctx, acct); locked {
		t.Fatal("expired lock should read as not-locked")
	}
	st := tr.RecordFailure(ctx, acct)
	if st.LockedUntil == nil || !st.LockedUntil.Equal(now.Add(10*time.Minute)) {
		t.Errorf("a failure after expiry should re-arm the lock, got %v", st.LockedUntil)
	}
}

func TestMemoryTracker_SuccessResets(t *testing.T) {
	tr := NewMemoryTracker(2, 10*time.Minute, nil)
	ctx := context.Background()
	acct := &domain.Account{ID: "a1", Username: "alice"}

	tr.RecordFailure(ctx, acct)
	tr.RecordFailure(ctx, acct)
	tr.RecordSuccess(ctx, acct)

	if locked, _ := tr.IsLocked(ctx, acct); locked {
		t.Error("success should clear the lock")
	}
	st := tr.RecordFailure(ctx, acct)
	if st.FailedAttempts != 1 {
		t.Errorf("counter after reset = %d, want 1", st.FailedAttempts)
	}
	if st.LockedUntil != nil {
		t.Error("one failure after reset should not lock")
	}
}

func TestMemoryTracker_SeedsFromAccountRecord(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	until := base.Add(5 * time.Minute)
	tr := NewMemoryTracker(5, 15*time.Minute, nil)
	tr.nowF = func() time.Time { return base }
	ctx := context.Background()

	acct := &domain.Account{ID: "a1", Username: "alice", FailedAttempts: 5, LockedUntil: &until}
	if locked, got := tr.IsLocked(ctx, acct); !locked || !got.Equal(until) {
		t.Errorf("seeded lock: IsLocked = %v until %v, want true until %v", locked, got, until)
	}
}

func TestMemoryTracker_MirrorsToAccountStore(t *testing.T) {
	up := &recordingUpdater{}
	tr := NewMemoryTracker(2, 10*time.Minute, up)
	ctx := context.Background()
	acct := &domain.Account{ID: "a1", Username: "alice"}

	tr.RecordFailure(ctx, acct)
	tr.RecordFailure(ctx, acct)
	up.mu.Lock()
	if up.calls != 2 {
		t.Errorf("updater calls = %d, want 2", up.calls)
	}
	if up.last == nil || up.last.FailedAttempts != 2 || up.last.LockedUntil == nil {
		t.Errorf("mirrored record = %+v", up.last)
	}
	up.mu.Unlock()

	tr.RecordSuccess(ctx, acct)
	up.mu.Lock()
	if up.last.FailedAttempts != 0 || up.last.LockedUntil != nil {
		t.Errorf("mirrored record after success = %+v", up.last)
	}
	up.mu.Unlock()
}
