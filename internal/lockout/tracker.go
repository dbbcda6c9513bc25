// Package lockout tracks failed login attempts per account and the temporary
// lock that repeated failures trip. Only the authenticator writes to it.
package lockout

import (
	"context"
	"log"
	"sync"
	"time"

	"sessiongate/internal/account/domain"
)

// State is the lockout bookkeeping for one account.
type State struct {
	FailedAttempts int
	LockedUntil    *time.Time // nil when no lock has been tripped
}

// Locked reports whether the lock is in force at the given instant.
func (s State) Locked(now time.Time) bool {
	return s.LockedUntil != nil && s.LockedUntil.After(now)
}

// Tracker is the failed-attempt counter and lock state consulted on login.
type Tracker interface {
	// IsLocked reports whether the account is currently locked and until when.
	// An expired lock counts as not-locked, but reading does not reset the
	// counter; only RecordSuccess does. That keeps the failure trail intact
	// across the lock window.
	IsLocked(ctx context.Context, a *domain.Account) (bool, time.Time)
	// RecordFailure increments the counter and, once it reaches the
	// threshold, arms the lock. Returns the resulting state.
	RecordFailure(ctx context.Context, a *domain.Account) State
	// RecordSuccess resets the counter to zero and clears the lock.
	RecordSuccess(ctx context.Context, a *domain.Account)
}

// AccountUpdater mirrors lockout state back to the external account record.
type AccountUpdater interface {
	Update(ctx context.Context, a *domain.Account) error
}

// MemoryTracker is an in-memory Tracker. State is keyed by account id under a
// mutex, seeded from the account record on first sight, and mirrored back
// through the updater (best-effort) so a lock survives a process restart.
type MemoryTracker struct {
	mu        sync.Mutex
	states    map[string]*State
	threshold int
	window    time.Duration
	accounts  AccountUpdater // may be nil; mirroring is then skipped
	nowF      func() time.Time
}

// NewMemoryTracker returns a tracker that locks an account for window after
// threshold consecutive failures. accounts may be nil.
func NewMemoryTracker(threshold int, window time.Duration, accounts AccountUpdater) *MemoryTracker {
	return &MemoryTracker{
		states:    make(map[string]*State),
		threshold: threshold,
		window:    window,
		accounts:  accounts,
		nowF:      func() time.Time { return time.Now().UTC() },
	}
}

// IsLocked reports whether the account is currently locked and until when.
func (t *MemoryTracker) IsLocked(ctx context.Context, a *domain.Account) (bool, time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.stateLocked(a)
	if st.Locked(t.nowF()) {
		return true, *st.LockedUntil
	}
	return false, time.Time{}
}

// RecordFailure increments the counter; reaching the threshold arms the lock.
// Once at the threshold the counter stays put until a success resets it, but
// a failure after the lock expired re-arms it for a fresh window.
func (t *MemoryTracker) RecordFailure(ctx context.Context, a *domain.Account) State {
	t.mu.Lock()
	st := t.stateLocked(a)
	now := t.nowF()
	if st.FailedAttempts < t.threshold {
		st.FailedAttempts++
	}
	if st.FailedAttempts >= t.threshold && !st.Locked(now) {
		until := now.Add(t.window)
		st.LockedUntil = &until
	}
	out := *st
	t.mu.Unlock()

	t.mirror(ctx, a, out)
	return out
}

// RecordSuccess resets the counter and clears the lock.
func (t *MemoryTracker) RecordSuccess(ctx context.Context, a *domain.Account) {
	t.mu.Lock()
	st := t.stateLocked(a)
	st.FailedAttempts = 0
	st.LockedUntil = nil
	out := *st
	t.mu.Unlock()

	t.mirror(ctx, a, out)
}

// stateLocked returns the tracked state for the account, seeding it from the
// account record the first time the account is seen. Caller holds t.mu.
func (t *MemoryTracker) stateLocked(a *domain.Account) *State {
	st, ok := t.states[a.ID]
	if !ok {
		st = &State{
			FailedAttempts: a.FailedAttempts,
			LockedUntil:    a.LockedUntil,
		}
		t.states[a.ID] = st
	}
	return st
}

// mirror writes the state onto the account record and persists it through the
// updater. Best-effort: a store failure is logged, never surfaced; the
// in-memory state stays authoritative for this process.
func (t *MemoryTracker) mirror(ctx context.Context, a *domain.Account, st State) {
	a.FailedAttempts = st.FailedAttempts
	a.LockedUntil = st.LockedUntil
	if t.accounts == nil {
		return
	}
	if err := t.accounts.Update(ctx, a); err != nil {
		log.Printf("lockout: failed to persist state for account %s: %v", a.ID, err)
	}
}
