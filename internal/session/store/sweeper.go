package store

import (
	"log"
	"sync"
	"time"

	"sessiongate/internal/session/domain"
)

// Sweeper evicts sessions that have been idle longer than the refresh-token
// lifetime. It is the only component allowed to revoke sessions purely for
// the passage of time; everything else revokes on explicit action or replay.
type Sweeper struct {
	store    Store
	idleTTL  time.Duration
	interval time.Duration
	onEvict  func(sess *domain.Session)
	nowF     func() time.Time

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewSweeper returns a sweeper over the given store. onEvict may be nil; when
// set it is invoked once per evicted session (e.g. to record an audit event).
func NewSweeper(st Store, idleTTL, interval time.Duration, onEvict func(sess *domain.Session)) *Sweeper {
	return &Sweeper{
		store:    st,
		idleTTL:  idleTTL,
		interval: interval,
		onEvict:  onEvict,
		nowF:     func() time.Time { return time.Now().UTC() },
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. Safe to call once; the loop runs until Stop.
func (s *Sweeper) Start() {
	s.startOnce.Do(func() {
		go s.run()
	})
}

// Stop halts the loop and waits for the in-flight sweep, if any, to finish.
// Safe to call multiple times and before Start.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.startOnce.Do(func() { close(s.done) }) // never started: unblock the wait
	<-s.done
}

func (s *Sweeper) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep snapshots the id set before iterating so sessions created or revoked
// mid-sweep are neither skipped nor double-processed. Per-session work is
// best-effort: a session that vanished under us is simply skipped.
func (s *Sweeper) sweep() int {
	now := s.nowF()
	evicted := 0
	for _, id := range s.store.IDs() {
		sess, ok := s.store.GetByID(id)
		if !ok {
			continue
		}
		if sess.LastActivity.Add(s.idleTTL).After(now) {
			continue
		}
		if !s.store.Revoke(id) {
			continue
		}
		evicted++
		log.Printf("session: evicted idle session %s (account %s)", sess.ID, sess.AccountID)
		if s.onEvict != nil {
			s.onEvict(sess)
		}
	}
	return evicted
}
