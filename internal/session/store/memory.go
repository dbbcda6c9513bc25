package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"sessiongate/internal/session/domain"
)

// MemoryStore is an in-memory Store implementation. One mutex guards both
// indexes so no reader can observe a session present in one and not the
// other. All returned sessions are copies.
type MemoryStore struct {
	mu        sync.Mutex
	byID      map[string]*domain.Session
	byRefresh map[string]string // refresh-credential value -> session id
	nowF      func() time.Time
}

// NewMemoryStore returns a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      make(map[string]*domain.Session),
		byRefresh: make(map[string]string),
		nowF:      func() time.Time { return time.Now().UTC() },
	}
}

// Create allocates a new session for the account.
func (s *MemoryStore) Create(accountID, ip, userAgent string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowF()
	sess := &domain.Session{
		ID:           uuid.New().String(),
		AccountID:    accountID,
		CreatedAt:    now,
		LastActivity: now,
		IP:           ip,
		UserAgent:    userAgent,
	}
	s.byID[sess.ID] = sess
	out := *sess
	return &out
}

// GetByID returns a copy of the session, or false if it does not exist.
func (s *MemoryStore) GetByID(id string) (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	out := *sess
	return &out, true
}

// GetByRefresh returns a copy of the session bound to the refresh value.
func (s *MemoryStore) GetByRefresh(refreshToken string) (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byRefresh[refreshToken]
	if !ok {
		return nil, false
	}
	sess, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	out := *sess
	return &out, true
}

// BindRefresh replaces the session's refresh value and reindexes it in one
// critical section, so the old value is never live alongside the new one.
func (s *MemoryStore) BindRefresh(sessionID, refreshToken string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[sessionID]
	if !ok {
		return false
	}
	if sess.RefreshToken != "" {
		delete(s.byRefresh, sess.RefreshToken)
	}
	sess.RefreshToken = refreshToken
	s.byRefresh[refreshToken] = sessionID
	return true
}

// CurrentRefresh returns the refresh value currently bound to the session.
func (s *MemoryStore) CurrentRefresh(sessionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[sessionID]
	if !ok {
		return "", false
	}
	return sess.RefreshToken, true
}

// Touch updates last-activity to now. Missing sessions are a no-op.
func (s *MemoryStore) Touch(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.byID[sessionID]; ok {
		sess.LastActivity = s.nowF()
	}
}

// Revoke marks the session revoked and removes it from both indexes.
func (s *MemoryStore) Revoke(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revokeLocked(sessionID)
}

func (s *MemoryStore) revokeLocked(sessionID string) bool {
	sess, ok := s.byID[sessionID]
	if !ok {
		return false
	}
	sess.Revoked = true
	if sess.RefreshToken != "" {
		delete(s.byRefresh, sess.RefreshToken)
	}
	delete(s.byID, sessionID)
	return true
}

// RevokeAll revokes every live session owned by the account.
func (s *MemoryStore) RevokeAll(accountID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, sess := range s.byID {
		if sess.AccountID == accountID {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		s.revokeLocked(id)
	}
	return len(ids)
}

// ListActive returns summaries of the account's live sessions, ordered
// least-recently-active first.
func (s *MemoryStore) ListActive(accountID string) []domain.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Summary
	for _, sess := range s.byID {
		if sess.AccountID == accountID {
			out = append(out, sess.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.Before(out[j].LastActivity)
	})
	return out
}

// IDs returns a snapshot of all live session ids.
func (s *MemoryStore) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
