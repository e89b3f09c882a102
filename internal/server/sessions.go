package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	scerrors "github.com/felixgeelhaar/scarepick/internal/errors"
	"github.com/felixgeelhaar/scarepick/internal/library"
	"github.com/felixgeelhaar/scarepick/internal/metrics"
	"github.com/felixgeelhaar/scarepick/internal/quiz"
)

// Session is one player's quiz. It keeps the data snapshot it started with,
// so a reload never changes a quiz in progress.
type Session struct {
	ID        string
	CreatedAt time.Time
	Library   *library.Library

	mu       sync.Mutex
	engine   *quiz.Engine
	lastSeen atomic.Int64
}

// SessionInfo is the JSON description of a session.
type SessionInfo struct {
	ID             string     `json:"id"`
	CreatedAt      time.Time  `json:"createdAt"`
	Fingerprint    string     `json:"fingerprint"`
	State          quiz.State `json:"state"`
	Steps          int        `json:"steps"`
	Trail          []string   `json:"trail"`
	TotalQuestions int        `json:"totalQuestions"`
}

// Do runs fn with exclusive access to the session's engine and returns the
// session description and view taken under the same lock.
func (s *Session) Do(fn func(e *quiz.Engine)) (SessionInfo, quiz.View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fn != nil {
		fn(s.engine)
	}
	return SessionInfo{
		ID:             s.ID,
		CreatedAt:      s.CreatedAt,
		Fingerprint:    s.Library.Fingerprint,
		State:          s.engine.State(),
		Steps:          s.engine.Steps(),
		Trail:          s.engine.Trail(),
		TotalQuestions: s.engine.TotalQuestions(),
	}, s.engine.View()
}

// SessionStore holds live sessions in memory. Sessions idle for longer than
// the TTL are dropped the next time the store is used.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int
	metrics  *metrics.Metrics

	now func() time.Time
}

// NewSessionStore creates a store. m may be nil.
func NewSessionStore(ttl time.Duration, max int, m *metrics.Metrics) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		max:      max,
		metrics:  m,
		now:      time.Now,
	}
}

// Create starts a session over lib. It fails with SESSION-002 when the
// store is full after expired sessions are evicted.
func (st *SessionStore) Create(lib *library.Library) (*Session, error) {
	st.EvictExpired()

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.max > 0 && len(st.sessions) >= st.max {
		return nil, scerrors.NewSessionLimitError(st.max)
	}

	now := st.now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now.UTC(),
		Library:   lib,
		engine:    lib.NewEngine(),
	}
	sess.lastSeen.Store(now.UnixNano())
	st.sessions[sess.ID] = sess

	if st.metrics != nil {
		st.metrics.ActiveSessions.Set(float64(len(st.sessions)))
	}
	return sess, nil
}

// Get returns a live session and marks it as used.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, scerrors.NewSessionNotFoundError(id)
	}

	now := st.now()
	if st.expired(sess, now) {
		st.remove(id, "expired")
		return nil, scerrors.NewSessionNotFoundError(id)
	}
	sess.lastSeen.Store(now.UnixNano())
	return sess, nil
}

// Delete ends a session and reports whether it existed.
func (st *SessionStore) Delete(id string) bool {
	return st.remove(id, "deleted")
}

// EvictExpired drops every idle session and returns how many were dropped.
func (st *SessionStore) EvictExpired() int {
	now := st.now()

	st.mu.RLock()
	var stale []string
	for id, sess := range st.sessions {
		if st.expired(sess, now) {
			stale = append(stale, id)
		}
	}
	st.mu.RUnlock()

	evicted := 0
	for _, id := range stale {
		if st.remove(id, "expired") {
			evicted++
		}
	}
	return evicted
}

// Len returns the number of sessions held, including expired ones not yet
// evicted.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *SessionStore) expired(sess *Session, now time.Time) bool {
	if st.ttl <= 0 {
		return false
	}
	return now.Sub(time.Unix(0, sess.lastSeen.Load())) > st.ttl
}

func (st *SessionStore) remove(id, reason string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)

	if st.metrics != nil {
		st.metrics.SessionsEnded.WithLabelValues(reason).Inc()
		st.metrics.ActiveSessions.Set(float64(len(st.sessions)))
	}
	return true
}
