package bot

import (
	"sync"

	"github.com/novelforge/novelforge/internal/novel"
)

// Stage is the position of a user inside the range-selection flow.
type Stage int

const (
	// StageStart means the bot is waiting for the start chapter number.
	StageStart Stage = iota
	// StageEnd means the bot is waiting for the end chapter number.
	StageEnd
)

// Session is the in-flight flow state for one user.
type Session struct {
	Novel novel.Novel
	Stage Stage
	Start int
}

// Sessions is a mutex-guarded session store keyed by user id. Entries are
// evicted when a flow completes or is cancelled, so the map stays bounded by
// the number of users mid-flow.
type Sessions struct {
	mu sync.Mutex
	m  map[int64]*Session
}

// NewSessions creates an empty session store.
func NewSessions() *Sessions {
	return &Sessions{m: make(map[int64]*Session)}
}

// Get returns the session for a user, if any.
func (s *Sessions) Get(userID int64) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[userID]
	return sess, ok
}

// Put stores or replaces a user's session.
func (s *Sessions) Put(userID int64, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = sess
}

// Evict removes a user's session.
func (s *Sessions) Evict(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}

// Len returns the number of active sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
