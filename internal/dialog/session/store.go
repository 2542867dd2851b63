// Package session tracks per-conversation dialogue state. Each inbound
// sender is keyed by its conversation ID and holds the step the dialogue
// is at plus the answers collected so far.
package session

import (
	"sync"
	"time"
)

type Step string

const (
	StepInitial    Step = "initial"
	StepGetName    Step = "getName"
	StepGetAddress Step = "getAddress"
	StepGetDay     Step = "getDay"
	StepGetPeriod  Step = "getPeriod"
	StepGetLiters  Step = "getLiters"
)

// Session accumulates one conversation's answers. Date and WeekdayName are
// filled once the allocator has found a slot.
type Session struct {
	Step         Step
	Name         string
	Address      string
	Date         string
	WeekdayName  string
	Period       string
	LastActivity time.Time
}

type Store interface {
	Get(conversationID string) (*Session, bool)
	Put(conversationID string, session *Session)
	Delete(conversationID string)

	// Stop terminates the background reaper, if any.
	Stop()
}

type inMemoryStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewInMemoryStore creates a session store. A zero ttl disables expiry and
// sessions persist until completed or cancelled.
func NewInMemoryStore(ttl time.Duration) Store {
	store := &inMemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}

	if ttl > 0 {
		go store.reapLoop()
	}

	return store
}

func (s *inMemoryStore) Get(conversationID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[conversationID]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && time.Since(session.LastActivity) > s.ttl {
		return nil, false
	}
	return session, true
}

func (s *inMemoryStore) Put(conversationID string, session *Session) {
	session.LastActivity = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[conversationID] = session
}

func (s *inMemoryStore) Delete(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, conversationID)
}

func (s *inMemoryStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func (s *inMemoryStore) reapLoop() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reapExpired()
		case <-s.stopCh:
			return
		}
	}
}

func (s *inMemoryStore) reapExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.sessions {
		if time.Since(session.LastActivity) > s.ttl {
			delete(s.sessions, id)
		}
	}
}
