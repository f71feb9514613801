package dialog

import "sync"

// Sessions keeps the dialogue state per Telegram user.
type Sessions struct {
	mu     sync.Mutex
	states map[int64]State
}

func NewSessions() *Sessions {
	return &Sessions{states: make(map[int64]State)}
}

func (s *Sessions) Get(userID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[userID]
}

func (s *Sessions) Set(userID int64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == StateNone {
		delete(s.states, userID)
		return
	}
	s.states[userID] = state
}
