// Package session holds the bounded per-user conversation history.
package session

import (
	"sync"

	"github.com/regisleandro/alfredo-ai/internal/domain"
)

// DefaultTurnCap bounds a session at five user/assistant exchange pairs.
const DefaultTurnCap = 10

// Store is a process-wide, concurrency-safe map from user identifier
// to conversation history. Sessions are created lazily on first
// contact and are never explicitly destroyed; they live for the
// process lifetime. Turns from different users never block each other:
// each session carries its own lock.
//
// The store does not serialize whole turns. The engine processes one
// turn per user start-to-finish, so the check-then-append sequence a
// turn performs is safe as long as the boundary layer upholds that
// contract.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
	turnCap  int
}

type sessionState struct {
	mu    sync.Mutex
	turns []domain.Turn
}

// NewStore creates a Store with the given turn cap. A cap of zero
// falls back to DefaultTurnCap.
func NewStore(turnCap int) *Store {
	if turnCap <= 0 {
		turnCap = DefaultTurnCap
	}
	return &Store{
		sessions: make(map[string]*sessionState),
		turnCap:  turnCap,
	}
}

// ResetIfFull discards the user's entire history when the turn cap has
// been reached, returning true when a reset happened. This is a hard
// reset, distinct from the incremental token-budget eviction applied
// at request time.
func (s *Store) ResetIfFull(userID string) bool {
	state := s.state(userID)
	state.mu.Lock()
	defer state.mu.Unlock()

	if len(state.turns) < s.turnCap {
		return false
	}
	state.turns = nil
	return true
}

// Append records a turn at the end of the user's history.
func (s *Store) Append(userID string, turn domain.Turn) {
	state := s.state(userID)
	state.mu.Lock()
	defer state.mu.Unlock()
	state.turns = append(state.turns, turn)
}

// Turns returns a copy of the user's history in chronological order.
func (s *Store) Turns(userID string) []domain.Turn {
	state := s.state(userID)
	state.mu.Lock()
	defer state.mu.Unlock()

	turns := make([]domain.Turn, len(state.turns))
	copy(turns, state.turns)
	return turns
}

// Len returns the user's current turn count.
func (s *Store) Len(userID string) int {
	state := s.state(userID)
	state.mu.Lock()
	defer state.mu.Unlock()
	return len(state.turns)
}

func (s *Store) state(userID string) *sessionState {
	s.mu.RLock()
	state, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		return state
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.sessions[userID]; ok {
		return state
	}
	state = &sessionState{}
	s.sessions[userID] = state
	return state
}
