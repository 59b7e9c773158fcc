package workflow

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the single shared mutable resource of one run: a string-keyed
// store mutated exclusively through Apply. Keys are never removed, only
// overwritten.
type Session struct {
	id      string
	created time.Time

	mu    sync.RWMutex
	state map[string]any
}

// NewSession creates an empty session with a generated ID.
func NewSession() *Session {
	return &Session{
		id:      uuid.New().String(),
		created: time.Now().UTC(),
		state:   make(map[string]any),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time {
	return s.created
}

// Apply merges one delta into the session. The merge is atomic with
// respect to concurrent deltas and is last-write-wins per key; applying
// the same delta twice leaves the state unchanged. A nil delta is a no-op.
func (s *Session) Apply(delta map[string]any) {
	if len(delta) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range delta {
		s.state[key] = value
	}
}

// Snapshot returns a read-only copy of the current state. Mutating the
// returned map never affects the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(Snapshot, len(s.state))
	for key, value := range s.state {
		snap[key] = value
	}
	return snap
}

// Get returns the value stored under key.
func (s *Session) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state[key]
	return v, ok
}

// Len returns the number of keys in the session.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state)
}

// Snapshot is an immutable view of session state handed to units. Typed
// getters validate value shape on read.
type Snapshot map[string]any

// GetString returns the value under key as a string. Non-string scalars
// are formatted; absent keys return ok=false.
func (sn Snapshot) GetString(key string) (string, bool) {
	v, ok := sn[key]
	if !ok {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprintf("%v", v), true
}

// GetFloat returns the value under key as a float64 if it has a numeric
// shape.
func (sn Snapshot) GetFloat(key string) (float64, bool) {
	switch v := sn[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// GetBool returns the value under key as a bool if it has a boolean
// shape.
func (sn Snapshot) GetBool(key string) (bool, bool) {
	v, ok := sn[key].(bool)
	return v, ok
}

// Keys returns all keys present in the snapshot.
func (sn Snapshot) Keys() []string {
	keys := make([]string, 0, len(sn))
	for key := range sn {
		keys = append(keys, key)
	}
	return keys
}
