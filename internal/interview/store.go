package interview

import (
	"sync"

	"github.com/google/uuid"

	"interview-agent/internal/candidate"
)

// Store is the process-wide registry of interview sessions. Sessions are
// created on interview start and kept for the process lifetime; there is no
// eviction. The store must be constructed once and injected into whatever
// serves requests.
type Store struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	maxQuestions int
}

// NewStore creates an empty session registry. Sessions created through it get
// the provided question budget; a non-positive value falls back to
// DefaultMaxQuestions.
func NewStore(maxQuestions int) *Store {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}

	return &Store{
		sessions:     make(map[string]*Session),
		maxQuestions: maxQuestions,
	}
}

// Create registers a fresh session for the profile and returns it. The
// identifier is a random UUID, so collisions are not a practical concern.
func (st *Store) Create(profile *candidate.Profile) *Session {
	session := newSession(uuid.NewString(), profile, st.maxQuestions)

	st.mu.Lock()
	st.sessions[session.ID()] = session
	st.mu.Unlock()

	return session
}

// Get returns the session registered under the id. The second return value
// reports whether the session exists; absence is a normal outcome the caller
// handles by rejecting the request.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	session, ok := st.sessions[id]
	return session, ok
}

// Len returns the number of registered sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return len(st.sessions)
}
