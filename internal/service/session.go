package service

import "sync"

// Mode names the session variant. Idle users have no session at all.
type Mode string

const (
	ModeIdle                Mode = "idle"
	ModeRegistering         Mode = "registering"
	ModeAdminAuthenticating Mode = "admin_authenticating"
	ModeAuthoring           Mode = "authoring"
	ModeAnswering           Mode = "answering"
)

// Session is one of Registering, AdminAuthenticating, Authoring or Answering.
type Session interface {
	Mode() Mode
}

type Registering struct{}

type AdminAuthenticating struct{}

// Authoring waits for the admin to paste question text.
type Authoring struct{}

// Answering walks a user through a private copy of the question set.
// Current always indexes into Questions; finishing the set deletes the session.
type Answering struct {
	Questions      []string
	Current        int
	AwaitingAnswer bool
}

func (Registering) Mode() Mode         { return ModeRegistering }
func (AdminAuthenticating) Mode() Mode { return ModeAdminAuthenticating }
func (Authoring) Mode() Mode           { return ModeAuthoring }
func (Answering) Mode() Mode           { return ModeAnswering }

// Question returns the question the session is currently on.
func (a Answering) Question() string {
	return a.Questions[a.Current]
}

// SessionStore maps user ids to their single live session.
type SessionStore interface {
	Get(userID int64) (Session, bool)
	Put(userID int64, session Session)
	Delete(userID int64)
	Len() int
}

// MemorySessionStore keeps sessions for the lifetime of the process.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[int64]Session)}
}

func (s *MemorySessionStore) Get(userID int64) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok
}

func (s *MemorySessionStore) Put(userID int64, session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session
}

func (s *MemorySessionStore) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
