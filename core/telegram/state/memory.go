package state

import (
	"errors"
	"sync"

	"github.com/frsammm1/FranklinReplyTGBot/core/logger"
	"log/slog"
)

// ErrNotOwner is returned when someone other than the configured owner
// attempts to open a session.
var ErrNotOwner = errors.New("state: only the owner may open a session")

// Manager orchestrates per-actor sessions. At most one session exists per
// actor; opening a new one silently replaces the old.
type Manager interface {
	// Begin opens a session for the actor, replacing any existing one.
	// Only the configured owner identity is accepted.
	Begin(actorID int64, step Step) error
	// Advance overwrites the actor's session while keeping it open.
	Advance(actorID int64, sess Session)
	// Session returns the actor's open session, if any.
	Session(actorID int64) (Session, bool)
	// Take atomically claims and closes the actor's open session. Exactly
	// one of several concurrent callers observes ok; the rest see none.
	Take(actorID int64) (Session, bool)
	// Clear closes the actor's session.
	Clear(actorID int64)
	// InProgress reports whether the actor has an open session.
	InProgress(actorID int64) bool
}

type memoryManager struct {
	ownerID  int64
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewMemoryManager constructs an in-memory Manager bound to the owner identity.
func NewMemoryManager(ownerID int64) Manager {
	return &memoryManager{
		ownerID:  ownerID,
		sessions: make(map[int64]Session),
	}
}

func (m *memoryManager) Begin(actorID int64, step Step) error {
	if actorID != m.ownerID {
		logger.TG.Warn("session denied",
			slog.String("event", "fsm.begin.denied"),
			slog.Int64("user_id", actorID),
		)
		return ErrNotOwner
	}

	m.mu.Lock()
	m.sessions[actorID] = Session{Step: step}
	m.mu.Unlock()

	logger.TG.Debug("session opened",
		slog.String("event", "fsm.begin"),
		slog.Int64("user_id", actorID),
		slog.String("state", step.String()),
	)
	return nil
}

func (m *memoryManager) Advance(actorID int64, sess Session) {
	m.mu.Lock()
	m.sessions[actorID] = sess
	m.mu.Unlock()
}

func (m *memoryManager) Session(actorID int64) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[actorID]
	if !ok || sess.Step == StepIdle {
		return Session{}, false
	}
	return sess, true
}

func (m *memoryManager) Take(actorID int64) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[actorID]
	if !ok || sess.Step == StepIdle {
		return Session{}, false
	}
	delete(m.sessions, actorID)
	return sess, true
}

func (m *memoryManager) Clear(actorID int64) {
	m.mu.Lock()
	delete(m.sessions, actorID)
	m.mu.Unlock()
}

func (m *memoryManager) InProgress(actorID int64) bool {
	_, ok := m.Session(actorID)
	return ok
}
