package engine

import "sync"

// SessionManager serializes access per classification id. None of the
// engine's operations is atomic across a read-then-write sequence, so
// callers that can receive concurrent requests for the same classification
// must funnel them through Do. Distinct ids never contend.
type SessionManager struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSessionManager creates an empty manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{locks: make(map[string]*sync.Mutex)}
}

func (m *SessionManager) lockFor(classificationID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[classificationID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[classificationID] = l
	}
	return l
}

// Do runs fn while holding the lock for the given classification id.
func (m *SessionManager) Do(classificationID string, fn func() error) error {
	l := m.lockFor(classificationID)
	l.Lock()
	defer l.Unlock()
	return fn()
}
