package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Manager maps browser ids to live sessions. Sessions are created on first
// use and dropped after sitting idle for longer than the TTL; their
// persisted profile and cart survive eviction.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	deps     Deps
	ttl      time.Duration
	now      func() time.Time
}

func NewManager(deps Deps, ttl time.Duration) *Manager {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*entry),
		deps:     deps,
		ttl:      ttl,
		now:      now,
	}
}

// Get returns the session of browserID, creating it if needed, and marks it
// as used.
func (m *Manager) Get(browserID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[browserID]
	if !ok {
		e = &entry{session: New(browserID, m.deps)}
		m.sessions[browserID] = e
		m.deps.Logger.Debug("session created", zap.String("browser_id", browserID))
		m.reportSize()
	}
	e.lastSeen = m.now()
	return e.session
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts idle sessions and returns how many went. A session waiting
// on the assistant is never evicted.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-m.ttl)
	evicted := 0
	for id, e := range m.sessions {
		if e.lastSeen.After(cutoff) || e.session.Busy() {
			continue
		}
		delete(m.sessions, id)
		evicted++
	}
	if evicted > 0 {
		m.deps.Logger.Info("evicted idle sessions", zap.Int("count", evicted), zap.Int("remaining", len(m.sessions)))
		m.reportSize()
	}
	return evicted
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}

func (m *Manager) reportSize() {
	if m.deps.Metrics != nil {
		m.deps.Metrics.SessionsActive(len(m.sessions))
	}
}
