package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/distributor-competition/internal/competition"
	"github.com/google/uuid"
)

// Manager provides thread-safe session storage with a sliding TTL.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	weights  func() competition.PointConfig
	listener Listener
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithListener installs a listener on every session the manager creates.
func WithListener(l Listener) ManagerOption {
	return func(m *Manager) {
		m.listener = l
	}
}

// WithDefaultWeights sets the weights new sessions start with.
func WithDefaultWeights(cfg competition.PointConfig) ManagerOption {
	return func(m *Manager) {
		m.weights = func() competition.PointConfig { return cfg }
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a manager and starts its janitor. Call Stop to end it.
func NewManager(ttl time.Duration, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		weights:  competition.DefaultPointConfig,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	go m.cleanup(janitorInterval(ttl))

	return m
}

func janitorInterval(ttl time.Duration) time.Duration {
	interval := 5 * time.Minute
	if ttl > 0 && ttl/2 < interval {
		interval = ttl / 2
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// cleanup removes expired sessions periodically
func (m *Manager) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Info("Expired sessions removed", "count", n)
			}
		case <-m.stop:
			return
		}
	}
}

// Sweep removes every expired session and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *Manager) expired(s *Session) bool {
	return m.ttl > 0 && m.now().After(s.LastSeen().Add(m.ttl))
}

// Get returns a live session and refreshes its expiry.
func (m *Manager) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}

	m.mu.RLock()
	s, exists := m.sessions[id]
	m.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if m.expired(s) {
		m.Delete(id)
		return nil, false
	}

	s.Touch()
	return s, true
}

// Create starts a new session with a random id.
func (m *Manager) Create() *Session {
	s := New(uuid.NewString(), m.weights())
	s.SetListener(m.listener)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s
}

// GetOrCreate returns the session for id, or a new one when id is unknown or
// expired. The boolean reports whether a session was created.
func (m *Manager) GetOrCreate(id string) (*Session, bool) {
	if s, ok := m.Get(id); ok {
		return s, false
	}
	return m.Create(), true
}

// Delete removes a session
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
}

// Size returns the number of stored sessions
func (m *Manager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Stats returns session statistics
func (m *Manager) Stats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := len(m.sessions)
	expired := 0
	for _, s := range m.sessions {
		if m.expired(s) {
			expired++
		}
	}

	return map[string]interface{}{
		"total_sessions":   total,
		"expired_sessions": expired,
		"active_sessions":  total - expired,
		"ttl_seconds":      m.ttl.Seconds(),
	}
}

// Stop ends the janitor goroutine. It is safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
}
