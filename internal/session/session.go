package session

import (
	"sync"
	"time"

	"github.com/ZanzyTHEbar/distributor-competition/internal/competition"
)

// Listener is notified after a mutation changed a session's state.
type Listener func(sessionID string, revision uint64)

// State is a consistent snapshot of a session: the stored records and the
// view derived from them at one revision.
type State struct {
	Revision uint64                          `json:"revision"`
	Records  []competition.DistributorRecord `json:"-"`
	Pristine bool                            `json:"-"`
	competition.View
}

// Session is one user's competition. Every mutation is applied under the
// session lock and the full view is derived before the lock is released, so
// callers never observe a partially applied event.
type Session struct {
	ID string

	mu       sync.Mutex
	store    *competition.Store
	config   competition.PointConfig
	revision uint64
	lastSeen time.Time
	listener Listener
}

// New creates a session holding the placeholder record.
func New(id string, cfg competition.PointConfig, opts ...competition.StoreOption) *Session {
	s := &Session{
		ID:       id,
		store:    competition.NewStore(opts...),
		config:   cfg,
		lastSeen: time.Now(),
	}
	s.store.Add(competition.DefaultDistributorName)
	return s
}

// SetListener installs the change listener. A nil listener disables
// notification.
func (s *Session) SetListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Config returns the current point weights.
func (s *Session) Config() competition.PointConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Add appends a record. A blank name leaves the state unchanged.
func (s *Session) Add(name string) State {
	return s.apply(func(st *competition.Store) (bool, error) {
		_, ok := st.Add(name)
		return ok, nil
	})
}

// BulkAdd appends one record per non-blank line.
func (s *Session) BulkAdd(text string) State {
	return s.apply(func(st *competition.Store) (bool, error) {
		return len(st.BulkAdd(text)) > 0, nil
	})
}

// Remove deletes a record; unknown ids are ignored.
func (s *Session) Remove(id string) State {
	return s.apply(func(st *competition.Store) (bool, error) {
		return st.Remove(id), nil
	})
}

// Update sets fields of one record. Fields are applied in order; an unknown
// field aborts before any change is made.
func (s *Session) Update(id string, changes []FieldChange) (State, error) {
	fields := make([]competition.Field, len(changes))
	for i, ch := range changes {
		f, err := competition.ParseField(string(ch.Field))
		if err != nil {
			return s.State(), err
		}
		fields[i] = f
	}

	return s.applyErr(func(st *competition.Store) (bool, error) {
		changed := false
		for i, ch := range changes {
			ok, err := st.Update(id, fields[i], ch.Value)
			if err != nil {
				return changed, err
			}
			changed = changed || ok
		}
		return changed, nil
	})
}

// FieldChange is one field edit for Update.
type FieldChange struct {
	Field competition.Field
	Value string
}

// SetPointConfig replaces the weights. Every rank, reward and summary is
// re-derived from the new config.
func (s *Session) SetPointConfig(cfg competition.PointConfig) State {
	s.mu.Lock()
	changed := cfg != s.config
	s.config = cfg
	return s.finishLocked(changed)
}

// ReplaceAll installs imported rows. When no row has a name the session is
// left untouched and competition.ErrEmptyImport is returned.
func (s *Session) ReplaceAll(rows []competition.DistributorRecord) (State, error) {
	return s.applyErr(func(st *competition.Store) (bool, error) {
		if _, err := st.ReplaceAll(rows); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Touch marks the session as used.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LastSeen reports when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) apply(fn func(*competition.Store) (bool, error)) State {
	state, _ := s.applyErr(fn)
	return state
}

func (s *Session) applyErr(fn func(*competition.Store) (bool, error)) (State, error) {
	s.mu.Lock()
	changed, err := fn(s.store)
	if err != nil && !changed {
		state := s.stateLocked()
		s.lastSeen = time.Now()
		s.mu.Unlock()
		return state, err
	}
	return s.finishLocked(changed), err
}

// finishLocked bumps the revision when state changed, releases the lock and
// then notifies the listener.
func (s *Session) finishLocked(changed bool) State {
	if changed {
		s.revision++
	}
	s.lastSeen = time.Now()
	state := s.stateLocked()
	listener := s.listener
	s.mu.Unlock()

	if changed && listener != nil {
		listener(s.ID, state.Revision)
	}
	return state
}

func (s *Session) stateLocked() State {
	records := s.store.Records()
	return State{
		Revision: s.revision,
		Records:  records,
		Pristine: s.store.IsPristine(),
		View:     competition.DeriveView(records, s.config),
	}
}
