package session

import (
	"sync"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/distributor-competition/internal/competition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionIsPristine(t *testing.T) {
	s := New("abc", competition.DefaultPointConfig())

	state := s.State()
	assert.Equal(t, uint64(0), state.Revision)
	assert.True(t, state.Pristine)
	require.Len(t, state.Rows, 1)
	assert.Equal(t, competition.DefaultDistributorName, state.Rows[0].Name)
	assert.Equal(t, competition.DefaultPointConfig(), state.Config)
}

func TestMutationsBumpRevision(t *testing.T) {
	s := New("abc", competition.DefaultPointConfig())

	var notified []uint64
	s.SetListener(func(id string, rev uint64) {
		assert.Equal(t, "abc", id)
		notified = append(notified, rev)
	})

	state := s.Add("  ")
	assert.Equal(t, uint64(0), state.Revision, "blank add is a no-op")

	state = s.Add("North")
	assert.Equal(t, uint64(1), state.Revision)
	assert.False(t, state.Pristine)

	state = s.BulkAdd("East\nWest")
	assert.Equal(t, uint64(2), state.Revision)
	require.Len(t, state.Rows, 4)

	state = s.Remove("missing")
	assert.Equal(t, uint64(2), state.Revision)

	state = s.Remove(state.Rows[0].ID)
	assert.Equal(t, uint64(3), state.Revision)
	assert.Len(t, state.Rows, 3)

	assert.Equal(t, []uint64{1, 2, 3}, notified)
}

func TestUpdateDerivesView(t *testing.T) {
	s := New("abc", competition.DefaultPointConfig())
	id := s.State().Rows[0].ID

	state, err := s.Update(id, []FieldChange{
		{Field: competition.FieldActivities, Value: "20"},
		{Field: competition.FieldAMHSold, Value: "3"},
	})
	require.NoError(t, err)

	row := state.Rows[0]
	assert.Equal(t, 103, row.Points)
	assert.Equal(t, competition.FiveAMH, row.Reward)
	assert.Equal(t, 5, state.Summary.GrandTotal)

	_, err = s.Update(id, []FieldChange{
		{Field: competition.FieldActivities, Value: "1"},
		{Field: competition.Field("bogus"), Value: "1"},
	})
	assert.ErrorIs(t, err, competition.ErrUnknownField)
	assert.Equal(t, competition.CountOf(20), s.State().Rows[0].Activities, "unknown field aborts the whole edit")
}

func TestSetPointConfigReranks(t *testing.T) {
	s := New("abc", competition.DefaultPointConfig())
	s.ReplaceAll([]competition.DistributorRecord{
		{Name: "active", Activities: competition.CountOf(10)},
		{Name: "seller", Activities: competition.CountOf(1), AMHSold: competition.CountOf(30)},
	})

	assert.Equal(t, "active", s.State().Standings[0].Name)

	state := s.SetPointConfig(competition.PointConfig{ActivityWeight: 1, PrimaryWeight: 3, SecondaryWeight: 1})
	assert.Equal(t, "seller", state.Standings[0].Name)
	assert.Equal(t, 91, state.Standings[0].Points)

	rev := state.Revision
	state = s.SetPointConfig(state.Config)
	assert.Equal(t, rev, state.Revision, "same config does not bump the revision")
}

func TestReplaceAllRejectsEmptyImport(t *testing.T) {
	s := New("abc", competition.DefaultPointConfig())
	s.BulkAdd("a\nb")
	before := s.State()
	require.Len(t, before.Rows, 3)

	state, err := s.ReplaceAll([]competition.DistributorRecord{{Name: " "}})
	assert.ErrorIs(t, err, competition.ErrEmptyImport)
	assert.Equal(t, before.Revision, state.Revision)
	assert.Len(t, state.Rows, 3)

	state, err = s.ReplaceAll([]competition.DistributorRecord{{Name: "z"}})
	require.NoError(t, err)
	assert.Equal(t, before.Revision+1, state.Revision)
	require.Len(t, state.Rows, 1)
	assert.Equal(t, "z", state.Rows[0].Name)
}

func TestConcurrentMutations(t *testing.T) {
	s := New("abc", competition.DefaultPointConfig())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add("n")
			_ = s.State()
		}()
	}
	wg.Wait()

	state := s.State()
	assert.Len(t, state.Rows, 51)
	assert.Equal(t, uint64(50), state.Revision)
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(time.Hour, WithDefaultWeights(competition.PointConfig{ActivityWeight: 2, PrimaryWeight: 1, SecondaryWeight: 1}))
	defer m.Stop()

	s, created := m.GetOrCreate("")
	require.True(t, created)
	assert.Equal(t, 2, s.Config().ActivityWeight)
	assert.Equal(t, 1, m.Size())

	again, created := m.GetOrCreate(s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)

	_, ok := m.Get("unknown")
	assert.False(t, ok)

	m.Delete(s.ID)
	assert.Equal(t, 0, m.Size())

	m.Stop()
	m.Stop()
}

func TestManagerExpiry(t *testing.T) {
	current := time.Now()
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	m := NewManager(time.Hour, WithClock(clock))
	defer m.Stop()

	s := m.Create()
	m.Create()
	assert.Equal(t, 2, m.Size())

	mu.Lock()
	current = current.Add(2 * time.Hour)
	mu.Unlock()

	_, ok := m.Get(s.ID)
	assert.False(t, ok, "expired session is not returned")

	stats := m.Stats()
	assert.Equal(t, 1, stats["expired_sessions"])

	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 0, m.Size())
}

func TestManagerListener(t *testing.T) {
	var mu sync.Mutex
	revisions := map[string]uint64{}

	m := NewManager(time.Hour, WithListener(func(id string, rev uint64) {
		mu.Lock()
		revisions[id] = rev
		mu.Unlock()
	}))
	defer m.Stop()

	s := m.Create()
	s.Add("x")
	s.Add("y")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, uint64(2), revisions[s.ID])
}
