package core_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/bloco/pkg/core"
)

// MockKV implements core.KV in memory and counts writes.
type MockKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	writes  int
	failSet error
	failGet error
}

func NewMockKV() *MockKV {
	return &MockKV{data: make(map[string][]byte)}
}

func (m *MockKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	v, ok := m.data[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	return v, nil
}

func (m *MockKV) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	m.data[key] = value
	m.writes++
	return nil
}

func (m *MockKV) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// clock advances one millisecond on every reading.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func newStore(t *testing.T, kv core.KV) *core.Store {
	t.Helper()
	return core.NewStore(kv, core.WithClock(newClock().Now))
}

func loadedStore(t *testing.T) (*core.Store, *MockKV) {
	t.Helper()
	kv := NewMockKV()
	s := newStore(t, kv)
	require.NoError(t, s.Load(context.Background()))
	return s, kv
}

func TestStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("Seeds Welcome Note on Empty Storage", func(t *testing.T) {
		kv := NewMockKV()
		s := newStore(t, kv)
		require.NoError(t, s.Load(ctx))

		snap := s.Snapshot()
		require.Len(t, snap.Notes, 1)
		assert.Equal(t, core.WelcomeTitle, snap.Notes[0].Title)
		assert.Equal(t, core.WelcomeContent, snap.Notes[0].Content)
		assert.Equal(t, snap.Notes[0].ID, snap.ActiveID)
		assert.Equal(t, 1, kv.Writes(), "load must persist the seeded state")
	})

	t.Run("Treats Malformed Data as Empty", func(t *testing.T) {
		kv := NewMockKV()
		kv.data[core.DefaultKey] = []byte("{ not json")
		s := newStore(t, kv)
		require.NoError(t, s.Load(ctx))

		snap := s.Snapshot()
		require.Len(t, snap.Notes, 1)
		assert.Equal(t, core.WelcomeTitle, snap.Notes[0].Title)
		assert.Equal(t, 1, kv.Writes())
	})

	t.Run("Treats Wrong Shape as Empty", func(t *testing.T) {
		kv := NewMockKV()
		kv.data[core.DefaultKey] = []byte(`{"notes": "nope"}`)
		s := newStore(t, kv)
		require.NoError(t, s.Load(ctx))
		assert.Equal(t, 1, s.Len())
	})

	t.Run("Keeps Stored Notes", func(t *testing.T) {
		kv := NewMockKV()
		kv.data[core.DefaultKey] = []byte(`{"notes":[
			{"id":"a","title":"A","content":"x","createdAt":"2024-01-01T00:00:00.000Z","updatedAt":"2024-01-01T00:00:00.000Z"},
			{"id":"b","title":"B","content":"y","createdAt":"2024-01-02T00:00:00.000Z","updatedAt":"2024-01-02T00:00:00.000Z"}
		],"activeId":"a"}`)
		s := newStore(t, kv)
		require.NoError(t, s.Load(ctx))

		snap := s.Snapshot()
		require.Len(t, snap.Notes, 2)
		assert.Equal(t, "b", snap.Notes[0].ID, "most recent first")
		assert.Equal(t, "a", snap.ActiveID)
		assert.Equal(t, 1, kv.Writes())
	})

	t.Run("Repairs Duplicates and Dangling Active", func(t *testing.T) {
		kv := NewMockKV()
		kv.data[core.DefaultKey] = []byte(`{"notes":[
			{"id":"a","title":"  ","content":"","createdAt":"2024-01-03T00:00:00.000Z","updatedAt":"2024-01-01T00:00:00.000Z"},
			{"id":"a","title":"dup","content":"","createdAt":"2024-01-01T00:00:00.000Z","updatedAt":"2024-01-01T00:00:00.000Z"},
			{"id":"","title":"no id","content":"","createdAt":"2024-01-01T00:00:00.000Z","updatedAt":"2024-01-01T00:00:00.000Z"}
		],"activeId":"gone"}`)
		s := newStore(t, kv)
		require.NoError(t, s.Load(ctx))

		snap := s.Snapshot()
		require.Len(t, snap.Notes, 1)
		n := snap.Notes[0]
		assert.Equal(t, core.PlaceholderTitle, n.Title)
		assert.Equal(t, n.CreatedAt, n.UpdatedAt)
		assert.Equal(t, "a", snap.ActiveID)
	})

	t.Run("Propagates Read Errors Without Writing", func(t *testing.T) {
		kv := NewMockKV()
		kv.failGet = errors.New("permission denied")
		s := newStore(t, kv)

		err := s.Load(ctx)
		require.Error(t, err)
		assert.Equal(t, 0, kv.Writes())
		assert.Equal(t, 0, s.Len())
	})
}

func TestStore_CreateNote(t *testing.T) {
	ctx := context.Background()
	kv := NewMockKV()
	s := newStore(t, kv)
	kv.data[core.DefaultKey] = []byte(`{"notes":[]}`)
	require.NoError(t, s.Load(ctx))
	welcome, _ := s.Active()

	first, err := s.CreateNote(ctx)
	require.NoError(t, err)
	second, err := s.CreateNote(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	active, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, core.PlaceholderTitle, second.Title)
	assert.Empty(t, second.Content)
	assert.Equal(t, second.CreatedAt, second.UpdatedAt)

	stored, ok := s.Snapshot().Find(first.ID)
	require.True(t, ok)
	assert.Equal(t, first.UpdatedAt, stored.UpdatedAt, "creating another note must not touch the first")
	assert.NotEqual(t, welcome.ID, active.ID)
	assert.Equal(t, 3, kv.Writes(), "load + two creates")
}

func TestStore_CreateNote_RegeneratesCollidingIDs(t *testing.T) {
	ids := []string{"same", "same", "other"}
	var i int
	kv := NewMockKV()
	s := core.NewStore(kv, core.WithIDGenerator(func() string {
		id := ids[i]
		i++
		return id
	}))
	require.NoError(t, s.Load(context.Background()))

	n, err := s.CreateNote(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "other", n.ID)
}

func TestStore_RenameActive(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		input core.Answer
		want  string
	}{
		{"Trims Input", core.Submitted("  Groceries  "), "Groceries"},
		{"Empty Becomes Placeholder", core.Submitted(""), core.PlaceholderTitle},
		{"Blank Becomes Placeholder", core.Submitted("   "), core.PlaceholderTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, kv := loadedStore(t)
			before, _ := s.Active()

			changed, err := s.RenameActive(ctx, tt.input)
			require.NoError(t, err)
			assert.True(t, changed)

			after, _ := s.Active()
			assert.Equal(t, tt.want, after.Title)
			assert.GreaterOrEqual(t, after.UpdatedAt, before.UpdatedAt)
			assert.Equal(t, 2, kv.Writes())
		})
	}

	t.Run("Abort Leaves Title Unchanged", func(t *testing.T) {
		s, kv := loadedStore(t)
		before, _ := s.Active()

		changed, err := s.RenameActive(ctx, core.Aborted)
		require.NoError(t, err)
		assert.False(t, changed)

		after, _ := s.Active()
		assert.Equal(t, before, after)
		assert.Equal(t, 1, kv.Writes(), "aborted rename must not persist")
	})

	t.Run("No Active Note is a No-Op", func(t *testing.T) {
		s, kv := loadedStore(t)
		_, err := s.DeleteActive(ctx, true)
		require.NoError(t, err)
		writes := kv.Writes()

		changed, err := s.RenameActive(ctx, core.Submitted("x"))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, writes, kv.Writes())
	})
}

func TestStore_DeleteActive(t *testing.T) {
	ctx := context.Background()

	t.Run("Last Note Empties Collection", func(t *testing.T) {
		s, kv := loadedStore(t)

		deleted, err := s.DeleteActive(ctx, true)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Equal(t, 0, s.Len())
		_, ok := s.Active()
		assert.False(t, ok)
		assert.Empty(t, s.Snapshot().ActiveID)
		assert.Equal(t, 2, kv.Writes())
	})

	t.Run("Older Sibling Becomes Active", func(t *testing.T) {
		s, _ := loadedStore(t)
		older, _ := s.Active()
		_, err := s.CreateNote(ctx)
		require.NoError(t, err)

		deleted, err := s.DeleteActive(ctx, true)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Equal(t, 1, s.Len())
		assert.Equal(t, older.ID, s.Snapshot().ActiveID)
	})

	t.Run("Most Recent Remaining Becomes Active", func(t *testing.T) {
		s, _ := loadedStore(t)
		a, _ := s.CreateNote(ctx)
		b, _ := s.CreateNote(ctx)
		_, _ = s.SetActive(ctx, a.ID)
		_, err := s.SaveActiveContent(ctx, "A", "touched")
		require.NoError(t, err)
		_, _ = s.SetActive(ctx, b.ID)

		_, err = s.DeleteActive(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, a.ID, s.Snapshot().ActiveID)
	})

	t.Run("Unconfirmed is a No-Op", func(t *testing.T) {
		s, kv := loadedStore(t)
		deleted, err := s.DeleteActive(ctx, false)
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.Equal(t, 1, s.Len())
		assert.Equal(t, 1, kv.Writes())
	})

	t.Run("No Active Note is a No-Op", func(t *testing.T) {
		s, kv := loadedStore(t)
		_, _ = s.DeleteActive(ctx, true)
		deleted, err := s.DeleteActive(ctx, true)
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.Equal(t, 2, kv.Writes())
	})
}

func TestStore_SetActive(t *testing.T) {
	ctx := context.Background()
	s, kv := loadedStore(t)
	welcome, _ := s.Active()
	_, err := s.CreateNote(ctx)
	require.NoError(t, err)

	changed, err := s.SetActive(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 2, kv.Writes())

	changed, err = s.SetActive(ctx, welcome.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, welcome.ID, s.Snapshot().ActiveID)
	assert.Equal(t, 3, kv.Writes())
}

func TestStore_SaveActiveContent(t *testing.T) {
	ctx := context.Background()
	s, kv := loadedStore(t)
	_, err := s.CreateNote(ctx)
	require.NoError(t, err)
	before := s.Snapshot()
	active, _ := before.Active()

	changed, err := s.SaveActiveContent(ctx, "  Plan  ", "  line one\n\n  line two  ")
	require.NoError(t, err)
	assert.True(t, changed)

	after := s.Snapshot()
	saved, _ := after.Active()
	assert.Equal(t, active.ID, saved.ID)
	assert.Equal(t, active.CreatedAt, saved.CreatedAt)
	assert.Equal(t, "Plan", saved.Title)
	assert.Equal(t, "  line one\n\n  line two  ", saved.Content, "content is stored verbatim")
	assert.GreaterOrEqual(t, saved.UpdatedAt, active.UpdatedAt)
	assert.Equal(t, before.ActiveID, after.ActiveID)
	assert.ElementsMatch(t, ids(before.Notes), ids(after.Notes))
	assert.Equal(t, 3, kv.Writes())

	t.Run("Blank Title Becomes Placeholder", func(t *testing.T) {
		_, err := s.SaveActiveContent(ctx, " ", "")
		require.NoError(t, err)
		n, _ := s.Active()
		assert.Equal(t, core.PlaceholderTitle, n.Title)
	})

	t.Run("UpdatedAt Never Goes Backwards", func(t *testing.T) {
		back := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		kv := NewMockKV()
		s := core.NewStore(kv, core.WithClock(newClock().Now))
		require.NoError(t, s.Load(ctx))
		prev, _ := s.Active()

		rewound := core.NewStore(kv, core.WithClock(func() time.Time { return back }))
		require.NoError(t, rewound.Load(ctx))
		_, err := rewound.SaveActiveContent(ctx, "t", "c")
		require.NoError(t, err)
		n, _ := rewound.Active()
		assert.Equal(t, prev.UpdatedAt, n.UpdatedAt)
	})
}

func TestStore_PersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	s, kv := loadedStore(t)
	before := s.Snapshot()

	kv.failSet = errors.New("disk full")
	_, err := s.CreateNote(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, kv.failSet)

	changed, err := s.SaveActiveContent(ctx, "x", "y")
	require.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, before, s.Snapshot())
}

func TestStore_Search(t *testing.T) {
	ctx := context.Background()
	s, kv := loadedStore(t)
	_, _ = s.CreateNote(ctx)
	_, _ = s.SaveActiveContent(ctx, "Shopping", "milk and EGGS")
	_, _ = s.CreateNote(ctx)
	_, _ = s.SaveActiveContent(ctx, "Work", "quarterly report")
	writes := kv.Writes()

	all := s.Search("")
	assert.Equal(t, s.Snapshot().Notes, all)

	eggs := s.Search("  eggs ")
	require.Len(t, eggs, 1)
	assert.Equal(t, "Shopping", eggs[0].Title)

	exact := s.Search("Work")
	assert.Contains(t, titles(exact), "Work")
	assert.Empty(t, s.Search("nothing like this"))
	assert.Equal(t, writes, kv.Writes(), "search must not persist")
}

func TestStore_Reload(t *testing.T) {
	ctx := context.Background()
	kv := NewMockKV()
	a := newStore(t, kv)
	require.NoError(t, a.Load(ctx))
	b := newStore(t, kv)
	require.NoError(t, b.Load(ctx))

	_, err := a.CreateNote(ctx)
	require.NoError(t, err)
	writes := kv.Writes()

	require.NoError(t, b.Reload(ctx))
	assert.Equal(t, a.Snapshot(), b.Snapshot())
	assert.Equal(t, writes, kv.Writes(), "reload must not write")
}

func TestStore_Notifications(t *testing.T) {
	ctx := context.Background()
	s, _ := loadedStore(t)

	var got []core.Event
	unsubscribe := s.OnChange(func(e core.Event) {
		got = append(got, e)
		// Listeners may call back into the store.
		_ = s.Len()
	})

	_, _ = s.CreateNote(ctx)
	_, _ = s.SaveActiveContent(ctx, "t", "c")
	_, _ = s.RenameActive(ctx, core.Aborted)
	_, _ = s.RenameActive(ctx, core.Submitted("r"))

	require.Len(t, got, 3)
	assert.Equal(t, core.EventCreate, got[0].Type)
	assert.True(t, got[0].RefreshEditor())
	assert.Equal(t, core.EventSave, got[1].Type)
	assert.False(t, got[1].RefreshEditor(), "autosave must not repopulate the editor")
	assert.Equal(t, core.EventRename, got[2].Type)
	assert.Equal(t, "r", got[2].Snapshot.Notes[0].Title)

	unsubscribe()
	_, _ = s.CreateNote(ctx)
	assert.Len(t, got, 3)
}

func TestStore_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, _ := loadedStore(t)

	events := s.Watch(ctx)
	_, err := s.CreateNote(context.Background())
	require.NoError(t, err)

	select {
	case e := <-events:
		assert.Equal(t, core.EventCreate, e.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, ok := <-events
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestStore_RandomOperationsKeepInvariants(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	s, _ := loadedStore(t)

	for step := 0; step < 500; step++ {
		switch rng.Intn(6) {
		case 0:
			_, _ = s.CreateNote(ctx)
		case 1:
			_, _ = s.RenameActive(ctx, core.Submitted(fmt.Sprintf("title %d", step)))
		case 2:
			_, _ = s.DeleteActive(ctx, rng.Intn(2) == 0)
		case 3:
			notes := s.Snapshot().Notes
			if len(notes) > 0 {
				_, _ = s.SetActive(ctx, notes[rng.Intn(len(notes))].ID)
			}
		case 4:
			_, _ = s.SaveActiveContent(ctx, "", fmt.Sprintf("body %d", step))
		case 5:
			_ = s.Search("body")
		}

		snap := s.Snapshot()
		seen := make(map[string]bool)
		for _, n := range snap.Notes {
			require.False(t, seen[n.ID], "duplicate id %s at step %d", n.ID, step)
			seen[n.ID] = true
			require.NotEmpty(t, n.Title)
			require.GreaterOrEqual(t, n.UpdatedAt, n.CreatedAt)
		}
		if snap.ActiveID != "" {
			require.True(t, seen[snap.ActiveID], "dangling active id at step %d", step)
		}
		require.Equal(t, core.SortNotes(snap.Notes), snap.Notes)
	}
}

func TestStore_State(t *testing.T) {
	s, _ := loadedStore(t)
	state, ok := s.State().(core.StoreState)
	require.True(t, ok)
	assert.Equal(t, core.DefaultKey, state.Key)
	assert.Equal(t, 1, state.Notes)
	assert.Equal(t, 1, state.Writes)
	assert.Equal(t, "kv", state.StorageType)
	assert.Equal(t, "store", s.ComponentType())
}

type closingKV struct {
	*MockKV
	closed int
}

func (c *closingKV) Close() error {
	c.closed++
	return nil
}

func TestStore_Close(t *testing.T) {
	plain := NewMockKV()
	s := newStore(t, plain)
	assert.Same(t, plain, s.KV())
	assert.NoError(t, s.Close(), "a KV without Close is left alone")

	kv := &closingKV{MockKV: NewMockKV()}
	s = newStore(t, kv)
	require.NoError(t, s.Close())
	assert.Equal(t, 1, kv.closed)
}

func ids(notes []core.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func titles(notes []core.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}
