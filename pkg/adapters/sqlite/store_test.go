package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/bloco/pkg/core"
)

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s, err := Open(MemoryDSN)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	_, err = s.Get(ctx, "notes_v1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, s.Set(ctx, "notes_v1", []byte("first")))
	require.NoError(t, s.Set(ctx, "notes_v1", []byte("second")))
	require.NoError(t, s.Set(ctx, "empty", nil))

	got, err := s.Get(ctx, "notes_v1")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	got, err = s.Get(ctx, "empty")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	require.NoError(t, s.Set(ctx, "blank", []byte{}))
	got, err = s.Get(ctx, "blank")
	require.NoError(t, err)
	assert.Equal(t, []byte{}, got)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"blank", "empty", "notes_v1"}, keys)

	assert.ErrorIs(t, s.Set(ctx, "", nil), core.ErrInvalidKey)
	assert.Equal(t, StoreState{DSN: MemoryDSN, Writes: 4, Open: true}, s.State())
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.db")

	s, err := Open(path)
	require.NoError(t, err)
	notes := core.NewStore(s)
	require.NoError(t, notes.Load(ctx))
	_, err = notes.CreateNote(ctx)
	require.NoError(t, err)
	_, err = notes.SaveActiveContent(ctx, "In SQLite", "body")
	require.NoError(t, err)
	want := notes.Snapshot()
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	again := core.NewStore(reopened)
	require.NoError(t, again.Load(ctx))
	assert.Equal(t, want, again.Snapshot())
}

func TestStore_Closed(t *testing.T) {
	s, err := Open(MemoryDSN)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, s.Set(context.Background(), "k", nil))
	assert.Equal(t, "sqlite", s.ComponentType())
}
