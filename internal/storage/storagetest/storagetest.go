// Package storagetest holds behaviour tests shared by every
// storage.Storage backend. Each backend's own _test.go calls Run with a
// constructor that returns a fresh, empty store.
package storagetest

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/record-service/internal/storage"
	"github.com/aanand-mishra/record-service/internal/types"
)

// Run exercises the Storage contract against stores built by newStore.
func Run(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	t.Helper()

	seeded := func(t *testing.T) storage.Storage {
		t.Helper()
		s := newStore(t)
		require.NoError(t, storage.Seed(s, storage.SeedRecords()))
		return s
	}

	t.Run("empty list is not nil", func(t *testing.T) {
		s := newStore(t)
		got, err := s.List()
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("list preserves insertion order", func(t *testing.T) {
		s := seeded(t)
		got, err := s.List()
		require.NoError(t, err)
		assert.Equal(t, storage.SeedRecords(), got)
	})

	t.Run("list returns a copy", func(t *testing.T) {
		s := seeded(t)
		got, err := s.List()
		require.NoError(t, err)
		got[0].Name = "mutated"

		again, err := s.Get(1)
		require.NoError(t, err)
		assert.Equal(t, "Chaves", again.Name)
	})

	t.Run("get every seeded id", func(t *testing.T) {
		s := seeded(t)
		for _, want := range storage.SeedRecords() {
			got, err := s.Get(want.ID)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("get missing id", func(t *testing.T) {
		s := seeded(t)
		_, err := s.Get(999999)
		assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
	})

	t.Run("create appends", func(t *testing.T) {
		s := seeded(t)
		rec := types.Record{ID: 9, Name: "Test", Age: 5}
		require.NoError(t, s.Create(rec))

		got, err := s.Get(9)
		require.NoError(t, err)
		assert.Equal(t, rec, got)

		all, err := s.List()
		require.NoError(t, err)
		require.Len(t, all, 9)
		assert.Equal(t, rec, all[8])
	})

	t.Run("duplicate ids are kept and get returns the first", func(t *testing.T) {
		s := seeded(t)
		require.NoError(t, s.Create(types.Record{ID: 1, Name: "Other", Age: 1}))

		n, err := s.Len()
		require.NoError(t, err)
		assert.Equal(t, 9, n)

		got, err := s.Get(1)
		require.NoError(t, err)
		assert.Equal(t, "Chaves", got.Name)
	})

	t.Run("update merges supplied fields only", func(t *testing.T) {
		s := seeded(t)
		age := 41
		got, err := s.Update(1, types.RecordPatch{Age: &age})
		require.NoError(t, err)
		assert.Equal(t, types.Record{ID: 1, Name: "Chaves", Age: 41}, got)

		stored, err := s.Get(1)
		require.NoError(t, err)
		assert.Equal(t, got, stored)
	})

	t.Run("update can change the id", func(t *testing.T) {
		s := seeded(t)
		newID := 100
		_, err := s.Update(2, types.RecordPatch{ID: &newID})
		require.NoError(t, err)

		_, err = s.Get(2)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		got, err := s.Get(100)
		require.NoError(t, err)
		assert.Equal(t, "Seu Madruga", got.Name)
	})

	t.Run("update missing id", func(t *testing.T) {
		s := seeded(t)
		name := "nobody"
		_, err := s.Update(999999, types.RecordPatch{Name: &name})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete removes all matches", func(t *testing.T) {
		s := seeded(t)
		require.NoError(t, s.Create(types.Record{ID: 3, Name: "Copy", Age: 3}))

		removed, err := s.Delete(3)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		_, err = s.Get(3)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		all, err := s.List()
		require.NoError(t, err)
		require.Len(t, all, 7)
		assert.Equal(t, 4, all[2].ID, "order of survivors is kept")
	})

	t.Run("delete missing id is not an error", func(t *testing.T) {
		s := seeded(t)
		removed, err := s.Delete(999999)
		require.NoError(t, err)
		assert.Zero(t, removed)

		n, err := s.Len()
		require.NoError(t, err)
		assert.Equal(t, 8, n)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		s := newStore(t)
		const workers = 16
		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, s.Create(types.Record{ID: i, Name: "w", Age: i}))
				age := i + 1
				_, err := s.Update(i, types.RecordPatch{Age: &age})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		n, err := s.Len()
		require.NoError(t, err)
		assert.Equal(t, workers, n)
		for i := range workers {
			got, err := s.Get(i)
			require.NoError(t, err)
			assert.Equal(t, i+1, got.Age)
		}
	})
}
