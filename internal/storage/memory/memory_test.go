package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/record-service/internal/storage"
	"github.com/aanand-mishra/record-service/internal/storage/storagetest"
	"github.com/aanand-mishra/record-service/internal/types"
)

func TestMemoryStorage(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return New()
	})
}

func TestNewCopiesSeed(t *testing.T) {
	seed := []types.Record{{ID: 1, Name: "a", Age: 1}}
	m := New(seed...)
	seed[0].Name = "changed"

	got, err := m.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)
}
