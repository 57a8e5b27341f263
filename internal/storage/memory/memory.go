// Package memory provides the default, in-process implementation of
// storage.Storage: an ordered slice guarded by a single RWMutex.
//
// Readers (List, Get, Len) take the read lock; writers take the write
// lock for the whole read-modify-write, so concurrent requests never
// observe a half-applied update. The slice itself never leaves the
// package: List hands out a copy.
package memory

import (
	"fmt"
	"sync"

	"github.com/aanand-mishra/record-service/internal/storage"
	"github.com/aanand-mishra/record-service/internal/types"
)

// Memory is the in-memory implementation of storage.Storage.
type Memory struct {
	mu      sync.RWMutex
	records []types.Record
}

// New returns a store holding a copy of the given records.
func New(seed ...types.Record) *Memory {
	records := make([]types.Record, len(seed))
	copy(records, seed)
	return &Memory{records: records}
}

func (m *Memory) List() ([]types.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Record, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *Memory) Get(id int) (types.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(id)
	if i < 0 {
		return types.Record{}, fmt.Errorf("Get %d: %w", id, storage.ErrNotFound)
	}
	return m.records[i], nil
}

func (m *Memory) Create(record types.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, record)
	return nil
}

func (m *Memory) Update(id int, patch types.RecordPatch) (types.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return types.Record{}, fmt.Errorf("Update %d: %w", id, storage.ErrNotFound)
	}
	m.records[i] = patch.Apply(m.records[i])
	return m.records[i], nil
}

// Delete filters the slice in place, keeping order of the survivors.
func (m *Memory) Delete(id int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	for _, r := range m.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	removed := len(m.records) - len(kept)
	clear(m.records[len(kept):])
	m.records = kept
	return removed, nil
}

func (m *Memory) Len() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// indexOf returns the position of the first record with id, or -1.
// Caller must hold mu.
func (m *Memory) indexOf(id int) int {
	for i, r := range m.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

var _ storage.Storage = (*Memory)(nil)
