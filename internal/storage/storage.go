// Package storage defines the Storage interface, the contract every
// record backend must satisfy to work with this application.
//
// Handlers depend only on this interface, so the in-memory store and
// the SQLite store are interchangeable (selected in main.go from config)
// and tests can run against either.
package storage

import (
	"errors"

	"github.com/aanand-mishra/record-service/internal/types"
)

// ErrNotFound is returned when no record carries the requested id.
// Callers compare with errors.Is.
var ErrNotFound = errors.New("record not found")

// Storage is the record store contract.
//
// Ids are not required to be unique: Get and Update act on the first
// record (in insertion order) with the id, Delete removes all of them.
type Storage interface {
	// List returns every record in insertion order.
	// Returns an empty slice (not nil) when the store is empty.
	List() ([]types.Record, error)

	// Get returns the first record whose id matches.
	Get(id int) (types.Record, error)

	// Create appends the record as-is. No uniqueness check is made.
	Create(record types.Record) error

	// Update merges patch into the first record whose id matches and
	// returns the record as stored afterwards.
	Update(id int, patch types.RecordPatch) (types.Record, error)

	// Delete removes every record whose id matches and reports how many
	// were removed. Removing nothing is not an error.
	Delete(id int) (int, error)

	// Len reports the number of records held.
	Len() (int, error)
}

// SeedRecords returns the fixed entries loaded at process start.
// A fresh slice is returned on every call.
func SeedRecords() []types.Record {
	return []types.Record{
		{ID: 1, Name: "Chaves", Age: 40},
		{ID: 2, Name: "Seu Madruga", Age: 50},
		{ID: 3, Name: "Chiquinha", Age: 30},
		{ID: 4, Name: "Quico", Age: 10},
		{ID: 5, Name: "Dona Florinda", Age: 45},
		{ID: 6, Name: "Professor Girafales", Age: 35},
		{ID: 7, Name: "Seu Barriga", Age: 60},
		{ID: 8, Name: "Don Ramón", Age: 40},
	}
}

// Seed loads records into s one by one, stopping at the first failure.
func Seed(s Storage, records []types.Record) error {
	for _, r := range records {
		if err := s.Create(r); err != nil {
			return err
		}
	}
	return nil
}
