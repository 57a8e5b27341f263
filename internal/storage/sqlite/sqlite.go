// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// It lets the service keep its records in a real SQL engine without a
// separate server process. The default path ":memory:" keeps the same
// process-lifetime semantics as the in-memory store; pointing
// storage.path at a file keeps records across restarts.
//
// Ids are NOT a primary key: duplicates are allowed, and insertion order
// is SQLite's implicit rowid.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/record-service/internal/storage"
	"github.com/aanand-mishra/record-service/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the database-backed implementation of storage.Storage.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at path, creates the records table if
// it does not already exist, and returns a ready-to-use *SQLite.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Every connection to ":memory:" is a separate, empty database, and
	// SQLite serializes writers anyway: one connection keeps both right.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			id    INTEGER NOT NULL,
			name  TEXT    NOT NULL,
			age   INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

func (s *SQLite) List() ([]types.Record, error) {
	rows, err := s.Db.Query("SELECT id, name, age FROM records ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("List: query: %w", err)
	}
	defer rows.Close()

	records := make([]types.Record, 0)
	for rows.Next() {
		var r types.Record
		if err := rows.Scan(&r.ID, &r.Name, &r.Age); err != nil {
			return nil, fmt.Errorf("List: scan row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows iteration: %w", err)
	}

	return records, nil
}

func (s *SQLite) Get(id int) (types.Record, error) {
	var r types.Record
	err := s.Db.QueryRow(
		"SELECT id, name, age FROM records WHERE id = ? ORDER BY rowid LIMIT 1", id,
	).Scan(&r.ID, &r.Name, &r.Age)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Record{}, fmt.Errorf("Get %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Record{}, fmt.Errorf("Get %d: scan: %w", id, err)
	}
	return r, nil
}

func (s *SQLite) Create(record types.Record) error {
	_, err := s.Db.Exec(
		"INSERT INTO records (id, name, age) VALUES (?, ?, ?)",
		record.ID, record.Name, record.Age,
	)
	if err != nil {
		return fmt.Errorf("Create: exec: %w", err)
	}
	return nil
}

// Update reads the first matching row, merges the patch in Go and
// writes it back by rowid, all inside one transaction.
func (s *SQLite) Update(id int, patch types.RecordPatch) (types.Record, error) {
	tx, err := s.Db.Begin()
	if err != nil {
		return types.Record{}, fmt.Errorf("Update: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	var (
		rowid int64
		r     types.Record
	)
	err = tx.QueryRow(
		"SELECT rowid, id, name, age FROM records WHERE id = ? ORDER BY rowid LIMIT 1", id,
	).Scan(&rowid, &r.ID, &r.Name, &r.Age)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Record{}, fmt.Errorf("Update %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Record{}, fmt.Errorf("Update %d: scan: %w", id, err)
	}

	r = patch.Apply(r)
	if _, err := tx.Exec(
		"UPDATE records SET id = ?, name = ?, age = ? WHERE rowid = ?",
		r.ID, r.Name, r.Age, rowid,
	); err != nil {
		return types.Record{}, fmt.Errorf("Update %d: exec: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return types.Record{}, fmt.Errorf("Update %d: commit: %w", id, err)
	}
	return r, nil
}

func (s *SQLite) Delete(id int) (int, error) {
	result, err := s.Db.Exec("DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("Delete %d: exec: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("Delete %d: rows affected: %w", id, err)
	}
	return int(n), nil
}

func (s *SQLite) Len() (int, error) {
	var n int
	if err := s.Db.QueryRow("SELECT COUNT(*) FROM records").Scan(&n); err != nil {
		return 0, fmt.Errorf("Len: %w", err)
	}
	return n, nil
}

var _ storage.Storage = (*SQLite)(nil)
