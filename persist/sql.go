// Package persist provides persistence adapters for fabrik's create
// strategy.
package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultTable is the table name SQLSaver writes to unless told otherwise.
const DefaultTable = "fabrik_records"

// SQLSaver implements fabrik.Saver by recording each created instance as one
// row: the factory name plus the instance serialized to JSON. It is
// driver-agnostic; the table name must be a trusted identifier since it is
// interpolated into statements.
type SQLSaver struct {
	db    *sql.DB
	table string
}

// NewSQLSaver returns a saver writing to table on db. An empty table selects
// DefaultTable.
func NewSQLSaver(db *sql.DB, table string) *SQLSaver {
	if table == "" {
		table = DefaultTable
	}
	return &SQLSaver{db: db, table: table}
}

// EnsureSchema creates the backing table when it does not exist yet.
func (s *SQLSaver) EnsureSchema(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		factory TEXT NOT NULL,
		attrs TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("persist: create table %s: %w", s.table, err)
	}
	return nil
}

// Save records one created instance.
func (s *SQLSaver) Save(ctx context.Context, factory string, instance any) error {
	raw, err := json.Marshal(instance)
	if err != nil {
		return fmt.Errorf("persist: marshal %q instance: %w", factory, err)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (factory, attrs, created_at) VALUES (?, ?, ?)", s.table)
	if _, err := s.db.ExecContext(ctx, stmt, factory, string(raw), time.Now().UTC()); err != nil {
		return fmt.Errorf("persist: insert %q record: %w", factory, err)
	}
	return nil
}

// Count returns the number of recorded instances for a factory. Mostly a
// test convenience.
func (s *SQLSaver) Count(ctx context.Context, factory string) (int, error) {
	stmt := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE factory = ?", s.table)
	var n int
	if err := s.db.QueryRowContext(ctx, stmt, factory).Scan(&n); err != nil {
		return 0, fmt.Errorf("persist: count %q records: %w", factory, err)
	}
	return n, nil
}

// LastAttrs returns the JSON-decoded attributes of the most recent record for
// a factory.
func (s *SQLSaver) LastAttrs(ctx context.Context, factory string) (map[string]any, error) {
	stmt := fmt.Sprintf("SELECT attrs FROM %s WHERE factory = ? ORDER BY id DESC LIMIT 1", s.table)
	var raw string
	if err := s.db.QueryRowContext(ctx, stmt, factory).Scan(&raw); err != nil {
		return nil, fmt.Errorf("persist: load %q record: %w", factory, err)
	}
	var attrs map[string]any
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return nil, fmt.Errorf("persist: decode %q record: %w", factory, err)
	}
	return attrs, nil
}
