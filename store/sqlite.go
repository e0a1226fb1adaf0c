package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GoCodeAlone/tareas/task"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	position    INTEGER NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	state       TEXT NOT NULL,
	difficulty  TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL,
	due_date    TEXT,
	deleted     INTEGER NOT NULL DEFAULT 0
);
`

// SQLiteStore persists tasks in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the tasks table exists. The caller is responsible for calling Close.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1) // prevent SQLITE_BUSY
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Load returns all stored tasks in the order they were saved.
func (s *SQLiteStore) Load(ctx context.Context) ([]*task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, state, difficulty, created_at, updated_at, due_date, deleted
		FROM tasks ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var records []task.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return toTasks(records)
}

// Save replaces the stored snapshot with tasks in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, tasks []*task.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks
			(id, position, title, description, state, difficulty, created_at, updated_at, due_date, deleted)
		VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tasks {
		r := task.ToRecord(t)
		_, err := stmt.ExecContext(ctx,
			r.ID, i, r.Title, r.Description, r.State, r.Difficulty,
			r.CreatedAt, r.UpdatedAt, nullString(r.DueDate), r.Deleted,
		)
		if err != nil {
			return fmt.Errorf("insert task %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (task.Record, error) {
	var r task.Record
	var due sql.NullString
	err := s.Scan(
		&r.ID, &r.Title, &r.Description, &r.State, &r.Difficulty,
		&r.CreatedAt, &r.UpdatedAt, &due, &r.Deleted,
	)
	if err != nil {
		return task.Record{}, err
	}
	if due.Valid {
		r.DueDate = &due.String
	}
	return r, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
