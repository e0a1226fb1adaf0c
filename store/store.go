// Package store persists the task collection between runs.
//
// Stores work on whole snapshots: Load returns every task ever saved,
// deleted ones included, and Save replaces the stored collection with the
// given one, keeping its order.
package store

import (
	"context"
	"fmt"

	"github.com/GoCodeAlone/tareas/task"
)

// Store loads and saves the task collection.
type Store interface {
	// Load returns the stored tasks in collection order. A store that has
	// never been saved yields an empty collection.
	Load(ctx context.Context) ([]*task.Task, error)

	// Save replaces the stored collection with tasks.
	Save(ctx context.Context, tasks []*task.Task) error

	// Close releases any resources held by the store.
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
)

// Open returns the Store for backend, rooted at path.
func Open(backend Backend, path string) (Store, error) {
	switch backend {
	case BackendJSON, "":
		return NewJSONFileStore(path), nil
	case BackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func toTasks(records []task.Record) ([]*task.Task, error) {
	tasks := make([]*task.Task, 0, len(records))
	for i, r := range records {
		t, err := task.FromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
