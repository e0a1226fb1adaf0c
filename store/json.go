package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/GoCodeAlone/tareas/task"
)

// JSONFileStore keeps tasks as a pretty-printed JSON array of records.
type JSONFileStore struct {
	path string
}

// NewJSONFileStore returns a store backed by the file at path. The file is
// not touched until Load or Save.
func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{path: path}
}

// Load reads the file. A missing or empty file is an empty collection.
func (s *JSONFileStore) Load(ctx context.Context) ([]*task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []*task.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []*task.Task{}, nil
	}

	var records []task.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	tasks, err := toTasks(records)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}
	return tasks, nil
}

// Save writes tasks to a temporary file next to the target and renames it
// into place, so a failed write never truncates the previous snapshot.
func (s *JSONFileStore) Save(ctx context.Context, tasks []*task.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	records := make([]task.Record, len(tasks))
	for i, t := range tasks {
		records[i] = task.ToRecord(t)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, ".tareas-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck // no-op after a successful rename

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (s *JSONFileStore) Close() error { return nil }
