package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GoCodeAlone/tareas/task"
)

func newTestTasks(t *testing.T) []*task.Task {
	t.Helper()
	due := time.Date(2031, 4, 5, 0, 0, 0, 0, time.UTC)
	a, err := task.New(task.Props{Title: "Buy milk", Description: "2 litres", Difficulty: task.DifficultyHard})
	if err != nil {
		t.Fatalf("task.New: %v", err)
	}
	b, err := task.New(task.Props{Title: "Pay rent", DueDate: &due})
	if err != nil {
		t.Fatalf("task.New: %v", err)
	}
	c, err := task.New(task.Props{Title: "Old chore"})
	if err != nil {
		t.Fatalf("task.New: %v", err)
	}
	done := task.StateDone
	task.ApplyChanges(c, task.Changes{State: &done})
	task.MarkDeleted(c)
	return []*task.Task{a, b, c}
}

func assertSameTasks(t *testing.T, got, want []*task.Task) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := task.ToRecord(got[i]), task.ToRecord(want[i])
		gj, _ := json.Marshal(g)
		wj, _ := json.Marshal(w)
		if string(gj) != string(wj) {
			t.Errorf("task %d = %s, want %s", i, gj, wj)
		}
	}
}

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "tareas.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestJSONFileStore_MissingFileIsEmpty(t *testing.T) {
	s := NewJSONFileStore(filepath.Join(t.TempDir(), "nope.json"))
	tasks, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Load = %d tasks, want 0", len(tasks))
	}
}

func TestJSONFileStore_EmptyFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tareas.json")
	if err := os.WriteFile(path, []byte("\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	tasks, err := NewJSONFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Load = %d tasks, want 0", len(tasks))
	}
}

func TestJSONFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "tareas.json")
	s := NewJSONFileStore(path)
	want := newTestTasks(t)

	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSameTasks(t, got, want)

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("data dir has %d entries, want only the store file", len(entries))
	}
}

func TestJSONFileStore_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tareas.json")
	if err := NewJSONFileStore(path).Save(context.Background(), newTestTasks(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("file is not a JSON array: %v", err)
	}
	if len(raw) != 3 {
		t.Fatalf("array len = %d, want 3", len(raw))
	}
	if raw[0]["dueDate"] != nil {
		t.Errorf("dueDate = %v, want null", raw[0]["dueDate"])
	}
	if raw[1]["dueDate"] != "2031-04-05T00:00:00Z" {
		t.Errorf("dueDate = %v, want 2031-04-05T00:00:00Z", raw[1]["dueDate"])
	}
	if raw[2]["deleted"] != true || raw[2]["state"] != "Done" {
		t.Errorf("record 2 = %v, want deleted Done", raw[2])
	}
}

func TestJSONFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tareas.json")
	if err := os.WriteFile(path, []byte(`[{"id":"x","title":"t","state":"Nope"}]`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := NewJSONFileStore(path).Load(context.Background())
	if !errors.Is(err, task.ErrInvalidRecord) {
		t.Errorf("Load error = %v, want ErrInvalidRecord", err)
	}

	if err := os.WriteFile(path, []byte(`{not json`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := NewJSONFileStore(path).Load(context.Background()); err == nil {
		t.Error("Load accepted malformed JSON")
	}
}

func TestJSONFileStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewJSONFileStore(filepath.Join(t.TempDir(), "tareas.json"))
	if err := s.Save(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Save error = %v, want context.Canceled", err)
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Load empty = %d tasks, want 0", len(got))
	}

	want := newTestTasks(t)
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSameTasks(t, got, want)
}

func TestSQLiteStore_SaveReplacesSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)
	tasks := newTestTasks(t)

	if err := s.Save(ctx, tasks); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reordered := []*task.Task{tasks[2], tasks[0]}
	if err := s.Save(ctx, reordered); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSameTasks(t, got, reordered)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(BackendJSON, filepath.Join(dir, "a.json"))
	if err != nil {
		t.Fatalf("Open json: %v", err)
	}
	if _, ok := s.(*JSONFileStore); !ok {
		t.Errorf("Open json = %T, want *JSONFileStore", s)
	}

	s, err = Open(BackendSQLite, filepath.Join(dir, "a.db"))
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("Open sqlite = %T, want *SQLiteStore", s)
	}

	if _, err := Open("postgres", "x"); err == nil {
		t.Error("Open accepted unknown backend")
	}
}
