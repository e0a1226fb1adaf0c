package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidRecord is returned by FromRecord for data no task could have produced.
var ErrInvalidRecord = errors.New("invalid task record")

// Record is the persisted shape of a task. Timestamps are ISO-8601 strings.
type Record struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	State       string  `json:"state"`
	Difficulty  string  `json:"difficulty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
	DueDate     *string `json:"dueDate"`
	Deleted     bool    `json:"deleted"`
}

const timeLayout = time.RFC3339Nano

// ToRecord flattens t for storage.
func ToRecord(t *Task) Record {
	r := Record{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		State:       string(t.State),
		Difficulty:  string(t.Difficulty),
		CreatedAt:   t.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:   t.UpdatedAt.UTC().Format(timeLayout),
		Deleted:     t.Deleted,
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC().Format(timeLayout)
		r.DueDate = &due
	}
	return r
}

// FromRecord rehydrates a stored task. Unlike New it applies no defaults:
// state, difficulty and the deleted flag come back exactly as stored.
// A record without an id is given a fresh one.
func FromRecord(r Record) (*Task, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return nil, fmt.Errorf("%w %s: empty title", ErrInvalidRecord, r.ID)
	}
	state, ok := ParseState(r.State)
	if !ok {
		return nil, fmt.Errorf("%w %s: unknown state %q", ErrInvalidRecord, r.ID, r.State)
	}
	difficulty, ok := ParseDifficulty(r.Difficulty)
	if !ok {
		return nil, fmt.Errorf("%w %s: unknown difficulty %q", ErrInvalidRecord, r.ID, r.Difficulty)
	}
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w %s: createdAt: %v", ErrInvalidRecord, r.ID, err)
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w %s: updatedAt: %v", ErrInvalidRecord, r.ID, err)
	}

	t := &Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		State:       state,
		Difficulty:  difficulty,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		Deleted:     r.Deleted,
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if r.DueDate != nil {
		due, err := parseTime(*r.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w %s: dueDate: %v", ErrInvalidRecord, r.ID, err)
		}
		t.DueDate = &due
	}
	return t, nil
}

func parseTime(s string) (time.Time, error) {
	ts, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}
