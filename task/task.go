// Package task defines the task model: its enums, validated construction,
// in-place mutation and the record shape used for persistence.
package task

import "time"

// State represents the lifecycle state of a task.
type State string

const (
	StatePending    State = "Pending"
	StateInProgress State = "InProgress"
	StateDone       State = "Done"
	StateCancelled  State = "Cancelled"
)

// States lists every valid state in menu order.
var States = []State{StatePending, StateInProgress, StateDone, StateCancelled}

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	switch s {
	case StatePending, StateInProgress, StateDone, StateCancelled:
		return true
	}
	return false
}

func (s State) String() string { return string(s) }

// ParseState returns the State named by v, or false when v names no state.
func ParseState(v string) (State, bool) {
	s := State(v)
	return s, s.Valid()
}

// Difficulty grades how hard a task is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists every valid difficulty from easiest to hardest.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

var difficultyRank = map[Difficulty]int{
	DifficultyEasy:   1,
	DifficultyMedium: 2,
	DifficultyHard:   3,
}

// Rank orders difficulties by severity. Unknown values rank 0.
func (d Difficulty) Rank() int { return difficultyRank[d] }

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool { return d.Rank() > 0 }

func (d Difficulty) String() string { return string(d) }

// ParseDifficulty returns the Difficulty named by v, or false when v names none.
func ParseDifficulty(v string) (Difficulty, bool) {
	d := Difficulty(v)
	return d, d.Valid()
}

// Task is a single to-do item.
type Task struct {
	ID          string
	Title       string
	Description string
	State       State
	Difficulty  Difficulty
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DueDate     *time.Time // calendar date at UTC midnight; nil when unset
	Deleted     bool
}

// Active reports whether the task has not been soft-deleted.
func (t *Task) Active() bool { return !t.Deleted }

// ShortID returns the first six characters of the ID for display.
func (t *Task) ShortID() string {
	if len(t.ID) <= 6 {
		return t.ID
	}
	return t.ID[:6]
}

// now is the package clock. Times are UTC with the monotonic reading
// stripped so they survive a text round trip unchanged.
var now = func() time.Time { return time.Now().UTC().Round(0) }

// DateOf truncates ts to its calendar day, expressed as UTC midnight.
func DateOf(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
