package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 500
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a construction rule violated by one field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Props are the caller-supplied values for a new task.
type Props struct {
	Title       string
	Description string
	Difficulty  Difficulty // zero or invalid means Easy
	DueDate     *time.Time
}

type propsInput struct {
	Title       string `validate:"required,max=100"`
	Description string `validate:"max=500"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New validates p and returns a fresh Pending task.
func New(p Props) (*Task, error) {
	in := propsInput{Title: strings.TrimSpace(p.Title), Description: p.Description}
	if err := validate.Struct(in); err != nil {
		return nil, toValidationError(err)
	}

	difficulty := p.Difficulty
	if !difficulty.Valid() {
		difficulty = DifficultyEasy
	}
	ts := now()
	return &Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		State:       StatePending,
		Difficulty:  difficulty,
		CreatedAt:   ts,
		UpdatedAt:   ts,
		DueDate:     normalizeDue(p.DueDate),
	}, nil
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: field, Reason: "is required"}
	case "max":
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must not exceed %s characters", fe.Param())}
	}
	return &ValidationError{Field: field, Reason: fe.Tag()}
}

type dueOp int

const (
	dueKeep dueOp = iota
	dueClear
	dueSet
)

// DueDateChange distinguishes "leave the due date alone" (the zero value)
// from clearing it and from setting it.
type DueDateChange struct {
	op   dueOp
	date time.Time
}

// KeepDueDate leaves the due date untouched.
func KeepDueDate() DueDateChange { return DueDateChange{} }

// ClearDueDate removes the due date.
func ClearDueDate() DueDateChange { return DueDateChange{op: dueClear} }

// SetDueDate sets the due date to the calendar day of d.
func SetDueDate(d time.Time) DueDateChange { return DueDateChange{op: dueSet, date: d} }

// Changed reports whether applying c touches the due date.
func (c DueDateChange) Changed() bool { return c.op != dueKeep }

// Cleared reports whether c removes the due date.
func (c DueDateChange) Cleared() bool { return c.op == dueClear }

// Date returns the date c sets, if any.
func (c DueDateChange) Date() (time.Time, bool) { return c.date, c.op == dueSet }

// Changes is a partial update. Nil pointers leave a field unchanged.
type Changes struct {
	Title       *string
	Description *string
	State       *State
	Difficulty  *Difficulty
	DueDate     DueDateChange
}

// Empty reports whether c carries no field change at all.
func (c Changes) Empty() bool {
	return c.Title == nil && c.Description == nil && c.State == nil &&
		c.Difficulty == nil && !c.DueDate.Changed()
}

// ApplyChanges mutates t in place. Values that would break a task invariant
// (blank or over-long text, unknown enums) are ignored rather than rejected.
// UpdatedAt always advances.
func ApplyChanges(t *Task, c Changes) {
	if c.Title != nil {
		if title := strings.TrimSpace(*c.Title); title != "" && utf8.RuneCountInString(title) <= MaxTitleLen {
			t.Title = title
		}
	}
	if c.Description != nil && *c.Description != "" && utf8.RuneCountInString(*c.Description) <= MaxDescriptionLen {
		t.Description = *c.Description
	}
	if c.State != nil && c.State.Valid() {
		t.State = *c.State
	}
	if c.Difficulty != nil && c.Difficulty.Valid() {
		t.Difficulty = *c.Difficulty
	}
	switch c.DueDate.op {
	case dueClear:
		t.DueDate = nil
	case dueSet:
		d := c.DueDate.date
		t.DueDate = normalizeDue(&d)
	}
	touch(t)
}

// MarkDeleted soft-deletes t. The task stays in its collection.
func MarkDeleted(t *Task) {
	t.Deleted = true
	touch(t)
}

// IsOverdue reports whether t's due day is before today in local time.
// Done tasks are never overdue; cancelled ones can be.
func IsOverdue(t *Task) bool { return IsOverdueAt(t, time.Now()) }

// IsOverdueAt is IsOverdue evaluated at the instant at, whose location
// decides what "today" is.
func IsOverdueAt(t *Task, at time.Time) bool {
	if t.DueDate == nil || t.State == StateDone {
		return false
	}
	return DateOf(*t.DueDate).Before(DateOf(at))
}

// touch refreshes UpdatedAt, keeping it strictly increasing even when the
// clock has not moved since the last mutation.
func touch(t *Task) {
	ts := now()
	if !ts.After(t.UpdatedAt) {
		ts = t.UpdatedAt.Add(time.Nanosecond)
	}
	t.UpdatedAt = ts
}

func normalizeDue(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	day := DateOf(*d)
	return &day
}
