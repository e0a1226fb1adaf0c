// Package query holds pure transformations over task collections. None of
// them modify their input; each returns a new slice sharing the same tasks.
package query

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/GoCodeAlone/tareas/task"
)

// Criterion names a sort order understood by SortBy.
type Criterion string

const (
	ByTitle      Criterion = "title"
	ByDueDate    Criterion = "dueDate"
	ByCreatedAt  Criterion = "createdAt"
	ByDifficulty Criterion = "difficulty"
)

// Criteria lists the supported sort orders.
var Criteria = []Criterion{ByTitle, ByCreatedAt, ByDueDate, ByDifficulty}

// ParseCriterion maps a name to a Criterion, reporting false for unknown names.
func ParseCriterion(v string) (Criterion, bool) {
	c := Criterion(v)
	if slices.Contains(Criteria, c) {
		return c, true
	}
	return c, false
}

// DefaultLocale orders titles when a Sorter is built without a locale.
var DefaultLocale = language.Spanish

func filter(tasks []*task.Task, keep func(*task.Task) bool) []*task.Task {
	out := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// FilterActive returns the tasks that are not soft-deleted.
func FilterActive(tasks []*task.Task) []*task.Task {
	return filter(tasks, (*task.Task).Active)
}

// SearchByTitle returns tasks whose title contains term, ignoring case.
// An empty term returns a copy of tasks.
func SearchByTitle(tasks []*task.Task, term string) []*task.Task {
	if term == "" {
		return slices.Clone(tasks)
	}
	needle := strings.ToLower(term)
	return filter(tasks, func(t *task.Task) bool {
		return strings.Contains(strings.ToLower(t.Title), needle)
	})
}

// FilterByState returns tasks in exactly the given state.
func FilterByState(tasks []*task.Task, state task.State) []*task.Task {
	return filter(tasks, func(t *task.Task) bool { return t.State == state })
}

// Sorter orders tasks. Titles are compared with the collation rules of its locale.
type Sorter struct {
	tag language.Tag
}

// NewSorter returns a Sorter collating titles for tag.
func NewSorter(tag language.Tag) *Sorter {
	return &Sorter{tag: tag}
}

// SortBy sorts with the default locale. See Sorter.SortBy.
func SortBy(tasks []*task.Task, c Criterion) []*task.Task {
	return NewSorter(DefaultLocale).SortBy(tasks, c)
}

// SortBy returns tasks stably sorted by c. An unknown criterion returns an
// unsorted copy.
func (s *Sorter) SortBy(tasks []*task.Task, c Criterion) []*task.Task {
	out := slices.Clone(tasks)
	switch c {
	case ByTitle:
		// collate.Collator keeps internal buffers; one per call.
		col := collate.New(s.tag)
		slices.SortStableFunc(out, func(a, b *task.Task) int {
			return col.CompareString(a.Title, b.Title)
		})
	case ByDueDate:
		slices.SortStableFunc(out, compareDue)
	case ByCreatedAt:
		slices.SortStableFunc(out, func(a, b *task.Task) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	case ByDifficulty:
		slices.SortStableFunc(out, func(a, b *task.Task) int {
			return a.Difficulty.Rank() - b.Difficulty.Rank()
		})
	}
	return out
}

// compareDue orders by due date with a missing date counting as +infinity.
func compareDue(a, b *task.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	return a.DueDate.Compare(*b.DueDate)
}

// Stats summarizes a task collection. Only observed values appear as keys.
type Stats struct {
	Total        int                     `json:"total"`
	States       map[task.State]int      `json:"states"`
	Difficulties map[task.Difficulty]int `json:"difficulties"`
}

// Aggregate counts tasks in total, per state and per difficulty.
func Aggregate(tasks []*task.Task) Stats {
	st := Stats{
		Total:        len(tasks),
		States:       make(map[task.State]int),
		Difficulties: make(map[task.Difficulty]int),
	}
	for _, t := range tasks {
		st.States[t.State]++
		st.Difficulties[t.Difficulty]++
	}
	return st
}
