// Package rules derives facts about tasks: which are overdue and which
// deserve attention first. Selections return new slices.
package rules

import "github.com/GoCodeAlone/tareas/task"

// Rule is a predicate over a single task.
type Rule func(*task.Task) bool

// IsOverdueRule reports whether t is overdue.
func IsOverdueRule(t *task.Task) bool { return task.IsOverdue(t) }

// IsHighPriority reports whether t is hard and not yet done.
func IsHighPriority(t *task.Task) bool {
	return t.Difficulty == task.DifficultyHard && t.State != task.StateDone
}

// Select returns the tasks satisfying r, in input order.
func Select(tasks []*task.Task, r Rule) []*task.Task {
	out := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if r(t) {
			out = append(out, t)
		}
	}
	return out
}

// SelectOverdue returns the overdue tasks.
func SelectOverdue(tasks []*task.Task) []*task.Task { return Select(tasks, IsOverdueRule) }

// SelectHighPriority returns the high-priority tasks.
func SelectHighPriority(tasks []*task.Task) []*task.Task { return Select(tasks, IsHighPriority) }
