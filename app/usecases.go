package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/GoCodeAlone/tareas/comms"
	"github.com/GoCodeAlone/tareas/console"
	"github.com/GoCodeAlone/tareas/query"
	"github.com/GoCodeAlone/tareas/rules"
	"github.com/GoCodeAlone/tareas/task"
)

func (a *App) create(ctx context.Context) error {
	props, err := a.ui.CreateProps()
	if errors.Is(err, console.ErrCancelled) {
		a.ui.Info("Creation cancelled.")
		return nil
	}
	if err != nil {
		return err
	}

	t, err := task.New(props)
	if err != nil {
		// validation failures are shown, not fatal
		a.logger.Debug("task rejected", "error", err)
		return err
	}
	a.tasks = append(a.tasks, t)
	a.ui.Success("Task created.")
	a.ui.TaskDetails(t)
	return a.publish(ctx, comms.TypeTaskCreated, t)
}

func (a *App) listDetails() {
	a.ui.Clear()
	a.ui.Title("Active tasks")
	active := query.FilterActive(a.tasks)
	if len(active) == 0 {
		a.ui.Info("There are no active tasks.")
		return
	}
	for _, t := range active {
		a.ui.TaskDetails(t)
	}
}

// pick narrows the active tasks by a search term and lets the user choose one.
func (a *App) pick(action string) (*task.Task, error) {
	found := query.SearchByTitle(query.FilterActive(a.tasks), a.ui.SearchTerm())
	t, err := a.ui.PickTask(found, action)
	if errors.Is(err, console.ErrCancelled) {
		return nil, nil
	}
	return t, err
}

func (a *App) modify(ctx context.Context) error {
	a.ui.Clear()
	a.ui.Title("Edit task")
	t, err := a.pick("edit")
	if err != nil {
		return err
	}
	if t == nil {
		a.ui.Info("No task selected.")
		return nil
	}
	a.ui.TaskDetails(t)

	changes, err := a.ui.EditChanges(t)
	if errors.Is(err, console.ErrCancelled) || (err == nil && changes.Empty()) {
		a.ui.Info("Edit cancelled or nothing changed.")
		return nil
	}
	if err != nil {
		return err
	}
	task.ApplyChanges(t, changes)
	a.ui.Success("Task updated.")
	a.ui.TaskDetails(t)
	return a.publish(ctx, comms.TypeTaskModified, t)
}

func (a *App) remove(ctx context.Context) error {
	a.ui.Clear()
	a.ui.Title("Delete task")
	t, err := a.pick("delete")
	if err != nil {
		return err
	}
	if t == nil {
		a.ui.Info("No task selected.")
		return nil
	}
	task.MarkDeleted(t)
	a.ui.Success(fmt.Sprintf("Task %q marked as deleted.", t.Title))
	return a.publish(ctx, comms.TypeTaskDeleted, t)
}

func (a *App) searchAndSort() error {
	a.ui.Clear()
	a.ui.Title("Search or sort tasks")
	result := query.SearchByTitle(query.FilterActive(a.tasks), a.ui.SearchTerm())

	crit, ok, err := a.ui.SortCriterion()
	if err != nil && !errors.Is(err, console.ErrCancelled) {
		return err
	}
	if ok {
		result = a.sorter.SortBy(result, crit)
	}
	a.ui.TaskList(result)
	return nil
}

func (a *App) reports() error {
	a.ui.Clear()
	a.ui.Title("Reports and statistics")
	active := query.FilterActive(a.tasks)

	switch a.ui.ReportOption() {
	case "1":
		a.ui.Statistics(query.Aggregate(active))
	case "2":
		a.ui.Title("Overdue tasks")
		a.ui.TaskList(rules.SelectOverdue(active))
	case "3":
		a.ui.Title("High priority tasks")
		a.ui.TaskList(rules.SelectHighPriority(active))
	case "4":
		s, ok, err := a.ui.ChooseState("State:")
		if err != nil && !errors.Is(err, console.ErrCancelled) {
			return err
		}
		if !ok {
			a.ui.Info("No state selected.")
			return nil
		}
		a.ui.Title("Tasks " + console.StateLabel(s))
		a.ui.TaskList(query.FilterByState(active, s))
	default:
		a.ui.Info("Invalid report option.")
	}
	return nil
}
