// Package app runs the interactive session: it loads the task collection,
// dispatches menu choices to use cases and persists the result.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoCodeAlone/tareas/comms"
	"github.com/GoCodeAlone/tareas/console"
	"github.com/GoCodeAlone/tareas/query"
	"github.com/GoCodeAlone/tareas/store"
	"github.com/GoCodeAlone/tareas/task"
)

// App owns the task collection for the length of a session.
type App struct {
	store  store.Store
	ui     *console.Console
	bus    comms.Bus
	logger *slog.Logger
	sorter *query.Sorter

	tasks []*task.Task
}

// New wires an App. A nil bus gets an in-memory one; a nil sorter uses the
// default locale.
func New(st store.Store, ui *console.Console, bus comms.Bus, logger *slog.Logger, sorter *query.Sorter) *App {
	if bus == nil {
		bus = comms.NewInMemoryBus()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if sorter == nil {
		sorter = query.NewSorter(query.DefaultLocale)
	}
	return &App{store: st, ui: ui, bus: bus, logger: logger, sorter: sorter}
}

// Tasks returns the in-memory collection, deleted tasks included.
func (a *App) Tasks() []*task.Task { return a.tasks }

// Run loads the stored tasks, serves the menu until the user exits or input
// ends, and saves the collection before returning.
func (a *App) Run(ctx context.Context) error {
	tasks, err := a.store.Load(ctx)
	if err != nil {
		a.logger.Error("load tasks", "error", err)
		return fmt.Errorf("load tasks: %w", err)
	}
	a.tasks = tasks
	a.logger.Info("tasks loaded", "count", len(tasks))
	a.ui.Success(fmt.Sprintf("Loaded %d tasks.", len(tasks)))

	unsub := a.bus.Subscribe(comms.TypeAll, a.notify)
	defer unsub()
	a.ui.Watch(ctx)

	for ctx.Err() == nil {
		a.ui.Menu()
		opt := a.ui.MenuOption()
		if opt == "0" {
			break
		}
		if err := a.dispatch(ctx, opt); err != nil {
			a.ui.Error(err.Error())
		}
		a.ui.Pause()
	}
	if ctx.Err() != nil {
		a.logger.Info("session interrupted", "error", ctx.Err())
	}

	// the session context may be cancelled by now; the final save must run
	if err := a.save(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	a.ui.Info("Goodbye.")
	return nil
}

func (a *App) dispatch(ctx context.Context, opt string) error {
	switch opt {
	case "1":
		return a.create(ctx)
	case "2":
		a.listDetails()
	case "3":
		return a.modify(ctx)
	case "4":
		return a.remove(ctx)
	case "5":
		return a.searchAndSort()
	case "6":
		return a.reports()
	default:
		a.ui.Error("Invalid option.")
	}
	return nil
}

// notify echoes lifecycle notices to the user and the log.
func (a *App) notify(_ context.Context, msg *comms.Message) error {
	var verb string
	switch msg.Type {
	case comms.TypeTaskCreated:
		verb = "created"
	case comms.TypeTaskModified:
		verb = "modified"
	case comms.TypeTaskDeleted:
		verb = "marked as deleted"
	default:
		return nil
	}
	a.logger.Info("task "+verb, "task_id", msg.TaskID, "title", msg.Title)
	a.ui.Info(fmt.Sprintf("Task [%s] %s.", msg.ShortTaskID(), verb))
	return nil
}

// publish announces a mutation, then persists the collection. The save
// runs even when the session is being interrupted.
func (a *App) publish(ctx context.Context, typ comms.MessageType, t *task.Task) error {
	if err := a.bus.Publish(ctx, comms.NewTaskMessage(typ, t)); err != nil {
		a.logger.Warn("publish notice", "type", typ, "error", err)
	}
	return a.save(context.WithoutCancel(ctx))
}

func (a *App) save(ctx context.Context) error {
	if err := a.store.Save(ctx, a.tasks); err != nil {
		a.logger.Error("save tasks", "error", err)
		return fmt.Errorf("save tasks: %w", err)
	}
	a.logger.Debug("tasks saved", "count", len(a.tasks))
	return nil
}
