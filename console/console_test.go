package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/GoCodeAlone/tareas/query"
	"github.com/GoCodeAlone/tareas/task"
)

func newTestConsole(input string) (*Console, *bytes.Buffer) {
	var out bytes.Buffer
	return New(strings.NewReader(input), &out), &out
}

func future() string { return time.Now().AddDate(1, 0, 0).Format(DateLayout) }
func past() string   { return time.Now().AddDate(0, 0, -1).Format(DateLayout) }

func TestRequiredString_RepromptsAndTrims(t *testing.T) {
	c, out := newTestConsole("\n   \n" + strings.Repeat("x", 11) + "\n  hello  \n")
	got, err := c.RequiredString("Title: ", 10)
	if err != nil {
		t.Fatalf("RequiredString: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q, want hello", got)
	}
	if n := strings.Count(out.String(), "cannot be empty"); n != 2 {
		t.Errorf("empty errors = %d, want 2", n)
	}
	if !strings.Contains(out.String(), "cannot exceed 10") {
		t.Error("missing length error")
	}
}

func TestRequiredString_EOF(t *testing.T) {
	c, _ := newTestConsole("")
	if _, err := c.RequiredString("Title: ", 10); !errors.Is(err, ErrCancelled) {
		t.Errorf("err = %v, want ErrCancelled", err)
	}
}

func TestOptionalString(t *testing.T) {
	c, _ := newTestConsole("\n")
	got, err := c.OptionalString("Desc: ", 5)
	if err != nil || got != "" {
		t.Errorf("OptionalString = %q, %v; want empty", got, err)
	}
	c, _ = newTestConsole("toolong\nok\n")
	got, err = c.OptionalString("Desc: ", 5)
	if err != nil || got != "ok" {
		t.Errorf("OptionalString = %q, %v; want ok", got, err)
	}
}

func TestChooseDifficulty(t *testing.T) {
	c, _ := newTestConsole("9\nabc\n3\n")
	d, ok, err := c.ChooseDifficulty("Difficulty:")
	if err != nil || !ok || d != task.DifficultyHard {
		t.Errorf("ChooseDifficulty = %q, %v, %v; want Hard", d, ok, err)
	}
	c, _ = newTestConsole("\n")
	if _, ok, err := c.ChooseDifficulty("Difficulty:"); err != nil || ok {
		t.Errorf("Enter: ok = %v, err = %v; want keep", ok, err)
	}
}

func TestChooseState(t *testing.T) {
	c, _ := newTestConsole("2\n")
	s, ok, err := c.ChooseState("State:")
	if err != nil || !ok || s != task.StateInProgress {
		t.Errorf("ChooseState = %q, %v, %v; want InProgress", s, ok, err)
	}
}

func TestDueDate(t *testing.T) {
	c, out := newTestConsole("tomorrow\n" + past() + "\n" + future() + "\n")
	ch, err := c.DueDate("Due: ", false)
	if err != nil {
		t.Fatalf("DueDate: %v", err)
	}
	d, ok := ch.Date()
	if !ok || d.Format(DateLayout) != future() {
		t.Errorf("DueDate = %v, %v; want %s", d, ok, future())
	}
	if !strings.Contains(out.String(), "YYYY-MM-DD") || !strings.Contains(out.String(), "in the past") {
		t.Errorf("missing validation errors in %q", out.String())
	}
}

func TestDueDate_TodayAccepted(t *testing.T) {
	c, _ := newTestConsole(time.Now().Format(DateLayout) + "\n")
	ch, err := c.DueDate("Due: ", false)
	if err != nil {
		t.Fatalf("DueDate: %v", err)
	}
	if _, ok := ch.Date(); !ok {
		t.Error("today rejected")
	}
}

func TestDueDate_KeepAndClear(t *testing.T) {
	c, _ := newTestConsole("\nCLEAR\n")
	ch, err := c.DueDate("Due: ", true)
	if err != nil || ch.Changed() {
		t.Errorf("Enter = %+v, %v; want keep", ch, err)
	}
	ch, err = c.DueDate("Due: ", true)
	if err != nil || !ch.Cleared() {
		t.Errorf("clear = %+v, %v; want cleared", ch, err)
	}

	// "clear" is not a keyword when creating
	c, _ = newTestConsole("clear\n\n")
	ch, err = c.DueDate("Due: ", false)
	if err != nil || ch.Changed() {
		t.Errorf("create clear = %+v, %v; want re-prompt then keep", ch, err)
	}
}

func TestCreateProps(t *testing.T) {
	c, _ := newTestConsole("  Buy milk \n2 litres\n3\n" + future() + "\n")
	p, err := c.CreateProps()
	if err != nil {
		t.Fatalf("CreateProps: %v", err)
	}
	if p.Title != "Buy milk" || p.Description != "2 litres" || p.Difficulty != task.DifficultyHard {
		t.Errorf("CreateProps = %+v", p)
	}
	if p.DueDate == nil || p.DueDate.Format(DateLayout) != future() {
		t.Errorf("DueDate = %v, want %s", p.DueDate, future())
	}
}

func TestCreateProps_Defaults(t *testing.T) {
	c, _ := newTestConsole("Walk\n\n\n\n")
	p, err := c.CreateProps()
	if err != nil {
		t.Fatalf("CreateProps: %v", err)
	}
	if p.Difficulty != "" || p.DueDate != nil || p.Description != "" {
		t.Errorf("CreateProps = %+v, want only title", p)
	}
}

func TestEditChanges(t *testing.T) {
	tk, err := task.New(task.Props{Title: "orig"})
	if err != nil {
		t.Fatalf("task.New: %v", err)
	}
	c, _ := newTestConsole("new title\n\n3\n\nclear\n")
	ch, err := c.EditChanges(tk)
	if err != nil {
		t.Fatalf("EditChanges: %v", err)
	}
	if ch.Title == nil || *ch.Title != "new title" {
		t.Errorf("Title = %v, want new title", ch.Title)
	}
	if ch.Description != nil || ch.Difficulty != nil {
		t.Errorf("unexpected changes: %+v", ch)
	}
	if ch.State == nil || *ch.State != task.StateDone {
		t.Errorf("State = %v, want Done", ch.State)
	}
	if !ch.DueDate.Cleared() {
		t.Error("DueDate not cleared")
	}
}

func TestEditChanges_NothingChanged(t *testing.T) {
	tk, _ := task.New(task.Props{Title: "orig"})
	c, _ := newTestConsole("\n\n\n\n\n")
	ch, err := c.EditChanges(tk)
	if err != nil {
		t.Fatalf("EditChanges: %v", err)
	}
	if !ch.Empty() {
		t.Errorf("changes = %+v, want empty", ch)
	}
}

func TestSortCriterion(t *testing.T) {
	c, _ := newTestConsole("3\n\n")
	crit, ok, err := c.SortCriterion()
	if err != nil || !ok || crit != query.ByDueDate {
		t.Errorf("SortCriterion = %q, %v, %v; want dueDate", crit, ok, err)
	}
	if _, ok, _ := c.SortCriterion(); ok {
		t.Error("Enter selected a criterion")
	}
}

func TestPickTask(t *testing.T) {
	a, _ := task.New(task.Props{Title: "a"})
	b, _ := task.New(task.Props{Title: "b"})

	c, _ := newTestConsole("")
	if got, err := c.PickTask(nil, "edit"); got != nil || err != nil {
		t.Errorf("PickTask(none) = %v, %v", got, err)
	}
	if got, err := c.PickTask([]*task.Task{a}, "edit"); got != a || err != nil {
		t.Errorf("PickTask(one) = %v, %v; want a", got, err)
	}

	c, _ = newTestConsole("7\nx\n2\n")
	if got, err := c.PickTask([]*task.Task{a, b}, "edit"); got != b || err != nil {
		t.Errorf("PickTask = %v, %v; want b", got, err)
	}
	c, _ = newTestConsole("0\n")
	if got, err := c.PickTask([]*task.Task{a, b}, "edit"); got != nil || err != nil {
		t.Errorf("PickTask(0) = %v, %v; want nil", got, err)
	}
}

func TestMenuOption_EOFExits(t *testing.T) {
	c, _ := newTestConsole("")
	if got := c.MenuOption(); got != "0" {
		t.Errorf("MenuOption at EOF = %q, want 0", got)
	}
}

func TestDisplay(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1)
	overdue, _ := task.New(task.Props{Title: "Pay rent", DueDate: &yesterday})
	plain, _ := task.New(task.Props{Title: "Walk", Difficulty: task.DifficultyHard})

	c, out := newTestConsole("")
	c.TaskList([]*task.Task{overdue, plain})
	s := out.String()
	if !strings.Contains(s, "Pay rent (OVERDUE)") {
		t.Errorf("overdue marker missing: %q", s)
	}
	if strings.Contains(s, "Walk (OVERDUE)") {
		t.Error("non-overdue task marked overdue")
	}

	out.Reset()
	c.TaskDetails(plain)
	for _, want := range []string{plain.ID, "Walk", "(no description)", "Pending", "Hard", "no date"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("TaskDetails missing %q", want)
		}
	}

	out.Reset()
	c.TaskList(nil)
	if !strings.Contains(out.String(), "No tasks") {
		t.Errorf("empty list output = %q", out.String())
	}
}

func TestStatistics(t *testing.T) {
	c, out := newTestConsole("")
	c.Statistics(query.Stats{
		Total:        3,
		States:       map[task.State]int{task.StatePending: 2, task.StateDone: 1},
		Difficulties: map[task.Difficulty]int{task.DifficultyEasy: 3},
	})
	s := out.String()
	for _, want := range []string{"Active tasks: 3", "Pending", "66.7%", "33.3%", "100.0%"} {
		if !strings.Contains(s, want) {
			t.Errorf("Statistics missing %q in %q", want, s)
		}
	}
	if strings.Contains(s, "In progress") {
		t.Error("Statistics shows a state with no tasks")
	}
}

func TestWatch_CancelUnblocksPrompt(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	c := New(pr, io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	c.Watch(ctx)

	done := make(chan error, 1)
	go func() {
		_, err := c.RequiredString("Title: ", 10)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, ErrCancelled) {
			t.Errorf("err = %v, want ErrCancelled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("prompt still blocked after cancellation")
	}
	if got := c.MenuOption(); got != "0" {
		t.Errorf("MenuOption after cancel = %q, want 0", got)
	}
}
