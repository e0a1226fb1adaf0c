// Package console is the interactive front end: it reads and validates user
// input line by line and renders tasks, lists and statistics.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/GoCodeAlone/tareas/query"
	"github.com/GoCodeAlone/tareas/task"
)

// ErrCancelled is returned when input ends, or the watched context is done,
// before a prompt is answered.
var ErrCancelled = errors.New("input cancelled")

// DateLayout is the accepted due date format.
const DateLayout = "2006-01-02"

// ClearKeyword removes a due date when editing.
const ClearKeyword = "clear"

// Console reads answers from in and writes prompts and output to out.
type Console struct {
	in       *bufio.Scanner
	out      io.Writer
	terminal bool
	styles   styles

	startRead sync.Once
	lines     chan line
	done      <-chan struct{}
}

type line struct {
	text string
	err  error
}

// New returns a Console over in and out. Screen clearing is disabled.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:     bufio.NewScanner(in),
		out:    out,
		styles: newStyles(lipgloss.NewRenderer(out)),
		lines:  make(chan line),
	}
}

// NewStdio returns a Console on the process standard streams. The screen
// is cleared between actions only when stdout is a terminal.
func NewStdio() *Console {
	c := New(os.Stdin, os.Stdout)
	fd := os.Stdout.Fd()
	c.terminal = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return c
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) println(args ...any) {
	fmt.Fprintln(c.out, args...)
}

// Watch makes pending and future prompts fail with ErrCancelled once ctx
// is done. Call it before the first prompt.
func (c *Console) Watch(ctx context.Context) { c.done = ctx.Done() }

// scan feeds input lines to c.lines until the input ends.
func (c *Console) scan() {
	defer close(c.lines)
	for c.in.Scan() {
		c.lines <- line{text: c.in.Text()}
	}
	if err := c.in.Err(); err != nil {
		c.lines <- line{err: fmt.Errorf("read input: %w", err)}
	}
}

// readLine prints prompt and returns the next input line without its newline.
func (c *Console) readLine(prompt string) (string, error) {
	c.printf("%s", c.styles.prompt.Render(prompt))
	select {
	case <-c.done:
		c.println()
		return "", ErrCancelled
	default:
	}
	c.startRead.Do(func() { go c.scan() })

	select {
	case <-c.done:
		c.println()
		return "", ErrCancelled
	case l, ok := <-c.lines:
		if !ok {
			c.println()
			return "", ErrCancelled
		}
		if l.err != nil {
			c.println()
			return "", l.err
		}
		return strings.TrimRight(l.text, "\r"), nil
	}
}

// RequiredString asks until it gets a non-blank answer of at most max
// characters, and returns it trimmed.
func (c *Console) RequiredString(prompt string, max int) (string, error) {
	for {
		v, err := c.readLine(prompt)
		if err != nil {
			return "", err
		}
		v = strings.TrimSpace(v)
		switch {
		case v == "":
			c.Error("Input cannot be empty.")
		case utf8.RuneCountInString(v) > max:
			c.Error(fmt.Sprintf("Input cannot exceed %d characters.", max))
		default:
			return v, nil
		}
	}
}

// OptionalString asks until it gets an answer of at most max characters.
// An empty answer is allowed.
func (c *Console) OptionalString(prompt string, max int) (string, error) {
	for {
		v, err := c.readLine(prompt)
		if err != nil {
			return "", err
		}
		if utf8.RuneCountInString(v) > max {
			c.Error(fmt.Sprintf("Input cannot exceed %d characters.", max))
			continue
		}
		return v, nil
	}
}

// choose shows a numbered menu of options and returns the chosen index.
// When optional, Enter returns -1.
func (c *Console) choose(title string, options []string, optional bool) (int, error) {
	c.println(title)
	for i, o := range options {
		c.printf("  [%d] %s\n", i+1, o)
	}
	if optional {
		c.println("  [Enter] Keep current")
	}
	for {
		v, err := c.readLine("Select: ")
		if err != nil {
			return 0, err
		}
		v = strings.TrimSpace(v)
		if v == "" && optional {
			return -1, nil
		}
		n, err := strconv.Atoi(v)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		c.Error(fmt.Sprintf("Choose a number between 1 and %d.", len(options)))
	}
}

// ChooseDifficulty shows the difficulty menu. ok is false when the user
// kept the current value.
func (c *Console) ChooseDifficulty(title string) (d task.Difficulty, ok bool, err error) {
	labels := make([]string, len(task.Difficulties))
	for i, d := range task.Difficulties {
		labels[i] = DifficultyLabel(d)
	}
	i, err := c.choose(title, labels, true)
	if err != nil || i < 0 {
		return "", false, err
	}
	return task.Difficulties[i], true, nil
}

// ChooseState shows the state menu. ok is false when the user kept the
// current value.
func (c *Console) ChooseState(title string) (s task.State, ok bool, err error) {
	labels := make([]string, len(task.States))
	for i, s := range task.States {
		labels[i] = StateLabel(s)
	}
	i, err := c.choose(title, labels, true)
	if err != nil || i < 0 {
		return "", false, err
	}
	return task.States[i], true, nil
}

// DueDate asks for a YYYY-MM-DD date that is today or later. Enter keeps
// the current value. When editing, ClearKeyword removes it.
func (c *Console) DueDate(prompt string, editing bool) (task.DueDateChange, error) {
	for {
		v, err := c.readLine(prompt)
		if err != nil {
			return task.DueDateChange{}, err
		}
		v = strings.TrimSpace(v)
		switch {
		case v == "":
			return task.KeepDueDate(), nil
		case editing && strings.EqualFold(v, ClearKeyword):
			return task.ClearDueDate(), nil
		}
		d, err := time.ParseInLocation(DateLayout, v, time.Local)
		if err != nil {
			c.Error("Invalid date, use YYYY-MM-DD.")
			continue
		}
		if task.DateOf(d).Before(task.DateOf(time.Now())) {
			c.Error("The due date cannot be in the past.")
			continue
		}
		return task.SetDueDate(d), nil
	}
}

// CreateProps collects the fields of a new task.
func (c *Console) CreateProps() (task.Props, error) {
	c.Clear()
	c.Title("New task")

	var p task.Props
	var err error
	if p.Title, err = c.RequiredString(fmt.Sprintf("Title (max %d): ", task.MaxTitleLen), task.MaxTitleLen); err != nil {
		return p, err
	}
	if p.Description, err = c.OptionalString(fmt.Sprintf("Description (optional, max %d): ", task.MaxDescriptionLen), task.MaxDescriptionLen); err != nil {
		return p, err
	}
	d, ok, err := c.ChooseDifficulty("Difficulty (Enter for Easy):")
	if err != nil {
		return p, err
	}
	if ok {
		p.Difficulty = d
	}
	due, err := c.DueDate("Due date (YYYY-MM-DD, Enter to skip): ", false)
	if err != nil {
		return p, err
	}
	if d, ok := due.Date(); ok {
		p.DueDate = &d
	}
	return p, nil
}

// EditChanges asks for new values for t, leaving blank answers unchanged.
func (c *Console) EditChanges(t *task.Task) (task.Changes, error) {
	c.Title("Edit task")
	c.Info("Leave blank to keep the current value.")

	var ch task.Changes
	title, err := c.OptionalString(fmt.Sprintf("Title [%s]: ", t.Title), task.MaxTitleLen)
	if err != nil {
		return ch, err
	}
	if title = strings.TrimSpace(title); title != "" {
		ch.Title = &title
	}
	desc, err := c.OptionalString(fmt.Sprintf("Description [%s]: ", orNA(t.Description)), task.MaxDescriptionLen)
	if err != nil {
		return ch, err
	}
	if desc != "" {
		ch.Description = &desc
	}
	s, ok, err := c.ChooseState(fmt.Sprintf("State [%s]:", StateLabel(t.State)))
	if err != nil {
		return ch, err
	}
	if ok {
		ch.State = &s
	}
	d, ok, err := c.ChooseDifficulty(fmt.Sprintf("Difficulty [%s]:", DifficultyLabel(t.Difficulty)))
	if err != nil {
		return ch, err
	}
	if ok {
		ch.Difficulty = &d
	}
	ch.DueDate, err = c.DueDate(fmt.Sprintf("Due date [%s] (YYYY-MM-DD, %q to remove): ", formatDue(t.DueDate), ClearKeyword), true)
	if err != nil {
		return ch, err
	}
	return ch, nil
}

// SearchTerm asks for a title search term. Cancelled input means no filter.
func (c *Console) SearchTerm() string {
	v, err := c.readLine("Search term (Enter for all): ")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}

var criterionLabels = map[query.Criterion]string{
	query.ByTitle:      "By title (A-Z)",
	query.ByCreatedAt:  "By creation date (oldest first)",
	query.ByDueDate:    "By due date",
	query.ByDifficulty: "By difficulty (Easy to Hard)",
}

// SortCriterion asks how to order results. ok is false for "no order".
func (c *Console) SortCriterion() (crit query.Criterion, ok bool, err error) {
	labels := make([]string, len(query.Criteria))
	for i, cr := range query.Criteria {
		labels[i] = criterionLabels[cr]
	}
	i, err := c.choose("How should tasks be ordered?", labels, true)
	if err != nil || i < 0 {
		return "", false, err
	}
	return query.Criteria[i], true, nil
}

// PickTask lets the user choose one of tasks for action. A single match is
// chosen automatically. Returns nil when there is nothing to choose or the
// user cancels with 0.
func (c *Console) PickTask(tasks []*task.Task, action string) (*task.Task, error) {
	switch len(tasks) {
	case 0:
		c.Error("No matching tasks found.")
		return nil, nil
	case 1:
		c.Info(fmt.Sprintf("Found 1 task: %s", tasks[0].Title))
		return tasks[0], nil
	}
	c.Info(fmt.Sprintf("Found %d tasks. Which one do you want to %s?", len(tasks), action))
	for i, t := range tasks {
		c.printf("  [%d] %s [%s]\n", i+1, t.Title, StateLabel(t.State))
	}
	for {
		v, err := c.readLine(fmt.Sprintf("Choose a number (1-%d) or 0 to cancel: ", len(tasks)))
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 || n > len(tasks) {
			continue
		}
		if n == 0 {
			return nil, nil
		}
		return tasks[n-1], nil
	}
}

// MenuOption reads a main menu choice. End of input selects exit ("0").
func (c *Console) MenuOption() string {
	v, err := c.readLine("Choose an option: ")
	if err != nil {
		return "0"
	}
	return strings.TrimSpace(v)
}

// ReportOption shows the reports submenu and reads a choice.
func (c *Console) ReportOption() string {
	c.println("Reports:")
	c.println("  [1] General statistics")
	c.println("  [2] Overdue tasks")
	c.println("  [3] High priority tasks")
	c.println("  [4] Tasks by state")
	v, err := c.readLine("Choose a report: ")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}

// Pause waits for Enter.
func (c *Console) Pause() {
	_, _ = c.readLine("\nPress ENTER to continue...")
}
