package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/GoCodeAlone/tareas/query"
	"github.com/GoCodeAlone/tareas/task"
)

var (
	colorAccent  = lipgloss.Color("#20B9B4")
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#6C7A89")
)

type styles struct {
	title   lipgloss.Style
	prompt  lipgloss.Style
	success lipgloss.Style
	err     lipgloss.Style
	info    lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	overdue lipgloss.Style
	box     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(colorAccent),
		prompt:  r.NewStyle().Foreground(colorAccent),
		success: r.NewStyle().Foreground(colorSuccess),
		err:     r.NewStyle().Foreground(colorError),
		info:    r.NewStyle(),
		label:   r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(colorMuted),
		overdue: r.NewStyle().Bold(true).Foreground(colorWarning),
		box:     r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1),
	}
}

var stateLabels = map[task.State]string{
	task.StatePending:    "Pending",
	task.StateInProgress: "In progress",
	task.StateDone:       "Done",
	task.StateCancelled:  "Cancelled",
}

// StateLabel returns the display name of s.
func StateLabel(s task.State) string {
	if l, ok := stateLabels[s]; ok {
		return l
	}
	return string(s)
}

// DifficultyLabel returns the display name of d.
func DifficultyLabel(d task.Difficulty) string { return string(d) }

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func formatDue(d *time.Time) string {
	if d == nil {
		return "no date"
	}
	return d.Format(DateLayout)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Clear wipes the screen when attached to a terminal.
func (c *Console) Clear() {
	if c.terminal {
		c.printf("\033[H\033[2J")
	}
}

// Title prints a section heading.
func (c *Console) Title(s string) { c.println(c.styles.title.Render("--- " + s + " ---")) }

// Success prints a confirmation line.
func (c *Console) Success(msg string) { c.println(c.styles.success.Render("✓ " + msg)) }

// Error prints an error line.
func (c *Console) Error(msg string) { c.println(c.styles.err.Render("✗ " + msg)) }

// Info prints an informational line.
func (c *Console) Info(msg string) { c.println(c.styles.info.Render("• " + msg)) }

// Menu prints the main menu.
func (c *Console) Menu() {
	c.Clear()
	c.println(c.styles.box.Render(c.styles.title.Render("Task Manager")))
	c.println("1. Create task")
	c.println("2. List tasks in detail")
	c.println("3. Edit task")
	c.println("4. Delete task")
	c.println("5. Search or sort tasks")
	c.println("6. Reports and statistics")
	c.println("0. Exit")
	c.println(c.styles.muted.Render(strings.Repeat("-", 38)))
}

// TaskDetails prints every field of t.
func (c *Console) TaskDetails(t *task.Task) {
	row := func(label, value string) {
		c.printf("  %s %s\n", c.styles.label.Render(fmt.Sprintf("%-13s", label+":")), value)
	}
	c.println()
	c.Title("Task details")
	row("ID", t.ID)
	row("Title", t.Title)
	desc := t.Description
	if desc == "" {
		desc = c.styles.muted.Render("(no description)")
	}
	row("Description", desc)
	row("State", StateLabel(t.State))
	row("Difficulty", DifficultyLabel(t.Difficulty))
	row("Created", t.CreatedAt.Format(time.RFC3339))
	row("Updated", t.UpdatedAt.Format(time.RFC3339))
	row("Due", formatDue(t.DueDate))
	overdue := task.IsOverdue(t)
	ov := yesNo(overdue)
	if overdue {
		ov = c.styles.overdue.Render(ov)
	}
	row("Overdue", ov)
	row("Deleted", yesNo(t.Deleted))
}

// TaskList prints one compact line per task.
func (c *Console) TaskList(tasks []*task.Task) {
	if len(tasks) == 0 {
		c.Info("No tasks to show.")
		return
	}
	c.printf("%-8s %-13s %-8s %-10s %s\n", "ID", "STATE", "LEVEL", "DUE", "TITLE")
	c.println(c.styles.muted.Render(strings.Repeat("-", 72)))
	for _, t := range tasks {
		line := fmt.Sprintf("%-8s %-13s %-8s %-10s %s",
			t.ShortID(), StateLabel(t.State), DifficultyLabel(t.Difficulty), formatDue(t.DueDate), t.Title)
		if task.IsOverdue(t) {
			line += " " + c.styles.overdue.Render("(OVERDUE)")
		}
		c.println(line)
	}
}

// Statistics prints totals with per-state and per-difficulty breakdowns.
func (c *Console) Statistics(st query.Stats) {
	c.Title("Task statistics")
	c.printf("Active tasks: %d\n\n", st.Total)
	if st.Total == 0 {
		c.Info("No statistics yet.")
		return
	}
	c.println("By state:")
	for _, s := range task.States {
		if n, ok := st.States[s]; ok {
			c.printf("  - %-12s: %d (%s)\n", StateLabel(s), n, percent(n, st.Total))
		}
	}
	c.println("By difficulty:")
	for _, d := range task.Difficulties {
		if n, ok := st.Difficulties[d]; ok {
			c.printf("  - %-12s: %d (%s)\n", DifficultyLabel(d), n, percent(n, st.Total))
		}
	}
}

func percent(n, total int) string {
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}
