package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/abatilo/taskgate/internal/registry"
	"github.com/abatilo/taskgate/internal/task"
)

//nolint:gochecknoglobals // Styles are immutable values
var (
	idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	blockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// HumanFormatter formats output for human-readable terminal display.
type HumanFormatter struct{}

// NewHumanFormatter creates a new HumanFormatter.
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// FormatTask formats a single task for display.
func (f *HumanFormatter) FormatTask(d Detail) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[%s] %s\n", idStyle.Render(d.Task.ID), d.Task.Name)
	fmt.Fprintf(&sb, "  Status:   %s\n", f.status(d.Task))
	fmt.Fprintf(&sb, "  Eligible: %s\n", f.eligibility(d))
	if len(d.BlockingIDs) > 0 {
		fmt.Fprintf(&sb, "  Blockers: %s\n", strings.Join(d.BlockingIDs, ", "))
	}
	if desc := d.Task.DescriptionText(); desc != "" {
		sb.WriteString("\n")
		sb.WriteString(desc)
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatTaskList formats a list of tasks for display.
func (f *HumanFormatter) FormatTaskList(details []Detail) string {
	if len(details) == 0 {
		return "No tasks found.\n"
	}

	var sb strings.Builder
	for _, d := range details {
		sb.WriteString(f.formatTaskLine(d))
	}
	return sb.String()
}

// formatTaskLine formats a single task as a compact one-liner.
func (f *HumanFormatter) formatTaskLine(d Detail) string {
	deps := ""
	if len(d.BlockingIDs) > 0 {
		deps = faintStyle.Render(fmt.Sprintf(" [blocked by: %s]", strings.Join(d.BlockingIDs, ", ")))
	}
	return fmt.Sprintf("%s [%s] %s%s\n", f.statusIcon(d), idStyle.Render(d.Task.ID), d.Task.Name, deps)
}

func (f *HumanFormatter) statusIcon(d Detail) string {
	switch {
	case d.Task.Complete:
		return doneStyle.Render("[X]")
	case d.GateError != nil:
		return errorStyle.Render("[?]")
	case !d.CanComplete:
		return blockedStyle.Render("[-]")
	default:
		return "[ ]"
	}
}

func (f *HumanFormatter) status(t task.Task) string {
	if t.Complete {
		return doneStyle.Render("complete")
	}
	return "incomplete"
}

func (f *HumanFormatter) eligibility(d Detail) string {
	switch {
	case d.GateError != nil:
		return errorStyle.Render("unknown") + " (" + d.GateError.Error() + ")"
	case d.CanComplete:
		return "yes"
	default:
		return blockedStyle.Render("no")
	}
}

// FormatError formats an error for display.
func (f *HumanFormatter) FormatError(err error) string {
	return errorStyle.Render("Error:") + " " + err.Error() + "\n"
}

// FormatMessage formats a simple message.
func (f *HumanFormatter) FormatMessage(msg string) string {
	return msg + "\n"
}

// FormatGraph formats the blocker forest as ASCII art.
func (f *HumanFormatter) FormatGraph(nodes []GraphNode) string {
	if len(nodes) == 0 {
		return "No tasks found.\n"
	}

	var sb strings.Builder
	for _, node := range nodes {
		f.formatGraphNode(&sb, node, "", true)
	}
	return sb.String()
}

func (f *HumanFormatter) formatGraphNode(sb *strings.Builder, node GraphNode, prefix string, isLast bool) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}
	if prefix == "" {
		connector = ""
	}

	fmt.Fprintf(sb, "%s%s%s\n", prefix, connector, f.graphLabel(node))

	childPrefix := prefix + "│   "
	if isLast {
		childPrefix = prefix + "    "
	}

	for i, child := range node.Children {
		f.formatGraphNode(sb, child, childPrefix, i == len(node.Children)-1)
	}
}

func (f *HumanFormatter) graphLabel(node GraphNode) string {
	id := idStyle.Render(node.Task.ID)
	switch {
	case node.Missing:
		return errorStyle.Render("[!]") + " [" + id + "] " + faintStyle.Render("(missing)")
	case node.Cycle:
		return blockedStyle.Render("[~]") + " [" + id + "] " + node.Task.Name + " " + faintStyle.Render("(cycle)")
	case node.Task.Complete:
		return doneStyle.Render("[X]") + " [" + id + "] " + node.Task.Name
	default:
		return "[ ] [" + id + "] " + node.Task.Name
	}
}

// FormatReport formats a registry health report.
func (f *HumanFormatter) FormatReport(r Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Tasks: %d, ready: %d\n", r.Tasks, len(r.Ready))
	for _, t := range r.Ready {
		fmt.Fprintf(&sb, "  ready   [%s] %s\n", idStyle.Render(t.ID), t.Name)
	}
	if len(r.Cycle) > 0 {
		fmt.Fprintf(&sb, "%s blocking cycle among: %s\n",
			blockedStyle.Render("Warning:"), strings.Join(r.Cycle, ", "))
	}
	for _, ref := range r.Dangling {
		fmt.Fprintf(&sb, "%s [%s] is blocked by unknown task %s\n",
			blockedStyle.Render("Warning:"), idStyle.Render(ref.TaskID), ref.BlockerID)
	}
	if len(r.Cycle) == 0 && len(r.Dangling) == 0 {
		sb.WriteString("No problems found.\n")
	}
	return sb.String()
}

// FormatSnapshot formats registry state as YAML.
func (f *HumanFormatter) FormatSnapshot(s registry.Snapshot) string {
	data, err := yaml.Marshal(s)
	if err != nil {
		return f.FormatError(err)
	}
	return string(data)
}
