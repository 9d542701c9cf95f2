package output

import (
	"github.com/abatilo/taskgate/internal/registry"
	"github.com/abatilo/taskgate/internal/task"
)

// Formatter defines the interface for output formatting.
type Formatter interface {
	FormatTask(d Detail) string
	FormatTaskList(details []Detail) string
	FormatError(err error) string
	FormatMessage(msg string) string
	FormatGraph(nodes []GraphNode) string
	FormatReport(r Report) string
	FormatSnapshot(s registry.Snapshot) string
}

// Detail is a task together with its gating state.
type Detail struct {
	Task        task.Task
	BlockingIDs []string
	CanComplete bool
	// GateError is set when a blocker could not be resolved; CanComplete is
	// meaningless in that case.
	GateError error
}

// GraphNode represents a node in the blocker tree output.
type GraphNode struct {
	Task     task.Task
	Children []GraphNode
	Missing  bool // blocker id with no registered task
	Cycle    bool // task already on the path from the root
}

// Reference is a blocking edge, named by both ends.
type Reference struct {
	TaskID    string
	BlockerID string
}

// Report summarises registry health for the check command.
type Report struct {
	Tasks    int
	Ready    []task.Task
	Cycle    []string
	Dangling []Reference
}
