package output

import (
	"encoding/json"

	"github.com/abatilo/taskgate/internal/registry"
	"github.com/abatilo/taskgate/internal/task"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

// marshalJSON marshals a value to indented JSON with a trailing newline.
func marshalJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data) + "\n"
}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// detailJSON is the JSON representation of a task and its gating state.
type detailJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Complete    bool     `json:"complete"`
	BlockedBy   []string `json:"blocked_by"`
	CanComplete *bool    `json:"can_complete"`
	GateError   string   `json:"gate_error,omitempty"`
}

func toDetailJSON(d Detail) detailJSON {
	dj := detailJSON{
		ID:          d.Task.ID,
		Name:        d.Task.Name,
		Description: d.Task.Description,
		Complete:    d.Task.Complete,
		BlockedBy:   d.BlockingIDs,
	}
	if dj.BlockedBy == nil {
		dj.BlockedBy = []string{}
	}
	if d.GateError != nil {
		dj.GateError = d.GateError.Error()
	} else {
		can := d.CanComplete
		dj.CanComplete = &can
	}
	return dj
}

// FormatTask formats a single task as JSON.
func (f *JSONFormatter) FormatTask(d Detail) string {
	return marshalJSON(toDetailJSON(d))
}

// FormatTaskList formats a list of tasks as JSON.
func (f *JSONFormatter) FormatTaskList(details []Detail) string {
	out := make([]detailJSON, len(details))
	for i, d := range details {
		out[i] = toDetailJSON(d)
	}
	return marshalJSON(out)
}

// errorJSON is the JSON representation of an error.
type errorJSON struct {
	Error string `json:"error"`
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(err error) string {
	return marshalJSON(errorJSON{Error: err.Error()})
}

// messageJSON is the JSON representation of a message.
type messageJSON struct {
	Message string `json:"message"`
}

// FormatMessage formats a simple message as JSON.
func (f *JSONFormatter) FormatMessage(msg string) string {
	return marshalJSON(messageJSON{Message: msg})
}

// graphNodeJSON is the JSON representation of a graph node.
type graphNodeJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Complete bool            `json:"complete"`
	Missing  bool            `json:"missing,omitempty"`
	Cycle    bool            `json:"cycle,omitempty"`
	Children []graphNodeJSON `json:"children,omitempty"`
}

func toGraphNodeJSON(node GraphNode) graphNodeJSON {
	children := make([]graphNodeJSON, len(node.Children))
	for i, c := range node.Children {
		children[i] = toGraphNodeJSON(c)
	}
	return graphNodeJSON{
		ID:       node.Task.ID,
		Name:     node.Task.Name,
		Complete: node.Task.Complete,
		Missing:  node.Missing,
		Cycle:    node.Cycle,
		Children: children,
	}
}

// FormatGraph formats the blocker forest as JSON.
func (f *JSONFormatter) FormatGraph(nodes []GraphNode) string {
	jsonNodes := make([]graphNodeJSON, len(nodes))
	for i, n := range nodes {
		jsonNodes[i] = toGraphNodeJSON(n)
	}
	return marshalJSON(jsonNodes)
}

type referenceJSON struct {
	TaskID    string `json:"task_id"`
	BlockerID string `json:"blocker_id"`
}

type reportJSON struct {
	Tasks    int             `json:"tasks"`
	Ready    []task.Task     `json:"ready"`
	Cycle    []string        `json:"cycle"`
	Dangling []referenceJSON `json:"dangling"`
}

// FormatReport formats a registry health report as JSON.
func (f *JSONFormatter) FormatReport(r Report) string {
	rj := reportJSON{
		Tasks:    r.Tasks,
		Ready:    r.Ready,
		Cycle:    r.Cycle,
		Dangling: make([]referenceJSON, len(r.Dangling)),
	}
	if rj.Ready == nil {
		rj.Ready = []task.Task{}
	}
	if rj.Cycle == nil {
		rj.Cycle = []string{}
	}
	for i, ref := range r.Dangling {
		rj.Dangling[i] = referenceJSON(ref)
	}
	return marshalJSON(rj)
}

// FormatSnapshot formats registry state as JSON.
func (f *JSONFormatter) FormatSnapshot(s registry.Snapshot) string {
	return marshalJSON(s)
}
