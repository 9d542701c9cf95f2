// Package plan loads YAML plan files that seed a fresh registry.
package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abatilo/taskgate/internal/registry"
	"github.com/abatilo/taskgate/internal/task"
)

// Plan is the YAML-serializable description of tasks and their blockers.
type Plan struct {
	Tasks []Entry `yaml:"tasks"`
}

// Entry is one task in a plan file. ID is optional; entries without one get a
// minted id and cannot be referenced from blocked_by.
type Entry struct {
	ID          string   `yaml:"id,omitempty"`
	Name        string   `yaml:"name"`
	Description *string  `yaml:"description,omitempty"`
	Complete    bool     `yaml:"complete,omitempty"`
	BlockedBy   []string `yaml:"blocked_by,omitempty"`
}

// parseError represents a structural problem in a plan file.
type parseError struct {
	msg string
}

func (e *parseError) Error() string {
	return e.msg
}

// Parse decodes and validates a plan document. Unknown fields are rejected.
func Parse(content []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, &parseError{"invalid YAML: " + err.Error()}
	}

	seen := make(map[string]int)
	for i, e := range p.Tasks {
		if strings.TrimSpace(e.Name) == "" {
			return nil, &parseError{fmt.Sprintf("task %d: name is required", i+1)}
		}
		if e.ID == "" {
			continue
		}
		if prev, dup := seen[e.ID]; dup {
			return nil, &parseError{fmt.Sprintf("task %d: id %q already used by task %d", i+1, e.ID, prev)}
		}
		seen[e.ID] = i + 1
	}
	return &p, nil
}

// Load reads and parses a plan file.
func Load(path string) (*Plan, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", path, err)
	}
	return p, nil
}

// Apply registers every entry in file order, then records blocking edges
// verbatim. Blocker ids are not checked; an unknown one surfaces as
// errors.TaskNotFoundError when it is resolved. Returns the registered tasks.
func (p *Plan) Apply(r *registry.Registry, f *task.Factory) []task.Task {
	for _, e := range p.Tasks {
		if e.ID != "" {
			f.Reserve(e.ID)
		}
	}

	registered := make([]task.Task, 0, len(p.Tasks))
	for _, e := range p.Tasks {
		t := task.Task{
			ID:          e.ID,
			Name:        e.Name,
			Description: e.Description,
			Complete:    e.Complete,
		}
		if t.ID == "" {
			t = f.Make(task.Params{Name: e.Name, Description: e.Description, Complete: e.Complete})
		}
		r.RegisterTask(t)
		registered = append(registered, t)
	}

	for i, e := range p.Tasks {
		if len(e.BlockedBy) > 0 {
			r.AddBlockingTask(registered[i].ID, e.BlockedBy...)
		}
	}
	return registered
}

// Marshal serializes a plan back to YAML.
func (p *Plan) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromSnapshot builds a plan that recreates the snapshot's tasks and edges.
// Edges owned by unregistered ids cannot be expressed and are dropped.
func FromSnapshot(s registry.Snapshot) *Plan {
	p := &Plan{Tasks: make([]Entry, 0, len(s.Tasks))}
	for _, t := range s.Tasks {
		p.Tasks = append(p.Tasks, Entry{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Complete:    t.Complete,
			BlockedBy:   s.Blocking[t.ID],
		})
	}
	return p
}
