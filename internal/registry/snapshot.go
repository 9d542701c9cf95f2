package registry

import (
	"slices"

	"github.com/abatilo/taskgate/internal/task"
)

// Snapshot is a deep copy of registry state for inspection.
type Snapshot struct {
	Tasks    []task.Task         `yaml:"tasks" json:"tasks"`
	Blocking map[string][]string `yaml:"blocking" json:"blocking"`
}

// Snapshot returns a copy of every task, in registration order, and every
// recorded blocking sequence. Changing the snapshot never affects r.
func (r *Registry) Snapshot() Snapshot {
	blocking := make(map[string][]string, len(r.blocking))
	for id, ids := range r.blocking {
		blocking[id] = slices.Clone(ids)
	}
	return Snapshot{
		Tasks:    r.Tasks(FilterAll),
		Blocking: blocking,
	}
}
