// Package deps analyses the blocking relationships held by a registry.
// Everything here is read-only diagnostics; the registry itself never rejects
// cycles or dangling ids.
package deps

import (
	"slices"

	"github.com/gammazero/toposort"

	"github.com/abatilo/taskgate/internal/registry"
	"github.com/abatilo/taskgate/internal/task"
)

// Graph represents the blocking relationships between tasks.
type Graph struct {
	tasks    map[string]task.Task
	order    []string
	blocking map[string][]string
}

// NewGraph creates a Graph from a registry snapshot.
func NewGraph(snap registry.Snapshot) *Graph {
	g := &Graph{
		tasks:    make(map[string]task.Task, len(snap.Tasks)),
		order:    make([]string, 0, len(snap.Tasks)),
		blocking: snap.Blocking,
	}
	for _, t := range snap.Tasks {
		g.tasks[t.ID] = t
		g.order = append(g.order, t.ID)
	}
	if g.blocking == nil {
		g.blocking = map[string][]string{}
	}
	return g
}

// Get returns a task by ID.
func (g *Graph) Get(id string) (task.Task, bool) {
	t, ok := g.tasks[id]
	return t, ok
}

// IsBlocked returns true if the task has any incomplete blockers.
// Missing blockers are not counted.
func (g *Graph) IsBlocked(id string) bool {
	return len(g.BlockedBy(id)) > 0
}

// BlockedBy returns the IDs of registered, incomplete tasks that block id.
func (g *Graph) BlockedBy(id string) []string {
	var blockers []string
	for _, depID := range g.blocking[id] {
		dep, ok := g.tasks[depID]
		if !ok {
			continue
		}
		if !dep.Complete && !slices.Contains(blockers, depID) {
			blockers = append(blockers, depID)
		}
	}
	return blockers
}

// WouldCreateCycle checks if making from blocked by to would create a cycle.
// Uses BFS from 'to' to see if we can reach 'from'.
func (g *Graph) WouldCreateCycle(from, to string) bool {
	visited := make(map[string]bool)
	queue := []string{to}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == from {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		queue = append(queue, g.blocking[current]...)
	}
	return false
}

// Upstream returns every task id that id transitively waits on, nearest first.
func (g *Graph) Upstream(id string) []string {
	visited := map[string]bool{id: true}
	var upstream []string
	queue := slices.Clone(g.blocking[id])

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		upstream = append(upstream, current)
		queue = append(queue, g.blocking[current]...)
	}
	return upstream
}

// Dependents returns IDs of registered tasks that id blocks.
func (g *Graph) Dependents(id string) []string {
	var dependents []string
	for _, tid := range g.order {
		if slices.Contains(g.blocking[tid], id) {
			dependents = append(dependents, tid)
		}
	}
	return dependents
}

// Ready returns incomplete tasks whose blockers all exist and are complete,
// in registration order.
func (g *Graph) Ready() []task.Task {
	var ready []task.Task
	for _, id := range g.order {
		t := g.tasks[id]
		if t.Complete || g.hasDangling(id) || g.IsBlocked(id) {
			continue
		}
		ready = append(ready, t)
	}
	return ready
}

// Dangling returns every edge whose blocker is not a registered task,
// ordered by registration of the blocked task.
func (g *Graph) Dangling() []DanglingRef {
	var refs []DanglingRef
	for _, id := range g.edgeOwners() {
		for _, depID := range g.blocking[id] {
			if _, ok := g.tasks[depID]; !ok {
				refs = append(refs, DanglingRef{TaskID: id, BlockerID: depID})
			}
		}
	}
	return refs
}

// Order returns registered task ids so that every blocker precedes the tasks
// it blocks. Edges to unregistered ids are ignored. A cycle yields CycleError.
func (g *Graph) Order() ([]string, error) {
	var edges []toposort.Edge
	seen := make(map[[2]string]bool)
	for _, id := range g.order {
		linked := false
		for _, depID := range g.blocking[id] {
			if _, ok := g.tasks[depID]; !ok {
				continue
			}
			linked = true
			if key := [2]string{depID, id}; !seen[key] {
				seen[key] = true
				edges = append(edges, toposort.Edge{depID, id})
			}
		}
		if !linked {
			edges = append(edges, toposort.Edge{nil, id})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, CycleError{IDs: g.unordered()}
	}

	order := make([]string, 0, len(sorted))
	for _, v := range sorted {
		if id, ok := v.(string); ok {
			order = append(order, id)
		}
	}
	return order, nil
}

// HasCycle reports whether the registered tasks contain a blocking cycle.
func (g *Graph) HasCycle() bool {
	_, err := g.Order()
	return err != nil
}

// unordered runs Kahn's algorithm and returns the ids it could not place.
func (g *Graph) unordered() []string {
	inDegree := make(map[string]int, len(g.order))
	dependents := make(map[string][]string, len(g.order))
	for _, id := range g.order {
		for _, depID := range g.blocking[id] {
			if _, ok := g.tasks[depID]; ok {
				inDegree[id]++
				dependents[depID] = append(dependents[depID], id)
			}
		}
	}

	var queue []string
	for _, id := range g.order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, d := range dependents[current] {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}

	var stuck []string
	for _, id := range g.order {
		if inDegree[id] > 0 {
			stuck = append(stuck, id)
		}
	}
	return stuck
}

func (g *Graph) hasDangling(id string) bool {
	for _, depID := range g.blocking[id] {
		if _, ok := g.tasks[depID]; !ok {
			return true
		}
	}
	return false
}

// edgeOwners returns ids with recorded edges: registered ones in order, then
// unregistered ones sorted.
func (g *Graph) edgeOwners() []string {
	owners := slices.Clone(g.order)
	var extra []string
	for id := range g.blocking {
		if _, ok := g.tasks[id]; !ok {
			extra = append(extra, id)
		}
	}
	slices.Sort(extra)
	return append(owners, extra...)
}
