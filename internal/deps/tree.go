package deps

import (
	"github.com/abatilo/taskgate/internal/output"
	"github.com/abatilo/taskgate/internal/task"
)

// BuildTree returns the blocker forest for display. Roots are tasks that block
// nothing; each node's children are its recorded blockers. A task reached again
// along its own path is shown once more without children, so cycles terminate.
// Tasks only reachable through a cycle become roots of their own.
func (g *Graph) BuildTree() []output.GraphNode {
	blocksSomething := make(map[string]bool)
	for _, id := range g.order {
		for _, depID := range g.blocking[id] {
			blocksSomething[depID] = true
		}
	}

	shown := make(map[string]bool)
	var roots []output.GraphNode
	for _, id := range g.order {
		if !blocksSomething[id] {
			roots = append(roots, g.buildNode(id, map[string]bool{}, shown))
		}
	}
	for _, id := range g.order {
		if !shown[id] {
			roots = append(roots, g.buildNode(id, map[string]bool{}, shown))
		}
	}
	return roots
}

func (g *Graph) buildNode(id string, path, shown map[string]bool) output.GraphNode {
	shown[id] = true
	t, ok := g.tasks[id]
	if !ok {
		return output.GraphNode{Task: task.Task{ID: id}, Missing: true}
	}
	node := output.GraphNode{Task: t}
	if path[id] {
		node.Cycle = true
		return node
	}

	path[id] = true
	for _, depID := range g.blocking[id] {
		node.Children = append(node.Children, g.buildNode(depID, path, shown))
	}
	delete(path, id)
	return node
}
