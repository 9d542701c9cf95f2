// Package registry holds tasks and their blocking edges and answers
// dependency-gated eligibility queries.
//
// The registry is single-threaded: it has no locking and must be owned by one
// caller. Blocking edges are never validated on insertion; an id that does not
// resolve surfaces as errors.TaskNotFoundError when a read resolves it. Cycles
// are permitted. A task blocked by itself stays ineligible until it is marked
// complete directly.
package registry

import (
	"slices"

	"github.com/abatilo/taskgate/internal/errors"
	"github.com/abatilo/taskgate/internal/event"
	"github.com/abatilo/taskgate/internal/task"
)

// Publisher receives a notification after each successful mutation.
// Implementations must not mutate the registry from Publish.
type Publisher interface {
	Publish(e event.Event)
}

// Option configures a Registry.
type Option func(*Registry)

// WithPublisher sets the publisher notified after each mutation.
func WithPublisher(p Publisher) Option {
	return func(r *Registry) {
		r.publisher = p
	}
}

// Registry owns all tasks and blocking edges.
type Registry struct {
	tasks     map[string]task.Task
	order     []string // registration order; overwrites keep their slot
	blocking  map[string][]string
	publisher Publisher
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		tasks:    make(map[string]task.Task),
		blocking: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterTask inserts t, or overwrites the task with the same id.
func (r *Registry) RegisterTask(t task.Task) {
	_, replaced := r.tasks[t.ID]
	if !replaced {
		r.order = append(r.order, t.ID)
	}
	r.tasks[t.ID] = t.Clone()
	r.publish(event.NewTaskRegisteredEvent(t.ID, replaced))
}

// AddBlockingTask appends blockingIDs to taskID's blocking sequence.
// Nothing is checked: unknown ids, duplicates and cycles are all accepted.
func (r *Registry) AddBlockingTask(taskID string, blockingIDs ...string) {
	existing, ok := r.blocking[taskID]
	if !ok {
		existing = []string{}
	}
	r.blocking[taskID] = append(existing, blockingIDs...)
	r.publish(event.NewBlockingAddedEvent(taskID, slices.Clone(blockingIDs)))
}

// RemoveBlockingTask removes every occurrence of blockingID from taskID's
// blocking sequence. A task with no sequence gets an empty one.
func (r *Registry) RemoveBlockingTask(taskID, blockingID string) {
	existing := r.blocking[taskID]
	kept := make([]string, 0, len(existing))
	for _, id := range existing {
		if id != blockingID {
			kept = append(kept, id)
		}
	}
	r.blocking[taskID] = kept
	r.publish(event.NewBlockingRemovedEvent(taskID, blockingID, len(existing)-len(kept)))
}

// BlockingTaskIDs returns a copy of taskID's blocking sequence, unresolved.
func (r *Registry) BlockingTaskIDs(taskID string) []string {
	ids := r.blocking[taskID]
	if ids == nil {
		return []string{}
	}
	return slices.Clone(ids)
}

// BlockingTasks resolves taskID's blocking sequence into tasks.
func (r *Registry) BlockingTasks(taskID string) ([]task.Task, error) {
	ids := r.blocking[taskID]
	blockers := make([]task.Task, 0, len(ids))
	for _, id := range ids {
		t, err := r.Task(id)
		if err != nil {
			return nil, err
		}
		blockers = append(blockers, t)
	}
	return blockers, nil
}

// CanCompleteTask reports whether every recorded blocker of taskID is complete.
// A task with no recorded blockers can always be completed. Every blocker id is
// resolved before any flag is judged, so a dangling id always yields
// errors.TaskNotFoundError.
func (r *Registry) CanCompleteTask(taskID string) (bool, error) {
	blockers, err := r.BlockingTasks(taskID)
	if err != nil {
		return false, err
	}
	for _, b := range blockers {
		if !b.Complete {
			return false, nil
		}
	}
	return true, nil
}

// EligibleDependentTasks returns the tasks a caller may offer as new blockers
// of taskID: every task except taskID itself and those already blocking it.
// No cycle analysis is done.
func (r *Registry) EligibleDependentTasks(taskID string) []task.Task {
	blockers := r.blocking[taskID]
	candidates := make([]task.Task, 0, len(r.order))
	for _, id := range r.order {
		if id == taskID || slices.Contains(blockers, id) {
			continue
		}
		candidates = append(candidates, r.tasks[id].Clone())
	}
	return candidates
}

// SetTaskCompletion replaces taskID with a copy whose completion flag is
// complete. Tasks blocked by it are not touched.
func (r *Registry) SetTaskCompletion(taskID string, complete bool) error {
	t, ok := r.tasks[taskID]
	if !ok {
		return errors.TaskNotFoundError{ID: taskID}
	}
	r.tasks[taskID] = t.WithCompletion(complete)
	r.publish(event.NewCompletionChangedEvent(taskID, complete))
	return nil
}

// Task returns the task registered under taskID.
func (r *Registry) Task(taskID string) (task.Task, error) {
	t, ok := r.tasks[taskID]
	if !ok {
		return task.Task{}, errors.TaskNotFoundError{ID: taskID}
	}
	return t.Clone(), nil
}

// Tasks returns the registered tasks matching filter, in registration order.
func (r *Registry) Tasks(filter Filter) []task.Task {
	tasks := make([]task.Task, 0, len(r.order))
	for _, id := range r.order {
		t := r.tasks[id]
		if filter.Matches(t) {
			tasks = append(tasks, t.Clone())
		}
	}
	return tasks
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	return len(r.order)
}

func (r *Registry) publish(e event.Event) {
	if r.publisher != nil {
		r.publisher.Publish(e)
	}
}
