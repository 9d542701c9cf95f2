// Package event defines the notifications the task registry publishes after
// each successful mutation, and a synchronous bus to deliver them.
package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a "category.action" identifier.
	EventType() string

	// TaskID returns the id of the task whose state changed.
	TaskID() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type constants.
const (
	TypeTaskRegistered    = "task.registered"
	TypeBlockingAdded     = "blocking.added"
	TypeBlockingRemoved   = "blocking.removed"
	TypeCompletionChanged = "task.completion"
)

// baseEvent provides the fields shared by every registry event.
type baseEvent struct {
	eventType string
	taskID    string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) TaskID() string       { return e.taskID }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType, taskID string) baseEvent {
	return baseEvent{
		eventType: eventType,
		taskID:    taskID,
		timestamp: time.Now(),
	}
}

// TaskRegisteredEvent is published when a task is inserted or overwritten.
type TaskRegisteredEvent struct {
	baseEvent
	Replaced bool
}

// NewTaskRegisteredEvent creates a TaskRegisteredEvent.
func NewTaskRegisteredEvent(taskID string, replaced bool) TaskRegisteredEvent {
	return TaskRegisteredEvent{
		baseEvent: newBaseEvent(TypeTaskRegistered, taskID),
		Replaced:  replaced,
	}
}

// BlockingAddedEvent is published when blocking ids are appended to a task.
type BlockingAddedEvent struct {
	baseEvent
	BlockingIDs []string
}

// NewBlockingAddedEvent creates a BlockingAddedEvent.
func NewBlockingAddedEvent(taskID string, blockingIDs []string) BlockingAddedEvent {
	return BlockingAddedEvent{
		baseEvent:   newBaseEvent(TypeBlockingAdded, taskID),
		BlockingIDs: blockingIDs,
	}
}

// BlockingRemovedEvent is published when a blocking id is filtered out of a task.
// Removed counts the occurrences dropped, which may be zero.
type BlockingRemovedEvent struct {
	baseEvent
	BlockingID string
	Removed    int
}

// NewBlockingRemovedEvent creates a BlockingRemovedEvent.
func NewBlockingRemovedEvent(taskID, blockingID string, removed int) BlockingRemovedEvent {
	return BlockingRemovedEvent{
		baseEvent:  newBaseEvent(TypeBlockingRemoved, taskID),
		BlockingID: blockingID,
		Removed:    removed,
	}
}

// CompletionChangedEvent is published when a task's completion flag is set.
type CompletionChangedEvent struct {
	baseEvent
	Complete bool
}

// NewCompletionChangedEvent creates a CompletionChangedEvent.
func NewCompletionChangedEvent(taskID string, complete bool) CompletionChangedEvent {
	return CompletionChangedEvent{
		baseEvent: newBaseEvent(TypeCompletionChanged, taskID),
		Complete:  complete,
	}
}
