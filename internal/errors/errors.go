//nolint:revive // Package name intentionally matches stdlib for domain clarity
package errors

import "fmt"

// TaskNotFoundError indicates an id has no registered task.
type TaskNotFoundError struct {
	ID string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.ID)
}

// BlockedError indicates a task still has incomplete blockers.
type BlockedError struct {
	ID        string
	BlockedBy []string
}

func (e BlockedError) Error() string {
	return fmt.Sprintf("task %s is blocked by: %v", e.ID, e.BlockedBy)
}

// InvalidFilterError indicates an unknown completion filter.
type InvalidFilterError struct {
	Value string
}

func (e InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter: %s (valid: complete, incomplete)", e.Value)
}

// InvalidIDSchemeError indicates an unknown id generation scheme.
type InvalidIDSchemeError struct {
	Value string
}

func (e InvalidIDSchemeError) Error() string {
	return fmt.Sprintf("invalid id scheme: %s (valid: hash, sequence, uuid)", e.Value)
}
