package deps

import "fmt"

// CycleError reports tasks that cannot be ordered because of a cycle.
// IDs holds every task left unordered: cycle members and anything downstream of them.
type CycleError struct {
	IDs []string
}

func (e CycleError) Error() string {
	return fmt.Sprintf("blocking cycle among: %v", e.IDs)
}

// DanglingRef is a blocking edge whose blocker is not registered.
type DanglingRef struct {
	TaskID    string `json:"task_id" yaml:"task_id"`
	BlockerID string `json:"blocker_id" yaml:"blocker_id"`
}
