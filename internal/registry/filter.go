package registry

import (
	"github.com/abatilo/taskgate/internal/errors"
	"github.com/abatilo/taskgate/internal/task"
)

// Filter selects tasks by completion state.
type Filter string

const (
	FilterAll        Filter = ""
	FilterComplete   Filter = "complete"
	FilterIncomplete Filter = "incomplete"
)

// ParseFilter converts a user-supplied string to a Filter.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterAll, FilterComplete, FilterIncomplete:
		return f, nil
	default:
		return FilterAll, errors.InvalidFilterError{Value: s}
	}
}

// Matches returns true if t should be included. Unknown filters match everything.
func (f Filter) Matches(t task.Task) bool {
	switch f {
	case FilterComplete:
		return t.Complete
	case FilterIncomplete:
		return !t.Complete
	default:
		return true
	}
}
