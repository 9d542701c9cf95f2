//nolint:testpackage // Tests require internal access for thorough testing
package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestTaskNotFoundError(t *testing.T) {
	err := TaskNotFoundError{ID: "xyz789"}
	want := "task not found: xyz789"
	if got := err.Error(); got != want {
		t.Errorf("TaskNotFoundError.Error() = %q, want %q", got, want)
	}
}

func TestTaskNotFoundErrorMatchesWhenWrapped(t *testing.T) {
	wrapped := fmt.Errorf("show: %w", TaskNotFoundError{ID: "ghost"})

	var notFound TaskNotFoundError
	if !errors.As(wrapped, &notFound) {
		t.Fatalf("errors.As(%v) = false, want true", wrapped)
	}
	if notFound.ID != "ghost" {
		t.Errorf("ID = %q, want %q", notFound.ID, "ghost")
	}
	if !errors.Is(wrapped, TaskNotFoundError{ID: "ghost"}) {
		t.Error("errors.Is should match an equal TaskNotFoundError value")
	}
}

func TestBlockedError(t *testing.T) {
	err := BlockedError{ID: "task1", BlockedBy: []string{"task2", "task3"}}
	want := "task task1 is blocked by: [task2 task3]"
	if got := err.Error(); got != want {
		t.Errorf("BlockedError.Error() = %q, want %q", got, want)
	}
}

func TestValueErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "invalid filter",
			err:  InvalidFilterError{Value: "done"},
			want: "invalid filter: done (valid: complete, incomplete)",
		},
		{
			name: "invalid id scheme",
			err:  InvalidIDSchemeError{Value: "snowflake"},
			want: "invalid id scheme: snowflake (valid: hash, sequence, uuid)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
