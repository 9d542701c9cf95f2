package task

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	taskerrors "github.com/abatilo/taskgate/internal/errors"
)

// IDScheme selects how a Factory mints task ids.
type IDScheme string

const (
	IDSchemeHash     IDScheme = "hash"
	IDSchemeSequence IDScheme = "sequence"
	IDSchemeUUID     IDScheme = "uuid"
)

// IsValidIDScheme checks if a scheme string is valid.
func IsValidIDScheme(s IDScheme) bool {
	switch s {
	case IDSchemeHash, IDSchemeSequence, IDSchemeUUID:
		return true
	default:
		return false
	}
}

// Factory mints tasks with ids that are unique for the factory's lifetime.
// It is not safe for concurrent use.
type Factory struct {
	scheme IDScheme
	issued map[string]bool
	next   uint64
	now    func() time.Time
}

// NewFactory creates a Factory for the given scheme.
func NewFactory(scheme IDScheme) (*Factory, error) {
	if !IsValidIDScheme(scheme) {
		return nil, taskerrors.InvalidIDSchemeError{Value: string(scheme)}
	}
	return &Factory{
		scheme: scheme,
		issued: make(map[string]bool),
		now:    time.Now,
	}, nil
}

// Scheme returns the factory's id scheme.
func (f *Factory) Scheme() IDScheme {
	return f.scheme
}

// Reserve marks an externally chosen id as taken so it is never minted.
func (f *Factory) Reserve(id string) {
	f.issued[id] = true
}

// Make returns a new task carrying p verbatim and a freshly minted id.
func (f *Factory) Make(p Params) Task {
	id := f.mint(p.Name)
	f.issued[id] = true
	return Task{
		ID:          id,
		Name:        p.Name,
		Description: p.Description,
		Complete:    p.Complete,
	}
}

func (f *Factory) mint(name string) string {
	switch f.scheme {
	case IDSchemeSequence:
		for {
			id := strconv.FormatUint(f.next, 10)
			f.next++
			if !f.issued[id] {
				return id
			}
		}
	case IDSchemeUUID:
		for {
			id := uuid.NewString()
			if !f.issued[id] {
				return id
			}
		}
	default:
		exists := func(id string) bool { return f.issued[id] }
		for {
			if id, ok := GenerateID(name, f.now(), exists); ok {
				return id
			}
		}
	}
}
