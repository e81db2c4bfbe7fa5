// Package lifecycle models the Active -> SoftDeleted -> Purged state machine
// shared by communities and events. The state is an explicit tagged value
// rather than a boolean flag, so every transition is checked exhaustively.
package lifecycle

import (
	"errors"
	"fmt"
)

type State string

const (
	// Active is the initial state of every resource.
	Active State = "active"
	// SoftDeleted retains the persisted record with its active flag cleared.
	SoftDeleted State = "soft_deleted"
	// Purged is terminal: the persisted representation is gone, and lookups
	// report not-found rather than soft-deleted.
	Purged State = "purged"
)

// ErrPurged is returned for transitions attempted on a purged resource.
var ErrPurged = errors.New("resource has been purged")

func (s State) Valid() bool {
	switch s {
	case Active, SoftDeleted, Purged:
		return true
	}
	return false
}

// ActiveFlag maps the state onto the persisted is_active column. Purged
// states never reach persistence; the row is deleted instead.
func (s State) ActiveFlag() bool {
	return s == Active
}

// FromActiveFlag maps a persisted row's is_active column back to a state.
// Rows that do not exist are Purged by definition and never pass through here.
func FromActiveFlag(isActive bool) State {
	if isActive {
		return Active
	}
	return SoftDeleted
}

// SoftDelete transitions Active to SoftDeleted. Soft-deleting an already
// soft-deleted resource is a no-op returning the current state, so delete is
// idempotent at the state level. There is no transition back to Active.
func SoftDelete(s State) (State, error) {
	switch s {
	case Active, SoftDeleted:
		return SoftDeleted, nil
	case Purged:
		return Purged, ErrPurged
	default:
		return s, fmt.Errorf("invalid lifecycle state %q", s)
	}
}

// Purge transitions Active or SoftDeleted to Purged, removing the persisted
// representation entirely.
func Purge(s State) (State, error) {
	switch s {
	case Active, SoftDeleted:
		return Purged, nil
	case Purged:
		return Purged, ErrPurged
	default:
		return s, fmt.Errorf("invalid lifecycle state %q", s)
	}
}
