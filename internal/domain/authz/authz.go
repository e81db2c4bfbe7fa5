// Package authz decides whether an actor may perform an action on a resource.
// The rule set is a fixed enumeration based solely on ownership: there are no
// roles, delegations, or superuser escapes at this layer.
package authz

import "github.com/google/uuid"

type Action string

const (
	ActionCreate Action = "create"
	ActionModify Action = "modify"
	ActionDelete Action = "delete"
	ActionRead   Action = "read"
)

// Actor is the identity derived from a validated token. A nil *Actor
// represents an anonymous caller.
type Actor struct {
	ID uuid.UUID
	// IsSuperuser is carried for the surrounding layer's benefit; it grants
	// no elevation here. Every check below is ownership-only.
	IsSuperuser bool
}

// Forbidden is returned when the ownership check fails.
type Forbidden struct {
	Reason string
}

func (e Forbidden) Error() string {
	return "forbidden: " + e.Reason
}

// Authorize applies the single ownership rule shared by every entity type:
// reads are open, creates require any authenticated actor, and modify/delete
// require the actor to be the resource's creator. Callers supply the owner id
// relevant to the operation (for event creation that is the owning
// community's creator, not the event's).
func Authorize(actor *Actor, action Action, ownerID uuid.UUID) error {
	switch action {
	case ActionRead:
		return nil
	case ActionCreate:
		if actor == nil {
			return Forbidden{Reason: "authentication required"}
		}
		return nil
	case ActionModify, ActionDelete:
		if actor == nil {
			return Forbidden{Reason: "authentication required"}
		}
		if actor.ID != ownerID {
			return Forbidden{Reason: "only the creator may " + string(action) + " this resource"}
		}
		return nil
	default:
		return Forbidden{Reason: "unknown action"}
	}
}
