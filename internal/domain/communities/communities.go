package communities

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nitty-hq/server/internal/api/pagination"
	"github.com/nitty-hq/server/internal/domain/lifecycle"
)

var ErrNotFound = errors.New("community not found")

type Community struct {
	ID          uuid.UUID
	Name        string
	Description string
	IsPublic    bool
	State       lifecycle.State
	// CreatedBy is set once at creation and never reassigned; it is the sole
	// basis for write authorization.
	CreatedBy uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateParams struct {
	Name        string
	Description string
	IsPublic    bool
	CreatedBy   uuid.UUID
}

type UpdateParams struct {
	Name        *string
	Description *string
	IsPublic    *bool
}

// Filters compose conjunctively; Query is a case-insensitive substring match
// over name and description.
type Filters struct {
	IsPublic *bool
	IsActive *bool
	Query    string
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Community, error)
	// GetByID returns the community regardless of its active flag; a purged
	// (deleted) community yields ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Community, error)
	Update(ctx context.Context, community *Community) error
	SetActiveFlag(ctx context.Context, id uuid.UUID, active bool, updatedAt time.Time) error
	// Delete removes the persisted representation entirely.
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns communities ordered by (created_at, id) ascending.
	List(ctx context.Context, filters Filters, page pagination.Page) ([]Community, error)
	ListByCreator(ctx context.Context, createdBy uuid.UUID, page pagination.Page) ([]Community, error)
}

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ParseFilters reads listing parameters from a query string.
func ParseFilters(values url.Values) (Filters, pagination.Page, error) {
	filters := Filters{}

	isPublic, err := parseBool("is_public", values.Get("is_public"))
	if err != nil {
		return filters, pagination.Page{}, err
	}
	filters.IsPublic = isPublic

	isActive, err := parseBool("is_active", values.Get("is_active"))
	if err != nil {
		return filters, pagination.Page{}, err
	}
	filters.IsActive = isActive

	filters.Query = strings.TrimSpace(values.Get("q"))

	page, err := pagination.Parse(values)
	if err != nil {
		return filters, pagination.Page{}, err
	}
	return filters, page, nil
}

func parseBool(field, value string) (*bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, FilterError{Field: field, Message: "must be a boolean"}
	}
	return &parsed, nil
}
