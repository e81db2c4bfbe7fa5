package events

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

var ErrNotFound = errors.New("event not found")

type Event struct {
	ID          uuid.UUID
	Title       string
	Description string
	StartTime   time.Time
	// EndTime, when present, is never earlier than StartTime.
	EndTime      *time.Time
	Location     string
	IsOnline     bool
	MaxAttendees *int
	IsPublic     bool
	State        lifecycle.State
	// CommunityID and CreatedBy are set once at creation and never
	// reassigned.
	CommunityID uuid.UUID
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateParams struct {
	Title        string
	Description  string
	StartTime    time.Time
	EndTime      *time.Time
	Location     string
	IsOnline     bool
	MaxAttendees *int
	IsPublic     bool
	CommunityID  uuid.UUID
	CreatedBy    uuid.UUID
}

type UpdateParams struct {
	Title        *string
	Description  *string
	StartTime    *time.Time
	EndTime      *time.Time
	ClearEndTime bool
	Location     *string
	IsOnline     *bool
	MaxAttendees *int
	IsPublic     *bool
}

// Filters compose conjunctively. UpcomingOnly is resolved by the service into
// a StartDate lower bound before the repository sees it; Query is a
// case-insensitive substring match over title, description, and location.
type Filters struct {
	CommunityID  *uuid.UUID
	IsPublic     *bool
	IsActive     *bool
	UpcomingOnly bool
	StartDate    *time.Time
	EndDate      *time.Time
	Query        string
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Event, error)
	// GetByID returns the event regardless of its active flag; a purged
	// (deleted) event yields ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	Update(ctx context.Context, event *Event) error
	SetActiveFlag(ctx context.Context, id uuid.UUID, active bool, updatedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns events ordered by (start_time, id) ascending.
	List(ctx context.Context, filters Filters, page pagination.Page) ([]Event, error)
	ListByCreator(ctx context.Context, createdBy uuid.UUID, page pagination.Page) ([]Event, error)
}

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// validateTimes enforces the single time-ordering invariant: end_time, when
// present, must not be earlier than start_time.
func validateTimes(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return FilterError{Field: "end_time", Message: "must not be before start_time"}
	}
	return nil
}

func validateMaxAttendees(maxAttendees *int) error {
	if maxAttendees != nil && *maxAttendees < 1 {
		return FilterError{Field: "max_attendees", Message: "must be >= 1"}
	}
	return nil
}

// ParseFilters reads listing parameters from a query string.
func ParseFilters(values url.Values) (Filters, pagination.Page, error) {
	filters := Filters{}

	if raw := strings.TrimSpace(values.Get("community_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, pagination.Page{}, FilterError{Field: "community_id", Message: "must be a UUID"}
		}
		filters.CommunityID = &id
	}

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

	upcoming, err := parseBool("upcoming_only", values.Get("upcoming_only"))
	if err != nil {
		return filters, pagination.Page{}, err
	}
	filters.UpcomingOnly = upcoming != nil && *upcoming

	startDate, err := parseTime("start_date", values.Get("start_date"))
	if err != nil {
		return filters, pagination.Page{}, err
	}
	endDate, err := parseTime("end_date", values.Get("end_date"))
	if err != nil {
		return filters, pagination.Page{}, err
	}
	if startDate != nil && endDate != nil && !startDate.Before(*endDate) {
		return filters, pagination.Page{}, FilterError{Field: "start_date", Message: "must be before end_date"}
	}
	filters.StartDate = startDate
	filters.EndDate = endDate

	filters.Query = strings.TrimSpace(values.Get("q"))

	page, err := pagination.Parse(values)
	if err != nil {
		return filters, pagination.Page{}, err
	}
	return filters, page, nil
}

// ParseDateRange reads a required start_date/end_date pair, with the same
// ordering rule as ParseFilters.
func ParseDateRange(values url.Values) (start, end time.Time, err error) {
	startPtr, err := parseTime("start_date", values.Get("start_date"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if startPtr == nil {
		return time.Time{}, time.Time{}, FilterError{Field: "start_date", Message: "is required"}
	}
	endPtr, err := parseTime("end_date", values.Get("end_date"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if endPtr == nil {
		return time.Time{}, time.Time{}, FilterError{Field: "end_date", Message: "is required"}
	}
	if !startPtr.Before(*endPtr) {
		return time.Time{}, time.Time{}, FilterError{Field: "start_date", Message: "must be before end_date"}
	}
	return *startPtr, *endPtr, nil
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

func parseTime(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		utc := parsed.UTC()
		return &utc, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, FilterError{Field: field, Message: "must be an ISO8601 date or timestamp"}
	}
	utc := parsed.UTC()
	return &utc, nil
}
