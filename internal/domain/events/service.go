package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nitty-hq/server/internal/api/pagination"
	"github.com/nitty-hq/server/internal/domain/authz"
	"github.com/nitty-hq/server/internal/domain/communities"
	"github.com/nitty-hq/server/internal/domain/lifecycle"
)

type Service struct {
	repo        Repository
	communities communities.Repository
	logger      zerolog.Logger
	now         func() time.Time
}

func NewService(repo Repository, communityRepo communities.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		communities: communityRepo,
		logger:      logger.With().Str("component", "events").Logger(),
		now:         time.Now,
	}
}

// Create authorizes against the owning community's creator: only the user who
// created community X may create events in X. The event's own creator field
// is assigned afterwards from the actor.
func (s *Service) Create(ctx context.Context, actor *authz.Actor, params CreateParams) (*Event, error) {
	if err := authz.Authorize(actor, authz.ActionCreate, uuid.Nil); err != nil {
		return nil, err
	}

	community, err := s.communities.GetByID(ctx, params.CommunityID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.ActionModify, community.CreatedBy); err != nil {
		return nil, err
	}

	params.Title = strings.TrimSpace(params.Title)
	if params.Title == "" {
		return nil, FilterError{Field: "title", Message: "must not be empty"}
	}
	if err := validateTimes(params.StartTime, params.EndTime); err != nil {
		return nil, err
	}
	if err := validateMaxAttendees(params.MaxAttendees); err != nil {
		return nil, err
	}

	params.CreatedBy = actor.ID
	event, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info().
		Str("event_id", event.ID.String()).
		Str("community_id", event.CommunityID.String()).
		Msg("event created")
	return event, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filters Filters, page pagination.Page) ([]Event, error) {
	return s.repo.List(ctx, s.resolveUpcoming(filters), page)
}

// Search lists events whose title, description, or location contains query,
// case-insensitively.
func (s *Service) Search(ctx context.Context, query string, page pagination.Page) ([]Event, error) {
	return s.repo.List(ctx, Filters{Query: strings.TrimSpace(query)}, page)
}

// Upcoming lists events whose start time is at or after the current time.
func (s *Service) Upcoming(ctx context.Context, page pagination.Page) ([]Event, error) {
	return s.List(ctx, Filters{UpcomingOnly: true}, page)
}

func (s *Service) ListMine(ctx context.Context, actor *authz.Actor, page pagination.Page) ([]Event, error) {
	if err := authz.Authorize(actor, authz.ActionCreate, uuid.Nil); err != nil {
		return nil, err
	}
	return s.repo.ListByCreator(ctx, actor.ID, page)
}

// ListByCommunity verifies the community exists before listing its events.
func (s *Service) ListByCommunity(ctx context.Context, communityID uuid.UUID, page pagination.Page) ([]Event, error) {
	if _, err := s.communities.GetByID(ctx, communityID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, Filters{CommunityID: &communityID}, page)
}

// ListByDateRange lists events whose start time falls within [start, end].
func (s *Service) ListByDateRange(ctx context.Context, start, end time.Time, page pagination.Page) ([]Event, error) {
	return s.repo.List(ctx, Filters{StartDate: &start, EndDate: &end}, page)
}

func (s *Service) Update(ctx context.Context, actor *authz.Actor, id uuid.UUID, params UpdateParams) (*Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.ActionModify, event.CreatedBy); err != nil {
		return nil, err
	}

	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" {
			return nil, FilterError{Field: "title", Message: "must not be empty"}
		}
		event.Title = title
	}
	if params.Description != nil {
		event.Description = strings.TrimSpace(*params.Description)
	}
	if params.StartTime != nil {
		event.StartTime = *params.StartTime
	}
	if params.ClearEndTime {
		event.EndTime = nil
	} else if params.EndTime != nil {
		event.EndTime = params.EndTime
	}
	if params.Location != nil {
		event.Location = strings.TrimSpace(*params.Location)
	}
	if params.IsOnline != nil {
		event.IsOnline = *params.IsOnline
	}
	if params.MaxAttendees != nil {
		event.MaxAttendees = params.MaxAttendees
	}
	if params.IsPublic != nil {
		event.IsPublic = *params.IsPublic
	}

	// The invariant holds over the resulting pair, whichever side changed.
	if err := validateTimes(event.StartTime, event.EndTime); err != nil {
		return nil, err
	}
	if err := validateMaxAttendees(event.MaxAttendees); err != nil {
		return nil, err
	}
	event.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// SoftDelete marks the event inactive while retaining the record. Deleting an
// already soft-deleted event is a no-op.
func (s *Service) SoftDelete(ctx context.Context, actor *authz.Actor, id uuid.UUID) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Authorize(actor, authz.ActionDelete, event.CreatedBy); err != nil {
		return err
	}

	state, err := lifecycle.SoftDelete(event.State)
	if err != nil {
		return err
	}
	if state == event.State {
		return nil
	}

	if err := s.repo.SetActiveFlag(ctx, id, state.ActiveFlag(), s.now()); err != nil {
		return fmt.Errorf("soft delete event: %w", err)
	}
	s.logger.Info().Str("event_id", id.String()).Msg("event soft deleted")
	return nil
}

// Purge permanently removes the event, from either the active or the
// soft-deleted state.
func (s *Service) Purge(ctx context.Context, actor *authz.Actor, id uuid.UUID) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Authorize(actor, authz.ActionDelete, event.CreatedBy); err != nil {
		return err
	}

	if _, err := lifecycle.Purge(event.State); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("purge event: %w", err)
	}
	s.logger.Info().Str("event_id", id.String()).Msg("event purged")
	return nil
}

// resolveUpcoming folds the UpcomingOnly flag into the StartDate lower bound
// using the service clock, keeping the repository contract purely declarative.
func (s *Service) resolveUpcoming(filters Filters) Filters {
	if !filters.UpcomingOnly {
		return filters
	}
	now := s.now()
	if filters.StartDate == nil || filters.StartDate.Before(now) {
		filters.StartDate = &now
	}
	filters.UpcomingOnly = false
	return filters
}
