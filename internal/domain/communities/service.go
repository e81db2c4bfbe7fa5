package communities

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nitty-hq/server/internal/api/pagination"
	"github.com/nitty-hq/server/internal/domain/authz"
	"github.com/nitty-hq/server/internal/domain/lifecycle"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "communities").Logger(),
		now:    time.Now,
	}
}

func (s *Service) Create(ctx context.Context, actor *authz.Actor, name, description string, isPublic bool) (*Community, error) {
	if err := authz.Authorize(actor, authz.ActionCreate, uuid.Nil); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, FilterError{Field: "name", Message: "must not be empty"}
	}

	community, err := s.repo.Create(ctx, CreateParams{
		Name:        name,
		Description: strings.TrimSpace(description),
		IsPublic:    isPublic,
		CreatedBy:   actor.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("create community: %w", err)
	}

	s.logger.Info().Str("community_id", community.ID.String()).Msg("community created")
	return community, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Community, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filters Filters, page pagination.Page) ([]Community, error) {
	return s.repo.List(ctx, filters, page)
}

// Search lists communities whose name or description contains query,
// case-insensitively, combined with any additional filters.
func (s *Service) Search(ctx context.Context, query string, page pagination.Page) ([]Community, error) {
	return s.repo.List(ctx, Filters{Query: strings.TrimSpace(query)}, page)
}

func (s *Service) ListMine(ctx context.Context, actor *authz.Actor, page pagination.Page) ([]Community, error) {
	if err := authz.Authorize(actor, authz.ActionCreate, uuid.Nil); err != nil {
		return nil, err
	}
	return s.repo.ListByCreator(ctx, actor.ID, page)
}

func (s *Service) Update(ctx context.Context, actor *authz.Actor, id uuid.UUID, params UpdateParams) (*Community, error) {
	community, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.ActionModify, community.CreatedBy); err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, FilterError{Field: "name", Message: "must not be empty"}
		}
		community.Name = name
	}
	if params.Description != nil {
		community.Description = strings.TrimSpace(*params.Description)
	}
	if params.IsPublic != nil {
		community.IsPublic = *params.IsPublic
	}
	community.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, community); err != nil {
		return nil, fmt.Errorf("update community: %w", err)
	}
	return community, nil
}

// SoftDelete marks the community inactive while retaining the record.
// Deleting an already soft-deleted community is a no-op.
func (s *Service) SoftDelete(ctx context.Context, actor *authz.Actor, id uuid.UUID) error {
	community, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Authorize(actor, authz.ActionDelete, community.CreatedBy); err != nil {
		return err
	}

	state, err := lifecycle.SoftDelete(community.State)
	if err != nil {
		return err
	}
	if state == community.State {
		return nil
	}

	if err := s.repo.SetActiveFlag(ctx, id, state.ActiveFlag(), s.now()); err != nil {
		return fmt.Errorf("soft delete community: %w", err)
	}
	s.logger.Info().Str("community_id", id.String()).Msg("community soft deleted")
	return nil
}

// Purge permanently removes the community. It is reachable from both the
// active and soft-deleted states; afterwards lookups report not-found.
func (s *Service) Purge(ctx context.Context, actor *authz.Actor, id uuid.UUID) error {
	community, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Authorize(actor, authz.ActionDelete, community.CreatedBy); err != nil {
		return err
	}

	if _, err := lifecycle.Purge(community.State); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("purge community: %w", err)
	}
	s.logger.Info().Str("community_id", id.String()).Msg("community purged")
	return nil
}
