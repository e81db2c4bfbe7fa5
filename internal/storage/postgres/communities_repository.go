package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nitty-hq/server/internal/api/pagination"
	"github.com/nitty-hq/server/internal/domain/communities"
	"github.com/nitty-hq/server/internal/domain/lifecycle"
	"github.com/nitty-hq/server/internal/metrics"
)

var _ communities.Repository = (*CommunityRepository)(nil)

func (r *CommunityRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const communityColumns = `id, name, description, is_public, is_active, created_by, created_at, updated_at`

func (r *CommunityRepository) Create(ctx context.Context, params communities.CreateParams) (*communities.Community, error) {
	start := time.Now()
	row := r.queryer().QueryRow(ctx, `
INSERT INTO communities (name, description, is_public, created_by)
VALUES ($1, $2, $3, $4)
RETURNING `+communityColumns,
		params.Name,
		nullableString(params.Description),
		params.IsPublic,
		params.CreatedBy,
	)

	community, err := scanCommunity(row)
	metrics.RecordQuery("create_community", start, err)
	if err != nil {
		return nil, fmt.Errorf("create community: %w", err)
	}
	return community, nil
}

func (r *CommunityRepository) GetByID(ctx context.Context, id uuid.UUID) (*communities.Community, error) {
	start := time.Now()
	row := r.queryer().QueryRow(ctx, `
SELECT `+communityColumns+`
  FROM communities
 WHERE id = $1
`, id)

	community, err := scanCommunity(row)
	metrics.RecordQuery("get_community", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, communities.ErrNotFound
		}
		return nil, fmt.Errorf("get community: %w", err)
	}
	return community, nil
}

func (r *CommunityRepository) Update(ctx context.Context, community *communities.Community) error {
	start := time.Now()
	tag, err := r.queryer().Exec(ctx, `
UPDATE communities
   SET name = $2, description = $3, is_public = $4, updated_at = $5
 WHERE id = $1
`,
		community.ID,
		community.Name,
		nullableString(community.Description),
		community.IsPublic,
		community.UpdatedAt,
	)
	metrics.RecordQuery("update_community", start, err)
	if err != nil {
		return fmt.Errorf("update community: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return communities.ErrNotFound
	}
	return nil
}

func (r *CommunityRepository) SetActiveFlag(ctx context.Context, id uuid.UUID, active bool, updatedAt time.Time) error {
	start := time.Now()
	tag, err := r.queryer().Exec(ctx, `
UPDATE communities
   SET is_active = $2, updated_at = $3
 WHERE id = $1
`, id, active, updatedAt)
	metrics.RecordQuery("set_community_active", start, err)
	if err != nil {
		return fmt.Errorf("set community active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return communities.ErrNotFound
	}
	return nil
}

func (r *CommunityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	tag, err := r.queryer().Exec(ctx, `DELETE FROM communities WHERE id = $1`, id)
	metrics.RecordQuery("delete_community", start, err)
	if err != nil {
		return fmt.Errorf("delete community: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return communities.ErrNotFound
	}
	return nil
}

func (r *CommunityRepository) List(ctx context.Context, filters communities.Filters, page pagination.Page) ([]communities.Community, error) {
	start := time.Now()
	rows, err := r.queryer().Query(ctx, `
SELECT `+communityColumns+`
  FROM communities
 WHERE ($1::boolean IS NULL OR is_public = $1::boolean)
   AND ($2::boolean IS NULL OR is_active = $2::boolean)
   AND ($3 = '' OR name ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%')
 ORDER BY created_at ASC, id ASC
 OFFSET $4 LIMIT $5
`,
		filters.IsPublic,
		filters.IsActive,
		filters.Query,
		page.Skip,
		page.Limit,
	)
	if err != nil {
		metrics.RecordQuery("list_communities", start, err)
		return nil, fmt.Errorf("list communities: %w", err)
	}
	defer rows.Close()

	items, err := collectCommunities(rows)
	metrics.RecordQuery("list_communities", start, err)
	return items, err
}

func (r *CommunityRepository) ListByCreator(ctx context.Context, createdBy uuid.UUID, page pagination.Page) ([]communities.Community, error) {
	start := time.Now()
	rows, err := r.queryer().Query(ctx, `
SELECT `+communityColumns+`
  FROM communities
 WHERE created_by = $1
 ORDER BY created_at ASC, id ASC
 OFFSET $2 LIMIT $3
`, createdBy, page.Skip, page.Limit)
	if err != nil {
		metrics.RecordQuery("list_communities_by_creator", start, err)
		return nil, fmt.Errorf("list communities by creator: %w", err)
	}
	defer rows.Close()

	items, err := collectCommunities(rows)
	metrics.RecordQuery("list_communities_by_creator", start, err)
	return items, err
}

func collectCommunities(rows pgx.Rows) ([]communities.Community, error) {
	var items []communities.Community
	for rows.Next() {
		community, err := scanCommunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan community: %w", err)
		}
		items = append(items, *community)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate communities: %w", err)
	}
	return items, nil
}

func scanCommunity(row pgx.Row) (*communities.Community, error) {
	var community communities.Community
	var description *string
	var isActive bool
	if err := row.Scan(
		&community.ID,
		&community.Name,
		&description,
		&community.IsPublic,
		&isActive,
		&community.CreatedBy,
		&community.CreatedAt,
		&community.UpdatedAt,
	); err != nil {
		return nil, err
	}
	community.Description = derefString(description)
	community.State = lifecycle.FromActiveFlag(isActive)
	return &community, nil
}
