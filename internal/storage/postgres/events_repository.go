package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nitty-hq/server/internal/api/pagination"
	"github.com/nitty-hq/server/internal/domain/events"
	"github.com/nitty-hq/server/internal/domain/lifecycle"
	"github.com/nitty-hq/server/internal/metrics"
)

var _ events.Repository = (*EventRepository)(nil)

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const eventColumns = `id, title, description, start_time, end_time, location, is_online,
       max_attendees, is_public, is_active, community_id, created_by, created_at, updated_at`

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	start := time.Now()
	row := r.queryer().QueryRow(ctx, `
INSERT INTO events (title, description, start_time, end_time, location, is_online,
                    max_attendees, is_public, community_id, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING `+eventColumns,
		params.Title,
		nullableString(params.Description),
		params.StartTime,
		params.EndTime,
		nullableString(params.Location),
		params.IsOnline,
		params.MaxAttendees,
		params.IsPublic,
		params.CommunityID,
		params.CreatedBy,
	)

	event, err := scanEvent(row)
	metrics.RecordQuery("create_event", start, err)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	start := time.Now()
	row := r.queryer().QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE id = $1
`, id)

	event, err := scanEvent(row)
	metrics.RecordQuery("get_event", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Update(ctx context.Context, event *events.Event) error {
	start := time.Now()
	tag, err := r.queryer().Exec(ctx, `
UPDATE events
   SET title = $2, description = $3, start_time = $4, end_time = $5, location = $6,
       is_online = $7, max_attendees = $8, is_public = $9, updated_at = $10
 WHERE id = $1
`,
		event.ID,
		event.Title,
		nullableString(event.Description),
		event.StartTime,
		event.EndTime,
		nullableString(event.Location),
		event.IsOnline,
		event.MaxAttendees,
		event.IsPublic,
		event.UpdatedAt,
	)
	metrics.RecordQuery("update_event", start, err)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) SetActiveFlag(ctx context.Context, id uuid.UUID, active bool, updatedAt time.Time) error {
	start := time.Now()
	tag, err := r.queryer().Exec(ctx, `
UPDATE events
   SET is_active = $2, updated_at = $3
 WHERE id = $1
`, id, active, updatedAt)
	metrics.RecordQuery("set_event_active", start, err)
	if err != nil {
		return fmt.Errorf("set event active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	tag, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	metrics.RecordQuery("delete_event", start, err)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) List(ctx context.Context, filters events.Filters, page pagination.Page) ([]events.Event, error) {
	start := time.Now()
	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE ($1::uuid IS NULL OR community_id = $1::uuid)
   AND ($2::boolean IS NULL OR is_public = $2::boolean)
   AND ($3::boolean IS NULL OR is_active = $3::boolean)
   AND ($4::timestamptz IS NULL OR start_time >= $4::timestamptz)
   AND ($5::timestamptz IS NULL OR start_time <= $5::timestamptz)
   AND ($6 = '' OR title ILIKE '%' || $6 || '%'
        OR description ILIKE '%' || $6 || '%'
        OR location ILIKE '%' || $6 || '%')
 ORDER BY start_time ASC, id ASC
 OFFSET $7 LIMIT $8
`,
		filters.CommunityID,
		filters.IsPublic,
		filters.IsActive,
		filters.StartDate,
		filters.EndDate,
		filters.Query,
		page.Skip,
		page.Limit,
	)
	if err != nil {
		metrics.RecordQuery("list_events", start, err)
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items, err := collectEvents(rows)
	metrics.RecordQuery("list_events", start, err)
	return items, err
}

func (r *EventRepository) ListByCreator(ctx context.Context, createdBy uuid.UUID, page pagination.Page) ([]events.Event, error) {
	start := time.Now()
	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE created_by = $1
 ORDER BY start_time ASC, id ASC
 OFFSET $2 LIMIT $3
`, createdBy, page.Skip, page.Limit)
	if err != nil {
		metrics.RecordQuery("list_events_by_creator", start, err)
		return nil, fmt.Errorf("list events by creator: %w", err)
	}
	defer rows.Close()

	items, err := collectEvents(rows)
	metrics.RecordQuery("list_events_by_creator", start, err)
	return items, err
}

func collectEvents(rows pgx.Rows) ([]events.Event, error) {
	var items []events.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var event events.Event
	var description, location *string
	var isActive bool
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&description,
		&event.StartTime,
		&event.EndTime,
		&location,
		&event.IsOnline,
		&event.MaxAttendees,
		&event.IsPublic,
		&isActive,
		&event.CommunityID,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}
	event.Description = derefString(description)
	event.Location = derefString(location)
	event.State = lifecycle.FromActiveFlag(isActive)
	return &event, nil
}
