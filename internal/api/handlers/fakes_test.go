package handlers

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nitty-hq/server/internal/api/pagination"
	"github.com/nitty-hq/server/internal/domain/communities"
	"github.com/nitty-hq/server/internal/domain/events"
	"github.com/nitty-hq/server/internal/domain/lifecycle"
	"github.com/nitty-hq/server/internal/domain/users"
)

// In-memory repositories backing handler tests; they implement the same
// contracts as the postgres repositories.

type memUserRepo struct {
	byID    map[uuid.UUID]*users.User
	byEmail map[string]*users.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:    make(map[uuid.UUID]*users.User),
		byEmail: make(map[string]*users.User),
	}
}

func (r *memUserRepo) Create(_ context.Context, params users.CreateParams) (*users.User, error) {
	if _, ok := r.byEmail[params.Email]; ok {
		return nil, users.ErrEmailTaken
	}
	user := &users.User{
		ID:           uuid.New(),
		Email:        params.Email,
		FullName:     params.FullName,
		PasswordHash: params.PasswordHash,
		IsActive:     true,
		IsSuperuser:  params.IsSuperuser,
		CreatedAt:    time.Now().UTC(),
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return user, nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*users.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, users.ErrNotFound
	}
	return user, nil
}

type memCommunityRepo struct {
	items map[uuid.UUID]*communities.Community
	clock time.Time
}

func newMemCommunityRepo() *memCommunityRepo {
	return &memCommunityRepo{
		items: make(map[uuid.UUID]*communities.Community),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memCommunityRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *memCommunityRepo) Create(_ context.Context, params communities.CreateParams) (*communities.Community, error) {
	now := r.tick()
	community := &communities.Community{
		ID:          uuid.New(),
		Name:        params.Name,
		Description: params.Description,
		IsPublic:    params.IsPublic,
		State:       lifecycle.Active,
		CreatedBy:   params.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.items[community.ID] = community
	return community, nil
}

func (r *memCommunityRepo) GetByID(_ context.Context, id uuid.UUID) (*communities.Community, error) {
	community, ok := r.items[id]
	if !ok {
		return nil, communities.ErrNotFound
	}
	copied := *community
	return &copied, nil
}

func (r *memCommunityRepo) Update(_ context.Context, community *communities.Community) error {
	if _, ok := r.items[community.ID]; !ok {
		return communities.ErrNotFound
	}
	copied := *community
	r.items[community.ID] = &copied
	return nil
}

func (r *memCommunityRepo) SetActiveFlag(_ context.Context, id uuid.UUID, active bool, updatedAt time.Time) error {
	community, ok := r.items[id]
	if !ok {
		return communities.ErrNotFound
	}
	community.State = lifecycle.FromActiveFlag(active)
	community.UpdatedAt = updatedAt
	return nil
}

func (r *memCommunityRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.items[id]; !ok {
		return communities.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memCommunityRepo) List(_ context.Context, filters communities.Filters, page pagination.Page) ([]communities.Community, error) {
	matched := make([]communities.Community, 0, len(r.items))
	for _, community := range r.items {
		if filters.IsPublic != nil && community.IsPublic != *filters.IsPublic {
			continue
		}
		if filters.IsActive != nil && community.State.ActiveFlag() != *filters.IsActive {
			continue
		}
		if filters.Query != "" {
			q := strings.ToLower(filters.Query)
			if !strings.Contains(strings.ToLower(community.Name), q) &&
				!strings.Contains(strings.ToLower(community.Description), q) {
				continue
			}
		}
		matched = append(matched, *community)
	}
	sortCommunityPage(matched)
	return pageCommunities(matched, page), nil
}

func (r *memCommunityRepo) ListByCreator(_ context.Context, createdBy uuid.UUID, page pagination.Page) ([]communities.Community, error) {
	matched := make([]communities.Community, 0)
	for _, community := range r.items {
		if community.CreatedBy == createdBy {
			matched = append(matched, *community)
		}
	}
	sortCommunityPage(matched)
	return pageCommunities(matched, page), nil
}

func sortCommunityPage(items []communities.Community) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return bytes.Compare(items[i].ID[:], items[j].ID[:]) < 0
	})
}

func pageCommunities(items []communities.Community, page pagination.Page) []communities.Community {
	if page.Skip >= len(items) {
		return nil
	}
	end := page.Skip + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Skip:end]
}

type memEventRepo struct {
	items map[uuid.UUID]*events.Event
	clock time.Time
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{
		items: make(map[uuid.UUID]*events.Event),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memEventRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *memEventRepo) Create(_ context.Context, params events.CreateParams) (*events.Event, error) {
	now := r.tick()
	event := &events.Event{
		ID:           uuid.New(),
		Title:        params.Title,
		Description:  params.Description,
		StartTime:    params.StartTime,
		EndTime:      params.EndTime,
		Location:     params.Location,
		IsOnline:     params.IsOnline,
		MaxAttendees: params.MaxAttendees,
		IsPublic:     params.IsPublic,
		State:        lifecycle.Active,
		CommunityID:  params.CommunityID,
		CreatedBy:    params.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.items[event.ID] = event
	return event, nil
}

func (r *memEventRepo) GetByID(_ context.Context, id uuid.UUID) (*events.Event, error) {
	event, ok := r.items[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	copied := *event
	return &copied, nil
}

func (r *memEventRepo) Update(_ context.Context, event *events.Event) error {
	if _, ok := r.items[event.ID]; !ok {
		return events.ErrNotFound
	}
	copied := *event
	r.items[event.ID] = &copied
	return nil
}

func (r *memEventRepo) SetActiveFlag(_ context.Context, id uuid.UUID, active bool, updatedAt time.Time) error {
	event, ok := r.items[id]
	if !ok {
		return events.ErrNotFound
	}
	event.State = lifecycle.FromActiveFlag(active)
	event.UpdatedAt = updatedAt
	return nil
}

func (r *memEventRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.items[id]; !ok {
		return events.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memEventRepo) List(_ context.Context, filters events.Filters, page pagination.Page) ([]events.Event, error) {
	matched := make([]events.Event, 0, len(r.items))
	for _, event := range r.items {
		if filters.CommunityID != nil && event.CommunityID != *filters.CommunityID {
			continue
		}
		if filters.IsPublic != nil && event.IsPublic != *filters.IsPublic {
			continue
		}
		if filters.IsActive != nil && event.State.ActiveFlag() != *filters.IsActive {
			continue
		}
		if filters.StartDate != nil && event.StartTime.Before(*filters.StartDate) {
			continue
		}
		if filters.EndDate != nil && event.StartTime.After(*filters.EndDate) {
			continue
		}
		if filters.Query != "" {
			q := strings.ToLower(filters.Query)
			if !strings.Contains(strings.ToLower(event.Title), q) &&
				!strings.Contains(strings.ToLower(event.Description), q) &&
				!strings.Contains(strings.ToLower(event.Location), q) {
				continue
			}
		}
		matched = append(matched, *event)
	}
	sortEventPage(matched)
	return pageEvents(matched, page), nil
}

func (r *memEventRepo) ListByCreator(_ context.Context, createdBy uuid.UUID, page pagination.Page) ([]events.Event, error) {
	matched := make([]events.Event, 0)
	for _, event := range r.items {
		if event.CreatedBy == createdBy {
			matched = append(matched, *event)
		}
	}
	sortEventPage(matched)
	return pageEvents(matched, page), nil
}

func sortEventPage(items []events.Event) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].StartTime.Equal(items[j].StartTime) {
			return items[i].StartTime.Before(items[j].StartTime)
		}
		return bytes.Compare(items[i].ID[:], items[j].ID[:]) < 0
	})
}

func pageEvents(items []events.Event, page pagination.Page) []events.Event {
	if page.Skip >= len(items) {
		return nil
	}
	end := page.Skip + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Skip:end]
}
