package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nitty-hq/server/internal/api/middleware"
	"github.com/nitty-hq/server/internal/api/pagination"
	"github.com/nitty-hq/server/internal/domain/events"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

type createEventRequest struct {
	Title        string     `json:"title" validate:"required,max=255"`
	Description  string     `json:"description" validate:"max=5000"`
	StartTime    time.Time  `json:"start_time" validate:"required"`
	EndTime      *time.Time `json:"end_time"`
	Location     string     `json:"location" validate:"max=500"`
	IsOnline     bool       `json:"is_online"`
	MaxAttendees *int       `json:"max_attendees" validate:"omitempty,gte=1"`
	IsPublic     *bool      `json:"is_public"`
	CommunityID  string     `json:"community_id" validate:"required,uuid"`
}

type updateEventRequest struct {
	Title        *string    `json:"title" validate:"omitempty,max=255"`
	Description  *string    `json:"description" validate:"omitempty,max=5000"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	ClearEndTime bool       `json:"clear_end_time"`
	Location     *string    `json:"location" validate:"omitempty,max=500"`
	IsOnline     *bool      `json:"is_online"`
	MaxAttendees *int       `json:"max_attendees" validate:"omitempty,gte=1"`
	IsPublic     *bool      `json:"is_public"`
}

type eventResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Location     string     `json:"location,omitempty"`
	IsOnline     bool       `json:"is_online"`
	MaxAttendees *int       `json:"max_attendees,omitempty"`
	IsPublic     bool       `json:"is_public"`
	IsActive     bool       `json:"is_active"`
	CommunityID  string     `json:"community_id"`
	CreatedBy    string     `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func newEventResponse(event *events.Event) eventResponse {
	return eventResponse{
		ID:           event.ID.String(),
		Title:        event.Title,
		Description:  event.Description,
		StartTime:    event.StartTime,
		EndTime:      event.EndTime,
		Location:     event.Location,
		IsOnline:     event.IsOnline,
		MaxAttendees: event.MaxAttendees,
		IsPublic:     event.IsPublic,
		IsActive:     event.State.ActiveFlag(),
		CommunityID:  event.CommunityID.String(),
		CreatedBy:    event.CreatedBy.String(),
		CreatedAt:    event.CreatedAt,
		UpdatedAt:    event.UpdatedAt,
	}
}

func newEventList(items []events.Event) []eventResponse {
	out := make([]eventResponse, 0, len(items))
	for i := range items {
		out = append(out, newEventResponse(&items[i]))
	}
	return out
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createEventRequest
	if !decodeJSON(w, r, &body, h.Env) {
		return
	}
	if !validateBody(w, r, body, h.Env) {
		return
	}

	communityID, err := uuid.Parse(body.CommunityID)
	if err != nil {
		writeDomainError(w, r, events.FilterError{Field: "community_id", Message: "must be a UUID"}, h.Env)
		return
	}

	isPublic := true
	if body.IsPublic != nil {
		isPublic = *body.IsPublic
	}

	actor := middleware.ActorFromContext(r.Context())
	event, err := h.Service.Create(r.Context(), actor, events.CreateParams{
		Title:        body.Title,
		Description:  body.Description,
		StartTime:    body.StartTime,
		EndTime:      body.EndTime,
		Location:     body.Location,
		IsOnline:     body.IsOnline,
		MaxAttendees: body.MaxAttendees,
		IsPublic:     isPublic,
		CommunityID:  communityID,
	})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, newEventResponse(event))
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, page, err := events.ParseFilters(r.URL.Query())
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	items, err := h.Service.List(r.Context(), filters, page)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newEventList(items))
}

func (h *EventsHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	items, err := h.Service.Search(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newEventList(items))
}

func (h *EventsHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	items, err := h.Service.Upcoming(r.Context(), page)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newEventList(items))
}

func (h *EventsHandler) My(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	items, err := h.Service.ListMine(r.Context(), actor, page)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newEventList(items))
}

func (h *EventsHandler) ByCommunity(w http.ResponseWriter, r *http.Request) {
	communityID, ok := pathID(w, r, "id", h.Env)
	if !ok {
		return
	}

	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	items, err := h.Service.ListByCommunity(r.Context(), communityID, page)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newEventList(items))
}

func (h *EventsHandler) ByDateRange(w http.ResponseWriter, r *http.Request) {
	start, end, err := events.ParseDateRange(r.URL.Query())
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	items, err := h.Service.ListByDateRange(r.Context(), start, end, page)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newEventList(items))
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.Env)
	if !ok {
		return
	}

	event, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newEventResponse(event))
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.Env)
	if !ok {
		return
	}

	var body updateEventRequest
	if !decodeJSON(w, r, &body, h.Env) {
		return
	}
	if !validateBody(w, r, body, h.Env) {
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	event, err := h.Service.Update(r.Context(), actor, id, events.UpdateParams{
		Title:        body.Title,
		Description:  body.Description,
		StartTime:    body.StartTime,
		EndTime:      body.EndTime,
		ClearEndTime: body.ClearEndTime,
		Location:     body.Location,
		IsOnline:     body.IsOnline,
		MaxAttendees: body.MaxAttendees,
		IsPublic:     body.IsPublic,
	})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newEventResponse(event))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.Env)
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	if err := h.Service.SoftDelete(r.Context(), actor, id); err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EventsHandler) Purge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.Env)
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	if err := h.Service.Purge(r.Context(), actor, id); err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
