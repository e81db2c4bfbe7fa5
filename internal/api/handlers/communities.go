package handlers

import (
	"net/http"
	"time"

	"github.com/nitty-hq/server/internal/api/middleware"
	"github.com/nitty-hq/server/internal/api/pagination"
	"github.com/nitty-hq/server/internal/domain/communities"
)

type CommunitiesHandler struct {
	Service *communities.Service
	Env     string
}

func NewCommunitiesHandler(service *communities.Service, env string) *CommunitiesHandler {
	return &CommunitiesHandler{Service: service, Env: env}
}

type createCommunityRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
	IsPublic    *bool  `json:"is_public"`
}

type updateCommunityRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsPublic    *bool   `json:"is_public"`
}

type communityResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"is_public"`
	IsActive    bool      `json:"is_active"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newCommunityResponse(community *communities.Community) communityResponse {
	return communityResponse{
		ID:          community.ID.String(),
		Name:        community.Name,
		Description: community.Description,
		IsPublic:    community.IsPublic,
		IsActive:    community.State.ActiveFlag(),
		CreatedBy:   community.CreatedBy.String(),
		CreatedAt:   community.CreatedAt,
		UpdatedAt:   community.UpdatedAt,
	}
}

func newCommunityList(items []communities.Community) []communityResponse {
	out := make([]communityResponse, 0, len(items))
	for i := range items {
		out = append(out, newCommunityResponse(&items[i]))
	}
	return out
}

func (h *CommunitiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createCommunityRequest
	if !decodeJSON(w, r, &body, h.Env) {
		return
	}
	if !validateBody(w, r, body, h.Env) {
		return
	}

	// Communities are public unless the request says otherwise.
	isPublic := true
	if body.IsPublic != nil {
		isPublic = *body.IsPublic
	}

	actor := middleware.ActorFromContext(r.Context())
	community, err := h.Service.Create(r.Context(), actor, body.Name, body.Description, isPublic)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, newCommunityResponse(community))
}

func (h *CommunitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, page, err := communities.ParseFilters(r.URL.Query())
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	items, err := h.Service.List(r.Context(), filters, page)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newCommunityList(items))
}

func (h *CommunitiesHandler) Search(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, newCommunityList(items))
}

func (h *CommunitiesHandler) My(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, newCommunityList(items))
}

func (h *CommunitiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.Env)
	if !ok {
		return
	}

	community, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newCommunityResponse(community))
}

func (h *CommunitiesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.Env)
	if !ok {
		return
	}

	var body updateCommunityRequest
	if !decodeJSON(w, r, &body, h.Env) {
		return
	}
	if !validateBody(w, r, body, h.Env) {
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	community, err := h.Service.Update(r.Context(), actor, id, communities.UpdateParams{
		Name:        body.Name,
		Description: body.Description,
		IsPublic:    body.IsPublic,
	})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newCommunityResponse(community))
}

func (h *CommunitiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *CommunitiesHandler) Purge(w http.ResponseWriter, r *http.Request) {
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
