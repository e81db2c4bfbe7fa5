package handlers

import (
	"net/http"
	"time"

	"github.com/nitty-hq/server/internal/auth"
	"github.com/nitty-hq/server/internal/domain/users"
)

type AuthHandler struct {
	Users  *users.Service
	Tokens *auth.TokenManager
	Env    string
}

func NewAuthHandler(userService *users.Service, tokens *auth.TokenManager, env string) *AuthHandler {
	return &AuthHandler{Users: userService, Tokens: tokens, Env: env}
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"max=255"`
}

type userResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name,omitempty"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

func newUserResponse(user *users.User) userResponse {
	return userResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		FullName:    user.FullName,
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
		CreatedAt:   user.CreatedAt,
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var body signupRequest
	if !decodeJSON(w, r, &body, h.Env) {
		return
	}
	if !validateBody(w, r, body, h.Env) {
		return
	}

	user, err := h.Users.Register(r.Context(), users.RegisterParams{
		Email:    body.Email,
		Password: body.Password,
		FullName: body.FullName,
	})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if !decodeJSON(w, r, &body, h.Env) {
		return
	}
	if !validateBody(w, r, body, h.Env) {
		return
	}

	user, err := h.Users.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	token, err := h.Tokens.Issue(user.ID.String(), 0)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}
