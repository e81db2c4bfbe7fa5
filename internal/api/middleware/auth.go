package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nitty-hq/server/internal/api/problem"
	"github.com/nitty-hq/server/internal/auth"
	"github.com/nitty-hq/server/internal/domain/authz"
	"github.com/nitty-hq/server/internal/domain/users"
)

const actorKey contextKey = "actor"

// UserSource resolves authenticated user IDs to user records.
type UserSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*users.User, error)
}

// Authenticate validates the Bearer token, loads the user it names, and
// places the resulting actor in the request context. Requests without a
// valid token for an active user are rejected with 401.
func Authenticate(tokens *auth.TokenManager, source UserSource, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				unauthorized(w, r, err, env)
				return
			}

			subject, err := tokens.Validate(raw)
			if err != nil {
				unauthorized(w, r, err, env)
				return
			}

			userID, err := uuid.Parse(subject)
			if err != nil {
				unauthorized(w, r, auth.ErrTokenMalformed, env)
				return
			}

			user, err := source.GetByID(r.Context(), userID)
			if err != nil {
				// A token naming an unknown user is treated the same as an
				// invalid one.
				unauthorized(w, r, err, env)
				return
			}
			if !user.IsActive {
				unauthorized(w, r, users.ErrInactiveUser, env)
				return
			}

			actor := &authz.Actor{ID: user.ID, IsSuperuser: user.IsSuperuser}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error, env string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", err, env)
}

// WithActor returns a context carrying the authenticated actor.
func WithActor(ctx context.Context, actor *authz.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the authenticated actor, or nil for anonymous
// requests.
func ActorFromContext(ctx context.Context) *authz.Actor {
	if actor, ok := ctx.Value(actorKey).(*authz.Actor); ok {
		return actor
	}
	return nil
}
