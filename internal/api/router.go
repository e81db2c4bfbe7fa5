package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/nitty-hq/server/internal/api/handlers"
	"github.com/nitty-hq/server/internal/api/middleware"
	"github.com/nitty-hq/server/internal/auth"
	"github.com/nitty-hq/server/internal/config"
	"github.com/nitty-hq/server/internal/domain/communities"
	"github.com/nitty-hq/server/internal/domain/events"
	"github.com/nitty-hq/server/internal/domain/users"
	"github.com/nitty-hq/server/internal/metrics"
)

// Deps carries everything the router needs; construction of the pool and
// services happens in the serve command so tests can wire fakes.
type Deps struct {
	Config      config.Config
	Logger      zerolog.Logger
	Pool        *pgxpool.Pool
	Users       *users.Service
	Communities *communities.Service
	Events      *events.Service
	Tokens      *auth.TokenManager
	Version     string
	GitCommit   string
}

func NewRouter(deps Deps) http.Handler {
	env := deps.Config.Environment

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens, env)
	communitiesHandler := handlers.NewCommunitiesHandler(deps.Communities, env)
	eventsHandler := handlers.NewEventsHandler(deps.Events, env)
	healthChecker := handlers.NewHealthChecker(deps.Pool, deps.Version, deps.GitCommit)

	requireAuth := middleware.Authenticate(deps.Tokens, deps.Users, env)

	mux := http.NewServeMux()

	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(deps.Pool))
	mux.Handle("/health", healthChecker.Health())
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/version", VersionHandler(deps.Version, deps.GitCommit))

	mux.Handle("/api/v1/auth/signup", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Signup),
	}))
	mux.Handle("/api/v1/auth/login", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Login),
	}))

	mux.Handle("/api/v1/communities", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(communitiesHandler.List),
		http.MethodPost: requireAuth(http.HandlerFunc(communitiesHandler.Create)),
	}))
	mux.Handle("/api/v1/communities/search", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(communitiesHandler.Search),
	}))
	mux.Handle("/api/v1/communities/my", methodMux(map[string]http.Handler{
		http.MethodGet: requireAuth(http.HandlerFunc(communitiesHandler.My)),
	}))
	mux.Handle("/api/v1/communities/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(communitiesHandler.Get),
		http.MethodPut:    requireAuth(http.HandlerFunc(communitiesHandler.Update)),
		http.MethodDelete: requireAuth(http.HandlerFunc(communitiesHandler.Delete)),
	}))
	mux.Handle("/api/v1/communities/{id}/permanent", methodMux(map[string]http.Handler{
		http.MethodDelete: requireAuth(http.HandlerFunc(communitiesHandler.Purge)),
	}))

	mux.Handle("/api/v1/events", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.List),
		http.MethodPost: requireAuth(http.HandlerFunc(eventsHandler.Create)),
	}))
	mux.Handle("/api/v1/events/search", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Search),
	}))
	mux.Handle("/api/v1/events/upcoming", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Upcoming),
	}))
	mux.Handle("/api/v1/events/my", methodMux(map[string]http.Handler{
		http.MethodGet: requireAuth(http.HandlerFunc(eventsHandler.My)),
	}))
	mux.Handle("/api/v1/events/date-range", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.ByDateRange),
	}))
	// Method-qualified patterns: the methodless forms of these two both match
	// paths like /api/v1/events/community/permanent and ServeMux rejects the
	// ambiguity at registration time.
	mux.Handle("GET /api/v1/events/community/{id}", http.HandlerFunc(eventsHandler.ByCommunity))
	mux.Handle("/api/v1/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(eventsHandler.Get),
		http.MethodPut:    requireAuth(http.HandlerFunc(eventsHandler.Update)),
		http.MethodDelete: requireAuth(http.HandlerFunc(eventsHandler.Delete)),
	}))
	mux.Handle("DELETE /api/v1/events/{id}/permanent", requireAuth(http.HandlerFunc(eventsHandler.Purge)))

	var handler http.Handler = mux
	handler = middleware.RequestSize(middleware.DefaultMaxBodySize)(handler)
	handler = middleware.CORS(deps.Config.CORS, deps.Logger)(handler)
	handler = middleware.SecurityHeaders(deps.Config.Server.RequireHTTPS)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(deps.Logger)(handler)
	handler = middleware.CorrelationID(deps.Logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
