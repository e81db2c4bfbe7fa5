package storage

import (
	"context"

	"github.com/nitty-hq/server/internal/domain/communities"
	"github.com/nitty-hq/server/internal/domain/events"
	"github.com/nitty-hq/server/internal/domain/users"
)

// Repository groups data access by domain aggregate.
type Repository interface {
	Users() users.Repository
	Communities() communities.Repository
	Events() events.Repository

	// WithTx runs fn against a repository view bound to a single
	// transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}
