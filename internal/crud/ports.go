package crud

import (
	"context"
	"time"

	"github.com/google/uuid"

	"libraryapi/internal/query"
)

// Repository is the persistence contract shared by every entity type.
// Lookups of an absent identifier return apperr.ErrNotFound; rejected writes
// return an apperr Persistence error.
type Repository[E any] interface {
	Get(ctx context.Context, id uuid.UUID) (E, error)
	GetMany(ctx context.Context, ids []uuid.UUID) ([]E, error)
	List(ctx context.Context, plan *query.Plan[E]) ([]E, error)
	Insert(ctx context.Context, e *E) error
	Replace(ctx context.Context, e *E) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Expander fills the related entities of items in place.
type Expander[E any] interface {
	Expand(ctx context.Context, items []E) error
}

// Stamped entities carry creation and modification times set by the service.
type Stamped interface {
	CreatedTime() time.Time
	SetTimestamps(created, updated time.Time)
}
