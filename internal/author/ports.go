package author

import (
	"context"

	"github.com/google/uuid"

	"libraryapi/internal/crud"
	"libraryapi/internal/entity"
)

// Repository defines the contract for author data storage.
type Repository interface {
	crud.Repository[entity.Author]
}

// BookReferences reports the books written by the given authors. Deleting an
// author with books is refused.
type BookReferences interface {
	ListByAuthors(ctx context.Context, authorIDs []uuid.UUID) ([]entity.Book, error)
}
