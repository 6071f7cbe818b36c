package book

import (
	"context"

	"github.com/google/uuid"

	"libraryapi/internal/crud"
	"libraryapi/internal/entity"
	"libraryapi/internal/query"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (entity.Book, error)
	GetMany(ctx context.Context, ids []uuid.UUID) ([]entity.Book, error)
	List(ctx context.Context, plan *query.Plan[entity.Book]) ([]entity.Book, error)
	Insert(ctx context.Context, b *entity.Book) error
	Replace(ctx context.Context, b *entity.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByAuthors returns every book written by one of authorIDs, in id order.
	ListByAuthors(ctx context.Context, authorIDs []uuid.UUID) ([]entity.Book, error)
}

var _ crud.Repository[entity.Book] = Repository(nil)

// AuthorLookup is the author side of the book -> author reference.
type AuthorLookup interface {
	Get(ctx context.Context, id uuid.UUID) (entity.Author, error)
}
