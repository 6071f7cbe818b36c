package book

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"libraryapi/internal/apperr"
	"libraryapi/internal/entity"
	"libraryapi/internal/store/memory"
)

// MemoryRepo keeps books in process. It enforces the same constraints as the
// SQL schema: the author must exist and the ISBN must be unique.
type MemoryRepo struct {
	*memory.Store[entity.Book]
	authors AuthorLookup
}

func NewMemoryRepo(authors AuthorLookup) *MemoryRepo {
	r := &MemoryRepo{authors: authors}
	r.Store = memory.NewStore(entity.BookSchema,
		memory.WithClone(func(b entity.Book) entity.Book {
			b.Author = nil
			return b
		}),
		memory.WithWriteCheck[entity.Book](r.authorExists),
		memory.WithWriteCheck[entity.Book](r.isbnUnique),
	)
	return r
}

func (r *MemoryRepo) authorExists(ctx context.Context, b *entity.Book) error {
	if _, err := r.authors.Get(ctx, b.AuthorID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return errors.Errorf("author %s does not exist", b.AuthorID)
		}
		return err
	}
	return nil
}

func (r *MemoryRepo) isbnUnique(ctx context.Context, b *entity.Book) error {
	clash, err := r.Filter(ctx, func(other *entity.Book) bool {
		return other.ISBN == b.ISBN && other.ID != b.ID
	})
	if err != nil {
		return err
	}
	if len(clash) > 0 {
		return errors.Errorf("isbn %s already used by book %s", b.ISBN, clash[0].ID)
	}
	return nil
}

func (r *MemoryRepo) ListByAuthors(ctx context.Context, authorIDs []uuid.UUID) ([]entity.Book, error) {
	return r.Filter(ctx, func(b *entity.Book) bool {
		return slices.Contains(authorIDs, b.AuthorID)
	})
}
