package author

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"libraryapi/internal/entity"
	"libraryapi/internal/store/memory"
)

// MemoryRepo keeps authors in process. Once ReferencedBy is called, an author
// with books cannot be deleted.
type MemoryRepo struct {
	*memory.Store[entity.Author]

	mu    sync.RWMutex
	books BookReferences
}

func NewMemoryRepo() *MemoryRepo {
	r := &MemoryRepo{}
	r.Store = memory.NewStore(entity.AuthorSchema,
		memory.WithClone(func(a entity.Author) entity.Author {
			a.Books = nil
			return a
		}),
		memory.WithDeleteCheck[entity.Author](r.unreferenced),
	)
	return r
}

// ReferencedBy registers the book store that points at these authors.
func (r *MemoryRepo) ReferencedBy(books BookReferences) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.books = books
}

func (r *MemoryRepo) unreferenced(ctx context.Context, id uuid.UUID) error {
	r.mu.RLock()
	books := r.books
	r.mu.RUnlock()
	if books == nil {
		return nil
	}

	refs, err := books.ListByAuthors(ctx, []uuid.UUID{id})
	if err != nil {
		return err
	}
	if len(refs) > 0 {
		return errors.Errorf("author %s still has %d book(s)", id, len(refs))
	}
	return nil
}
