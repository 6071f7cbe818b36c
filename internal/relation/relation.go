// Package relation fills the one-level relations between books and authors.
// Each Expand call builds its own batched loader, so nothing is cached
// between requests.
package relation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"
	"github.com/pkg/errors"

	"libraryapi/internal/entity"
)

const batchWait = 2 * time.Millisecond

type AuthorFetcher interface {
	GetMany(ctx context.Context, ids []uuid.UUID) ([]entity.Author, error)
}

type BookFetcher interface {
	ListByAuthors(ctx context.Context, authorIDs []uuid.UUID) ([]entity.Book, error)
}

func newLoader(batchFn dataloader.BatchFunc) *dataloader.Loader {
	return dataloader.NewBatchedLoader(batchFn,
		dataloader.WithCache(&dataloader.NoCache{}),
		dataloader.WithWait(batchWait),
	)
}

func parseKeys(keys dataloader.Keys) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(keys))
	for i, k := range keys {
		id, err := uuid.Parse(k.String())
		if err != nil {
			return nil, errors.Wrapf(err, "invalid key %q", k.String())
		}
		ids[i] = id
	}
	return ids, nil
}

func failAll(n int, err error) []*dataloader.Result {
	results := make([]*dataloader.Result, n)
	for i := range results {
		results[i] = &dataloader.Result{Error: err}
	}
	return results
}

func uniqueKeys(ids []uuid.UUID) dataloader.Keys {
	seen := make(map[uuid.UUID]bool, len(ids))
	keys := make(dataloader.Keys, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, dataloader.StringKey(id.String()))
	}
	return keys
}

func loadMany(ctx context.Context, loader *dataloader.Loader, keys dataloader.Keys) (map[string]any, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	data, errs := loader.LoadMany(ctx, keys)()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	out := make(map[string]any, len(keys))
	for i, k := range keys {
		out[k.String()] = data[i]
	}
	return out, nil
}

// BookExpander sets Book.Author.
type BookExpander struct {
	authors AuthorFetcher
}

func NewBookExpander(authors AuthorFetcher) *BookExpander {
	return &BookExpander{authors: authors}
}

func (x *BookExpander) batch(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
	ids, err := parseKeys(keys)
	if err != nil {
		return failAll(len(keys), err)
	}
	authors, err := x.authors.GetMany(ctx, ids)
	if err != nil {
		return failAll(len(keys), errors.Wrap(err, "load authors"))
	}

	byID := make(map[uuid.UUID]entity.Author, len(authors))
	for _, a := range authors {
		byID[a.ID] = a
	}
	results := make([]*dataloader.Result, len(keys))
	for i, id := range ids {
		if a, ok := byID[id]; ok {
			a.Books = nil
			results[i] = &dataloader.Result{Data: a}
		} else {
			results[i] = &dataloader.Result{Data: nil}
		}
	}
	return results
}

func (x *BookExpander) Expand(ctx context.Context, books []entity.Book) error {
	ids := make([]uuid.UUID, len(books))
	for i := range books {
		ids[i] = books[i].AuthorID
	}
	found, err := loadMany(ctx, newLoader(x.batch), uniqueKeys(ids))
	if err != nil {
		return err
	}
	for i := range books {
		books[i].Author = nil
		if a, ok := found[books[i].AuthorID.String()].(entity.Author); ok {
			books[i].Author = &a
		}
	}
	return nil
}

// AuthorExpander sets Author.Books.
type AuthorExpander struct {
	books BookFetcher
}

func NewAuthorExpander(books BookFetcher) *AuthorExpander {
	return &AuthorExpander{books: books}
}

func (x *AuthorExpander) batch(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
	ids, err := parseKeys(keys)
	if err != nil {
		return failAll(len(keys), err)
	}
	books, err := x.books.ListByAuthors(ctx, ids)
	if err != nil {
		return failAll(len(keys), errors.Wrap(err, "load books"))
	}

	byAuthor := make(map[uuid.UUID][]entity.Book, len(ids))
	for _, b := range books {
		b.Author = nil
		byAuthor[b.AuthorID] = append(byAuthor[b.AuthorID], b)
	}
	results := make([]*dataloader.Result, len(keys))
	for i, id := range ids {
		list := byAuthor[id]
		if list == nil {
			list = []entity.Book{}
		}
		results[i] = &dataloader.Result{Data: list}
	}
	return results
}

func (x *AuthorExpander) Expand(ctx context.Context, authors []entity.Author) error {
	ids := make([]uuid.UUID, len(authors))
	for i := range authors {
		ids[i] = authors[i].ID
	}
	found, err := loadMany(ctx, newLoader(x.batch), uniqueKeys(ids))
	if err != nil {
		return err
	}
	for i := range authors {
		books, _ := found[authors[i].ID.String()].([]entity.Book)
		if books == nil {
			books = []entity.Book{}
		}
		authors[i].Books = books
	}
	return nil
}
