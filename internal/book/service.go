package book

import (
	"context"
	"strings"

	"libraryapi/internal/apperr"
	"libraryapi/internal/crud"
	"libraryapi/internal/entity"
	"libraryapi/internal/query"
	"libraryapi/internal/relation"
)

// Service provides book-related business logic on top of the generic CRUD
// service.
type Service struct {
	*crud.Service[entity.Book]
}

// NewService creates a new book service. A nil authors fetcher disables
// author expansion.
func NewService(repo Repository, authors relation.AuthorFetcher, opts ...crud.Option[entity.Book]) *Service {
	if authors != nil {
		opts = append([]crud.Option[entity.Book]{crud.WithExpander[entity.Book](relation.NewBookExpander(authors))}, opts...)
	}
	return &Service{Service: crud.NewService[entity.Book](entity.BookSchema, repo, opts...)}
}

// GetByISBN returns the book with the exact ISBN, author included.
func (s *Service) GetByISBN(ctx context.Context, isbn string) (entity.Book, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return entity.Book{}, apperr.Invalid("isbn is required")
	}
	books, err := s.List(ctx, query.Query{
		Filters:    []query.Criterion{{PropertyName: "isbn", Operator: "Equal", Value: isbn}},
		PageNumber: 1,
		PageSize:   1,
	})
	if err != nil {
		return entity.Book{}, err
	}
	if len(books) == 0 {
		return entity.Book{}, apperr.NotFoundf("ISBN not found")
	}
	return books[0], nil
}
