package author

import (
	"libraryapi/internal/crud"
	"libraryapi/internal/entity"
	"libraryapi/internal/relation"
)

// NewService creates the author service. A nil books fetcher disables
// book expansion.
func NewService(repo Repository, books relation.BookFetcher, opts ...crud.Option[entity.Author]) *crud.Service[entity.Author] {
	if books != nil {
		opts = append([]crud.Option[entity.Author]{crud.WithExpander[entity.Author](relation.NewAuthorExpander(books))}, opts...)
	}
	return crud.NewService[entity.Author](entity.AuthorSchema, repo, opts...)
}

// NewHTTPHandler exposes the author service; routes are mounted with Register.
func NewHTTPHandler(service *crud.Service[entity.Author]) *crud.HTTPHandler[entity.Author] {
	return crud.NewHTTPHandler(service)
}
