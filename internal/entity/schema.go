package entity

import (
	"time"

	"github.com/google/uuid"

	"libraryapi/internal/query"
)

// BookSchema lists the queryable and patchable fields of Book.
var BookSchema = query.MustSchema("book", "books",
	query.ID("id", "id",
		func(b *Book) uuid.UUID { return b.ID },
		func(b *Book, v uuid.UUID) { b.ID = v }),
	query.String("isbn", "isbn",
		func(b *Book) string { return b.ISBN },
		func(b *Book, v string) { b.ISBN = v }).Searchable(),
	query.String("title", "title",
		func(b *Book) string { return b.Title },
		func(b *Book, v string) { b.Title = v }).Searchable(),
	query.String("genre", "genre",
		func(b *Book) string { return b.Genre },
		func(b *Book, v string) { b.Genre = v }).Searchable(),
	query.String("publisher", "publisher",
		func(b *Book) string { return b.Publisher },
		func(b *Book, v string) { b.Publisher = v }).Searchable(),
	query.String("description", "description",
		func(b *Book) string { return b.Description },
		func(b *Book, v string) { b.Description = v }).Searchable(),
	query.String("language", "language",
		func(b *Book) string { return b.Language },
		func(b *Book, v string) { b.Language = v }),
	query.Int("publicationYear", "publication_year",
		func(b *Book) int64 { return int64(b.PublicationYear) },
		func(b *Book, v int64) { b.PublicationYear = int(v) }),
	query.Int("pageCount", "page_count",
		func(b *Book) int64 { return int64(b.PageCount) },
		func(b *Book, v int64) { b.PageCount = int(v) }),
	query.Float("price", "price",
		func(b *Book) float64 { return b.Price },
		func(b *Book, v float64) { b.Price = v }),
	query.Bool("available", "available",
		func(b *Book) bool { return b.Available },
		func(b *Book, v bool) { b.Available = v }),
	query.Time("publishedAt", "published_at",
		func(b *Book) time.Time { return b.PublishedAt },
		func(b *Book, v time.Time) { b.PublishedAt = v }),
	query.UUID("authorId", "author_id",
		func(b *Book) uuid.UUID { return b.AuthorID },
		func(b *Book, v uuid.UUID) { b.AuthorID = v }),
	query.Time[Book]("createdAt", "created_at",
		func(b *Book) time.Time { return b.CreatedAt }, nil),
	query.Time[Book]("updatedAt", "updated_at",
		func(b *Book) time.Time { return b.UpdatedAt }, nil),
)

// AuthorSchema lists the queryable and patchable fields of Author.
var AuthorSchema = query.MustSchema("author", "authors",
	query.ID("id", "id",
		func(a *Author) uuid.UUID { return a.ID },
		func(a *Author, v uuid.UUID) { a.ID = v }),
	query.String("name", "name",
		func(a *Author) string { return a.Name },
		func(a *Author, v string) { a.Name = v }).Searchable(),
	query.String("bio", "bio",
		func(a *Author) string { return a.Bio },
		func(a *Author, v string) { a.Bio = v }).Searchable(),
	query.String("nationality", "nationality",
		func(a *Author) string { return a.Nationality },
		func(a *Author, v string) { a.Nationality = v }),
	query.Time("birthDate", "birth_date",
		func(a *Author) time.Time { return a.BirthDate },
		func(a *Author, v time.Time) { a.BirthDate = v }),
	query.Bool("active", "active",
		func(a *Author) bool { return a.Active },
		func(a *Author, v bool) { a.Active = v }),
	query.Time[Author]("createdAt", "created_at",
		func(a *Author) time.Time { return a.CreatedAt }, nil),
	query.Time[Author]("updatedAt", "updated_at",
		func(a *Author) time.Time { return a.UpdatedAt }, nil),
)
