package entity

import (
	"time"

	"github.com/google/uuid"
)

type Book struct {
	ID              uuid.UUID `json:"id" db:"id"`
	ISBN            string    `json:"isbn" db:"isbn" validate:"required,isbn"`
	Title           string    `json:"title" db:"title" validate:"required,max=255"`
	Genre           string    `json:"genre" db:"genre" validate:"max=100"`
	Publisher       string    `json:"publisher" db:"publisher" validate:"max=255"`
	Description     string    `json:"description" db:"description"`
	Language        string    `json:"language" db:"language" validate:"max=32"`
	PublicationYear int       `json:"publicationYear" db:"publication_year"`
	PageCount       int       `json:"pageCount" db:"page_count" validate:"gte=0"`
	Price           float64   `json:"price" db:"price" validate:"gte=0"`
	Available       bool      `json:"available" db:"available"`
	PublishedAt     time.Time `json:"publishedAt" db:"published_at"`
	AuthorID        uuid.UUID `json:"authorId" db:"author_id" validate:"required"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`

	// Author is filled by relation expansion and never persisted.
	Author *Author `json:"author,omitempty" db:"-" validate:"-"`
}

func (b *Book) CreatedTime() time.Time { return b.CreatedAt }

func (b *Book) SetTimestamps(created, updated time.Time) {
	b.CreatedAt = created
	b.UpdatedAt = updated
}
