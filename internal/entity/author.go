package entity

import (
	"time"

	"github.com/google/uuid"
)

type Author struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" validate:"required,max=255"`
	Bio         string    `json:"bio" db:"bio"`
	Nationality string    `json:"nationality" db:"nationality" validate:"max=100"`
	BirthDate   time.Time `json:"birthDate" db:"birth_date"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Books is filled by relation expansion. Each book's Author stays nil.
	Books []Book `json:"books,omitempty" db:"-" validate:"-"`
}

func (a *Author) CreatedTime() time.Time { return a.CreatedAt }

func (a *Author) SetTimestamps(created, updated time.Time) {
	a.CreatedAt = created
	a.UpdatedAt = updated
}
