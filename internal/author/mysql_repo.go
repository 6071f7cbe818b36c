package author

import (
	"time"

	"github.com/jmoiron/sqlx"

	"libraryapi/internal/entity"
	"libraryapi/internal/store/sqlstore"
)

// NewMySQLRepo returns the generic sqlx repository bound to the authors table.
// The foreign key on books refuses deletes of referenced authors.
func NewMySQLRepo(db *sqlx.DB, timeout time.Duration) *sqlstore.Repository[entity.Author] {
	return sqlstore.NewRepository(db, entity.AuthorSchema, timeout)
}
