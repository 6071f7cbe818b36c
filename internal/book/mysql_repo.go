package book

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"libraryapi/internal/entity"
	"libraryapi/internal/store/sqlstore"
)

// MySQLRepo is the generic sqlx repository plus the author index lookup.
type MySQLRepo struct {
	*sqlstore.Repository[entity.Book]
}

func NewMySQLRepo(db *sqlx.DB, timeout time.Duration) *MySQLRepo {
	return &MySQLRepo{Repository: sqlstore.NewRepository(db, entity.BookSchema, timeout)}
}

func (r *MySQLRepo) ListByAuthors(ctx context.Context, authorIDs []uuid.UUID) ([]entity.Book, error) {
	return r.ListIn(ctx, "author_id", authorIDs)
}
