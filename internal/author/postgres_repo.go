package author

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"libraryapi/internal/apperr"
	"libraryapi/internal/entity"
	"libraryapi/internal/platform/database"
	"libraryapi/internal/query"
)

const authorColumns = `a.id, a.name, a.bio, a.nationality, a.birth_date, a.active, a.created_at, a.updated_at`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func scanAuthor(row pgx.Row) (entity.Author, error) {
	var a entity.Author
	err := row.Scan(&a.ID, &a.Name, &a.Bio, &a.Nationality, &a.BirthDate, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	a.BirthDate = a.BirthDate.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, err
}

func (r *PostgresRepo) queryAuthors(ctx context.Context, sql string, args ...any) ([]entity.Author, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Author{}
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id uuid.UUID) (entity.Author, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	a, err := scanAuthor(r.db.QueryRow(timeoutCtx, "SELECT "+authorColumns+" FROM authors a WHERE a.id = $1", id))
	if err != nil {
		return entity.Author{}, database.PostgresError(err, "get author %s", id)
	}
	return a, nil
}

func (r *PostgresRepo) GetMany(ctx context.Context, ids []uuid.UUID) ([]entity.Author, error) {
	if len(ids) == 0 {
		return []entity.Author{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	authors, err := r.queryAuthors(ctx, "SELECT "+authorColumns+" FROM authors a WHERE a.id = ANY($1::uuid[]) ORDER BY a.id", keys)
	return authors, database.PostgresError(err, "get authors")
}

func (r *PostgresRepo) List(ctx context.Context, plan *query.Plan[entity.Author]) ([]entity.Author, error) {
	sql, args := plan.SQL(query.Postgres, "a.").Select(authorColumns, "authors a")
	authors, err := r.queryAuthors(ctx, sql, args...)
	return authors, database.PostgresError(err, "list authors")
}

func (r *PostgresRepo) Insert(ctx context.Context, a *entity.Author) error {
	const sql = `
		INSERT INTO authors (id, name, bio, nationality, birth_date, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, sql, a.ID, a.Name, a.Bio, a.Nationality, a.BirthDate, a.Active, a.CreatedAt, a.UpdatedAt)
	return database.PostgresError(err, "insert author")
}

func (r *PostgresRepo) Replace(ctx context.Context, a *entity.Author) error {
	const sql = `
		UPDATE authors SET
			name = $2, bio = $3, nationality = $4, birth_date = $5, active = $6,
			created_at = $7, updated_at = $8
		WHERE id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, sql, a.ID, a.Name, a.Bio, a.Nationality, a.BirthDate, a.Active, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return database.PostgresError(err, "update author %s", a.ID)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Delete fails with a persistence error while books still reference the author.
func (r *PostgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, "DELETE FROM authors WHERE id = $1", id)
	if err != nil {
		return database.PostgresError(err, "delete author %s", id)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
