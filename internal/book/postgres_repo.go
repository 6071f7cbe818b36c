package book

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

const bookColumns = `b.id, b.isbn, b.title, b.genre, b.publisher, b.description, b.language,
	b.publication_year, b.page_count, b.price, b.available, b.published_at, b.author_id,
	b.created_at, b.updated_at`

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

func scanBook(row pgx.Row) (entity.Book, error) {
	var b entity.Book
	err := row.Scan(
		&b.ID, &b.ISBN, &b.Title, &b.Genre, &b.Publisher, &b.Description, &b.Language,
		&b.PublicationYear, &b.PageCount, &b.Price, &b.Available, &b.PublishedAt, &b.AuthorID,
		&b.CreatedAt, &b.UpdatedAt,
	)
	// pgx returns timestamptz in the local zone.
	b.PublishedAt = b.PublishedAt.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, err
}

func (r *PostgresRepo) queryBooks(ctx context.Context, sql string, args ...any) ([]entity.Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id uuid.UUID) (entity.Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, "SELECT "+bookColumns+" FROM books b WHERE b.id = $1", id))
	if err != nil {
		return entity.Book{}, database.PostgresError(err, "get book %s", id)
	}
	return b, nil
}

func (r *PostgresRepo) GetMany(ctx context.Context, ids []uuid.UUID) ([]entity.Book, error) {
	if len(ids) == 0 {
		return []entity.Book{}, nil
	}
	books, err := r.queryBooks(ctx, "SELECT "+bookColumns+" FROM books b WHERE b.id = ANY($1::uuid[]) ORDER BY b.id", uuidStrings(ids))
	return books, database.PostgresError(err, "get books")
}

func (r *PostgresRepo) ListByAuthors(ctx context.Context, authorIDs []uuid.UUID) ([]entity.Book, error) {
	if len(authorIDs) == 0 {
		return []entity.Book{}, nil
	}
	books, err := r.queryBooks(ctx, "SELECT "+bookColumns+" FROM books b WHERE b.author_id = ANY($1::uuid[]) ORDER BY b.id", uuidStrings(authorIDs))
	return books, database.PostgresError(err, "list books by author")
}

func (r *PostgresRepo) List(ctx context.Context, plan *query.Plan[entity.Book]) ([]entity.Book, error) {
	sql, args := plan.SQL(query.Postgres, "b.").Select(bookColumns, "books b")
	books, err := r.queryBooks(ctx, sql, args...)
	return books, database.PostgresError(err, "list books")
}

func (r *PostgresRepo) Insert(ctx context.Context, b *entity.Book) error {
	const sql = `
		INSERT INTO books (id, isbn, title, genre, publisher, description, language,
		                   publication_year, page_count, price, available, published_at, author_id,
		                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, sql,
		b.ID, b.ISBN, b.Title, b.Genre, b.Publisher, b.Description, b.Language,
		b.PublicationYear, b.PageCount, b.Price, b.Available, b.PublishedAt, b.AuthorID,
		b.CreatedAt, b.UpdatedAt,
	)
	return database.PostgresError(err, "insert book")
}

func (r *PostgresRepo) Replace(ctx context.Context, b *entity.Book) error {
	const sql = `
		UPDATE books SET
			isbn = $2, title = $3, genre = $4, publisher = $5, description = $6, language = $7,
			publication_year = $8, page_count = $9, price = $10, available = $11,
			published_at = $12, author_id = $13, created_at = $14, updated_at = $15
		WHERE id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, sql,
		b.ID, b.ISBN, b.Title, b.Genre, b.Publisher, b.Description, b.Language,
		b.PublicationYear, b.PageCount, b.Price, b.Available, b.PublishedAt, b.AuthorID,
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return database.PostgresError(err, "update book %s", b.ID)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, "DELETE FROM books WHERE id = $1", id)
	if err != nil {
		return database.PostgresError(err, "delete book %s", id)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
