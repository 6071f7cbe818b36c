// Package sqlstore is a MySQL repository generic over any entity with a
// query.Schema. Columns come from the schema; rows are scanned by sqlx through
// the entity's db tags.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"libraryapi/internal/apperr"
	"libraryapi/internal/query"
)

// MySQL error numbers reported as persistence errors.
const (
	errDuplicateEntry   = 1062
	errRowIsReferenced  = 1451
	errNoReferencedRow  = 1452
	errRowIsReferenced2 = 1217
	errNoReferencedRow2 = 1216
	errCheckConstraint  = 3819
)

type Repository[E any] struct {
	db      *sqlx.DB
	schema  *query.Schema[E]
	timeout time.Duration

	selectList string
	columns    []string
	idColumn   string
}

func NewRepository[E any](db *sqlx.DB, schema *query.Schema[E], timeout time.Duration) *Repository[E] {
	r := &Repository[E]{
		db:       db,
		schema:   schema,
		timeout:  timeout,
		idColumn: schema.Identity().Column(),
	}

	var selects []string
	for _, f := range schema.Fields() {
		r.columns = append(r.columns, f.Column())
		if f.Kind() == query.KindTime {
			selects = append(selects, fmt.Sprintf("%s AS %s", query.TimeColumn(f.Column()), f.Column()))
		} else {
			selects = append(selects, f.Column())
		}
	}
	r.selectList = strings.Join(selects, ", ")
	return r
}

func (r *Repository[E]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// values returns the column values of e in schema order. Zero times are
// stored as NULL because MySQL rejects the zero datetime.
func (r *Repository[E]) values(e *E) []any {
	fields := r.schema.Fields()
	out := make([]any, len(fields))
	for i, f := range fields {
		v := f.Get(e)
		if t, ok := v.(time.Time); ok && t.IsZero() {
			v = nil
		}
		out[i] = v
	}
	return out
}

func (r *Repository[E]) translate(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case errDuplicateEntry, errRowIsReferenced, errNoReferencedRow,
			errRowIsReferenced2, errNoReferencedRow2, errCheckConstraint:
			return apperr.PersistenceErr(err, format, args...)
		}
	}
	return errors.Wrapf(err, format, args...)
}

func (r *Repository[E]) Get(ctx context.Context, id uuid.UUID) (E, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var e E
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", r.selectList, r.schema.Table(), r.idColumn)
	if err := r.db.GetContext(ctx, &e, q, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, apperr.ErrNotFound
		}
		return e, r.translate(err, "get %s %s", r.schema.Name(), id)
	}
	return e, nil
}

// GetMany returns the rows found for ids, in identifier order.
func (r *Repository[E]) GetMany(ctx context.Context, ids []uuid.UUID) ([]E, error) {
	return r.ListIn(ctx, r.idColumn, ids)
}

// ListIn returns every row whose column matches one of ids, in identifier order.
func (r *Repository[E]) ListIn(ctx context.Context, column string, ids []uuid.UUID) ([]E, error) {
	if len(ids) == 0 {
		return []E{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	q, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (?) ORDER BY %s ASC",
		r.selectList, r.schema.Table(), column, r.idColumn), keys)
	if err != nil {
		return nil, errors.Wrap(err, "expand IN clause")
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	out := []E{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...); err != nil {
		return nil, r.translate(err, "list %s by %s", r.schema.Name(), column)
	}
	return out, nil
}

func (r *Repository[E]) List(ctx context.Context, plan *query.Plan[E]) ([]E, error) {
	q, args := plan.SQL(query.MySQL, "").Select(r.selectList, r.schema.Table())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	out := []E{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, r.translate(err, "list %s", r.schema.Name())
	}
	return out, nil
}

func (r *Repository[E]) Insert(ctx context.Context, e *E) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(r.columns)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", r.schema.Table(), strings.Join(r.columns, ", "), placeholders)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, q, r.values(e)...)
	return r.translate(err, "insert %s", r.schema.Name())
}

func (r *Repository[E]) Replace(ctx context.Context, e *E) error {
	var (
		sets []string
		args []any
	)
	values := r.values(e)
	for i, col := range r.columns {
		if col == r.idColumn {
			continue
		}
		sets = append(sets, col+" = ?")
		args = append(args, values[i])
	}
	id := r.schema.IDOf(e)
	args = append(args, id.String())
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", r.schema.Table(), strings.Join(sets, ", "), r.idColumn)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return r.translate(err, "update %s %s", r.schema.Name(), id)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	// MySQL reports zero affected rows when nothing changed, so check existence.
	var one int
	err = r.db.GetContext(ctx, &one, fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ?", r.schema.Table(), r.idColumn), id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	return r.translate(err, "update %s %s", r.schema.Name(), id)
}

func (r *Repository[E]) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", r.schema.Table(), r.idColumn), id.String())
	if err != nil {
		return r.translate(err, "delete %s %s", r.schema.Name(), id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
