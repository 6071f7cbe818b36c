package crud

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"libraryapi/internal/apperr"
	"libraryapi/internal/patch"
	"libraryapi/internal/query"
	"libraryapi/internal/validation"
)

// Service implements get, list, create, update, patch and delete for one
// entity type on top of a Repository.
type Service[E any] struct {
	schema   *query.Schema[E]
	repo     Repository[E]
	expander Expander[E]
	validate func(any) error
	now      func() time.Time
}

type Option[E any] func(*Service[E])

// WithExpander sets the relation expander applied to every read.
func WithExpander[E any](x Expander[E]) Option[E] {
	return func(s *Service[E]) { s.expander = x }
}

// WithValidator replaces the struct validator run before every write.
func WithValidator[E any](fn func(any) error) Option[E] {
	return func(s *Service[E]) { s.validate = fn }
}

// WithClock replaces time.Now for timestamps.
func WithClock[E any](now func() time.Time) Option[E] {
	return func(s *Service[E]) { s.now = now }
}

func NewService[E any](schema *query.Schema[E], repo Repository[E], opts ...Option[E]) *Service[E] {
	s := &Service[E]{
		schema:   schema,
		repo:     repo,
		validate: validation.Struct,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service[E]) Schema() *query.Schema[E] { return s.schema }

// timestamp is truncated to what the SQL stores keep.
func (s *Service[E]) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Service[E]) expand(ctx context.Context, items []E) error {
	if s.expander == nil || len(items) == 0 {
		return nil
	}
	return errors.Wrapf(s.expander.Expand(ctx, items), "expand %s", s.schema.Name())
}

// GetByID returns the entity with its relations, or apperr.ErrNotFound.
func (s *Service[E]) GetByID(ctx context.Context, id uuid.UUID) (E, error) {
	var zero E
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	items := []E{e}
	if err := s.expand(ctx, items); err != nil {
		return zero, err
	}
	return items[0], nil
}

// List validates q, then returns one page of matching entities with relations.
func (s *Service[E]) List(ctx context.Context, q query.Query) ([]E, error) {
	plan, err := s.schema.Compile(q)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, plan)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []E{}
	}
	if err := s.expand(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Create stores e and returns its identifier. A zero identifier is replaced
// with a fresh UUID.
func (s *Service[E]) Create(ctx context.Context, e *E) (uuid.UUID, error) {
	id := s.schema.IDOf(e)
	if id == uuid.Nil {
		id = uuid.New()
		s.schema.SetID(e, id)
	}
	if st, ok := any(e).(Stamped); ok {
		now := s.timestamp()
		st.SetTimestamps(now, now)
	}
	if err := s.validate(e); err != nil {
		return uuid.Nil, err
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		return uuid.Nil, err
	}
	log.Printf("crud create entity=%s id=%s", s.schema.Name(), id)
	return id, nil
}

// Update replaces every writable field of the entity identified by id.
func (s *Service[E]) Update(ctx context.Context, id uuid.UUID, e *E) error {
	switch current := s.schema.IDOf(e); current {
	case uuid.Nil:
		s.schema.SetID(e, id)
	case id:
	default:
		return apperr.Invalid("id mismatch: path %s, body %s", id, current)
	}
	if err := s.validate(e); err != nil {
		return err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if st, ok := any(e).(Stamped); ok {
		st.SetTimestamps(any(&existing).(Stamped).CreatedTime(), s.timestamp())
	}
	if err := s.repo.Replace(ctx, e); err != nil {
		return err
	}
	log.Printf("crud update entity=%s id=%s", s.schema.Name(), id)
	return nil
}

// Patch applies doc to the stored entity as a single unit.
func (s *Service[E]) Patch(ctx context.Context, id uuid.UUID, doc patch.Document) error {
	if err := patch.Validate(s.schema, doc); err != nil {
		return err
	}

	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := patch.Apply(s.schema, &e, doc); err != nil {
		return err
	}
	if err := s.validate(&e); err != nil {
		return err
	}
	if st, ok := any(&e).(Stamped); ok {
		st.SetTimestamps(st.CreatedTime(), s.timestamp())
	}
	if err := s.repo.Replace(ctx, &e); err != nil {
		return err
	}
	log.Printf("crud patch entity=%s id=%s ops=%d", s.schema.Name(), id, len(doc))
	return nil
}

func (s *Service[E]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("crud delete entity=%s id=%s", s.schema.Name(), id)
	return nil
}
