// Package memory is a process-local store for any entity type with a query.Schema.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"libraryapi/internal/apperr"
	"libraryapi/internal/query"
)

// Check vets a write before it is committed. A non-nil error aborts the write
// and is reported as a persistence error.
type Check[E any] func(ctx context.Context, e *E) error

// DeleteCheck vets a delete before it is committed.
type DeleteCheck func(ctx context.Context, id uuid.UUID) error

type Store[E any] struct {
	schema *query.Schema[E]
	clone  func(E) E

	writeChecks  []Check[E]
	deleteChecks []DeleteCheck

	mutex sync.RWMutex
	rows  map[uuid.UUID]E
}

type Option[E any] func(*Store[E])

// WithClone sets how rows are copied in and out of the store. The default is
// a shallow copy; entities holding slices or pointers should drop or deep copy them.
func WithClone[E any](clone func(E) E) Option[E] {
	return func(s *Store[E]) { s.clone = clone }
}

// WithWriteCheck adds a constraint evaluated on Insert and Replace.
func WithWriteCheck[E any](c Check[E]) Option[E] {
	return func(s *Store[E]) { s.writeChecks = append(s.writeChecks, c) }
}

// WithDeleteCheck adds a constraint evaluated on Delete.
func WithDeleteCheck[E any](c DeleteCheck) Option[E] {
	return func(s *Store[E]) { s.deleteChecks = append(s.deleteChecks, c) }
}

func NewStore[E any](schema *query.Schema[E], opts ...Option[E]) *Store[E] {
	s := &Store[E]{
		schema: schema,
		clone:  func(e E) E { return e },
		rows:   make(map[uuid.UUID]E),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store[E]) Get(ctx context.Context, id uuid.UUID) (E, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	e, ok := s.rows[id]
	if !ok {
		var zero E
		return zero, apperr.ErrNotFound
	}
	return s.clone(e), nil
}

// GetMany returns the rows found for ids, in identifier order. Missing ids are skipped.
func (s *Store[E]) GetMany(ctx context.Context, ids []uuid.UUID) ([]E, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]E, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if e, ok := s.rows[id]; ok {
			out = append(out, s.clone(e))
		}
	}
	s.sortByID(out)
	return out, nil
}

func (s *Store[E]) List(ctx context.Context, plan *query.Plan[E]) ([]E, error) {
	return plan.Apply(s.snapshot(nil)), nil
}

// Filter returns every row accepted by keep, in identifier order.
func (s *Store[E]) Filter(ctx context.Context, keep func(*E) bool) ([]E, error) {
	return s.snapshot(keep), nil
}

func (s *Store[E]) snapshot(keep func(*E) bool) []E {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]E, 0, len(s.rows))
	for _, e := range s.rows {
		if keep != nil && !keep(&e) {
			continue
		}
		out = append(out, s.clone(e))
	}
	s.sortByID(out)
	return out
}

func (s *Store[E]) sortByID(items []E) {
	slices.SortFunc(items, func(a, b E) int {
		return query.KindUUID.Compare(s.schema.IDOf(&a), s.schema.IDOf(&b))
	})
}

// Checks run before the lock is taken so they may read other stores freely.
func (s *Store[E]) checkWrite(ctx context.Context, e *E) error {
	for _, c := range s.writeChecks {
		if err := c(ctx, e); err != nil {
			return apperr.PersistenceErr(err, "%s rejected", s.schema.Name())
		}
	}
	return nil
}

func (s *Store[E]) Insert(ctx context.Context, e *E) error {
	if err := s.checkWrite(ctx, e); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := s.schema.IDOf(e)
	if _, exists := s.rows[id]; exists {
		return apperr.PersistenceErr(nil, "%s with id %s already exists", s.schema.Name(), id)
	}
	s.rows[id] = s.clone(*e)
	return nil
}

func (s *Store[E]) Replace(ctx context.Context, e *E) error {
	if err := s.checkWrite(ctx, e); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := s.schema.IDOf(e)
	if _, exists := s.rows[id]; !exists {
		return apperr.ErrNotFound
	}
	s.rows[id] = s.clone(*e)
	return nil
}

func (s *Store[E]) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	for _, c := range s.deleteChecks {
		if err := c(ctx, id); err != nil {
			return apperr.PersistenceErr(err, "%s %s cannot be deleted", s.schema.Name(), id)
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.rows[id]; !exists {
		return apperr.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

// Len reports the number of stored rows.
func (s *Store[E]) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.rows)
}
