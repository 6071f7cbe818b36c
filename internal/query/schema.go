package query

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Schema is the registered set of fields of one entity type. It is immutable
// once built and safe for concurrent use.
type Schema[E any] struct {
	name     string
	table    string
	fields   []Field[E]
	byName   map[string]int
	identity int
	search   []int
}

// NewSchema validates and registers the fields of an entity type. Field names
// are matched case-insensitively, so two names differing only in case collide.
func NewSchema[E any](name, table string, fields ...Field[E]) (*Schema[E], error) {
	if name == "" || table == "" {
		return nil, errors.New("schema name and table are required")
	}

	s := &Schema[E]{
		name:     name,
		table:    table,
		fields:   fields,
		byName:   make(map[string]int, len(fields)),
		identity: -1,
	}
	columns := make(map[string]bool, len(fields))

	for i, f := range fields {
		if f.name == "" || f.column == "" {
			return nil, errors.Errorf("%s: field %d has no name or column", name, i)
		}
		if f.get == nil {
			return nil, errors.Errorf("%s: field %s has no getter", name, f.name)
		}
		key := strings.ToLower(f.name)
		if _, dup := s.byName[key]; dup {
			return nil, errors.Errorf("%s: duplicate field %s", name, f.name)
		}
		if columns[f.column] {
			return nil, errors.Errorf("%s: duplicate column %s", name, f.column)
		}
		if f.searchable && f.kind != KindString {
			return nil, errors.Errorf("%s: field %s is searchable but not a string", name, f.name)
		}
		if f.identity {
			if s.identity >= 0 {
				return nil, errors.Errorf("%s: more than one identity field", name)
			}
			if f.set == nil {
				return nil, errors.Errorf("%s: identity field %s needs a setter", name, f.name)
			}
			s.identity = i
		}
		if f.searchable {
			s.search = append(s.search, i)
		}
		s.byName[key] = i
		columns[f.column] = true
	}

	if s.identity < 0 {
		return nil, errors.Errorf("%s: no identity field", name)
	}
	return s, nil
}

// MustSchema is NewSchema for package-level registration.
func MustSchema[E any](name, table string, fields ...Field[E]) *Schema[E] {
	s, err := NewSchema(name, table, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema[E]) Name() string { return s.name }

func (s *Schema[E]) Table() string { return s.table }

// Fields returns the registered fields in declaration order.
func (s *Schema[E]) Fields() []Field[E] {
	out := make([]Field[E], len(s.fields))
	copy(out, s.fields)
	return out
}

// Lookup finds a field by name, ignoring case.
func (s *Schema[E]) Lookup(name string) (Field[E], bool) {
	i, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Field[E]{}, false
	}
	return s.fields[i], true
}

// Identity returns the identity field.
func (s *Schema[E]) Identity() Field[E] {
	return s.fields[s.identity]
}

// IDOf returns the identifier of e.
func (s *Schema[E]) IDOf(e *E) uuid.UUID {
	return s.fields[s.identity].get(e).(uuid.UUID)
}

// SetID assigns the identifier of e.
func (s *Schema[E]) SetID(e *E, id uuid.UUID) {
	s.fields[s.identity].set(e, id)
}

// Searchable returns the free-text search targets.
func (s *Schema[E]) Searchable() []Field[E] {
	out := make([]Field[E], 0, len(s.search))
	for _, i := range s.search {
		out = append(out, s.fields[i])
	}
	return out
}
