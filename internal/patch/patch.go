// Package patch applies an explicit list of field operations to an entity
// described by a query.Schema.
package patch

import (
	"encoding/json"
	"strings"

	"libraryapi/internal/apperr"
	"libraryapi/internal/query"
)

// Op names one operation.
type Op string

const (
	Add     Op = "add"
	Set     Op = "set"
	Remove  Op = "remove"
	Replace Op = "replace"
	Move    Op = "move"
	Copy    Op = "copy"
	Test    Op = "test"
)

// Operation is one step of a Document. From is only read by move and copy.
type Operation struct {
	Op    Op              `json:"op"`
	Path  string          `json:"path"`
	From  string          `json:"from,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Document is an ordered list of operations applied as one unit.
type Document []Operation

// Parse decodes a JSON array of operations. Op names are normalised to lower case.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperr.Invalid("patch must be a JSON array of {op, path, value}")
	}
	for i := range doc {
		doc[i].Op = Op(strings.ToLower(strings.TrimSpace(string(doc[i].Op))))
	}
	return doc, nil
}

// Validate checks every operation against the schema without touching an entity.
func Validate[E any](schema *query.Schema[E], doc Document) error {
	if len(doc) == 0 {
		return apperr.Invalid("patch document is empty")
	}
	for i, op := range doc {
		if _, err := resolve(schema, op, i); err != nil {
			return err
		}
	}
	return nil
}

type step[E any] struct {
	op    Op
	path  query.Field[E]
	from  query.Field[E]
	value any
}

func resolve[E any](schema *query.Schema[E], op Operation, i int) (step[E], error) {
	s := step[E]{op: op.Op}

	path, err := lookup(schema, op.Path, i, "path")
	if err != nil {
		return s, err
	}
	s.path = path

	switch op.Op {
	case Add, Set, Replace, Test:
		if op.Op != Test && !path.Writable() {
			return s, apperr.Invalid("patch[%d]: field %s is read-only", i, path.Name())
		}
		if len(op.Value) == 0 {
			return s, apperr.Invalid("patch[%d]: %s requires a value", i, op.Op)
		}
		v, err := path.Kind().Decode(op.Value)
		if err != nil {
			return s, apperr.Invalid("patch[%d]: invalid value for %s field %s", i, path.Kind(), path.Name())
		}
		s.value = v
	case Remove:
		if !path.Writable() {
			return s, apperr.Invalid("patch[%d]: field %s is read-only", i, path.Name())
		}
	case Move, Copy:
		if !path.Writable() {
			return s, apperr.Invalid("patch[%d]: field %s is read-only", i, path.Name())
		}
		from, err := lookup(schema, op.From, i, "from")
		if err != nil {
			return s, err
		}
		if from.Kind() != path.Kind() {
			return s, apperr.Invalid("patch[%d]: cannot %s %s field %s into %s field %s",
				i, op.Op, from.Kind(), from.Name(), path.Kind(), path.Name())
		}
		if op.Op == Move && !from.Writable() {
			return s, apperr.Invalid("patch[%d]: field %s is read-only", i, from.Name())
		}
		s.from = from
	default:
		return s, apperr.Invalid("patch[%d]: unknown op %q", i, op.Op)
	}
	return s, nil
}

func lookup[E any](schema *query.Schema[E], path string, i int, what string) (query.Field[E], error) {
	name := strings.TrimPrefix(strings.TrimSpace(path), "/")
	if name == "" || strings.Contains(name, "/") {
		return query.Field[E]{}, apperr.Invalid("patch[%d]: invalid %s %q", i, what, path)
	}
	f, ok := schema.Lookup(name)
	if !ok {
		return query.Field[E]{}, apperr.Invalid("patch[%d]: field not found: %s", i, name)
	}
	return f, nil
}

// Apply runs doc against *e. Either every operation succeeds and *e is
// updated, or *e is left untouched and an InvalidArgument error is returned.
func Apply[E any](schema *query.Schema[E], e *E, doc Document) error {
	if len(doc) == 0 {
		return apperr.Invalid("patch document is empty")
	}
	steps := make([]step[E], 0, len(doc))
	for i, op := range doc {
		s, err := resolve(schema, op, i)
		if err != nil {
			return err
		}
		steps = append(steps, s)
	}

	work := *e
	for i, s := range steps {
		if err := s.apply(&work); err != nil {
			return apperr.Invalid("patch[%d]: %v", i, err)
		}
	}
	*e = work
	return nil
}

func (s step[E]) apply(e *E) error {
	switch s.op {
	case Add, Set, Replace:
		return s.path.Set(e, s.value)
	case Remove:
		return s.path.Clear(e)
	case Copy:
		return s.path.Set(e, s.from.Get(e))
	case Move:
		v := s.from.Get(e)
		if err := s.from.Clear(e); err != nil {
			return err
		}
		return s.path.Set(e, v)
	case Test:
		if !s.path.Kind().Equal(s.path.Get(e), s.value) {
			return apperr.Invalid("test failed for field %s", s.path.Name())
		}
	}
	return nil
}
