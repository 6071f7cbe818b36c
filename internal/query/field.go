package query

import (
	"bytes"
	"cmp"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Kind is the native type behind a field.
type Kind int

const (
	KindString Kind = iota + 1
	KindInt
	KindFloat
	KindBool
	KindTime
	KindUUID
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindUUID:
		return "uuid"
	default:
		return "unknown"
	}
}

// Ordered reports whether range operators apply to the kind.
func (k Kind) Ordered() bool {
	return k == KindInt || k == KindFloat || k == KindTime
}

// dateLayouts are tried in order when coercing a time value from text.
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// Field is a static accessor for one named field of E.
type Field[E any] struct {
	name       string
	column     string
	kind       Kind
	searchable bool
	identity   bool
	get        func(*E) any
	set        func(*E, any)
}

func newField[E any, V any](kind Kind, name, column string, get func(*E) V, set func(*E, V)) Field[E] {
	f := Field[E]{
		name:   name,
		column: column,
		kind:   kind,
		get:    func(e *E) any { return get(e) },
	}
	if set != nil {
		f.set = func(e *E, v any) { set(e, v.(V)) }
	}
	return f
}

// String declares a string field. A nil set makes the field read-only.
func String[E any](name, column string, get func(*E) string, set func(*E, string)) Field[E] {
	return newField(KindString, name, column, get, set)
}

// Int declares an integer field.
func Int[E any](name, column string, get func(*E) int64, set func(*E, int64)) Field[E] {
	return newField(KindInt, name, column, get, set)
}

// Float declares a floating point field.
func Float[E any](name, column string, get func(*E) float64, set func(*E, float64)) Field[E] {
	return newField(KindFloat, name, column, get, set)
}

// Bool declares a boolean field.
func Bool[E any](name, column string, get func(*E) bool, set func(*E, bool)) Field[E] {
	return newField(KindBool, name, column, get, set)
}

// Time declares a timestamp or date field.
func Time[E any](name, column string, get func(*E) time.Time, set func(*E, time.Time)) Field[E] {
	return newField(KindTime, name, column, get, set)
}

// UUID declares a UUID field.
func UUID[E any](name, column string, get func(*E) uuid.UUID, set func(*E, uuid.UUID)) Field[E] {
	return newField(KindUUID, name, column, get, set)
}

// ID declares the identity field. Identity is never writable through the schema;
// the setter is only used by stores and services assigning new identifiers.
func ID[E any](name, column string, get func(*E) uuid.UUID, set func(*E, uuid.UUID)) Field[E] {
	f := newField(KindUUID, name, column, get, set)
	f.identity = true
	return f
}

// Searchable marks a string field as a free-text search target.
func (f Field[E]) Searchable() Field[E] {
	f.searchable = true
	return f
}

func (f Field[E]) Name() string { return f.name }

func (f Field[E]) Column() string { return f.column }

func (f Field[E]) Kind() Kind { return f.kind }

func (f Field[E]) IsSearchable() bool { return f.searchable }

func (f Field[E]) IsIdentity() bool { return f.identity }

// Writable reports whether the field may be assigned through a patch.
func (f Field[E]) Writable() bool {
	return f.set != nil && !f.identity
}

// Get returns the native value of the field on e.
func (f Field[E]) Get(e *E) any {
	return f.get(e)
}

// Set assigns v, which must already be of the field's native type.
func (f Field[E]) Set(e *E, v any) error {
	if f.set == nil {
		return errors.Errorf("field %s is read-only", f.name)
	}
	if !f.accepts(v) {
		return errors.Errorf("field %s expects %s, got %T", f.name, f.kind, v)
	}
	f.set(e, v)
	return nil
}

// Clear resets the field to its zero value.
func (f Field[E]) Clear(e *E) error {
	return f.Set(e, f.kind.zero())
}

func (f Field[E]) accepts(v any) bool {
	switch f.kind {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindInt:
		_, ok := v.(int64)
		return ok
	case KindFloat:
		_, ok := v.(float64)
		return ok
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindTime:
		_, ok := v.(time.Time)
		return ok
	case KindUUID:
		_, ok := v.(uuid.UUID)
		return ok
	}
	return false
}

func (k Kind) zero() any {
	switch k {
	case KindString:
		return ""
	case KindInt:
		return int64(0)
	case KindFloat:
		return float64(0)
	case KindBool:
		return false
	case KindTime:
		return time.Time{}
	case KindUUID:
		return uuid.Nil
	}
	return nil
}

// Parse coerces text into the kind's native type.
func (k Kind) Parse(raw string) (any, error) {
	switch k {
	case KindString:
		return raw, nil
	case KindInt:
		return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	case KindFloat:
		return strconv.ParseFloat(strings.TrimSpace(raw), 64)
	case KindBool:
		return strconv.ParseBool(strings.TrimSpace(raw))
	case KindTime:
		raw = strings.TrimSpace(raw)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC(), nil
			}
		}
		return nil, errors.Errorf("cannot parse %q as time", raw)
	case KindUUID:
		return uuid.Parse(strings.TrimSpace(raw))
	}
	return nil, errors.Errorf("unsupported kind %d", k)
}

// Decode coerces a JSON value into the kind's native type. JSON strings are
// accepted for every kind and go through Parse.
func (k Kind) Decode(raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return k.zero(), nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return k.Parse(s)
	}
	switch k {
	case KindInt:
		var n int64
		err := json.Unmarshal(raw, &n)
		return n, err
	case KindFloat:
		var n float64
		err := json.Unmarshal(raw, &n)
		return n, err
	case KindBool:
		var b bool
		err := json.Unmarshal(raw, &b)
		return b, err
	}
	return nil, errors.Errorf("expected a %s value", k)
}

// Compare orders two native values of the same kind.
func (k Kind) Compare(a, b any) int {
	switch k {
	case KindString:
		return strings.Compare(a.(string), b.(string))
	case KindInt:
		return cmp.Compare(a.(int64), b.(int64))
	case KindFloat:
		return cmp.Compare(a.(float64), b.(float64))
	case KindBool:
		x, y := a.(bool), b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case KindTime:
		return a.(time.Time).Compare(b.(time.Time))
	case KindUUID:
		x, y := a.(uuid.UUID), b.(uuid.UUID)
		return bytes.Compare(x[:], y[:])
	}
	return 0
}

// Equal compares two native values of the same kind.
func (k Kind) Equal(a, b any) bool {
	return k.Compare(a, b) == 0
}
