package query

import (
	"math"
	"slices"
	"strings"

	"libraryapi/internal/apperr"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 1
)

// SortOrder values, compared case-insensitively.
const (
	Asc  = "asc"
	Desc = "desc"
)

// Query is one list request: AND-ed criteria, an optional free-text term,
// an optional sort and a page window.
type Query struct {
	Filters    []Criterion
	SearchTerm string
	PageNumber int
	PageSize   int
	SortField  string
	SortOrder  string
}

type predicate[E any] struct {
	field Field[E]
	op    Operator
	value any
}

// Plan is a validated Query bound to a schema. It can be evaluated in memory
// with Apply or rendered as SQL with SQL.
type Plan[E any] struct {
	schema     *Schema[E]
	predicates []predicate[E]
	search     string
	sort       *Field[E]
	desc       bool
	offset     int
	limit      int
}

// Compile validates q against the schema. Every failure is InvalidArgument.
func (s *Schema[E]) Compile(q Query) (*Plan[E], error) {
	if q.PageSize < 1 {
		return nil, apperr.Invalid("page size invalid")
	}
	if q.PageNumber < 1 {
		return nil, apperr.Invalid("page number invalid")
	}

	p := &Plan[E]{
		schema: s,
		limit:  q.PageSize,
		offset: pageOffset(q.PageNumber, q.PageSize),
		search: strings.TrimSpace(q.SearchTerm),
	}

	if name := strings.TrimSpace(q.SortField); name != "" {
		f, ok := s.Lookup(name)
		if !ok {
			return nil, apperr.Invalid("sort field not found: %s", name)
		}
		switch strings.ToLower(strings.TrimSpace(q.SortOrder)) {
		case "", Asc:
		case Desc:
			p.desc = true
		default:
			return nil, apperr.Invalid("invalid sort order: %s", q.SortOrder)
		}
		p.sort = &f
	}

	for _, c := range q.Filters {
		pred, err := s.bind(c)
		if err != nil {
			return nil, err
		}
		p.predicates = append(p.predicates, pred)
	}
	return p, nil
}

func (s *Schema[E]) bind(c Criterion) (predicate[E], error) {
	f, ok := s.Lookup(c.PropertyName)
	if !ok {
		return predicate[E]{}, apperr.Invalid("filter field not found: %s", c.PropertyName)
	}
	op, ok := ParseOperator(c.Operator)
	if !ok {
		return predicate[E]{}, apperr.Invalid("invalid filter operator: %s", c.Operator)
	}
	if op.textual() && f.kind != KindString {
		return predicate[E]{}, apperr.Invalid("operator %s does not apply to %s field %s", op, f.kind, f.name)
	}
	if op.ranged() && !f.kind.Ordered() {
		return predicate[E]{}, apperr.Invalid("operator %s does not apply to %s field %s", op, f.kind, f.name)
	}
	v, err := f.kind.Parse(c.Value)
	if err != nil {
		return predicate[E]{}, apperr.Invalid("invalid value %q for field %s", c.Value, f.name)
	}
	return predicate[E]{field: f, op: op, value: v}, nil
}

// pageOffset clamps instead of overflowing for absurd page numbers.
func pageOffset(number, size int) int {
	if number-1 > math.MaxInt/size {
		return math.MaxInt
	}
	return (number - 1) * size
}

func (p *Plan[E]) Offset() int { return p.offset }

func (p *Plan[E]) Limit() int { return p.limit }

func (p *Plan[E]) Schema() *Schema[E] { return p.schema }

// Match reports whether e passes every criterion and the search term.
func (p *Plan[E]) Match(e *E) bool {
	for _, pred := range p.predicates {
		if !pred.eval(e) {
			return false
		}
	}
	if p.search == "" {
		return true
	}
	term := strings.ToLower(p.search)
	for _, f := range p.schema.Searchable() {
		if strings.Contains(strings.ToLower(f.Get(e).(string)), term) {
			return true
		}
	}
	return false
}

func (pred predicate[E]) eval(e *E) bool {
	v := pred.field.Get(e)
	k := pred.field.kind
	switch pred.op {
	case Equal:
		return k.Equal(v, pred.value)
	case NotEqual:
		return !k.Equal(v, pred.value)
	case Contains:
		return strings.Contains(v.(string), pred.value.(string))
	case StartsWith:
		return strings.HasPrefix(v.(string), pred.value.(string))
	case EndsWith:
		return strings.HasSuffix(v.(string), pred.value.(string))
	case GreaterThan:
		return k.Compare(v, pred.value) > 0
	case GreaterThanOrEqual:
		return k.Compare(v, pred.value) >= 0
	case LessThan:
		return k.Compare(v, pred.value) < 0
	case LessThanOrEqual:
		return k.Compare(v, pred.value) <= 0
	}
	return false
}

// Compare orders two entities: sort field first (if any), identifier ascending
// on ties.
func (p *Plan[E]) Compare(a, b *E) int {
	if p.sort != nil {
		c := p.sort.kind.Compare(p.sort.Get(a), p.sort.Get(b))
		if p.desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	id := p.schema.Identity()
	return KindUUID.Compare(id.Get(a), id.Get(b))
}

// Apply filters, orders and pages items. items is not modified.
func (p *Plan[E]) Apply(items []E) []E {
	matched := make([]E, 0, len(items))
	for i := range items {
		if p.Match(&items[i]) {
			matched = append(matched, items[i])
		}
	}
	slices.SortFunc(matched, func(a, b E) int { return p.Compare(&a, &b) })

	if p.offset >= len(matched) {
		return []E{}
	}
	end := len(matched)
	if p.limit < end-p.offset {
		end = p.offset + p.limit
	}
	return matched[p.offset:end]
}
