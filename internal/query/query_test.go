package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/apperr"
)

type sampleEntity struct {
	ID        uuid.UUID
	Name      string
	Note      string
	Score     int64
	Ratio     float64
	Active    bool
	CreatedAt time.Time
}

var sampleSchema = MustSchema("sample", "samples",
	ID("id", "id", func(e *sampleEntity) uuid.UUID { return e.ID }, func(e *sampleEntity, v uuid.UUID) { e.ID = v }),
	String("name", "name", func(e *sampleEntity) string { return e.Name }, func(e *sampleEntity, v string) { e.Name = v }).Searchable(),
	String("note", "note", func(e *sampleEntity) string { return e.Note }, func(e *sampleEntity, v string) { e.Note = v }).Searchable(),
	Int("score", "score", func(e *sampleEntity) int64 { return e.Score }, func(e *sampleEntity, v int64) { e.Score = v }),
	Float("ratio", "ratio", func(e *sampleEntity) float64 { return e.Ratio }, func(e *sampleEntity, v float64) { e.Ratio = v }),
	Bool("active", "active", func(e *sampleEntity) bool { return e.Active }, func(e *sampleEntity, v bool) { e.Active = v }),
	Time("createdAt", "created_at", func(e *sampleEntity) time.Time { return e.CreatedAt }, nil),
)

func sampleID(n byte) uuid.UUID {
	var id uuid.UUID
	id[15] = n
	return id
}

func names(items []sampleEntity) []string {
	out := make([]string, len(items))
	for i, e := range items {
		out[i] = e.Name
	}
	return out
}

func mustApply(t *testing.T, q Query, items []sampleEntity) []sampleEntity {
	t.Helper()
	plan, err := sampleSchema.Compile(q)
	require.NoError(t, err)
	return plan.Apply(items)
}

func TestCompile_Validation(t *testing.T) {
	cases := []struct {
		name string
		q    Query
		msg  string
	}{
		{"zero page size", Query{PageNumber: 1, PageSize: 0}, "page size invalid"},
		{"negative page size", Query{PageNumber: 1, PageSize: -3}, "page size invalid"},
		{"zero page number", Query{PageNumber: 0, PageSize: 1}, "page number invalid"},
		{"negative page number", Query{PageNumber: -1, PageSize: 1}, "page number invalid"},
		{"page size checked first", Query{PageNumber: 0, PageSize: 0}, "page size invalid"},
		{"unknown sort field", Query{PageNumber: 1, PageSize: 1, SortField: "nope"}, "sort field not found: nope"},
		{"bad sort order", Query{PageNumber: 1, PageSize: 1, SortField: "name", SortOrder: "up"}, "invalid sort order: up"},
		{"unknown filter field", Query{PageNumber: 1, PageSize: 1, Filters: []Criterion{{"color", "Equal", "x"}}}, "filter field not found: color"},
		{"unknown operator", Query{PageNumber: 1, PageSize: 1, Filters: []Criterion{{"name", "Like", "x"}}}, "invalid filter operator: Like"},
		{"contains on int", Query{PageNumber: 1, PageSize: 1, Filters: []Criterion{{"score", "Contains", "1"}}}, "operator Contains does not apply to int field score"},
		{"greater on string", Query{PageNumber: 1, PageSize: 1, Filters: []Criterion{{"name", "GreaterThan", "a"}}}, "operator GreaterThan does not apply to string field name"},
		{"less on bool", Query{PageNumber: 1, PageSize: 1, Filters: []Criterion{{"active", "LessThan", "true"}}}, "operator LessThan does not apply to bool field active"},
		{"bad int value", Query{PageNumber: 1, PageSize: 1, Filters: []Criterion{{"score", "Equal", "ten"}}}, `invalid value "ten" for field score`},
		{"bad time value", Query{PageNumber: 1, PageSize: 1, Filters: []Criterion{{"createdAt", "GreaterThan", "yesterday"}}}, `invalid value "yesterday" for field createdAt`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := sampleSchema.Compile(tc.q)
			require.Error(t, err)
			assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
			assert.Equal(t, tc.msg, err.Error())
		})
	}
}

func TestCompile_SortOrderCaseInsensitive(t *testing.T) {
	for _, order := range []string{"", "asc", "ASC", "Desc", "DESC"} {
		_, err := sampleSchema.Compile(Query{PageNumber: 1, PageSize: 1, SortField: "Name", SortOrder: order})
		assert.NoError(t, err, order)
	}
}

func TestCompile_SortOrderIgnoredWithoutField(t *testing.T) {
	_, err := sampleSchema.Compile(Query{PageNumber: 1, PageSize: 1, SortOrder: "sideways"})
	assert.NoError(t, err)
}

func TestApply_SortDescPaged(t *testing.T) {
	items := []sampleEntity{
		{ID: sampleID(1), Name: "A"},
		{ID: sampleID(2), Name: "B"},
		{ID: sampleID(3), Name: "C"},
	}

	page1 := mustApply(t, Query{PageNumber: 1, PageSize: 2, SortField: "name", SortOrder: "desc"}, items)
	assert.Equal(t, []string{"C", "B"}, names(page1))

	page2 := mustApply(t, Query{PageNumber: 2, PageSize: 2, SortField: "name", SortOrder: "desc"}, items)
	assert.Equal(t, []string{"A"}, names(page2))

	page3 := mustApply(t, Query{PageNumber: 3, PageSize: 2, SortField: "name", SortOrder: "desc"}, items)
	assert.Empty(t, page3)
}

func TestApply_PagesConcatenateToFullSet(t *testing.T) {
	var items []sampleEntity
	for i := 0; i < 23; i++ {
		items = append(items, sampleEntity{ID: sampleID(byte(100 - i)), Name: fmt.Sprintf("n%d", i%4), Score: int64(i % 5)})
	}

	full := mustApply(t, Query{PageNumber: 1, PageSize: len(items), SortField: "score"}, items)
	require.Len(t, full, len(items))

	for size := 1; size <= 7; size++ {
		var joined []sampleEntity
		for page := 1; ; page++ {
			got := mustApply(t, Query{PageNumber: page, PageSize: size, SortField: "score"}, items)
			assert.LessOrEqual(t, len(got), size)
			if len(got) == 0 {
				break
			}
			joined = append(joined, got...)
		}
		assert.Equal(t, full, joined, "page size %d", size)
	}
}

func TestApply_TiesBrokenByID(t *testing.T) {
	items := []sampleEntity{
		{ID: sampleID(9), Name: "same"},
		{ID: sampleID(3), Name: "same"},
		{ID: sampleID(5), Name: "same"},
	}

	for _, order := range []string{"asc", "desc"} {
		got := mustApply(t, Query{PageNumber: 1, PageSize: 10, SortField: "name", SortOrder: order}, items)
		require.Len(t, got, 3)
		assert.Equal(t, sampleID(3), got[0].ID)
		assert.Equal(t, sampleID(5), got[1].ID)
		assert.Equal(t, sampleID(9), got[2].ID)
	}
}

func TestApply_DefaultOrderIsID(t *testing.T) {
	items := []sampleEntity{{ID: sampleID(2), Name: "x"}, {ID: sampleID(1), Name: "y"}}
	got := mustApply(t, Query{PageNumber: 1, PageSize: 5}, items)
	assert.Equal(t, []string{"y", "x"}, names(got))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	items := []sampleEntity{{ID: sampleID(2), Name: "b"}, {ID: sampleID(1), Name: "a"}}
	_ = mustApply(t, Query{PageNumber: 1, PageSize: 5, SortField: "name"}, items)
	assert.Equal(t, "b", items[0].Name)
}

func TestApply_Filters(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []sampleEntity{
		{ID: sampleID(1), Name: "Go Programming", Score: 5, Ratio: 0.5, Active: true, CreatedAt: day},
		{ID: sampleID(2), Name: "go tools", Score: 3, Ratio: 1.5, Active: false, CreatedAt: day.AddDate(0, 0, 1)},
		{ID: sampleID(3), Name: "Rust", Score: 8, Ratio: 2.5, Active: true, CreatedAt: day.AddDate(0, 0, 2)},
	}

	cases := []struct {
		name    string
		filters []Criterion
		want    []string
	}{
		{"equal is case sensitive", []Criterion{{"name", "Equal", "rust"}}, []string{}},
		{"equal exact", []Criterion{{"name", "Equal", "Rust"}}, []string{"Rust"}},
		{"not equal", []Criterion{{"name", "NotEqual", "Rust"}}, []string{"Go Programming", "go tools"}},
		{"contains case sensitive", []Criterion{{"name", "Contains", "Go"}}, []string{"Go Programming"}},
		{"starts with", []Criterion{{"name", "StartsWith", "go"}}, []string{"go tools"}},
		{"ends with", []Criterion{{"name", "endswith", "ools"}}, []string{"go tools"}},
		{"int greater", []Criterion{{"score", "GreaterThan", "4"}}, []string{"Go Programming", "Rust"}},
		{"int greater or equal alias", []Criterion{{"score", "gte", "5"}}, []string{"Go Programming", "Rust"}},
		{"float less", []Criterion{{"ratio", "LessThan", "2"}}, []string{"Go Programming", "go tools"}},
		{"float less or equal", []Criterion{{"ratio", "lte", "1.5"}}, []string{"Go Programming", "go tools"}},
		{"bool equal", []Criterion{{"active", "Equal", "false"}}, []string{"go tools"}},
		{"time greater than date", []Criterion{{"createdAt", "GreaterThan", "2024-03-01"}}, []string{"go tools", "Rust"}},
		{"uuid equal", []Criterion{{"id", "eq", sampleID(2).String()}}, []string{"go tools"}},
		{"criteria are AND-ed", []Criterion{{"active", "Equal", "true"}, {"score", "LessThan", "6"}}, []string{"Go Programming"}},
		{"property name case insensitive", []Criterion{{"SCORE", "Equal", "8"}}, []string{"Rust"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustApply(t, Query{PageNumber: 1, PageSize: 10, Filters: tc.filters}, items)
			assert.Equal(t, tc.want, names(got))
		})
	}
}

func TestApply_SearchTerm(t *testing.T) {
	items := []sampleEntity{
		{ID: sampleID(1), Name: "Dune", Note: "desert PLANET"},
		{ID: sampleID(2), Name: "Planetes", Note: "orbit"},
		{ID: sampleID(3), Name: "Neuromancer", Note: "cyber", Score: 1},
	}

	got := mustApply(t, Query{PageNumber: 1, PageSize: 10, SearchTerm: "planet"}, items)
	assert.Equal(t, []string{"Dune", "Planetes"}, names(got))

	got = mustApply(t, Query{PageNumber: 1, PageSize: 10, SearchTerm: "  planet ", Filters: []Criterion{{"name", "Equal", "Dune"}}}, items)
	assert.Equal(t, []string{"Dune"}, names(got))

	got = mustApply(t, Query{PageNumber: 1, PageSize: 10, SearchTerm: "   "}, items)
	assert.Len(t, got, 3)
}

func TestParseCriteria(t *testing.T) {
	got, err := ParseCriteria(`[{"PropertyName":"title","Operator":"Contains","Value":"Go"},{"propertyname":"pageCount","operator":"gt","value":100}]`)
	require.NoError(t, err)
	assert.Equal(t, []Criterion{
		{PropertyName: "title", Operator: "Contains", Value: "Go"},
		{PropertyName: "pageCount", Operator: "gt", Value: "100"},
	}, got)

	got, err = ParseCriteria("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseCriteria(`{"PropertyName":"title"}`)
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
}

func TestNewSchema_Rejects(t *testing.T) {
	id := ID("id", "id", func(e *sampleEntity) uuid.UUID { return e.ID }, func(e *sampleEntity, v uuid.UUID) { e.ID = v })
	name := String("name", "name", func(e *sampleEntity) string { return e.Name }, nil)

	_, err := NewSchema("sample", "samples", name)
	assert.ErrorContains(t, err, "no identity field")

	_, err = NewSchema("sample", "samples", id, name, String("NAME", "name2", func(e *sampleEntity) string { return e.Note }, nil))
	assert.ErrorContains(t, err, "duplicate field")

	_, err = NewSchema("sample", "samples", id, name, String("other", "name", func(e *sampleEntity) string { return e.Note }, nil))
	assert.ErrorContains(t, err, "duplicate column")

	_, err = NewSchema("sample", "samples", id, Int("score", "score", func(e *sampleEntity) int64 { return e.Score }, nil).Searchable())
	assert.ErrorContains(t, err, "searchable but not a string")

	_, err = NewSchema("sample", "samples", id, id)
	assert.Error(t, err)
}
