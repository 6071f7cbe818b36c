package crud

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/apperr"
	"libraryapi/internal/patch"
	"libraryapi/internal/query"
	"libraryapi/internal/store/memory"
)

type note struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title" validate:"required"`
	Pages     int       `json:"pages" validate:"gte=0"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (n *note) CreatedTime() time.Time { return n.CreatedAt }

func (n *note) SetTimestamps(created, updated time.Time) {
	n.CreatedAt = created
	n.UpdatedAt = updated
}

var noteSchema = query.MustSchema("note", "notes",
	query.ID("id", "id", func(n *note) uuid.UUID { return n.ID }, func(n *note, v uuid.UUID) { n.ID = v }),
	query.String("title", "title", func(n *note) string { return n.Title }, func(n *note, v string) { n.Title = v }).Searchable(),
	query.Int("pages", "pages",
		func(n *note) int64 { return int64(n.Pages) },
		func(n *note, v int64) { n.Pages = int(v) }),
	query.String("label", "label", func(n *note) string { return n.Label }, func(n *note, v string) { n.Label = v }),
	query.Time("createdAt", "created_at", func(n *note) time.Time { return n.CreatedAt }, nil),
	query.Time("updatedAt", "updated_at", func(n *note) time.Time { return n.UpdatedAt }, nil),
)

type mockExpander struct {
	mock.Mock
}

func (m *mockExpander) Expand(ctx context.Context, items []note) error {
	args := m.Called(ctx, items)
	for i := range items {
		items[i].Label = "expanded"
	}
	return args.Error(0)
}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func newTestService(opts ...Option[note]) (*Service[note], *memory.Store[note], *fixedClock) {
	clock := &fixedClock{now: time.Date(2024, 1, 2, 3, 4, 5, 678901234, time.UTC)}
	store := memory.NewStore(noteSchema)
	opts = append([]Option[note]{WithClock[note](clock.Now)}, opts...)
	return NewService(noteSchema, store, opts...), store, clock
}

func TestService_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestService()

	id, err := svc.Create(ctx, &note{Title: "first", Pages: 3})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	got, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, clock.now.Truncate(time.Microsecond), got.CreatedAt)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)

	require.NoError(t, svc.Delete(ctx, id))
	_, err = svc.GetByID(ctx, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, id), apperr.ErrNotFound)
}

func TestService_CreateKeepsProvidedID(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	id := uuid.New()

	got, err := svc.Create(ctx, &note{ID: id, Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = svc.Create(ctx, &note{ID: id, Title: "again"})
	assert.Equal(t, apperr.Persistence, apperr.KindOf(err))
}

func TestService_CreateValidates(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService()

	_, err := svc.Create(ctx, &note{Pages: -1})
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
	assert.Len(t, apperr.DetailsOf(err), 2)
	assert.Equal(t, 0, store.Len())
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	for _, title := range []string{"A", "B", "C"} {
		_, err := svc.Create(ctx, &note{Title: title})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, query.Query{PageNumber: 1, PageSize: 2, SortField: "title", SortOrder: "desc"})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "C", page[0].Title)
	assert.Equal(t, "B", page[1].Title)

	page, err = svc.List(ctx, query.Query{PageNumber: 2, PageSize: 2, SortField: "title", SortOrder: "desc"})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "A", page[0].Title)

	page, err = svc.List(ctx, query.Query{PageNumber: 9, PageSize: 2})
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Empty(t, page)

	_, err = svc.List(ctx, query.Query{PageNumber: 1, PageSize: 0})
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestService()
	id, err := svc.Create(ctx, &note{Title: "old", Pages: 1})
	require.NoError(t, err)
	created := clock.now.Truncate(time.Microsecond)

	clock.now = clock.now.Add(time.Hour)

	t.Run("replaces fields and keeps createdAt", func(t *testing.T) {
		require.NoError(t, svc.Update(ctx, id, &note{Title: "new", Pages: 7, CreatedAt: time.Unix(0, 0)}))
		got, err := svc.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "new", got.Title)
		assert.Equal(t, 7, got.Pages)
		assert.Equal(t, created, got.CreatedAt)
		assert.Equal(t, clock.now.Truncate(time.Microsecond), got.UpdatedAt)
	})

	t.Run("matching body id", func(t *testing.T) {
		assert.NoError(t, svc.Update(ctx, id, &note{ID: id, Title: "same"}))
	})

	t.Run("mismatched body id", func(t *testing.T) {
		err := svc.Update(ctx, id, &note{ID: uuid.New(), Title: "x"})
		assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
	})

	t.Run("unknown id", func(t *testing.T) {
		err := svc.Update(ctx, uuid.New(), &note{Title: "x"})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("invalid entity", func(t *testing.T) {
		err := svc.Update(ctx, id, &note{})
		assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
	})
}

func TestService_Patch(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	id, err := svc.Create(ctx, &note{Title: "old", Pages: 1})
	require.NoError(t, err)

	doc, err := patch.Parse([]byte(`[{"op":"replace","path":"/title","value":"patched"},{"op":"add","path":"/pages","value":12}]`))
	require.NoError(t, err)
	require.NoError(t, svc.Patch(ctx, id, doc))

	got, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "patched", got.Title)
	assert.Equal(t, 12, got.Pages)

	t.Run("empty document", func(t *testing.T) {
		assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(svc.Patch(ctx, id, nil)))
		assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(svc.Patch(ctx, id, patch.Document{})))
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.ErrorIs(t, svc.Patch(ctx, uuid.New(), doc), apperr.ErrNotFound)
	})

	t.Run("result must validate", func(t *testing.T) {
		bad, err := patch.Parse([]byte(`[{"op":"remove","path":"/title"}]`))
		require.NoError(t, err)
		assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(svc.Patch(ctx, id, bad)))

		got, err := svc.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "patched", got.Title)
	})

	t.Run("read-only field", func(t *testing.T) {
		ro, err := patch.Parse([]byte(`[{"op":"replace","path":"/createdAt","value":"2020-01-01"}]`))
		require.NoError(t, err)
		assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(svc.Patch(ctx, id, ro)))
	})
}

func TestService_Expander(t *testing.T) {
	ctx := context.Background()
	x := new(mockExpander)
	svc, _, _ := newTestService(WithExpander[note](x))

	x.On("Expand", mock.Anything, mock.Anything).Return(nil).Once()
	id, err := svc.Create(ctx, &note{Title: "t"})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "expanded", got.Label)

	x.On("Expand", mock.Anything, mock.Anything).Return(errors.New("loader down")).Once()
	_, err = svc.List(ctx, query.Query{PageNumber: 1, PageSize: 5})
	assert.ErrorContains(t, err, "loader down")

	x.AssertExpectations(t)
}
