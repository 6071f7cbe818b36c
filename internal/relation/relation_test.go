package relation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/entity"
)

type mockAuthorFetcher struct {
	mock.Mock
}

func (m *mockAuthorFetcher) GetMany(ctx context.Context, ids []uuid.UUID) ([]entity.Author, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Author), args.Error(1)
}

type mockBookFetcher struct {
	mock.Mock
}

func (m *mockBookFetcher) ListByAuthors(ctx context.Context, ids []uuid.UUID) ([]entity.Book, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Book), args.Error(1)
}

func TestBookExpander_Expand(t *testing.T) {
	ctx := context.Background()
	a1 := entity.Author{ID: uuid.New(), Name: "Le Guin", Books: []entity.Book{{Title: "should be dropped"}}}
	a2 := entity.Author{ID: uuid.New(), Name: "Herbert"}
	missing := uuid.New()

	books := []entity.Book{
		{ID: uuid.New(), Title: "Earthsea", AuthorID: a1.ID},
		{ID: uuid.New(), Title: "Dune", AuthorID: a2.ID},
		{ID: uuid.New(), Title: "Dispossessed", AuthorID: a1.ID},
		{ID: uuid.New(), Title: "Orphan", AuthorID: missing},
	}

	fetcher := new(mockAuthorFetcher)
	fetcher.On("GetMany", mock.Anything, mock.MatchedBy(func(ids []uuid.UUID) bool {
		want := map[uuid.UUID]bool{a1.ID: true, a2.ID: true, missing: true}
		for _, id := range ids {
			delete(want, id)
		}
		return len(ids) == 3 && len(want) == 0
	})).Return([]entity.Author{a1, a2}, nil).Once()

	require.NoError(t, NewBookExpander(fetcher).Expand(ctx, books))

	require.NotNil(t, books[0].Author)
	assert.Equal(t, "Le Guin", books[0].Author.Name)
	assert.Nil(t, books[0].Author.Books)
	assert.Equal(t, "Herbert", books[1].Author.Name)
	assert.Equal(t, "Le Guin", books[2].Author.Name)
	assert.Nil(t, books[3].Author)
	fetcher.AssertExpectations(t)
}

func TestBookExpander_Error(t *testing.T) {
	fetcher := new(mockAuthorFetcher)
	fetcher.On("GetMany", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

	books := []entity.Book{{ID: uuid.New(), AuthorID: uuid.New()}}
	err := NewBookExpander(fetcher).Expand(context.Background(), books)
	assert.ErrorContains(t, err, "db down")
}

func TestBookExpander_NoAuthors(t *testing.T) {
	fetcher := new(mockAuthorFetcher)
	books := []entity.Book{{ID: uuid.New()}}

	require.NoError(t, NewBookExpander(fetcher).Expand(context.Background(), books))
	assert.Nil(t, books[0].Author)
	fetcher.AssertNotCalled(t, "GetMany", mock.Anything, mock.Anything)
}

func TestAuthorExpander_Expand(t *testing.T) {
	ctx := context.Background()
	a1 := entity.Author{ID: uuid.New(), Name: "Le Guin"}
	a2 := entity.Author{ID: uuid.New(), Name: "Nobody"}
	stray := entity.Author{ID: a1.ID}

	fetcher := new(mockBookFetcher)
	fetcher.On("ListByAuthors", mock.Anything, mock.Anything).Return([]entity.Book{
		{ID: uuid.New(), Title: "Earthsea", AuthorID: a1.ID, Author: &stray},
		{ID: uuid.New(), Title: "Dispossessed", AuthorID: a1.ID},
	}, nil).Once()

	authors := []entity.Author{a1, a2}
	require.NoError(t, NewAuthorExpander(fetcher).Expand(ctx, authors))

	require.Len(t, authors[0].Books, 2)
	assert.Equal(t, "Earthsea", authors[0].Books[0].Title)
	assert.Nil(t, authors[0].Books[0].Author)
	assert.NotNil(t, authors[1].Books)
	assert.Empty(t, authors[1].Books)
	fetcher.AssertExpectations(t)
}
