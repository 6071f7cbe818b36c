package validation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/apperr"
	"libraryapi/internal/entity"
)

func TestStruct_ValidBook(t *testing.T) {
	b := entity.Book{
		ISBN:     "978-0-13-468599-1",
		Title:    "The Go Programming Language",
		AuthorID: uuid.New(),
		Price:    39.5,
	}
	assert.NoError(t, Struct(b))
}

func TestStruct_RequiredFields(t *testing.T) {
	err := Struct(entity.Book{})
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))

	fields := map[string]string{}
	for _, d := range apperr.DetailsOf(err) {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "isbn is required", fields["isbn"])
	assert.Equal(t, "title is required", fields["title"])
	assert.Equal(t, "authorId is required", fields["authorId"])
}

func TestStruct_ISBN(t *testing.T) {
	cases := map[string]bool{
		"0306406152":        true,
		"030640615X":        true,
		"978 0306406157":    true,
		"978-0-306-40615-7": true,
		"12345":             false,
		"97803064061570":    false,
		"03064X6152":        false,
	}
	for isbn, ok := range cases {
		b := entity.Book{ISBN: isbn, Title: "t", AuthorID: uuid.New()}
		details := Details(b)
		if ok {
			assert.Empty(t, details, isbn)
		} else {
			require.Len(t, details, 1, isbn)
			assert.Equal(t, "isbn", details[0].Field)
		}
	}
}

func TestStruct_Ranges(t *testing.T) {
	b := entity.Book{ISBN: "0306406152", Title: "t", AuthorID: uuid.New(), PageCount: -1, Price: -2}
	details := Details(b)
	require.Len(t, details, 2)
	assert.Equal(t, "pageCount", details[0].Field)
	assert.Equal(t, "price", details[1].Field)
}

func TestStruct_AuthorIgnoresRelations(t *testing.T) {
	a := entity.Author{Name: "Ursula K. Le Guin", Books: []entity.Book{{}}}
	assert.NoError(t, Struct(a))
}
