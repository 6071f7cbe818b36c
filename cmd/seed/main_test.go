package main

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"libraryapi/internal/validation"
)

func TestISBN13(t *testing.T) {
	assert.Equal(t, "9780000000019", isbn13(1))
	assert.Len(t, isbn13(123456789), 13)
	assert.NotEqual(t, isbn13(1), isbn13(2))
}

func TestRandomEntities_AreValid(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		a := randomAuthor(rng, i)
		assert.NoError(t, validation.Struct(&a))

		b := randomBook(rng, i, uuid.New())
		assert.NoError(t, validation.Struct(&b))
	}
}
