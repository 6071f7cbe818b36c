package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"libraryapi/internal/author"
	"libraryapi/internal/book"
	"libraryapi/internal/config"
	"libraryapi/internal/entity"
	"libraryapi/internal/platform/database"
)

func main() {
	var (
		authorCount = flag.Int("authors", 50, "Number of authors to create")
		bookCount   = flag.Int("books", 1000, "Number of books to create")
	)
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	bookRepo, authorRepo, closeDB, err := openRepos(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB()

	books := book.NewService(bookRepo, nil)
	authors := author.NewService(authorRepo, nil)

	log.Printf("Generating %d authors and %d books...", *authorCount, *bookCount)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	authorIDs := make([]uuid.UUID, 0, *authorCount)
	for i := 0; i < *authorCount; i++ {
		a := randomAuthor(rng, i)
		id, err := authors.Create(ctx, &a)
		if err != nil {
			log.Fatalf("Failed to insert author %d: %v", i+1, err)
		}
		authorIDs = append(authorIDs, id)
	}
	if len(authorIDs) == 0 {
		log.Fatal("at least one author is required to seed books")
	}

	for i := 0; i < *bookCount; i++ {
		b := randomBook(rng, i, authorIDs[rng.Intn(len(authorIDs))])
		if _, err := books.Create(ctx, &b); err != nil {
			log.Fatalf("Failed to insert book %d: %v", i+1, err)
		}
		if (i+1)%1000 == 0 {
			log.Printf("Inserted %d/%d books", i+1, *bookCount)
		}
	}
	log.Printf("Successfully inserted %d authors and %d books!", len(authorIDs), *bookCount)
}

func openRepos(ctx context.Context, cfg config.Config) (book.Repository, author.Repository, func(), error) {
	pool := database.DefaultPoolConfig()
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.OpenPostgres(ctx, cfg.PostgresDSN, pool)
		if err != nil {
			return nil, nil, nil, err
		}
		return book.NewPostgresRepo(db, cfg.DBTimeout), author.NewPostgresRepo(db, cfg.DBTimeout), db.Close, nil
	case config.DriverMySQL:
		db, err := database.OpenMySQL(ctx, cfg.MySQLDSN, pool)
		if err != nil {
			return nil, nil, nil, err
		}
		return book.NewMySQLRepo(db, cfg.DBTimeout), author.NewMySQLRepo(db, cfg.DBTimeout), func() { db.Close() }, nil
	}
	return nil, nil, nil, errors.Errorf("seeding needs STORE_DRIVER postgres or mysql, got %q", cfg.StoreDriver)
}

var (
	genres        = []string{"Fiction", "Science Fiction", "History", "Science", "Technology", "Romance", "Mystery", "Biography", "Philosophy", "Art"}
	languages     = []string{"en", "es", "fr", "de", "it", "pt", "zh", "ja"}
	publishers    = []string{"Penguin", "HarperCollins", "Oxford", "Cambridge", "MIT Press", "Springer", "Wiley", "Elsevier"}
	nationalities = []string{"American", "British", "French", "German", "Japanese", "Nigerian", "Brazilian", "Indian"}
	words         = []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
)

func pick(rng *rand.Rand, from []string) string {
	return from[rng.Intn(len(from))]
}

func randomAuthor(rng *rand.Rand, i int) entity.Author {
	born := time.Date(1900+rng.Intn(90), time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)
	return entity.Author{
		Name:        fmt.Sprintf("Author %d %s", i+1, pick(rng, words)),
		Bio:         fmt.Sprintf("Writes about %s and %s.", pick(rng, words), pick(rng, words)),
		Nationality: pick(rng, nationalities),
		BirthDate:   born,
		Active:      rng.Intn(4) > 0,
	}
}

func randomBook(rng *rand.Rand, i int, authorID uuid.UUID) entity.Book {
	year := 1950 + rng.Intn(75)
	return entity.Book{
		ISBN:            isbn13(i + 1),
		Title:           fmt.Sprintf("Book Title %d - %s", i+1, pick(rng, words)),
		Genre:           pick(rng, genres),
		Publisher:       pick(rng, publishers),
		Description:     fmt.Sprintf("This is a book about %s. It explores the fundamental concepts and provides insights into the subject matter.", pick(rng, words)),
		Language:        pick(rng, languages),
		PublicationYear: year,
		PageCount:       100 + rng.Intn(800),
		Price:           float64(500+rng.Intn(5000)) / 100,
		Available:       rng.Intn(5) > 0,
		PublishedAt:     time.Date(year, time.Month(1+rng.Intn(12)), 1, 0, 0, 0, 0, time.UTC),
		AuthorID:        authorID,
	}
}

// isbn13 builds a 978-prefixed ISBN-13 with a valid check digit.
func isbn13(n int) string {
	body := fmt.Sprintf("978%09d", n%1_000_000_000)
	sum := 0
	for i, c := range body {
		d := int(c - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return fmt.Sprintf("%s%d", body, (10-sum%10)%10)
}
