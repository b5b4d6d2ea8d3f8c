package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"booksapi/internal/config"
	"booksapi/internal/entity"
	"booksapi/internal/store"
	"booksapi/internal/store/postgres"
	"booksapi/internal/store/sqlite"

	"go.uber.org/zap"
)

var (
	categoryNames = []string{"Fiction", "Science Fiction", "History", "Science", "Technology", "Romance", "Mystery", "Biography", "Philosophy", "Art"}
	tagNames      = []string{"classic", "bestseller", "award-winner", "new-release", "illustrated"}
	authors       = []string{"Ursula Le Guin", "Terry Pratchett", "Mary Beard", "Carl Sagan", "Donald Knuth", "Jane Austen", "Agatha Christie", "Walter Isaacson"}
	words         = []string{"Adventure", "Mystery", "Journey", "Discovery", "Legacy", "Horizon", "Shadow", "Light", "Dream", "Quest"}
)

func main() {
	count := flag.Int("count", 200, "Number of books to generate")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), *count, logger); err != nil {
		logger.Error("seed failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, count int, logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var st store.Store
	switch cfg.DBDriver {
	case config.DriverPostgres:
		st, err = postgres.Open(ctx, cfg.DBDSN, cfg.DBTimeout, logger)
	case config.DriverSQLite:
		st, err = sqlite.Open(ctx, cfg.SQLitePath, cfg.DBTimeout, logger)
	default:
		return fmt.Errorf("seed needs a persistent store, DB_DRIVER=%q", cfg.DBDriver)
	}
	if err != nil {
		return err
	}
	defer st.Close()

	existing, err := st.Categories().GetAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("catalog already seeded, skipping", zap.Int("categories", len(existing)))
		return nil
	}

	categories := make([]entity.Category, 0, len(categoryNames))
	tags := make([]entity.Tag, 0, len(tagNames))
	err = store.InTx(ctx, st, func(uow store.UnitOfWork) error {
		for _, name := range categoryNames {
			c := entity.Category{Name: name}
			if err := uow.Categories().Add(ctx, &c); err != nil {
				return err
			}
			categories = append(categories, c)
		}
		for _, name := range tagNames {
			t := entity.Tag{Name: name}
			if err := uow.Tags().Add(ctx, &t); err != nil {
				return err
			}
			tags = append(tags, t)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	logger.Info("categories and tags inserted", zap.Int("categories", len(categories)), zap.Int("tags", len(tags)))

	books := make([]entity.Book, 0, count)
	err = store.InTx(ctx, st, func(uow store.UnitOfWork) error {
		for i := range count {
			b := entity.Book{
				Title:       fmt.Sprintf("Book Title %d - %s", i+1, words[rand.Intn(len(words))]),
				Description: fmt.Sprintf("A book about %s.", words[rand.Intn(len(words))]),
				Author:      authors[rand.Intn(len(authors))],
				Price:       float64(500+rand.Intn(5000)) / 100,
				CategoryID:  categories[rand.Intn(len(categories))].ID,
			}
			if err := uow.Books().Add(ctx, &b); err != nil {
				return err
			}
			books = append(books, b)

			if (i+1)%100 == 0 {
				logger.Info("generated books", zap.Int("done", i+1), zap.Int("total", count))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed books: %w", err)
	}

	attached := 0
	err = store.InTx(ctx, st, func(uow store.UnitOfWork) error {
		for _, b := range books {
			if rand.Intn(3) != 0 {
				continue
			}
			if err := uow.Tags().Attach(ctx, b.ID, tags[rand.Intn(len(tags))].ID); err != nil {
				return err
			}
			attached++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed tags: %w", err)
	}

	total, err := st.Books().GetAll(ctx)
	if err != nil {
		return err
	}
	logger.Info("seed complete", zap.Int("books", len(total)), zap.Int("tagged", attached))
	return nil
}
