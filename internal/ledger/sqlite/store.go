package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/haojie06/dallebot/internal/ledger"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

var _ ledger.Store = (*Store)(nil)

func Connector(dataSourceName string) ledger.Connector {
	return func(ctx context.Context) (ledger.Store, error) {
		return Open(ctx, dataSourceName)
	}
}

func Open(ctx context.Context, dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection, otherwise every :memory: connection sees its own database
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{db: db}
	if err := store.createTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return store, nil
}

func (s *Store) createTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS dalle (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		author TEXT NOT NULL,
		prompt TEXT NOT NULL,
		image_urls TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);`)
	return err
}

func (s *Store) Insert(ctx context.Context, author, prompt, imageURLs string, createdAt time.Time) error {
	query := `
	INSERT INTO dalle (author, prompt, image_urls, created_at)
	VALUES (?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query, author, prompt, imageURLs, createdAt.UTC())
	return err
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dalle`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) Authors(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT author FROM dalle ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []string
	for rows.Next() {
		var author string
		if err := rows.Scan(&author); err != nil {
			return nil, err
		}
		authors = append(authors, author)
	}
	return authors, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
