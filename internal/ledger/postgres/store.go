package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/haojie06/dallebot/internal/ledger"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTable = `
create table if not exists dalle (
	id bigserial primary key,
	author text not null,
	prompt text not null,
	image_urls text not null,
	created_at timestamptz not null
)`

type Store struct {
	Db *pgxpool.Pool
}

var _ ledger.Store = (*Store)(nil)

// Connector returns a ledger.Connector opening a new pool on dsn each call.
func Connector(dsn string) ledger.Connector {
	return func(ctx context.Context) (ledger.Store, error) {
		return Open(ctx, dsn)
	}
}

func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &Store{Db: pool}, nil
}

func (s *Store) Insert(ctx context.Context, author, prompt, imageURLs string, createdAt time.Time) error {
	query := `
	 insert into dalle
	 (author, prompt, image_urls, created_at)
	 values ($1, $2, $3, $4)
	`
	_, err := s.Db.Exec(ctx, query, author, prompt, imageURLs, createdAt)
	return err
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.Db.QueryRow(ctx, `select count(*) from dalle`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) Authors(ctx context.Context) ([]string, error) {
	rows, err := s.Db.Query(ctx, `select author from dalle order by id`)
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
	s.Db.Close()
	return nil
}
