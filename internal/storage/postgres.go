package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const createDocumentsTable = `CREATE TABLE IF NOT EXISTS exambot_documents (
	name       TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// pgStore is the subset of *pgxpool.Pool the backend uses.
type pgStore interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresBackend keeps each collection as one JSONB row.
type PostgresBackend struct {
	db pgStore
}

func NewPostgresBackend(db pgStore) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// Migrate creates the documents table if it is missing.
func (b *PostgresBackend) Migrate(ctx context.Context) error {
	if _, err := b.db.Exec(ctx, createDocumentsTable); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Load(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := b.db.QueryRow(ctx, `SELECT body FROM exambot_documents WHERE name = $1`, name).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return body, err
}

func (b *PostgresBackend) Save(ctx context.Context, name string, data []byte) error {
	_, err := b.db.Exec(ctx,
		`INSERT INTO exambot_documents (name, body) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`,
		name, string(data),
	)
	return err
}

// Ping reports whether the database is reachable.
func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.db.Ping(ctx)
}
