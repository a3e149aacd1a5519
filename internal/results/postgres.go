package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cube-dp/lease-classifier/internal/common"
	"github.com/cube-dp/lease-classifier/internal/entity"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS results (
	id         UUID PRIMARY KEY,
	pdf_file   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	payload    JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_created_at ON results (created_at);
`

// PostgresStore keeps result documents in a shared Postgres database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, common.WrapError(common.ErrPersistence, fmt.Errorf("connect postgres: %w", err))
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, common.WrapError(common.ErrPersistence, fmt.Errorf("migrate postgres: %w", err))
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(ctx context.Context, doc entity.ResultDocument) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", common.WrapError(common.ErrPersistence, fmt.Errorf("marshal result: %w", err))
	}
	id := uuid.New().String()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO results (id, pdf_file, created_at, payload) VALUES ($1, $2, $3, $4)`,
		id, doc.PDFFile, time.Now().UTC(), payload)
	if err != nil {
		return "", common.WrapError(common.ErrPersistence, fmt.Errorf("insert result: %w", err))
	}
	return id, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, pdf_file, created_at, payload FROM results WHERE id = $1`, id).
		Scan(&rec.ID, &rec.PDFFile, &rec.CreatedAt, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.WrapError(common.ErrNotFound, fmt.Errorf("result %s", id))
		}
		return nil, common.WrapError(common.ErrPersistence, err)
	}
	if err := json.Unmarshal(payload, &rec.Document); err != nil {
		return nil, common.WrapError(common.ErrPersistence, fmt.Errorf("unmarshal payload: %w", err))
	}
	return &rec, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, pdf_file, created_at, payload FROM results ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, common.WrapError(common.ErrPersistence, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.PDFFile, &rec.CreatedAt, &payload); err != nil {
			return nil, common.WrapError(common.ErrPersistence, err)
		}
		if err := json.Unmarshal(payload, &rec.Document); err != nil {
			return nil, common.WrapError(common.ErrPersistence, fmt.Errorf("unmarshal payload: %w", err))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(common.ErrPersistence, err)
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
