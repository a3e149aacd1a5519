package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cube-dp/lease-classifier/internal/common"
	"github.com/cube-dp/lease-classifier/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS results (
	id         TEXT PRIMARY KEY,
	pdf_file   TEXT NOT NULL,
	created_at TEXT NOT NULL,
	payload    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_created_at ON results (created_at);
`

// SQLiteStore keeps result documents in a single-file database, suitable
// for single-host runs and tests.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		path = "results.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(common.ErrPersistence, fmt.Errorf("open sqlite: %w", err))
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, common.WrapError(common.ErrPersistence, fmt.Errorf("migrate sqlite: %w", err))
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, doc entity.ResultDocument) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", common.WrapError(common.ErrPersistence, fmt.Errorf("marshal result: %w", err))
	}
	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results (id, pdf_file, created_at, payload) VALUES (?, ?, ?, ?)`,
		id, doc.PDFFile, time.Now().UTC().Format(time.RFC3339Nano), string(payload))
	if err != nil {
		return "", common.WrapError(common.ErrPersistence, fmt.Errorf("insert result: %w", err))
	}
	return id, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, pdf_file, created_at, payload FROM results WHERE id = ?`, id)
	rec, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.WrapError(common.ErrNotFound, fmt.Errorf("result %s", id))
		}
		return nil, common.WrapError(common.ErrPersistence, err)
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pdf_file, created_at, payload FROM results ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, common.WrapError(common.ErrPersistence, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, common.WrapError(common.ErrPersistence, err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(common.ErrPersistence, err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func scanRecord(scan func(dest ...any) error) (*Record, error) {
	var rec Record
	var createdAt, payload string
	if err := scan(&rec.ID, &rec.PDFFile, &createdAt, &payload); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt = ts
	if err := json.Unmarshal([]byte(payload), &rec.Document); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &rec, nil
}
