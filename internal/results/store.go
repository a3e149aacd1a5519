// Package results persists finished result documents as JSON rows, keyed by
// a generated id, in SQLite or Postgres.
package results

import (
	"context"
	"fmt"
	"time"

	"github.com/cube-dp/lease-classifier/internal/common"
	"github.com/cube-dp/lease-classifier/internal/entity"
)

// Record is one stored result document.
type Record struct {
	ID        string
	PDFFile   string
	CreatedAt time.Time
	Document  entity.ResultDocument
}

// Store persists result documents. Implementations are safe for concurrent
// use.
type Store interface {
	Save(ctx context.Context, doc entity.ResultDocument) (id string, err error)
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// Open builds the store selected by cfg.Driver. An empty driver disables
// persistence and returns (nil, nil).
func Open(ctx context.Context, cfg common.ResultsConfig) (Store, error) {
	switch cfg.Driver {
	case "":
		return nil, nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLite)
	case "postgres":
		return OpenPostgres(ctx, cfg.Postgres)
	default:
		return nil, common.NewAppError("CONFIG_ERROR",
			fmt.Sprintf("unknown results driver %q", cfg.Driver), common.ErrInvalidInput)
	}
}
