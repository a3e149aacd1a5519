// Package storage provides the opaque file-storage collaborator: put bytes
// under a name, get them back by location. The pipeline never inspects
// storage internals.
package storage

import (
	"context"
	"fmt"

	"github.com/cube-dp/lease-classifier/internal/common"
)

// Storage stores and retrieves document bytes. Put returns the location the
// bytes can later be fetched from; callers treat it as opaque.
type Storage interface {
	Put(ctx context.Context, name string, data []byte) (location string, err error)
	Get(ctx context.Context, location string) ([]byte, error)
	Type() string
}

// New builds the storage backend selected by cfg.Type.
func New(cfg common.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocal(cfg.Local.Path), nil
	case "minio":
		return NewMinio(cfg.Minio)
	default:
		return nil, common.NewAppError("CONFIG_ERROR",
			fmt.Sprintf("unknown storage type %q", cfg.Type), common.ErrInvalidInput)
	}
}
