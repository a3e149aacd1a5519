package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/cube-dp/lease-classifier/internal/common"
)

// Local stores files under a base directory. Stored names are prefixed with
// a fresh uuid so repeated uploads of the same file never collide.
type Local struct {
	base string
}

func NewLocal(base string) *Local {
	if base == "" {
		base = "mnt/cp-files"
	}
	return &Local{base: base}
}

func (l *Local) Put(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(l.base, 0o755); err != nil {
		return "", common.WrapError(common.ErrPersistence, fmt.Errorf("create storage dir: %w", err))
	}
	stored := uuid.New().String() + "_" + filepath.Base(name)
	path := filepath.Join(l.base, stored)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", common.WrapError(common.ErrPersistence, fmt.Errorf("write %s: %w", path, err))
	}
	return stored, nil
}

func (l *Local) Get(_ context.Context, location string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.base, filepath.Base(location)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.WrapError(common.ErrNotFound, err)
		}
		return nil, common.WrapError(common.ErrPersistence, err)
	}
	return data, nil
}

func (l *Local) Type() string { return "local" }
