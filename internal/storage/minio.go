package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/cube-dp/lease-classifier/internal/common"
)

// Minio stores documents as objects in a single bucket.
type Minio struct {
	client *minio.Client
	bucket string
}

func NewMinio(cfg common.MinioStorageConfig) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Minio{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (m *Minio) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

func (m *Minio) Put(ctx context.Context, name string, data []byte) (string, error) {
	object := uuid.New().String() + "_" + filepath.Base(name)
	_, err := m.client.PutObject(ctx, m.bucket, object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return "", common.WrapError(common.ErrPersistence, fmt.Errorf("upload %s: %w", object, err))
	}
	return object, nil
}

func (m *Minio) Get(ctx context.Context, location string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, location, minio.GetObjectOptions{})
	if err != nil {
		return nil, common.WrapError(common.ErrPersistence, fmt.Errorf("get %s: %w", location, err))
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, common.WrapError(common.ErrPersistence, fmt.Errorf("read %s: %w", location, err))
	}
	return data, nil
}

func (m *Minio) Type() string { return "minio" }
