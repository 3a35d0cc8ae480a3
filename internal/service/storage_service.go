package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"exam_proctor_backend/internal/config"
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/util"
	"exam_proctor_backend/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider abstracts where uploaded media (screenshots, audio
// evidence, ID photos) ends up.
type StorageProvider interface {
	Save(ctx context.Context, relPath string, r io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, relPath string) (io.ReadCloser, error)
}

func NewStorageProvider(cfg *config.Config) (StorageProvider, error) {
	switch cfg.Storage.Type {
	case "minio":
		return newMinioStorage(cfg)
	default:
		return &LocalStorage{BasePath: cfg.Storage.LocalPath}, nil
	}
}

type LocalStorage struct {
	BasePath string
}

func (l *LocalStorage) Save(_ context.Context, relPath string, r io.Reader, _ int64, _ string) (string, error) {
	full, err := util.SafeJoin(l.BasePath, relPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", err
	}

	f, err := os.Create(full)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return relPath, nil
}

func (l *LocalStorage) Open(_ context.Context, relPath string) (io.ReadCloser, error) {
	full, err := util.SafeJoin(l.BasePath, relPath)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

type MinioStorage struct {
	client *minio.Client
	bucket string
}

func newMinioStorage(cfg *config.Config) (*MinioStorage, error) {
	client, err := minio.New(cfg.Storage.MinioEndpoint, &minio.Options{
		Creds: credentials.NewStaticV4(cfg.Storage.MinioAccessID, cfg.Storage.MinioSecret, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Storage.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Storage.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Log.Info("Created storage bucket", zap.String("bucket", cfg.Storage.MinioBucket))
	}

	return &MinioStorage{client: client, bucket: cfg.Storage.MinioBucket}, nil
}

func (m *MinioStorage) Save(ctx context.Context, relPath string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, relPath, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return relPath, nil
}

func (m *MinioStorage) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	return m.client.GetObject(ctx, m.bucket, relPath, minio.GetObjectOptions{})
}

// MediaObjectName builds a unique object path for an uploaded file, keyed
// by kind (screenshots, captures, audio, id_photos) and session or user.
func MediaObjectName(kind string, ownerID uint, ext string) string {
	return fmt.Sprintf("%s/%d/%s%s", kind, ownerID, model.GenerateUUID(), ext)
}
