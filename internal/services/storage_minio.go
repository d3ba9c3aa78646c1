package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type minioStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *zap.Logger
}

// NewMinIOStorage stores files as objects in a single bucket. Files are still
// served through the API so fileUrl does not depend on bucket policy.
func NewMinIOStorage(endpoint, accessKey, secretKey, bucket string, useSSL bool, baseURL string, log *zap.Logger) (StorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &minioStorage{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
		logger:  log.Named("minio"),
	}, nil
}

// EnsureUploadDir creates the bucket when it does not exist yet.
func (m *minioStorage) EnsureUploadDir(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", m.bucket, err)
	}
	if exists {
		m.logger.Debug("bucket already exists", zap.String("bucket", m.bucket))
		return nil
	}

	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", m.bucket, err)
	}
	m.logger.Info("bucket created", zap.String("bucket", m.bucket))
	return nil
}

func (m *minioStorage) SaveFile(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	key := newFileKey(filename, contentType)

	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return key, nil
}

func (m *minioStorage) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if !validKey(key) {
		return nil, "", ErrFileNotFound
	}

	info, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", ErrFileNotFound
		}
		return nil, "", fmt.Errorf("failed to stat object: %w", err)
	}

	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object: %w", err)
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = ContentTypeForFilename(key)
	}
	return obj, contentType, nil
}

func (m *minioStorage) FileURL(key string) string {
	return fileURL(m.baseURL, key)
}

func (m *minioStorage) DeleteFile(ctx context.Context, key string) error {
	if !validKey(key) {
		return nil
	}
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
