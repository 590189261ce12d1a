package storage

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore uploads objects to a Google Cloud Storage bucket and serves them
// from the bucket's public URL.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore authenticates with a service-account key when keyPath is set,
// otherwise with application default credentials.
func NewGCSStore(ctx context.Context, bucket, keyPath string) (*GCSStore, error) {
	var opts []option.ClientOption
	if keyPath != "" {
		opts = append(opts, option.WithCredentialsFile(keyPath))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Save(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(objectName)
	writer := obj.NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, r); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to copy upload to GCS object %s: %w", objectName, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer for %s: %w", objectName, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName), nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
