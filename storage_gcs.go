package dbbackup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"sort"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSStorage implements Storage for Google Cloud Storage
type GCSStorage struct {
	client       *gcs.Client
	bucket       string
	backupPrefix string
}

// NewGCSStorage creates a new GCS storage instance. If credentialsFile is
// empty, application default credentials are used.
func NewGCSStorage(bucket, backupPrefix, credentialsFile string) (*GCSStorage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("GCS bucket name is required")
	}

	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client:       client,
		bucket:       bucket,
		backupPrefix: backupPrefix,
	}, nil
}

// Upload uploads a file to GCS
func (s *GCSStorage) Upload(ctx context.Context, sourcePath string, backupName string) error {
	file, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() {
		if errClose := file.Close(); errClose != nil {
			log.Printf("failed to close source file: %v", errClose)
		}
	}()

	w := s.client.Bucket(s.bucket).Object(s.getKey(backupName)).NewWriter(ctx)
	if _, err = io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to upload to GCS: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS upload: %w", err)
	}

	return nil
}

// List returns the names of all objects under the configured prefix
func (s *GCSStorage) List(ctx context.Context) ([]string, error) {
	prefix := s.backupPrefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var names []string
	it := s.client.Bucket(s.bucket).Objects(ctx, &gcs.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list GCS objects: %w", err)
		}
		names = append(names, path.Base(attrs.Name))
	}

	// Deterministic listing order
	sort.Strings(names)

	return names, nil
}

// Delete removes a backup from GCS
func (s *GCSStorage) Delete(ctx context.Context, backupName string) error {
	if err := s.client.Bucket(s.bucket).Object(s.getKey(backupName)).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete GCS object: %w", err)
	}
	return nil
}

// Type returns the storage type name
func (s *GCSStorage) Type() string {
	return "gcs"
}

// getKey returns the full object key for a backup name
func (s *GCSStorage) getKey(backupName string) string {
	if s.backupPrefix == "" {
		return backupName
	}
	return strings.TrimSuffix(s.backupPrefix, "/") + "/" + backupName
}
