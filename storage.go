package dbbackup

import (
	"context"
	"fmt"
)

// Storage type names accepted by New.
const (
	StorageTypeLocal = "local"
	StorageTypeS3    = "s3"
	StorageTypeGCS   = "gcs"
)

// Storage is where backup files end up. Listing returns bare backup names;
// each backend resolves names against its own base path or object prefix.
type Storage interface {
	Upload(ctx context.Context, sourcePath string, backupName string) error
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, backupName string) error
	Type() string
}

// New creates the storage backend selected by the configuration.
func New(cfg *Config) (Storage, error) {
	switch cfg.StorageType {
	case StorageTypeLocal:
		return NewLocalStorage(cfg.BackupDir)
	case StorageTypeS3:
		return NewS3Storage(cfg.S3Endpoint, cfg.S3Region, cfg.S3Bucket, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3PathStyle, cfg.S3Prefix)
	case StorageTypeGCS:
		return NewGCSStorage(cfg.GCSBucket, cfg.GCSPrefix, cfg.GCSCredentialsFile)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.StorageType)
	}
}
