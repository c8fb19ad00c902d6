package dbbackup

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
)

// LocalStorage implements Storage on a flat directory of the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	// Create backup directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

// Upload copies a file into the backup directory
func (s *LocalStorage) Upload(ctx context.Context, sourcePath string, backupName string) error {
	destPath := filepath.Join(s.basePath, backupName)

	// Open source file
	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() {
		if errClose := src.Close(); errClose != nil {
			log.Printf("failed to close source file: %v", errClose)
		}
	}()

	// Create destination file
	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if errClose := dst.Close(); errClose != nil {
			log.Printf("failed to close destination file: %v", errClose)
		}
	}()

	// Copy with context cancellation support
	done := make(chan error, 1)
	go func() {
		_, errIoCopy := io.Copy(dst, src)
		done <- errIoCopy
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err = <-done:
		if err != nil {
			return fmt.Errorf("failed to copy file: %w", err)
		}
	}

	return nil
}

// List returns the names of all regular files in the backup directory.
// The scan is not recursive; recognizing which names are backups is the
// template matcher's job, not the storage backend's.
func (s *LocalStorage) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	// Deterministic listing order
	sort.Strings(names)

	return names, nil
}

// Delete removes a backup file
func (s *LocalStorage) Delete(ctx context.Context, backupName string) error {
	filePath := filepath.Join(s.basePath, backupName)
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	return nil
}

// Type returns the storage type name
func (s *LocalStorage) Type() string {
	return "local"
}
