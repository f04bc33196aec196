package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	intelapp "github.com/bizlens/backend/internal/application/intel"
	"go.uber.org/zap"
)

// Ensure LocalArchiveStorage implements ArchiveStorage
var _ intelapp.ArchiveStorage = (*LocalArchiveStorage)(nil)

// LocalArchiveStorage stores archives on the local filesystem. It is the
// default backend for development and single-node deployments where an
// S3-compatible store is not available.
type LocalArchiveStorage struct {
	baseDir string
	logger  *zap.Logger
}

// LocalArchiveStorageOption is a functional option for configuring LocalArchiveStorage
type LocalArchiveStorageOption func(*LocalArchiveStorage)

// WithLocalLogger sets a custom logger for LocalArchiveStorage
func WithLocalLogger(logger *zap.Logger) LocalArchiveStorageOption {
	return func(l *LocalArchiveStorage) {
		l.logger = logger
	}
}

// NewLocalArchiveStorage creates a filesystem-backed archive store rooted
// at baseDir, creating the directory if needed.
func NewLocalArchiveStorage(baseDir string, opts ...LocalArchiveStorageOption) (*LocalArchiveStorage, error) {
	if baseDir == "" {
		return nil, errors.New("archive storage directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	storage := &LocalArchiveStorage{
		baseDir: baseDir,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(storage)
	}
	return storage, nil
}

// resolve maps a storage key onto the base directory, rejecting keys that
// would escape it.
func (l *LocalArchiveStorage) resolve(storageKey string) (string, error) {
	if storageKey == "" {
		return "", errors.New("storage key is required")
	}
	cleaned := filepath.Clean(filepath.FromSlash(storageKey))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage key: %s", storageKey)
	}
	return filepath.Join(l.baseDir, cleaned), nil
}

// Upload stores an archive under the given key. The content type is
// ignored; the filesystem has no metadata channel for it.
func (l *LocalArchiveStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	path, err := l.resolve(storageKey)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	return nil
}

// GenerateDownloadURL returns a file:// URL for the archive. Local URLs do
// not actually expire; the expiry timestamp is advisory so callers can
// treat both backends uniformly.
func (l *LocalArchiveStorage) GenerateDownloadURL(
	ctx context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	path, err := l.resolve(storageKey)
	if err != nil {
		return "", time.Time{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to resolve archive path: %w", err)
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	return "file://" + filepath.ToSlash(abs), time.Now().Add(expiresIn), nil
}

// DeleteObject deletes an archive. Deleting a missing archive is not an error.
func (l *LocalArchiveStorage) DeleteObject(ctx context.Context, storageKey string) error {
	path, err := l.resolve(storageKey)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete archive: %w", err)
	}
	return nil
}

// ObjectExists checks if an archive exists.
func (l *LocalArchiveStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	path, err := l.resolve(storageKey)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check archive existence: %w", err)
	}
	return true, nil
}

// BaseDir returns the root directory archives are stored under
func (l *LocalArchiveStorage) BaseDir() string {
	return l.baseDir
}
