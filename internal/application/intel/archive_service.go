package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// archiveContentType is the content type for exported profile archives
const archiveContentType = "application/json"

// ArchiveStorage persists exported profile archives in object storage.
type ArchiveStorage interface {
	// Upload stores data under the given key
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// GenerateDownloadURL returns a time-limited URL for retrieving an archive
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject removes an archive
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists reports whether an archive exists
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ArchiveResult describes one exported profile archive.
type ArchiveResult struct {
	CompanyID  uuid.UUID `json:"companyId"`
	StorageKey string    `json:"storageKey"`
	SizeBytes  int       `json:"sizeBytes"`
	ArchivedAt time.Time `json:"archivedAt"`
}

// ArchiveService exports point-in-time profile snapshots to object storage.
// Archives are full profiles rendered to JSON, keyed by company and export
// time, so a profile's state can be compared across dates later.
type ArchiveService struct {
	profiles *ProfileService
	storage  ArchiveStorage
	logger   *zap.Logger

	now func() time.Time
}

// NewArchiveService creates an archive service
func NewArchiveService(profiles *ProfileService, storage ArchiveStorage, logger *zap.Logger) *ArchiveService {
	return &ArchiveService{
		profiles: profiles,
		storage:  storage,
		logger:   logger,
		now:      time.Now,
	}
}

// Archive assembles the company's full profile and stores it as JSON, keyed
// archives/{companyId}/{timestamp}.json.
func (s *ArchiveService) Archive(ctx context.Context, companyID uuid.UUID) (*ArchiveResult, error) {
	profile, err := s.profiles.BuildProfile(ctx, companyID)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render profile archive: %w", err)
	}

	archivedAt := s.now().UTC()
	key := archiveKey(companyID, archivedAt)

	if err := s.storage.Upload(ctx, key, data, archiveContentType); err != nil {
		return nil, fmt.Errorf("failed to store profile archive: %w", err)
	}

	s.logger.Info("profile archived",
		zap.String("company_id", companyID.String()),
		zap.String("storage_key", key),
		zap.Int("size_bytes", len(data)),
	)

	return &ArchiveResult{
		CompanyID:  companyID,
		StorageKey: key,
		SizeBytes:  len(data),
		ArchivedAt: archivedAt,
	}, nil
}

// DownloadURL returns a time-limited URL for a previously stored archive.
func (s *ArchiveService) DownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	exists, err := s.storage.ObjectExists(ctx, storageKey)
	if err != nil {
		return "", time.Time{}, err
	}
	if !exists {
		return "", time.Time{}, fmt.Errorf("archive %s does not exist", storageKey)
	}
	return s.storage.GenerateDownloadURL(ctx, storageKey, expiresIn)
}

// archiveKey builds the storage key for one export.
func archiveKey(companyID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("archives/%s/%s.json", companyID, at.Format("20060102T150405Z"))
}
