package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/bizlens/backend/internal/domain/shared"
	"github.com/bizlens/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDossierRepository persists dossier snapshots, one row per company.
type GormDossierRepository struct {
	db *gorm.DB
}

// NewGormDossierRepository creates a new GormDossierRepository
func NewGormDossierRepository(db *gorm.DB) *GormDossierRepository {
	return &GormDossierRepository{db: db}
}

// FindByCompany returns the company's snapshot, or shared.ErrNotFound.
func (r *GormDossierRepository) FindByCompany(ctx context.Context, companyID uuid.UUID) (*intel.DossierSnapshot, error) {
	var model models.DossierSnapshotModel
	if err := r.db.WithContext(ctx).First(&model, "company_id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// Upsert inserts or replaces the company's snapshot. Concurrent rebuilds
// converge on the last written row.
func (r *GormDossierRepository) Upsert(ctx context.Context, snapshot *intel.DossierSnapshot) error {
	model, err := models.DossierSnapshotModelFromDomain(snapshot)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// ListStale returns companies whose snapshot predates the cutoff, oldest
// first, capped at limit.
func (r *GormDossierRepository) ListStale(ctx context.Context, builtBefore time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.DossierSnapshotModel{}).
		Where("built_at < ?", builtBefore).
		Order("built_at ASC").
		Limit(limit).
		Pluck("company_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

var _ intel.DossierRepository = (*GormDossierRepository)(nil)
