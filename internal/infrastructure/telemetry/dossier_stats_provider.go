// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// GormDossierStatsProvider implements DossierStatsProvider using GORM.
// It queries the dossier_snapshots table directly for aggregated counts.
type GormDossierStatsProvider struct {
	db *gorm.DB
}

// NewGormDossierStatsProvider creates a new GormDossierStatsProvider.
func NewGormDossierStatsProvider(db *gorm.DB) *GormDossierStatsProvider {
	return &GormDossierStatsProvider{db: db}
}

// CountSnapshots returns the total number of persisted dossier snapshots.
func (p *GormDossierStatsProvider) CountSnapshots(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("dossier_snapshots").
		Count(&count).Error

	return count, err
}

// CountStaleSnapshots returns the number of snapshots built before the cutoff.
func (p *GormDossierStatsProvider) CountStaleSnapshots(ctx context.Context, builtBefore time.Time) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("dossier_snapshots").
		Where("built_at < ?", builtBefore).
		Count(&count).Error

	return count, err
}
