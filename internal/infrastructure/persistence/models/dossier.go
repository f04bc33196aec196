package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/google/uuid"
)

// DossierSnapshotModel persists one dossier snapshot per company. The nine
// base sections are stored as a single JSON payload; rebuilds replace the row
// wholesale (last write wins).
type DossierSnapshotModel struct {
	CompanyID uuid.UUID `gorm:"type:uuid;primaryKey"`
	BuiltAt   time.Time `gorm:"not null;index"`
	Reason    string    `gorm:"type:varchar(50)"`
	Version   int       `gorm:"not null;default:1"`
	Payload   string    `gorm:"type:jsonb;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DossierSnapshotModel) TableName() string {
	return "dossier_snapshots"
}

// dossierPayload is the JSON shape of the persisted sections.
type dossierPayload struct {
	Identity   intel.IdentitySection   `json:"identity"`
	Financials intel.FinancialsSection `json:"financials"`
	Assessment intel.AssessmentSection `json:"assessment"`
	Valuation  intel.ValuationSection  `json:"valuation"`
	Tasks      intel.TasksSection      `json:"tasks"`
	Evidence   intel.EvidenceSection   `json:"evidence"`
	Signals    intel.SignalsSection    `json:"signals"`
	Engagement intel.EngagementSection `json:"engagement"`
	AIContext  intel.AIContextSection  `json:"aiContext"`
}

// ToDomain converts the persistence model to a domain snapshot.
func (m *DossierSnapshotModel) ToDomain() (*intel.DossierSnapshot, error) {
	var payload dossierPayload
	if err := json.Unmarshal([]byte(m.Payload), &payload); err != nil {
		return nil, fmt.Errorf("corrupt dossier payload for company %s: %w", m.CompanyID, err)
	}
	return &intel.DossierSnapshot{
		CompanyID:  m.CompanyID,
		BuiltAt:    m.BuiltAt,
		Reason:     m.Reason,
		Version:    m.Version,
		Identity:   payload.Identity,
		Financials: payload.Financials,
		Assessment: payload.Assessment,
		Valuation:  payload.Valuation,
		Tasks:      payload.Tasks,
		Evidence:   payload.Evidence,
		Signals:    payload.Signals,
		Engagement: payload.Engagement,
		AIContext:  payload.AIContext,
	}, nil
}

// DossierSnapshotModelFromDomain creates the persistence model for a snapshot.
func DossierSnapshotModelFromDomain(s *intel.DossierSnapshot) (*DossierSnapshotModel, error) {
	raw, err := json.Marshal(dossierPayload{
		Identity:   s.Identity,
		Financials: s.Financials,
		Assessment: s.Assessment,
		Valuation:  s.Valuation,
		Tasks:      s.Tasks,
		Evidence:   s.Evidence,
		Signals:    s.Signals,
		Engagement: s.Engagement,
		AIContext:  s.AIContext,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal dossier payload: %w", err)
	}
	return &DossierSnapshotModel{
		CompanyID: s.CompanyID,
		BuiltAt:   s.BuiltAt,
		Reason:    s.Reason,
		Version:   s.Version,
		Payload:   string(raw),
	}, nil
}
