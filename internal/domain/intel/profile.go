package intel

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Profile is the composite, twelve-section intelligence read-model for one
// company. It is recomputed from live source data on every request; nothing
// in it is owned beyond the request that built it.
type Profile struct {
	CompanyID   uuid.UUID `json:"companyId"`
	GeneratedAt time.Time `json:"generatedAt"`

	Identity   IdentitySection   `json:"identity"`
	Financials FinancialsSection `json:"financials"`
	Assessment AssessmentSection `json:"assessment"`
	Valuation  ValuationSection  `json:"valuation"`
	Tasks      TasksSection      `json:"tasks"`
	Evidence   EvidenceSection   `json:"evidence"`
	Signals    SignalsSection    `json:"signals"`
	Engagement EngagementSection `json:"engagement"`
	AIContext  AIContextSection  `json:"aiContext"`

	NAFlags     NAFlagsSection     `json:"naFlags"`
	Disclosures DisclosuresSection `json:"disclosures"`
	Notes       NotesSection       `json:"notes"`

	Metadata map[SectionName]SectionMetadata `json:"metadata"`

	// Degraded marks a build where one or more supplemental sources failed
	// and their documented empty defaults were substituted.
	Degraded         bool          `json:"degraded,omitempty"`
	DegradedSections []SectionName `json:"degradedSections,omitempty"`
}

// ApplySnapshot copies the nine base sections of a dossier snapshot into the
// profile.
func (p *Profile) ApplySnapshot(s *DossierSnapshot) {
	p.Identity = s.Identity
	p.Financials = s.Financials
	p.Assessment = s.Assessment
	p.Valuation = s.Valuation
	p.Tasks = s.Tasks
	p.Evidence = s.Evidence
	p.Signals = s.Signals
	p.Engagement = s.Engagement
	p.AIContext = s.AIContext
}

// Section returns the content of one named section. Unknown names return
// ErrInvalidSection.
func (p *Profile) Section(name SectionName) (interface{}, error) {
	switch name {
	case SectionIdentity:
		return p.Identity, nil
	case SectionFinancials:
		return p.Financials, nil
	case SectionAssessment:
		return p.Assessment, nil
	case SectionValuation:
		return p.Valuation, nil
	case SectionTasks:
		return p.Tasks, nil
	case SectionEvidence:
		return p.Evidence, nil
	case SectionSignals:
		return p.Signals, nil
	case SectionEngagement:
		return p.Engagement, nil
	case SectionAIContext:
		return p.AIContext, nil
	case SectionNAFlags:
		return p.NAFlags, nil
	case SectionDisclosures:
		return p.Disclosures, nil
	case SectionNotes:
		return p.Notes, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidSection, string(name))
}

// MarkDegraded records that a section's source failed and its empty default
// was substituted.
func (p *Profile) MarkDegraded(name SectionName) {
	p.Degraded = true
	p.DegradedSections = append(p.DegradedSections, name)
}
