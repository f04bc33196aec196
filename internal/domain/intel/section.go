package intel

import "fmt"

// SectionName identifies one of the twelve intelligence profile sections.
// The set is closed: nine base sections carried from the dossier snapshot
// plus three supplemental sections computed by this package.
type SectionName string

const (
	SectionIdentity    SectionName = "identity"
	SectionFinancials  SectionName = "financials"
	SectionAssessment  SectionName = "assessment"
	SectionValuation   SectionName = "valuation"
	SectionTasks       SectionName = "tasks"
	SectionEvidence    SectionName = "evidence"
	SectionSignals     SectionName = "signals"
	SectionEngagement  SectionName = "engagement"
	SectionAIContext   SectionName = "aiContext"
	SectionNAFlags     SectionName = "naFlags"
	SectionDisclosures SectionName = "disclosures"
	SectionNotes       SectionName = "notes"
)

// AllSectionNames returns the twelve section names in canonical order:
// base sections first, supplemental sections last.
func AllSectionNames() []SectionName {
	return []SectionName{
		SectionIdentity,
		SectionFinancials,
		SectionAssessment,
		SectionValuation,
		SectionTasks,
		SectionEvidence,
		SectionSignals,
		SectionEngagement,
		SectionAIContext,
		SectionNAFlags,
		SectionDisclosures,
		SectionNotes,
	}
}

// BaseSectionNames returns the nine sections sourced from the dossier snapshot.
func BaseSectionNames() []SectionName {
	return []SectionName{
		SectionIdentity,
		SectionFinancials,
		SectionAssessment,
		SectionValuation,
		SectionTasks,
		SectionEvidence,
		SectionSignals,
		SectionEngagement,
		SectionAIContext,
	}
}

// SupplementalSectionNames returns the three sections computed from live records.
func SupplementalSectionNames() []SectionName {
	return []SectionName{
		SectionNAFlags,
		SectionDisclosures,
		SectionNotes,
	}
}

// IsSupplemental reports whether the section is computed by the aggregation
// layer rather than carried from the dossier snapshot.
func (s SectionName) IsSupplemental() bool {
	switch s {
	case SectionNAFlags, SectionDisclosures, SectionNotes:
		return true
	}
	return false
}

// IsBase reports whether the section is one of the nine dossier sections.
func (s SectionName) IsBase() bool {
	switch s {
	case SectionIdentity, SectionFinancials, SectionAssessment, SectionValuation,
		SectionTasks, SectionEvidence, SectionSignals, SectionEngagement, SectionAIContext:
		return true
	}
	return false
}

// String returns the wire name of the section.
func (s SectionName) String() string {
	return string(s)
}

// ParseSectionName validates a raw section name from an API request or
// configuration. Unknown names return ErrInvalidSection.
func ParseSectionName(raw string) (SectionName, error) {
	s := SectionName(raw)
	switch s {
	case SectionIdentity, SectionFinancials, SectionAssessment, SectionValuation,
		SectionTasks, SectionEvidence, SectionSignals, SectionEngagement,
		SectionAIContext, SectionNAFlags, SectionDisclosures, SectionNotes:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSection, raw)
}
