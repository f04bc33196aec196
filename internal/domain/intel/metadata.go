package intel

import "time"

// SectionMetadata is the freshness and sufficiency record attached to each of
// the twelve sections.
type SectionMetadata struct {
	LastUpdatedAt time.Time    `json:"lastUpdatedAt"`
	HasData       bool         `json:"hasData"`
	Completeness  Completeness `json:"completeness"`
}

// BuildSectionMetadata derives the metadata map over all twelve sections of a
// profile. Each section's lastUpdatedAt uses its dedicated timestamp candidate
// when the bundle has one; base sections fall back to the dossier build time,
// supplemental sections fall back to now.
func BuildSectionMetadata(p *Profile, bundle TimestampBundle, now time.Time) map[SectionName]SectionMetadata {
	meta := make(map[SectionName]SectionMetadata, len(AllSectionNames()))
	for _, name := range AllSectionNames() {
		meta[name] = sectionMetadata(p, name, bundle, now)
	}
	return meta
}

func sectionMetadata(p *Profile, name SectionName, bundle TimestampBundle, now time.Time) SectionMetadata {
	switch name {
	case SectionIdentity:
		return SectionMetadata{
			LastUpdatedAt: baseTimestamp(nil, bundle, now),
			HasData:       p.Identity.Name != "",
			Completeness:  ClassifyIdentity(p.Identity),
		}
	case SectionFinancials:
		return SectionMetadata{
			LastUpdatedAt: baseTimestamp(nil, bundle, now),
			HasData:       p.Financials.HasData(),
			Completeness:  ClassifyFinancials(p.Financials),
		}
	case SectionAssessment:
		return SectionMetadata{
			LastUpdatedAt: baseTimestamp(bundle.AssessmentUpdatedAt, bundle, now),
			HasData:       p.Assessment.QuestionsAnswered > 0,
			Completeness:  ClassifyAssessment(p.Assessment),
		}
	case SectionValuation:
		return SectionMetadata{
			LastUpdatedAt: baseTimestamp(nil, bundle, now),
			HasData:       p.Valuation.CurrentValue != nil,
			Completeness:  ClassifyValuation(p.Valuation),
		}
	case SectionTasks:
		return SectionMetadata{
			LastUpdatedAt: baseTimestamp(bundle.TaskCompletedAt, bundle, now),
			HasData:       p.Tasks.TotalTasks > 0,
			Completeness:  ClassifyTasks(p.Tasks),
		}
	case SectionEvidence:
		return SectionMetadata{
			LastUpdatedAt: baseTimestamp(bundle.DocumentUpdatedAt, bundle, now),
			HasData:       p.Evidence.DocumentCount > 0,
			Completeness:  ClassifyEvidence(p.Evidence),
		}
	case SectionSignals:
		return SectionMetadata{
			LastUpdatedAt: baseTimestamp(bundle.SignalCreatedAt, bundle, now),
			HasData:       len(p.Signals.OpenSignals) > 0 || p.Signals.ValueMovementEvents > 0,
			Completeness:  ClassifySignals(p.Signals),
		}
	case SectionEngagement:
		return SectionMetadata{
			LastUpdatedAt: baseTimestamp(bundle.CheckInCompletedAt, bundle, now),
			HasData:       p.Engagement.CheckInsCompleted > 0 || p.Engagement.DaysSinceActivity < NoActivitySentinel,
			Completeness:  ClassifyEngagement(p.Engagement),
		}
	case SectionAIContext:
		return SectionMetadata{
			LastUpdatedAt: baseTimestamp(nil, bundle, now),
			HasData:       len(p.AIContext.RiskFactors) > 0 || len(p.AIContext.FocusAreas) > 0,
			Completeness:  ClassifyAIContext(p.AIContext),
		}
	case SectionNAFlags:
		return SectionMetadata{
			LastUpdatedAt: supplementalTimestamp(bundle.AssessmentUpdatedAt, now),
			HasData:       p.NAFlags.TotalNACount > 0,
			Completeness:  ClassifyNAFlags(p.NAFlags),
		}
	case SectionDisclosures:
		return SectionMetadata{
			LastUpdatedAt: supplementalTimestamp(bundle.DisclosureRespondedAt, now),
			HasData:       p.Disclosures.TotalCompleted > 0 || p.Disclosures.TotalSkipped > 0 || len(p.Disclosures.RecentResponses) > 0,
			Completeness:  ClassifyDisclosures(p.Disclosures),
		}
	case SectionNotes:
		notesCandidate := latestOf(bundle.AssessmentUpdatedAt, bundle.TaskCompletedAt, bundle.CheckInCompletedAt)
		return SectionMetadata{
			LastUpdatedAt: supplementalTimestamp(notesCandidate, now),
			HasData:       p.Notes.TotalNotesCount > 0,
			Completeness:  ClassifyNotes(p.Notes),
		}
	}
	return SectionMetadata{}
}

// baseTimestamp resolves freshness for a dossier-backed section: dedicated
// candidate, then dossier build time, then now.
func baseTimestamp(candidate *time.Time, bundle TimestampBundle, now time.Time) time.Time {
	if candidate != nil {
		return *candidate
	}
	if bundle.DossierBuiltAt != nil {
		return *bundle.DossierBuiltAt
	}
	return now
}

// supplementalTimestamp resolves freshness for a section with no dossier
// backing: dedicated candidate, then now.
func supplementalTimestamp(candidate *time.Time, now time.Time) time.Time {
	if candidate != nil {
		return *candidate
	}
	return now
}

func latestOf(candidates ...*time.Time) *time.Time {
	var latest *time.Time
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if latest == nil || c.After(*latest) {
			latest = c
		}
	}
	return latest
}
