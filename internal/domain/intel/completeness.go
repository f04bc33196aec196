package intel

// Completeness is the four-tier sufficiency grade assigned to each section.
type Completeness string

const (
	CompletenessNone     Completeness = "none"
	CompletenessMinimal  Completeness = "minimal"
	CompletenessPartial  Completeness = "partial"
	CompletenessComplete Completeness = "complete"
)

// The classifier below is a fixed table of pure functions, one per section.
// Boundary values are contractual: downstream clients branch on the grade, so
// a shifted threshold silently changes which companies get which prompts.

// ClassifyIdentity grades the identity section. Guards apply in order: a
// missing name dominates, then missing profile factors, then missing
// description.
func ClassifyIdentity(s IdentitySection) Completeness {
	switch {
	case s.Name == "":
		return CompletenessNone
	case !s.HasProfileFactors():
		return CompletenessMinimal
	case s.Description == "":
		return CompletenessPartial
	default:
		return CompletenessComplete
	}
}

// ClassifyFinancials passes through the grade assigned when the dossier was
// built, defaulting to minimal when the builder recorded none.
func ClassifyFinancials(s FinancialsSection) Completeness {
	if s.Completeness == "" {
		return CompletenessMinimal
	}
	return s.Completeness
}

// ClassifyAssessment grades assessment progress: complete requires at least
// ten answered questions with every category covered.
func ClassifyAssessment(s AssessmentSection) Completeness {
	switch {
	case s.LastCompletedAt == nil:
		return CompletenessNone
	case s.QuestionsAnswered < 10:
		return CompletenessMinimal
	case len(s.UnansweredCategories) > 0:
		return CompletenessPartial
	default:
		return CompletenessComplete
	}
}

// ClassifyValuation grades by valuation history depth: fewer than two
// snapshots is minimal, two or three partial, four or more complete.
func ClassifyValuation(s ValuationSection) Completeness {
	switch {
	case s.CurrentValue == nil:
		return CompletenessNone
	case len(s.History) < 2:
		return CompletenessMinimal
	case len(s.History) <= 3:
		return CompletenessPartial
	default:
		return CompletenessComplete
	}
}

// ClassifyTasks grades by completed-task count with five as the complete bar.
func ClassifyTasks(s TasksSection) Completeness {
	switch {
	case s.TotalTasks == 0:
		return CompletenessNone
	case s.CompletedTasks == 0:
		return CompletenessMinimal
	case s.CompletedTasks < 5:
		return CompletenessPartial
	default:
		return CompletenessComplete
	}
}

// ClassifyEvidence grades by how many expected evidence categories still have
// no document.
func ClassifyEvidence(s EvidenceSection) Completeness {
	switch {
	case s.DocumentCount == 0:
		return CompletenessNone
	case len(s.CategoryGaps) >= 4:
		return CompletenessMinimal
	case len(s.CategoryGaps) >= 1:
		return CompletenessPartial
	default:
		return CompletenessComplete
	}
}

// ClassifySignals is two-tier: anything open or any value movement makes the
// section complete, otherwise it is minimal.
func ClassifySignals(s SignalsSection) Completeness {
	if len(s.OpenSignals) == 0 && s.ValueMovementEvents == 0 {
		return CompletenessMinimal
	}
	return CompletenessComplete
}

// ClassifyEngagement grades by completed check-ins; a company with no
// check-ins and no recorded activity at all grades none.
func ClassifyEngagement(s EngagementSection) Completeness {
	switch {
	case s.CheckInsCompleted == 0 && s.DaysSinceActivity >= NoActivitySentinel:
		return CompletenessNone
	case s.CheckInsCompleted == 0:
		return CompletenessMinimal
	case s.CheckInsCompleted <= 3:
		return CompletenessPartial
	default:
		return CompletenessComplete
	}
}

// ClassifyAIContext is a presence check: any risk factor or focus area makes
// the section complete.
func ClassifyAIContext(s AIContextSection) Completeness {
	if len(s.RiskFactors) > 0 || len(s.FocusAreas) > 0 {
		return CompletenessComplete
	}
	return CompletenessMinimal
}

// ClassifyNAFlags is two-tier: the section is complete as soon as anything
// was flagged, none otherwise.
func ClassifyNAFlags(s NAFlagsSection) Completeness {
	if s.TotalNACount == 0 {
		return CompletenessNone
	}
	return CompletenessComplete
}

// ClassifyDisclosures grades by cycle participation and recent response
// volume, with five recent responses as the complete bar.
func ClassifyDisclosures(s DisclosuresSection) Completeness {
	switch {
	case s.TotalCompleted == 0 && s.TotalSkipped == 0:
		return CompletenessNone
	case s.TotalCompleted == 0:
		return CompletenessMinimal
	case len(s.RecentResponses) < 5:
		return CompletenessPartial
	default:
		return CompletenessComplete
	}
}

// ClassifyNotes grades by total note count: 1-2 minimal, 3-9 partial, ten or
// more complete.
func ClassifyNotes(s NotesSection) Completeness {
	switch {
	case s.TotalNotesCount == 0:
		return CompletenessNone
	case s.TotalNotesCount <= 2:
		return CompletenessMinimal
	case s.TotalNotesCount <= 9:
		return CompletenessPartial
	default:
		return CompletenessComplete
	}
}
