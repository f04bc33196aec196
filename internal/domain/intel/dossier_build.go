package intel

import (
	"fmt"
	"sort"
	"time"
)

// focusAreaLimit caps how many weak categories feed the AI context.
const focusAreaLimit = 3

// BuildIdentitySection maps the raw company record onto the identity section.
func BuildIdentitySection(c *CompanyProfile) IdentitySection {
	if c == nil {
		return IdentitySection{}
	}
	return IdentitySection{
		Name:          c.Name,
		Description:   c.Description,
		Industry:      c.Industry,
		BusinessModel: c.BusinessModel,
		TeamSize:      c.TeamSize,
		FoundedYear:   c.FoundedYear,
		RevenueModel:  c.RevenueModel,
	}
}

// GradeFinancials builds the financials section and assigns its pass-through
// completeness grade: both figures reported is complete, one is partial,
// none is minimal.
func GradeFinancials(f *FinancialFigures) FinancialsSection {
	if f == nil {
		return FinancialsSection{Completeness: CompletenessMinimal}
	}
	s := FinancialsSection{
		LatestRevenue: f.Revenue,
		LatestProfit:  f.Profit,
		FiscalYear:    f.FiscalYear,
	}
	switch {
	case f.Revenue != nil && f.Profit != nil:
		s.Completeness = CompletenessComplete
	case f.Revenue != nil || f.Profit != nil:
		s.Completeness = CompletenessPartial
	default:
		s.Completeness = CompletenessMinimal
	}
	return s
}

// BuildEvidenceSection computes category gaps against the canonical evidence
// checklist.
func BuildEvidenceSection(stats EvidenceStats) EvidenceSection {
	present := make(map[string]bool, len(stats.PresentCategories))
	for _, c := range stats.PresentCategories {
		present[c] = true
	}
	gaps := make([]string, 0)
	for _, c := range EvidenceCategories() {
		if !present[c] {
			gaps = append(gaps, c)
		}
	}
	uploads := stats.RecentUploads
	if uploads == nil {
		uploads = []DocumentDigest{}
	}
	return EvidenceSection{
		DocumentCount: stats.DocumentCount,
		CategoryGaps:  gaps,
		RecentUploads: uploads,
	}
}

// BuildEngagementSection derives days-since-activity from the last recorded
// activity, holding the sentinel for companies that were never active.
func BuildEngagementSection(stats EngagementStats, now time.Time) EngagementSection {
	s := EngagementSection{
		CheckInsCompleted: stats.CheckInsCompleted,
		DaysSinceActivity: NoActivitySentinel,
		LastActivityAt:    stats.LastActivityAt,
	}
	if stats.LastActivityAt != nil {
		days := int(now.Sub(*stats.LastActivityAt).Hours() / 24)
		if days < 0 {
			days = 0
		}
		if days > NoActivitySentinel {
			days = NoActivitySentinel
		}
		s.DaysSinceActivity = days
	}
	return s
}

// BuildAIContextSection derives prompt hints from already-built sections:
// high-severity open signals become risk factors, the weakest scored
// categories become focus areas.
func BuildAIContextSection(identity IdentitySection, assessment AssessmentSection, signals SignalsSection) AIContextSection {
	ctx := AIContextSection{
		RiskFactors: []string{},
		FocusAreas:  []string{},
	}

	for _, sig := range signals.OpenSignals {
		if sig.Severity == SignalSeverityHigh || sig.Severity == SignalSeverityCritical {
			ctx.RiskFactors = append(ctx.RiskFactors, sig.Title)
		}
	}

	scores := append([]CategoryScore(nil), assessment.CategoryScores...)
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score.LessThan(scores[j].Score)
	})
	for i, cs := range scores {
		if i == focusAreaLimit {
			break
		}
		ctx.FocusAreas = append(ctx.FocusAreas, cs.Category)
	}

	if identity.Name != "" {
		if identity.Industry != "" {
			ctx.Summary = fmt.Sprintf("%s (%s)", identity.Name, identity.Industry)
		} else {
			ctx.Summary = identity.Name
		}
	}
	return ctx
}
