package intel

import "sort"

const (
	// RecentResponseLimit caps the recentResponses display list.
	RecentResponseLimit = 20
	// MaterialChangeLimit caps the materialChanges list.
	MaterialChangeLimit = 10
	// DefaultHighChangeThreshold is the affirmative-answer count at which a
	// category is reported as high-change.
	DefaultHighChangeThreshold = 2
)

// DisclosuresSection summarizes the company's periodic change disclosures.
// RecentResponses is a display cap; MaterialChanges and HighChangeCategories
// are always derived from the complete response history.
type DisclosuresSection struct {
	TotalCompleted       int                  `json:"totalCompleted"`
	TotalSkipped         int                  `json:"totalSkipped"`
	RecentResponses      []DisclosureResponse `json:"recentResponses"`
	MaterialChanges      []DisclosureResponse `json:"materialChanges"`
	HighChangeCategories []string             `json:"highChangeCategories"`
}

// EmptyDisclosuresSection returns the documented empty default.
func EmptyDisclosuresSection() DisclosuresSection {
	return DisclosuresSection{
		RecentResponses:      []DisclosureResponse{},
		MaterialChanges:      []DisclosureResponse{},
		HighChangeCategories: []string{},
	}
}

// BuildDisclosuresSection aggregates disclosure cycle markers and the full,
// time-descending response history into one disclosures section.
func BuildDisclosuresSection(markers []DisclosureMarker, responses []DisclosureResponse) DisclosuresSection {
	section := EmptyDisclosuresSection()

	for _, m := range markers {
		switch m.Status {
		case DisclosureCompleted:
			section.TotalCompleted++
		case DisclosureSkipped:
			section.TotalSkipped++
		}
	}

	for i, r := range responses {
		if i >= RecentResponseLimit {
			break
		}
		section.RecentResponses = append(section.RecentResponses, r)
	}

	// Material changes come from the full history, not the display window.
	for _, r := range responses {
		if !r.TriggeredFollowUp {
			continue
		}
		section.MaterialChanges = append(section.MaterialChanges, r)
		if len(section.MaterialChanges) == MaterialChangeLimit {
			break
		}
	}

	section.HighChangeCategories = HighChangeCategories(responses, DefaultHighChangeThreshold)
	return section
}

// HighChangeCategories returns the categories whose affirmative-answer count
// across the full response list meets the threshold, sorted by count
// descending. Ties keep the order categories were first encountered in.
func HighChangeCategories(responses []DisclosureResponse, threshold int) []string {
	if threshold <= 0 {
		threshold = DefaultHighChangeThreshold
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, r := range responses {
		if !r.Answer {
			continue
		}
		if _, seen := counts[r.Category]; !seen {
			order = append(order, r.Category)
		}
		counts[r.Category]++
	}

	names := make([]string, 0, len(order))
	for _, c := range order {
		if counts[c] >= threshold {
			names = append(names, c)
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		return counts[names[i]] > counts[names[j]]
	})
	return names
}
