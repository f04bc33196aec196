package intel

import "sort"

// heavyNARatio is the share of a category's questions that must be marked
// not applicable before the whole category counts as heavily-NA.
const heavyNARatio = 0.5

// NAFlagsSection collects everything the company has explicitly declared
// not applicable, so downstream reasoning clients stop asking about it.
type NAFlagsSection struct {
	AssessmentNAFlags   []NAFlag `json:"assessmentNAFlags"`
	TaskNAFlags         []NATask `json:"taskNAFlags"`
	HeavilyNACategories []string `json:"heavilyNACategories"`
	TotalNACount        int      `json:"totalNACount"`
}

// EmptyNAFlagsSection returns the documented empty default: zero counts and
// empty, non-nil lists.
func EmptyNAFlagsSection() NAFlagsSection {
	return NAFlagsSection{
		AssessmentNAFlags:   []NAFlag{},
		TaskNAFlags:         []NATask{},
		HeavilyNACategories: []string{},
	}
}

// BuildNAFlagsSection aggregates NA-tagged assessment responses, NA tasks and
// the per-category question breakdown into one NA-flags section.
//
// At most one flag is kept per question id; when a question was flagged more
// than once, the most recently flagged record wins. The result is ordered by
// flag time descending. A category is heavily-NA when its NA share over all
// distinct questions exceeds heavyNARatio.
func BuildNAFlagsSection(flags []NAFlag, tasks []NATask, breakdown []CategoryNACount) NAFlagsSection {
	section := EmptyNAFlagsSection()

	order := make([]string, 0, len(flags))
	latest := make(map[string]NAFlag, len(flags))
	for _, f := range flags {
		cur, seen := latest[f.QuestionID]
		if !seen {
			order = append(order, f.QuestionID)
			latest[f.QuestionID] = f
			continue
		}
		if f.FlaggedAt.After(cur.FlaggedAt) {
			latest[f.QuestionID] = f
		}
	}

	deduped := make([]NAFlag, 0, len(order))
	for _, qid := range order {
		deduped = append(deduped, latest[qid])
	}
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].FlaggedAt.After(deduped[j].FlaggedAt)
	})
	section.AssessmentNAFlags = deduped

	if len(tasks) > 0 {
		section.TaskNAFlags = tasks
	}

	for _, c := range breakdown {
		if c.TotalQuestions == 0 {
			continue
		}
		if float64(c.NACount)/float64(c.TotalQuestions) > heavyNARatio {
			section.HeavilyNACategories = append(section.HeavilyNACategories, c.Category)
		}
	}

	section.TotalNACount = len(section.AssessmentNAFlags) + len(section.TaskNAFlags)
	return section
}

// BuildCategoryNABreakdown tallies distinct questions and NA counts per
// category. Categories with no questions get a zero-filled entry; categories
// appearing only in the marks are appended after the known ones.
func BuildCategoryNABreakdown(categories []string, marks []CategoryNAMark) []CategoryNACount {
	index := make(map[string]int, len(categories))
	out := make([]CategoryNACount, 0, len(categories))

	for _, name := range categories {
		if _, seen := index[name]; seen {
			continue
		}
		index[name] = len(out)
		out = append(out, CategoryNACount{Category: name})
	}

	for _, m := range marks {
		i, seen := index[m.Category]
		if !seen {
			i = len(out)
			index[m.Category] = i
			out = append(out, CategoryNACount{Category: m.Category})
		}
		out[i].TotalQuestions++
		if m.IsNA {
			out[i].NACount++
		}
	}
	return out
}
