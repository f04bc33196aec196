package intel

import "strings"

const (
	// AssessmentNoteLimit caps the assessment notes list.
	AssessmentNoteLimit = 30
	// TaskNoteLimit caps the merged task completion notes list.
	TaskNoteLimit = 20
	// CheckInDetailLimit caps the check-in details list.
	CheckInDetailLimit = 12
)

// NotesSection collects the qualitative commentary scattered across the
// company's records: assessment answer notes, task completion notes and
// check-in write-ups.
type NotesSection struct {
	AssessmentNotes     []AssessmentNote `json:"assessmentNotes"`
	TaskCompletionNotes []TaskNote       `json:"taskCompletionNotes"`
	CheckInDetails      []CheckIn        `json:"checkInDetails"`
	TotalNotesCount     int              `json:"totalNotesCount"`
}

// EmptyNotesSection returns the documented empty default.
func EmptyNotesSection() NotesSection {
	return NotesSection{
		AssessmentNotes:     []AssessmentNote{},
		TaskCompletionNotes: []TaskNote{},
		CheckInDetails:      []CheckIn{},
	}
}

// BuildNotesSection aggregates the three note sources and completed check-ins
// into one notes section. Each input list is expected most-recent-first.
//
// Task notes merge the legacy single-field source ahead of the multi-record
// store; the combined list keeps that order and is not re-sorted before the
// cap, so each note's Source tag preserves its origin. Caps are applied
// before TotalNotesCount is computed, so a check-in outside the most-recent
// window never contributes to the count.
func BuildNotesSection(assessmentNotes []AssessmentNote, legacyTaskNotes, taskNoteRecords []TaskNote, checkIns []CheckIn) NotesSection {
	section := EmptyNotesSection()

	section.AssessmentNotes = capList(assessmentNotes, AssessmentNoteLimit)

	merged := make([]TaskNote, 0, len(legacyTaskNotes)+len(taskNoteRecords))
	merged = append(merged, legacyTaskNotes...)
	merged = append(merged, taskNoteRecords...)
	section.TaskCompletionNotes = capList(merged, TaskNoteLimit)

	section.CheckInDetails = capList(checkIns, CheckInDetailLimit)

	qualitative := 0
	for _, ci := range section.CheckInDetails {
		if HasQualitativeContent(ci.TeamChangeNote, ci.CustomerChangeNote, ci.AdditionalNotes) {
			qualitative++
		}
	}
	section.TotalNotesCount = len(section.AssessmentNotes) + len(section.TaskCompletionNotes) + qualitative
	return section
}

// HasQualitativeContent reports whether at least one of a check-in's free-text
// fields carries content after trimming whitespace. Nil and whitespace-only
// values count as absent.
func HasQualitativeContent(teamNote, customerNote, additionalNotes *string) bool {
	for _, v := range []*string{teamNote, customerNote, additionalNotes} {
		if v != nil && strings.TrimSpace(*v) != "" {
			return true
		}
	}
	return false
}

func capList[T any](list []T, limit int) []T {
	if len(list) == 0 {
		return []T{}
	}
	if len(list) <= limit {
		return list
	}
	return list[:limit]
}
