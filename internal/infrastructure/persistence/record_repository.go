package persistence

import (
	"context"
	"time"

	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/bizlens/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRecordRepository implements intel.RecordReader over the live business
// record tables. Every list query orders most-recent-first, matching what the
// aggregators expect.
type GormRecordRepository struct {
	db *gorm.DB
}

// NewGormRecordRepository creates a new GormRecordRepository
func NewGormRecordRepository(db *gorm.DB) *GormRecordRepository {
	return &GormRecordRepository{db: db}
}

// responseRow is the scan target for response+question joins.
type responseRow struct {
	QuestionID    string
	Text          string
	Category      string
	Note          string
	NotApplicable bool
	UpdatedAt     time.Time
}

// ListAssessmentNAFlags returns the NA-tagged assessment responses joined
// with their question text and category, most recently updated first.
func (r *GormRecordRepository) ListAssessmentNAFlags(ctx context.Context, companyID uuid.UUID) ([]intel.NAFlag, error) {
	var rows []responseRow
	err := r.db.WithContext(ctx).
		Table("assessment_responses ar").
		Select("ar.question_id, q.text, q.category, ar.updated_at").
		Joins("JOIN assessment_questions q ON q.question_id = ar.question_id").
		Where("ar.company_id = ? AND ar.not_applicable", companyID).
		Order("ar.updated_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	flags := make([]intel.NAFlag, len(rows))
	for i, row := range rows {
		flags[i] = intel.NAFlag{
			QuestionID:   row.QuestionID,
			QuestionText: row.Text,
			Category:     row.Category,
			FlaggedAt:    row.UpdatedAt,
		}
	}
	return flags, nil
}

// ListNATasks returns tasks the company marked not applicable.
func (r *GormRecordRepository) ListNATasks(ctx context.Context, companyID uuid.UUID) ([]intel.NATask, error) {
	var rows []models.TaskModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, models.TaskStatusNotApplicable).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	tasks := make([]intel.NATask, len(rows))
	for i, row := range rows {
		tasks[i] = intel.NATask{
			TaskID:    row.ID,
			TaskTitle: row.Title,
			Category:  row.Category,
		}
	}
	return tasks, nil
}

// CategoryNABreakdown tallies distinct questions and their current NA state
// per category. The question catalog supplies the category universe, so a
// category the company never touched still gets a zero-filled entry. Each
// question's NA state is taken from its most recently updated response.
func (r *GormRecordRepository) CategoryNABreakdown(ctx context.Context, companyID uuid.UUID) ([]intel.CategoryNACount, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.AssessmentQuestionModel{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}

	var rows []responseRow
	err = r.db.WithContext(ctx).
		Table("assessment_responses ar").
		Select("ar.question_id, q.category, ar.not_applicable, ar.updated_at").
		Joins("JOIN assessment_questions q ON q.question_id = ar.question_id").
		Where("ar.company_id = ?", companyID).
		Order("ar.updated_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// Rows arrive newest-first, so the first occurrence of a question id
	// carries its current NA state.
	seen := make(map[string]bool, len(rows))
	marks := make([]intel.CategoryNAMark, 0, len(rows))
	for _, row := range rows {
		if seen[row.QuestionID] {
			continue
		}
		seen[row.QuestionID] = true
		marks = append(marks, intel.CategoryNAMark{Category: row.Category, IsNA: row.NotApplicable})
	}

	return intel.BuildCategoryNABreakdown(categories, marks), nil
}

// ListDisclosureMarkers returns completion/skip markers for disclosure
// cycles, most recent first.
func (r *GormRecordRepository) ListDisclosureMarkers(ctx context.Context, companyID uuid.UUID) ([]intel.DisclosureMarker, error) {
	var rows []models.DisclosureCycleModel
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	markers := make([]intel.DisclosureMarker, len(rows))
	for i, row := range rows {
		markers[i] = intel.DisclosureMarker{
			CycleID:     row.ID,
			Status:      intel.DisclosureStatus(row.Status),
			CompletedAt: row.CompletedAt,
		}
	}
	return markers, nil
}

// ListDisclosureResponses returns the full disclosure response history,
// newest first.
func (r *GormRecordRepository) ListDisclosureResponses(ctx context.Context, companyID uuid.UUID) ([]intel.DisclosureResponse, error) {
	var rows []models.DisclosureResponseModel
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("responded_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	responses := make([]intel.DisclosureResponse, len(rows))
	for i := range rows {
		responses[i] = rows[i].ToDomain()
	}
	return responses, nil
}

// ListAssessmentNotes returns non-empty notes attached to assessment
// answers, most recently updated first.
func (r *GormRecordRepository) ListAssessmentNotes(ctx context.Context, companyID uuid.UUID) ([]intel.AssessmentNote, error) {
	var rows []responseRow
	err := r.db.WithContext(ctx).
		Table("assessment_responses ar").
		Select("ar.question_id, q.text, q.category, ar.note, ar.updated_at").
		Joins("JOIN assessment_questions q ON q.question_id = ar.question_id").
		Where("ar.company_id = ? AND ar.note <> ''", companyID).
		Order("ar.updated_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	notes := make([]intel.AssessmentNote, len(rows))
	for i, row := range rows {
		notes[i] = intel.AssessmentNote{
			QuestionID:   row.QuestionID,
			QuestionText: row.Text,
			Category:     row.Category,
			Text:         row.Note,
			UpdatedAt:    row.UpdatedAt,
		}
	}
	return notes, nil
}

// ListLegacyTaskNotes returns completed tasks whose legacy single-field
// completion note is non-empty, most recently completed first.
func (r *GormRecordRepository) ListLegacyTaskNotes(ctx context.Context, companyID uuid.UUID) ([]intel.TaskNote, error) {
	var rows []models.TaskModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ? AND completion_note <> ''", companyID, models.TaskStatusCompleted).
		Order("completed_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	notes := make([]intel.TaskNote, 0, len(rows))
	for _, row := range rows {
		note := intel.TaskNote{
			TaskID:    row.ID,
			TaskTitle: row.Title,
			Category:  row.Category,
			Text:      row.CompletionNote,
			Source:    intel.NoteSourceLegacy,
		}
		if row.CompletedAt != nil {
			note.CompletedAt = *row.CompletedAt
		}
		notes = append(notes, note)
	}
	return notes, nil
}

// taskNoteRow is the scan target for the task-note/task join.
type taskNoteRow struct {
	TaskID    uuid.UUID
	Title     string
	Category  string
	Text      string
	CreatedAt time.Time
}

// ListTaskNoteRecords returns notes from the multi-note-per-task store,
// newest first.
func (r *GormRecordRepository) ListTaskNoteRecords(ctx context.Context, companyID uuid.UUID) ([]intel.TaskNote, error) {
	var rows []taskNoteRow
	err := r.db.WithContext(ctx).
		Table("task_notes tn").
		Select("tn.task_id, t.title, t.category, tn.text, tn.created_at").
		Joins("JOIN tasks t ON t.id = tn.task_id").
		Where("tn.company_id = ?", companyID).
		Order("tn.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	notes := make([]intel.TaskNote, len(rows))
	for i, row := range rows {
		notes[i] = intel.TaskNote{
			TaskID:      row.TaskID,
			TaskTitle:   row.Title,
			Category:    row.Category,
			Text:        row.Text,
			CompletedAt: row.CreatedAt,
			Source:      intel.NoteSourceRecord,
		}
	}
	return notes, nil
}

// ListCompletedCheckIns returns completed check-ins, newest first.
func (r *GormRecordRepository) ListCompletedCheckIns(ctx context.Context, companyID uuid.UUID) ([]intel.CheckIn, error) {
	var rows []models.CheckInModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, models.CheckInStatusCompleted).
		Order("completed_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	checkIns := make([]intel.CheckIn, len(rows))
	for i := range rows {
		checkIns[i] = rows[i].ToDomain()
	}
	return checkIns, nil
}

// LatestTimestamps batches the per-source most-recent-activity queries. A
// source with no rows yields a nil entry ("unknown"). The dossier build time
// is filled in by the orchestrator, not queried here.
func (r *GormRecordRepository) LatestTimestamps(ctx context.Context, companyID uuid.UUID) (intel.TimestampBundle, error) {
	bundle := intel.TimestampBundle{}

	queries := []struct {
		dest  **time.Time
		model interface{}
		expr  string
		cond  string
		args  []interface{}
	}{
		{&bundle.AssessmentUpdatedAt, &models.AssessmentResponseModel{}, "MAX(updated_at)", "company_id = ?", []interface{}{companyID}},
		{&bundle.TaskCompletedAt, &models.TaskModel{}, "MAX(completed_at)", "company_id = ? AND status = ?", []interface{}{companyID, models.TaskStatusCompleted}},
		{&bundle.DocumentUpdatedAt, &models.DocumentModel{}, "MAX(updated_at)", "company_id = ?", []interface{}{companyID}},
		{&bundle.SignalCreatedAt, &models.SignalModel{}, "MAX(created_at)", "company_id = ?", []interface{}{companyID}},
		{&bundle.CheckInCompletedAt, &models.CheckInModel{}, "MAX(completed_at)", "company_id = ? AND status = ?", []interface{}{companyID, models.CheckInStatusCompleted}},
		{&bundle.DisclosureRespondedAt, &models.DisclosureResponseModel{}, "MAX(responded_at)", "company_id = ?", []interface{}{companyID}},
	}

	for _, q := range queries {
		var latest *time.Time
		err := r.db.WithContext(ctx).
			Model(q.model).
			Select(q.expr).
			Where(q.cond, q.args...).
			Scan(&latest).Error
		if err != nil {
			return intel.TimestampBundle{}, err
		}
		*q.dest = latest
	}

	return bundle, nil
}

var _ intel.RecordReader = (*GormRecordRepository)(nil)
