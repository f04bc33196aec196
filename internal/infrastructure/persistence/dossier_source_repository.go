package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/bizlens/backend/internal/domain/shared"
	"github.com/bizlens/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// How many recent items the dossier digests carry.
const (
	recentTaskDigestLimit   = 5
	recentUploadDigestLimit = 5
)

// GormDossierSourceRepository implements intel.DossierSourceReader: the
// aggregate queries the dossier builder runs when assembling a fresh
// snapshot.
type GormDossierSourceRepository struct {
	db *gorm.DB
}

// NewGormDossierSourceRepository creates a new GormDossierSourceRepository
func NewGormDossierSourceRepository(db *gorm.DB) *GormDossierSourceRepository {
	return &GormDossierSourceRepository{db: db}
}

// CompanyProfile returns the company record, or shared.ErrNotFound.
func (r *GormDossierSourceRepository) CompanyProfile(ctx context.Context, companyID uuid.UUID) (*intel.CompanyProfile, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// LatestFinancials returns the most recently reported figures, nil when the
// company has never reported.
func (r *GormDossierSourceRepository) LatestFinancials(ctx context.Context, companyID uuid.UUID) (*intel.FinancialFigures, error) {
	var model models.FinancialSnapshotModel
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("reported_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &intel.FinancialFigures{
		Revenue:    model.Revenue,
		Profit:     model.Profit,
		FiscalYear: model.FiscalYear,
	}, nil
}

// AssessmentStats summarizes assessment progress: answered-question counts
// against the question catalog, category coverage, and the stored scores.
func (r *GormDossierSourceRepository) AssessmentStats(ctx context.Context, companyID uuid.UUID) (intel.AssessmentSection, error) {
	section := intel.AssessmentSection{
		AnsweredCategories:   []string{},
		UnansweredCategories: []string{},
		CategoryScores:       []intel.CategoryScore{},
	}

	var totalQuestions int64
	if err := r.db.WithContext(ctx).
		Model(&models.AssessmentQuestionModel{}).
		Count(&totalQuestions).Error; err != nil {
		return section, err
	}
	section.TotalQuestions = int(totalQuestions)

	var answered int64
	if err := r.db.WithContext(ctx).
		Model(&models.AssessmentResponseModel{}).
		Where("company_id = ?", companyID).
		Distinct("question_id").
		Count(&answered).Error; err != nil {
		return section, err
	}
	section.QuestionsAnswered = int(answered)

	var allCategories []string
	if err := r.db.WithContext(ctx).
		Model(&models.AssessmentQuestionModel{}).
		Distinct("category").
		Order("category").
		Pluck("category", &allCategories).Error; err != nil {
		return section, err
	}

	var answeredCategories []string
	if err := r.db.WithContext(ctx).
		Table("assessment_responses ar").
		Joins("JOIN assessment_questions q ON q.question_id = ar.question_id").
		Where("ar.company_id = ?", companyID).
		Distinct("q.category").
		Order("q.category").
		Pluck("q.category", &answeredCategories).Error; err != nil {
		return section, err
	}

	covered := make(map[string]bool, len(answeredCategories))
	for _, c := range answeredCategories {
		covered[c] = true
	}
	section.AnsweredCategories = answeredCategories
	for _, c := range allCategories {
		if !covered[c] {
			section.UnansweredCategories = append(section.UnansweredCategories, c)
		}
	}

	var scores []models.CategoryScoreModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("category").
		Find(&scores).Error; err != nil {
		return section, err
	}
	for _, s := range scores {
		section.CategoryScores = append(section.CategoryScores, intel.CategoryScore{
			Category: s.Category,
			Score:    s.Score,
		})
	}

	var round models.AssessmentRoundModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND completed_at IS NOT NULL", companyID).
		Order("completed_at DESC").
		First(&round).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return section, err
	}
	if err == nil {
		section.LastCompletedAt = round.CompletedAt
		section.OverallScore = round.OverallScore
	}

	return section, nil
}

// ValuationHistory returns the current value and the full snapshot history,
// most recent first.
func (r *GormDossierSourceRepository) ValuationHistory(ctx context.Context, companyID uuid.UUID) (intel.ValuationSection, error) {
	section := intel.ValuationSection{History: []intel.ValuationPoint{}}

	var rows []models.ValuationSnapshotModel
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("as_of DESC").
		Find(&rows).Error
	if err != nil {
		return section, err
	}

	for i, row := range rows {
		if i == 0 {
			value := row.Value
			section.CurrentValue = &value
			section.Method = row.Method
		}
		section.History = append(section.History, intel.ValuationPoint{
			AsOf:  row.AsOf,
			Value: row.Value,
		})
	}
	return section, nil
}

// TaskStats summarizes completion-task progress with a short digest of the
// most recently completed tasks.
func (r *GormDossierSourceRepository) TaskStats(ctx context.Context, companyID uuid.UUID) (intel.TasksSection, error) {
	section := intel.TasksSection{RecentCompleted: []intel.TaskDigest{}}

	type statusCount struct {
		Status string
		N      int64
	}
	var counts []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.TaskModel{}).
		Select("status, COUNT(*) as n").
		Where("company_id = ?", companyID).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return section, err
	}
	for _, c := range counts {
		section.TotalTasks += int(c.N)
		switch c.Status {
		case models.TaskStatusCompleted:
			section.CompletedTasks = int(c.N)
		case models.TaskStatusOpen:
			section.OpenTasks = int(c.N)
		}
	}

	var recent []models.TaskModel
	err = r.db.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, models.TaskStatusCompleted).
		Order("completed_at DESC").
		Limit(recentTaskDigestLimit).
		Find(&recent).Error
	if err != nil {
		return section, err
	}
	for _, t := range recent {
		section.RecentCompleted = append(section.RecentCompleted, intel.TaskDigest{
			TaskID:      t.ID,
			Title:       t.Title,
			Category:    t.Category,
			CompletedAt: t.CompletedAt,
		})
	}
	return section, nil
}

// EvidenceStats tallies the document room: total count, which evidence
// categories have at least one document, and the most recent uploads.
func (r *GormDossierSourceRepository) EvidenceStats(ctx context.Context, companyID uuid.UUID) (intel.EvidenceStats, error) {
	stats := intel.EvidenceStats{
		PresentCategories: []string{},
		RecentUploads:     []intel.DocumentDigest{},
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("company_id = ?", companyID).
		Count(&count).Error; err != nil {
		return stats, err
	}
	stats.DocumentCount = int(count)

	if err := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("company_id = ?", companyID).
		Distinct("category").
		Order("category").
		Pluck("category", &stats.PresentCategories).Error; err != nil {
		return stats, err
	}

	var recent []models.DocumentModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Limit(recentUploadDigestLimit).
		Find(&recent).Error; err != nil {
		return stats, err
	}
	for _, d := range recent {
		stats.RecentUploads = append(stats.RecentUploads, intel.DocumentDigest{
			DocumentID: d.ID,
			FileName:   d.FileName,
			Category:   d.Category,
			UploadedAt: d.CreatedAt,
		})
	}
	return stats, nil
}

// SignalStats returns open signals plus the count of value-movement events.
func (r *GormDossierSourceRepository) SignalStats(ctx context.Context, companyID uuid.UUID) (intel.SignalsSection, error) {
	section := intel.SignalsSection{OpenSignals: []intel.SignalDigest{}}

	var open []models.SignalModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, models.SignalStatusOpen).
		Order("created_at DESC").
		Find(&open).Error
	if err != nil {
		return section, err
	}
	for i := range open {
		section.OpenSignals = append(section.OpenSignals, open[i].ToDomain())
	}

	var movements int64
	err = r.db.WithContext(ctx).
		Model(&models.SignalModel{}).
		Where("company_id = ? AND kind = ?", companyID, intel.SignalKindValueMovement).
		Count(&movements).Error
	if err != nil {
		return section, err
	}
	section.ValueMovementEvents = int(movements)

	return section, nil
}

// EngagementStats tallies completed check-ins and the most recent activity
// across check-ins, task completions and assessment updates.
func (r *GormDossierSourceRepository) EngagementStats(ctx context.Context, companyID uuid.UUID) (intel.EngagementStats, error) {
	stats := intel.EngagementStats{}

	var checkIns int64
	err := r.db.WithContext(ctx).
		Model(&models.CheckInModel{}).
		Where("company_id = ? AND status = ?", companyID, models.CheckInStatusCompleted).
		Count(&checkIns).Error
	if err != nil {
		return stats, err
	}
	stats.CheckInsCompleted = int(checkIns)

	candidates := []struct {
		model interface{}
		expr  string
		cond  string
		args  []interface{}
	}{
		{&models.CheckInModel{}, "MAX(completed_at)", "company_id = ? AND status = ?", []interface{}{companyID, models.CheckInStatusCompleted}},
		{&models.TaskModel{}, "MAX(completed_at)", "company_id = ? AND status = ?", []interface{}{companyID, models.TaskStatusCompleted}},
		{&models.AssessmentResponseModel{}, "MAX(updated_at)", "company_id = ?", []interface{}{companyID}},
	}
	for _, c := range candidates {
		var latest *time.Time
		err := r.db.WithContext(ctx).
			Model(c.model).
			Select(c.expr).
			Where(c.cond, c.args...).
			Scan(&latest).Error
		if err != nil {
			return stats, err
		}
		if latest != nil && (stats.LastActivityAt == nil || latest.After(*stats.LastActivityAt)) {
			stats.LastActivityAt = latest
		}
	}

	return stats, nil
}

var _ intel.DossierSourceReader = (*GormDossierSourceRepository)(nil)
