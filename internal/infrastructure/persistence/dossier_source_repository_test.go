package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/bizlens/backend/internal/domain/shared"
	"github.com/bizlens/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSourceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.CompanyModel{},
		&models.AssessmentQuestionModel{},
		&models.AssessmentResponseModel{},
		&models.AssessmentRoundModel{},
		&models.CategoryScoreModel{},
		&models.FinancialSnapshotModel{},
		&models.ValuationSnapshotModel{},
		&models.TaskModel{},
		&models.DocumentModel{},
		&models.SignalModel{},
		&models.CheckInModel{},
	)
	require.NoError(t, err)

	return db
}

func TestGormDossierSourceRepository_CompanyProfile(t *testing.T) {
	db := setupSourceTestDB(t)
	repo := NewGormDossierSourceRepository(db)
	ctx := context.Background()

	t.Run("returns the company record", func(t *testing.T) {
		companyID := uuid.New()
		require.NoError(t, db.Create(&models.CompanyModel{
			BaseModel:     models.BaseModel{ID: companyID},
			Name:          "Acme Tooling",
			Industry:      "manufacturing",
			BusinessModel: "b2b",
			TeamSize:      12,
			FoundedYear:   2015,
		}).Error)

		profile, err := repo.CompanyProfile(ctx, companyID)
		require.NoError(t, err)
		assert.Equal(t, companyID, profile.CompanyID)
		assert.Equal(t, "Acme Tooling", profile.Name)
		assert.Equal(t, "manufacturing", profile.Industry)
		assert.Equal(t, 12, profile.TeamSize)
	})

	t.Run("unknown company", func(t *testing.T) {
		_, err := repo.CompanyProfile(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormDossierSourceRepository_LatestFinancials(t *testing.T) {
	db := setupSourceTestDB(t)
	repo := NewGormDossierSourceRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("nil when nothing reported", func(t *testing.T) {
		figures, err := repo.LatestFinancials(ctx, companyID)
		require.NoError(t, err)
		assert.Nil(t, figures)
	})

	t.Run("most recently reported wins", func(t *testing.T) {
		oldRevenue := decimal.NewFromInt(100000)
		newRevenue := decimal.NewFromInt(180000)
		newProfit := decimal.NewFromInt(20000)
		require.NoError(t, db.Create(&models.FinancialSnapshotModel{
			BaseModel:  models.BaseModel{ID: uuid.New()},
			CompanyID:  companyID,
			Revenue:    &oldRevenue,
			FiscalYear: 2024,
			ReportedAt: time.Now().Add(-48 * time.Hour),
		}).Error)
		require.NoError(t, db.Create(&models.FinancialSnapshotModel{
			BaseModel:  models.BaseModel{ID: uuid.New()},
			CompanyID:  companyID,
			Revenue:    &newRevenue,
			Profit:     &newProfit,
			FiscalYear: 2025,
			ReportedAt: time.Now().Add(-1 * time.Hour),
		}).Error)

		figures, err := repo.LatestFinancials(ctx, companyID)
		require.NoError(t, err)
		require.NotNil(t, figures)
		assert.Equal(t, 2025, figures.FiscalYear)
		require.NotNil(t, figures.Revenue)
		assert.True(t, figures.Revenue.Equal(newRevenue))
		require.NotNil(t, figures.Profit)
		assert.True(t, figures.Profit.Equal(newProfit))
	})
}

func TestGormDossierSourceRepository_AssessmentStats(t *testing.T) {
	db := setupSourceTestDB(t)
	repo := NewGormDossierSourceRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	seedQuestion(t, db, "q1", "financial")
	seedQuestion(t, db, "q2", "financial")
	seedQuestion(t, db, "q3", "people")
	seedQuestion(t, db, "q4", "operations")

	seedResponse(t, db, companyID, "q1", false, "", time.Now().Add(-2*time.Hour))
	seedResponse(t, db, companyID, "q3", false, "", time.Now().Add(-1*time.Hour))
	// A second response to q1 must not double-count the question.
	seedResponse(t, db, companyID, "q1", false, "", time.Now())

	score := decimal.NewFromFloat(6.5)
	require.NoError(t, db.Create(&models.CategoryScoreModel{
		BaseModel: models.BaseModel{ID: uuid.New()},
		CompanyID: companyID,
		Category:  "financial",
		Score:     score,
	}).Error)

	completedAt := time.Now().Add(-24 * time.Hour).UTC()
	overall := decimal.NewFromFloat(5.8)
	require.NoError(t, db.Create(&models.AssessmentRoundModel{
		BaseModel:    models.BaseModel{ID: uuid.New()},
		CompanyID:    companyID,
		CompletedAt:  &completedAt,
		OverallScore: &overall,
	}).Error)

	stats, err := repo.AssessmentStats(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.QuestionsAnswered)
	assert.Equal(t, 4, stats.TotalQuestions)
	assert.Equal(t, []string{"financial", "people"}, stats.AnsweredCategories)
	assert.Equal(t, []string{"operations"}, stats.UnansweredCategories)
	require.Len(t, stats.CategoryScores, 1)
	assert.Equal(t, "financial", stats.CategoryScores[0].Category)
	assert.True(t, stats.CategoryScores[0].Score.Equal(score))
	require.NotNil(t, stats.OverallScore)
	assert.True(t, stats.OverallScore.Equal(overall))
	require.NotNil(t, stats.LastCompletedAt)
	assert.Equal(t, completedAt.Unix(), stats.LastCompletedAt.Unix())
}

func TestGormDossierSourceRepository_ValuationHistory(t *testing.T) {
	db := setupSourceTestDB(t)
	repo := NewGormDossierSourceRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("empty history", func(t *testing.T) {
		section, err := repo.ValuationHistory(ctx, companyID)
		require.NoError(t, err)
		assert.Nil(t, section.CurrentValue)
		assert.Empty(t, section.History)
	})

	t.Run("newest snapshot is the current value", func(t *testing.T) {
		older := decimal.NewFromInt(800000)
		newer := decimal.NewFromInt(950000)
		require.NoError(t, db.Create(&models.ValuationSnapshotModel{
			BaseModel: models.BaseModel{ID: uuid.New()},
			CompanyID: companyID,
			Value:     older,
			Method:    "multiples",
			AsOf:      time.Now().Add(-90 * 24 * time.Hour),
		}).Error)
		require.NoError(t, db.Create(&models.ValuationSnapshotModel{
			BaseModel: models.BaseModel{ID: uuid.New()},
			CompanyID: companyID,
			Value:     newer,
			Method:    "dcf",
			AsOf:      time.Now().Add(-1 * 24 * time.Hour),
		}).Error)

		section, err := repo.ValuationHistory(ctx, companyID)
		require.NoError(t, err)
		require.NotNil(t, section.CurrentValue)
		assert.True(t, section.CurrentValue.Equal(newer))
		assert.Equal(t, "dcf", section.Method)
		require.Len(t, section.History, 2)
		assert.True(t, section.History[0].Value.Equal(newer))
		assert.True(t, section.History[1].Value.Equal(older))
	})
}

func TestGormDossierSourceRepository_TaskStats(t *testing.T) {
	db := setupSourceTestDB(t)
	repo := NewGormDossierSourceRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	completedAt := time.Now().Add(-2 * time.Hour).UTC()
	for _, task := range []models.TaskModel{
		{BaseModel: models.BaseModel{ID: uuid.New()}, CompanyID: companyID, Title: "Close books", Category: "financial", Status: models.TaskStatusCompleted, CompletedAt: &completedAt},
		{BaseModel: models.BaseModel{ID: uuid.New()}, CompanyID: companyID, Title: "Renew lease", Category: "legal", Status: models.TaskStatusOpen},
		{BaseModel: models.BaseModel{ID: uuid.New()}, CompanyID: companyID, Title: "Audit machines", Category: "operations", Status: models.TaskStatusNotApplicable},
	} {
		require.NoError(t, db.Create(&task).Error)
	}

	stats, err := repo.TaskStats(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalTasks)
	assert.Equal(t, 1, stats.CompletedTasks)
	assert.Equal(t, 1, stats.OpenTasks)
	require.Len(t, stats.RecentCompleted, 1)
	assert.Equal(t, "Close books", stats.RecentCompleted[0].Title)
}

func TestGormDossierSourceRepository_EvidenceStats(t *testing.T) {
	db := setupSourceTestDB(t)
	repo := NewGormDossierSourceRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	for _, doc := range []models.DocumentModel{
		{BaseModel: models.BaseModel{ID: uuid.New()}, CompanyID: companyID, FileName: "p-and-l-2025.pdf", Category: "financial"},
		{BaseModel: models.BaseModel{ID: uuid.New()}, CompanyID: companyID, FileName: "balance-sheet.pdf", Category: "financial"},
		{BaseModel: models.BaseModel{ID: uuid.New()}, CompanyID: companyID, FileName: "org-chart.pdf", Category: "team"},
	} {
		require.NoError(t, db.Create(&doc).Error)
	}

	stats, err := repo.EvidenceStats(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.DocumentCount)
	assert.Equal(t, []string{"financial", "team"}, stats.PresentCategories)
	assert.Len(t, stats.RecentUploads, 3)
}

func TestGormDossierSourceRepository_SignalStats(t *testing.T) {
	db := setupSourceTestDB(t)
	repo := NewGormDossierSourceRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	for _, sig := range []models.SignalModel{
		{BaseModel: models.BaseModel{ID: uuid.New()}, CompanyID: companyID, Kind: intel.SignalKindRisk, Severity: intel.SignalSeverityHigh, Title: "Customer concentration", Status: models.SignalStatusOpen},
		{BaseModel: models.BaseModel{ID: uuid.New()}, CompanyID: companyID, Kind: intel.SignalKindValueMovement, Severity: intel.SignalSeverityLow, Title: "Valuation up 5%", Status: models.SignalStatusResolved},
		{BaseModel: models.BaseModel{ID: uuid.New()}, CompanyID: companyID, Kind: intel.SignalKindRisk, Severity: intel.SignalSeverityMedium, Title: "Old signal", Status: models.SignalStatusResolved},
	} {
		require.NoError(t, db.Create(&sig).Error)
	}

	stats, err := repo.SignalStats(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, stats.OpenSignals, 1)
	assert.Equal(t, "Customer concentration", stats.OpenSignals[0].Title)
	assert.Equal(t, 1, stats.ValueMovementEvents)
}

func TestGormDossierSourceRepository_EngagementStats(t *testing.T) {
	db := setupSourceTestDB(t)
	repo := NewGormDossierSourceRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("no activity", func(t *testing.T) {
		stats, err := repo.EngagementStats(ctx, companyID)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.CheckInsCompleted)
		assert.Nil(t, stats.LastActivityAt)
	})

	t.Run("latest activity wins across sources", func(t *testing.T) {
		checkInAt := time.Now().Add(-48 * time.Hour).UTC()
		require.NoError(t, db.Create(&models.CheckInModel{
			BaseModel:   models.BaseModel{ID: uuid.New()},
			CompanyID:   companyID,
			Status:      models.CheckInStatusCompleted,
			CompletedAt: &checkInAt,
		}).Error)

		taskAt := time.Now().Add(-2 * time.Hour).UTC()
		require.NoError(t, db.Create(&models.TaskModel{
			BaseModel:   models.BaseModel{ID: uuid.New()},
			CompanyID:   companyID,
			Title:       "Close books",
			Status:      models.TaskStatusCompleted,
			CompletedAt: &taskAt,
		}).Error)

		stats, err := repo.EngagementStats(ctx, companyID)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.CheckInsCompleted)
		require.NotNil(t, stats.LastActivityAt)
		assert.Equal(t, taskAt.Unix(), stats.LastActivityAt.Unix())
	})
}
