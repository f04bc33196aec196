package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/bizlens/backend/internal/domain/intel"
	"github.com/bizlens/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRecordTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.AssessmentQuestionModel{},
		&models.AssessmentResponseModel{},
		&models.TaskModel{},
		&models.TaskNoteModel{},
		&models.DisclosureCycleModel{},
		&models.DisclosureResponseModel{},
		&models.CheckInModel{},
		&models.DocumentModel{},
		&models.SignalModel{},
	)
	require.NoError(t, err)

	return db
}

func seedQuestion(t *testing.T, db *gorm.DB, id, category string) {
	t.Helper()
	require.NoError(t, db.Create(&models.AssessmentQuestionModel{
		QuestionID: id,
		Text:       "question " + id,
		Category:   category,
		CreatedAt:  time.Now(),
	}).Error)
}

func seedResponse(t *testing.T, db *gorm.DB, companyID uuid.UUID, questionID string, na bool, note string, updatedAt time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.AssessmentResponseModel{
		BaseModel:     models.BaseModel{ID: uuid.New(), CreatedAt: updatedAt, UpdatedAt: updatedAt},
		CompanyID:     companyID,
		QuestionID:    questionID,
		NotApplicable: na,
		Note:          note,
	}).Error)
}

func TestGormRecordRepository_ListAssessmentNAFlags(t *testing.T) {
	db := setupRecordTestDB(t)
	repo := NewGormRecordRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	seedQuestion(t, db, "q-rev", "financial")
	seedQuestion(t, db, "q-team", "people")
	seedQuestion(t, db, "q-ops", "operations")

	older := time.Now().Add(-2 * time.Hour).UTC()
	newer := time.Now().Add(-1 * time.Hour).UTC()
	seedResponse(t, db, companyID, "q-rev", true, "", older)
	seedResponse(t, db, companyID, "q-team", true, "", newer)
	seedResponse(t, db, companyID, "q-ops", false, "", newer)
	seedResponse(t, db, uuid.New(), "q-rev", true, "", newer) // other company

	flags, err := repo.ListAssessmentNAFlags(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, flags, 2)

	// Most recently updated first, joined with question text and category.
	assert.Equal(t, "q-team", flags[0].QuestionID)
	assert.Equal(t, "question q-team", flags[0].QuestionText)
	assert.Equal(t, "people", flags[0].Category)
	assert.Equal(t, "q-rev", flags[1].QuestionID)
}

func TestGormRecordRepository_ListNATasks(t *testing.T) {
	db := setupRecordTestDB(t)
	repo := NewGormRecordRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	for _, task := range []models.TaskModel{
		{BaseModel: models.BaseModel{ID: uuid.New()}, CompanyID: companyID, Title: "Audit inventory", Category: "operations", Status: models.TaskStatusNotApplicable},
		{BaseModel: models.BaseModel{ID: uuid.New()}, CompanyID: companyID, Title: "File accounts", Category: "financial", Status: models.TaskStatusOpen},
	} {
		require.NoError(t, db.Create(&task).Error)
	}

	tasks, err := repo.ListNATasks(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Audit inventory", tasks[0].TaskTitle)
	assert.Equal(t, "operations", tasks[0].Category)
}

func TestGormRecordRepository_CategoryNABreakdown(t *testing.T) {
	db := setupRecordTestDB(t)
	repo := NewGormRecordRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	seedQuestion(t, db, "q1", "financial")
	seedQuestion(t, db, "q2", "financial")
	seedQuestion(t, db, "q3", "people")
	seedQuestion(t, db, "q4", "untouched")

	// q1 was flagged NA, then answered again without the flag: the newer
	// response decides its current state.
	seedResponse(t, db, companyID, "q1", true, "", time.Now().Add(-3*time.Hour))
	seedResponse(t, db, companyID, "q1", false, "", time.Now().Add(-1*time.Hour))
	seedResponse(t, db, companyID, "q2", true, "", time.Now().Add(-2*time.Hour))
	seedResponse(t, db, companyID, "q3", false, "", time.Now().Add(-2*time.Hour))

	breakdown, err := repo.CategoryNABreakdown(ctx, companyID)
	require.NoError(t, err)

	byCategory := make(map[string]intel.CategoryNACount, len(breakdown))
	for _, c := range breakdown {
		byCategory[c.Category] = c
	}

	assert.Equal(t, 2, byCategory["financial"].TotalQuestions)
	assert.Equal(t, 1, byCategory["financial"].NACount)
	assert.Equal(t, 1, byCategory["people"].TotalQuestions)
	assert.Equal(t, 0, byCategory["people"].NACount)

	// Categories from the catalog appear even with no responses.
	untouched, ok := byCategory["untouched"]
	require.True(t, ok)
	assert.Equal(t, 0, untouched.TotalQuestions)
	assert.Equal(t, 0, untouched.NACount)
}

func TestGormRecordRepository_ListDisclosureMarkers(t *testing.T) {
	db := setupRecordTestDB(t)
	repo := NewGormRecordRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	completedAt := time.Now().Add(-24 * time.Hour).UTC()
	older := time.Now().Add(-48 * time.Hour)
	newer := time.Now().Add(-1 * time.Hour)
	for _, cycle := range []models.DisclosureCycleModel{
		{BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: older, UpdatedAt: older}, CompanyID: companyID, Status: models.DisclosureCycleCompleted, CompletedAt: &completedAt},
		{BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: newer, UpdatedAt: newer}, CompanyID: companyID, Status: models.DisclosureCycleSkipped},
	} {
		require.NoError(t, db.Create(&cycle).Error)
	}

	markers, err := repo.ListDisclosureMarkers(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, markers, 2)
	assert.Equal(t, intel.DisclosureSkipped, markers[0].Status)
	assert.Equal(t, intel.DisclosureCompleted, markers[1].Status)
	require.NotNil(t, markers[1].CompletedAt)
}

func TestGormRecordRepository_ListDisclosureResponses(t *testing.T) {
	db := setupRecordTestDB(t)
	repo := NewGormRecordRepository(db)
	ctx := context.Background()
	companyID := uuid.New()
	cycleID := uuid.New()

	for _, r := range []models.DisclosureResponseModel{
		{CompanyID: companyID, CycleID: cycleID, QuestionKey: "team_change", QuestionText: "Any team changes?", Category: "people", Answer: true, FollowUpText: "CTO left", TriggeredFollowUp: true, RespondedAt: time.Now().Add(-1 * time.Hour)},
		{CompanyID: companyID, CycleID: cycleID, QuestionKey: "revenue_change", QuestionText: "Any revenue changes?", Category: "financial", Answer: false, RespondedAt: time.Now().Add(-2 * time.Hour)},
	} {
		r.BaseModel = models.BaseModel{ID: uuid.New()}
		require.NoError(t, db.Create(&r).Error)
	}

	responses, err := repo.ListDisclosureResponses(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, "team_change", responses[0].QuestionKey)
	assert.True(t, responses[0].Answer)
	assert.True(t, responses[0].TriggeredFollowUp)
	assert.Equal(t, "revenue_change", responses[1].QuestionKey)
}

func TestGormRecordRepository_ListAssessmentNotes(t *testing.T) {
	db := setupRecordTestDB(t)
	repo := NewGormRecordRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	seedQuestion(t, db, "q1", "financial")
	seedQuestion(t, db, "q2", "people")

	seedResponse(t, db, companyID, "q1", false, "Revenue is seasonal", time.Now().Add(-1*time.Hour))
	seedResponse(t, db, companyID, "q2", false, "", time.Now())

	notes, err := repo.ListAssessmentNotes(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "q1", notes[0].QuestionID)
	assert.Equal(t, "Revenue is seasonal", notes[0].Text)
	assert.Equal(t, "financial", notes[0].Category)
}

func TestGormRecordRepository_TaskNotes(t *testing.T) {
	db := setupRecordTestDB(t)
	repo := NewGormRecordRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	completedAt := time.Now().Add(-12 * time.Hour).UTC()
	legacyTask := models.TaskModel{
		BaseModel:      models.BaseModel{ID: uuid.New()},
		CompanyID:      companyID,
		Title:          "Fix contracts",
		Category:       "legal",
		Status:         models.TaskStatusCompleted,
		CompletionNote: "All supplier contracts renewed",
		CompletedAt:    &completedAt,
	}
	bareTask := models.TaskModel{
		BaseModel:   models.BaseModel{ID: uuid.New()},
		CompanyID:   companyID,
		Title:       "Update handbook",
		Category:    "people",
		Status:      models.TaskStatusCompleted,
		CompletedAt: &completedAt,
	}
	require.NoError(t, db.Create(&legacyTask).Error)
	require.NoError(t, db.Create(&bareTask).Error)

	noteAt := time.Now().Add(-6 * time.Hour)
	require.NoError(t, db.Create(&models.TaskNoteModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: noteAt, UpdatedAt: noteAt},
		CompanyID: companyID,
		TaskID:    bareTask.ID,
		Text:      "Handbook draft shared with the team",
	}).Error)

	t.Run("legacy notes come from the completion-note field", func(t *testing.T) {
		notes, err := repo.ListLegacyTaskNotes(ctx, companyID)
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, legacyTask.ID, notes[0].TaskID)
		assert.Equal(t, "All supplier contracts renewed", notes[0].Text)
		assert.Equal(t, intel.NoteSourceLegacy, notes[0].Source)
		assert.Equal(t, completedAt.Unix(), notes[0].CompletedAt.Unix())
	})

	t.Run("note records join back to their task", func(t *testing.T) {
		notes, err := repo.ListTaskNoteRecords(ctx, companyID)
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, bareTask.ID, notes[0].TaskID)
		assert.Equal(t, "Update handbook", notes[0].TaskTitle)
		assert.Equal(t, "Handbook draft shared with the team", notes[0].Text)
		assert.Equal(t, intel.NoteSourceRecord, notes[0].Source)
	})
}

func TestGormRecordRepository_ListCompletedCheckIns(t *testing.T) {
	db := setupRecordTestDB(t)
	repo := NewGormRecordRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	teamChanged := true
	teamNote := "Hired a sales lead"
	confidence := 7.5
	completedAt := time.Now().Add(-3 * time.Hour).UTC()
	require.NoError(t, db.Create(&models.CheckInModel{
		BaseModel:        models.BaseModel{ID: uuid.New()},
		CompanyID:        companyID,
		Status:           models.CheckInStatusCompleted,
		TeamChanged:      &teamChanged,
		TeamChangeNote:   &teamNote,
		ConfidenceRating: &confidence,
		CompletedAt:      &completedAt,
	}).Error)
	require.NoError(t, db.Create(&models.CheckInModel{
		BaseModel: models.BaseModel{ID: uuid.New()},
		CompanyID: companyID,
		Status:    models.CheckInStatusPending,
	}).Error)

	checkIns, err := repo.ListCompletedCheckIns(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, checkIns, 1)
	require.NotNil(t, checkIns[0].TeamChanged)
	assert.True(t, *checkIns[0].TeamChanged)
	require.NotNil(t, checkIns[0].TeamChangeNote)
	assert.Equal(t, "Hired a sales lead", *checkIns[0].TeamChangeNote)
	require.NotNil(t, checkIns[0].ConfidenceRating)
	assert.InDelta(t, 7.5, *checkIns[0].ConfidenceRating, 0.001)
	assert.Equal(t, completedAt.Unix(), checkIns[0].CompletedAt.Unix())
}

func TestGormRecordRepository_LatestTimestamps(t *testing.T) {
	db := setupRecordTestDB(t)
	repo := NewGormRecordRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("no activity yields all-unknown bundle", func(t *testing.T) {
		bundle, err := repo.LatestTimestamps(ctx, companyID)
		require.NoError(t, err)
		assert.Nil(t, bundle.AssessmentUpdatedAt)
		assert.Nil(t, bundle.TaskCompletedAt)
		assert.Nil(t, bundle.DocumentUpdatedAt)
		assert.Nil(t, bundle.SignalCreatedAt)
		assert.Nil(t, bundle.CheckInCompletedAt)
		assert.Nil(t, bundle.DisclosureRespondedAt)
	})

	t.Run("sources report their most recent activity", func(t *testing.T) {
		seedQuestion(t, db, "q1", "financial")
		respondedAt := time.Now().Add(-30 * time.Minute).UTC()
		seedResponse(t, db, companyID, "q1", false, "", respondedAt)

		completedAt := time.Now().Add(-2 * time.Hour).UTC()
		require.NoError(t, db.Create(&models.TaskModel{
			BaseModel:   models.BaseModel{ID: uuid.New()},
			CompanyID:   companyID,
			Title:       "Close books",
			Status:      models.TaskStatusCompleted,
			CompletedAt: &completedAt,
		}).Error)

		bundle, err := repo.LatestTimestamps(ctx, companyID)
		require.NoError(t, err)
		require.NotNil(t, bundle.AssessmentUpdatedAt)
		assert.Equal(t, respondedAt.Unix(), bundle.AssessmentUpdatedAt.Unix())
		require.NotNil(t, bundle.TaskCompletedAt)
		assert.Equal(t, completedAt.Unix(), bundle.TaskCompletedAt.Unix())
		assert.Nil(t, bundle.DocumentUpdatedAt)
	})
}
