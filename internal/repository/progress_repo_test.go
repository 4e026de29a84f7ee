package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/solvio/solvio-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Classroom{}, &models.Assignment{}, &models.Question{}, &models.Progress{}, &models.Submission{}))
	return db
}

func seedProgress(t *testing.T, db *gorm.DB, studentID, assignmentID uint) models.Progress {
	t.Helper()
	progress := models.Progress{
		StudentID:    studentID,
		AssignmentID: assignmentID,
		ClassroomID:  1,
		Status:       models.ProgressStatusNotStarted,
	}
	require.NoError(t, db.Create(&progress).Error)
	return progress
}

func TestProgressRepositorySaveBumpsVersion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	seeded := seedProgress(t, db, 500, 900)

	progress, err := repo.GetByStudentAndAssignment(ctx, 500, 900)
	require.NoError(t, err)
	require.Equal(t, seeded.ID, progress.ID)

	progress.Status = models.ProgressStatusInProgress
	progress.Submissions = append(progress.Submissions, models.Submission{
		ProgressID:  progress.ID,
		QuestionID:  1,
		Work:        "draft",
		Mode:        models.WorkModeText,
		Hints:       datatypes.JSONSlice[models.Hint]{},
		SubmittedAt: time.Now(),
	})

	previous := progress.Version
	require.NoError(t, repo.Save(ctx, &progress))
	require.Equal(t, previous+1, progress.Version)

	stored, err := repo.GetByID(ctx, progress.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProgressStatusInProgress, stored.Status)
	require.Len(t, stored.Submissions, 1)
	require.Equal(t, "draft", stored.Submissions[0].Work)
}

func TestProgressRepositorySaveDetectsStaleVersion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	seedProgress(t, db, 501, 901)

	first, err := repo.GetByStudentAndAssignment(ctx, 501, 901)
	require.NoError(t, err)
	second, err := repo.GetByStudentAndAssignment(ctx, 501, 901)
	require.NoError(t, err)

	first.Status = models.ProgressStatusInProgress
	require.NoError(t, repo.Save(ctx, &first))

	second.Status = models.ProgressStatusCompleted
	err = repo.Save(ctx, &second)
	require.ErrorIs(t, err, ErrVersionConflict)

	stored, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProgressStatusInProgress, stored.Status)
}

func TestProgressRepositoryGetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)

	_, err := repo.GetByStudentAndAssignment(context.Background(), 999999, 999999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProgressRepositoryListByAssignmentOrdersByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	for _, studentID := range []uint{602, 601, 603} {
		record := models.Progress{StudentID: studentID, AssignmentID: 902, ClassroomID: 1, Status: models.ProgressStatusNotStarted}
		require.NoError(t, repo.Create(ctx, &record))
	}

	records, err := repo.ListByAssignment(ctx, 902)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i := 1; i < len(records); i++ {
		require.Less(t, records[i-1].ID, records[i].ID)
	}
}

func TestProgressRepositoryCountCompleted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	done := models.Progress{StudentID: 701, AssignmentID: 903, ClassroomID: 1, Status: models.ProgressStatusCompleted}
	require.NoError(t, repo.Create(ctx, &done))
	open := models.Progress{StudentID: 702, AssignmentID: 903, ClassroomID: 1, Status: models.ProgressStatusInProgress}
	require.NoError(t, repo.Create(ctx, &open))

	count, err := repo.CountCompletedByAssignment(ctx, 903)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestSubmissionHintLedgerPersists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	seedProgress(t, db, 801, 904)
	progress, err := repo.GetByStudentAndAssignment(ctx, 801, 904)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	feedback := datatypes.NewJSONType(models.Feedback{
		Strengths:      []string{"clean work"},
		Improvements:   []string{},
		HintsUsed:      2,
		SubmissionTime: now,
		AIAnalysis:     "solid",
	})
	progress.Submissions = append(progress.Submissions, models.Submission{
		ProgressID: progress.ID,
		QuestionID: 3,
		Work:       "answer",
		Mode:       models.WorkModeText,
		Hints: datatypes.JSONSlice[models.Hint]{
			{Content: "first", Timestamp: now},
			{Content: "second", Timestamp: now.Add(time.Minute)},
		},
		IsComplete:  true,
		Feedback:    &feedback,
		SubmittedAt: now,
	})
	progress.Status = models.ProgressStatusInProgress
	require.NoError(t, repo.Save(ctx, &progress))

	stored, err := repo.GetByID(ctx, progress.ID)
	require.NoError(t, err)
	require.Len(t, stored.Submissions, 1)
	require.Len(t, stored.Submissions[0].Hints, 2)
	require.Equal(t, "first", stored.Submissions[0].Hints[0].Content)
	require.NotNil(t, stored.Submissions[0].Feedback)
	require.Equal(t, 2, stored.Submissions[0].Feedback.Data().HintsUsed)
}
