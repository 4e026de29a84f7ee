package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/solvio/solvio-api/internal/models"
)

// ErrVersionConflict indicates a progress aggregate was modified between
// read and write. Callers should reload and retry.
var ErrVersionConflict = errors.New("progress version conflict")

// ProgressRepository defines data operations for progress aggregates. Save
// writes the whole aggregate; partial submission updates are not exposed.
type ProgressRepository interface {
	GetByID(ctx context.Context, id uint) (models.Progress, error)
	GetByStudentAndAssignment(ctx context.Context, studentID, assignmentID uint) (models.Progress, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Progress, error)
	ListByStudent(ctx context.Context, studentID uint, assignmentIDs []uint) ([]models.Progress, error)
	CountCompletedByAssignment(ctx context.Context, assignmentID uint) (int64, error)
	Create(ctx context.Context, progress *models.Progress) error
	Save(ctx context.Context, progress *models.Progress) error
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository instantiates the repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Progress{}).
		Preload("Student").
		Preload("Submissions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

func (r *progressRepository) GetByID(ctx context.Context, id uint) (models.Progress, error) {
	var progress models.Progress
	if err := r.baseQuery(ctx).First(&progress, id).Error; err != nil {
		return models.Progress{}, err
	}

	return progress, nil
}

func (r *progressRepository) GetByStudentAndAssignment(ctx context.Context, studentID, assignmentID uint) (models.Progress, error) {
	var progress models.Progress
	if err := r.baseQuery(ctx).
		Where("student_id = ?", studentID).
		Where("assignment_id = ?", assignmentID).
		First(&progress).Error; err != nil {
		return models.Progress{}, err
	}

	return progress, nil
}

func (r *progressRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Progress, error) {
	var records []models.Progress
	if err := r.baseQuery(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *progressRepository) ListByStudent(ctx context.Context, studentID uint, assignmentIDs []uint) ([]models.Progress, error) {
	query := r.baseQuery(ctx).Where("student_id = ?", studentID)
	if len(assignmentIDs) > 0 {
		query = query.Where("assignment_id IN ?", assignmentIDs)
	}

	var records []models.Progress
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *progressRepository) CountCompletedByAssignment(ctx context.Context, assignmentID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Progress{}).
		Where("assignment_id = ?", assignmentID).
		Where("status = ?", models.ProgressStatusCompleted).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *progressRepository) Create(ctx context.Context, progress *models.Progress) error {
	return r.db.WithContext(ctx).Create(progress).Error
}

// Save persists the full aggregate inside one transaction with an
// optimistic version check on the parent row. RowsAffected of zero means a
// concurrent writer got there first.
func (r *progressRepository) Save(ctx context.Context, progress *models.Progress) error {
	previous := progress.Version

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Progress{}).
			Where("id = ?", progress.ID).
			Where("version = ?", previous).
			Updates(map[string]interface{}{
				"status":       progress.Status,
				"completed_at": progress.CompletedAt,
				"version":      previous + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVersionConflict
		}

		progress.Version = previous + 1

		for i := range progress.Submissions {
			if err := tx.Save(&progress.Submissions[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
