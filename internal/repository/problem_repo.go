package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/solvio/solvio-api/internal/models"
)

// ProblemFilter narrows problem bank queries.
type ProblemFilter struct {
	Topic    string
	Level    *int
	Page     int
	PageSize int
}

// ProblemRepository exposes the read-only problem bank.
type ProblemRepository interface {
	List(ctx context.Context, filter ProblemFilter) ([]models.Problem, int64, error)
	GetByProblemID(ctx context.Context, problemID string) (models.Problem, error)
}

type problemRepository struct {
	db *gorm.DB
}

// NewProblemRepository instantiates the repository.
func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

func (r *problemRepository) List(ctx context.Context, filter ProblemFilter) ([]models.Problem, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Problem{})

	if filter.Topic != "" {
		query = query.Where("topic = ?", filter.Topic)
	}
	if filter.Level != nil {
		query = query.Where("level = ?", *filter.Level)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var problems []models.Problem
	if err := query.Order("level ASC, problem_id ASC").Find(&problems).Error; err != nil {
		return nil, 0, err
	}

	return problems, total, nil
}

func (r *problemRepository) GetByProblemID(ctx context.Context, problemID string) (models.Problem, error) {
	var problem models.Problem
	if err := r.db.WithContext(ctx).
		Where("problem_id = ?", problemID).
		First(&problem).Error; err != nil {
		return models.Problem{}, err
	}

	return problem, nil
}
