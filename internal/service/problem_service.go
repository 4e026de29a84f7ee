package service

import (
	"context"
	"errors"
	"math"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/solvio/solvio-api/internal/dto"
	"github.com/solvio/solvio-api/internal/repository"
)

// ProblemService exposes the read-only problem bank. Reference solutions
// are only included for teachers.
type ProblemService interface {
	List(ctx context.Context, actor Actor, filter repository.ProblemFilter) (dto.ProblemListResponse, error)
	Get(ctx context.Context, actor Actor, problemID string) (dto.ProblemResponse, error)
}

type problemService struct {
	problems repository.ProblemRepository
	logger   zerolog.Logger
}

// NewProblemService constructs the problem bank service.
func NewProblemService(problemRepo repository.ProblemRepository, logger zerolog.Logger) ProblemService {
	return &problemService{
		problems: problemRepo,
		logger:   logger.With().Str("component", "problem_service").Logger(),
	}
}

func (s *problemService) List(ctx context.Context, actor Actor, filter repository.ProblemFilter) (dto.ProblemListResponse, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	problems, total, err := s.problems.List(ctx, filter)
	if err != nil {
		return dto.ProblemListResponse{}, err
	}

	responses := make([]dto.ProblemResponse, 0, len(problems))
	for _, problem := range problems {
		responses = append(responses, dto.NewProblemResponse(problem, actor.IsTeacher()))
	}

	return dto.ProblemListResponse{
		Problems:    responses,
		Total:       total,
		CurrentPage: filter.Page,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.PageSize))),
	}, nil
}

func (s *problemService) Get(ctx context.Context, actor Actor, problemID string) (dto.ProblemResponse, error) {
	problem, err := s.problems.GetByProblemID(ctx, problemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProblemResponse{}, ErrProblemNotFound
		}
		return dto.ProblemResponse{}, err
	}

	return dto.NewProblemResponse(problem, actor.IsTeacher()), nil
}
