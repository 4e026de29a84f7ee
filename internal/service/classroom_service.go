package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/solvio/solvio-api/internal/dto"
	"github.com/solvio/solvio-api/internal/models"
	"github.com/solvio/solvio-api/internal/repository"
)

const joinCodeAttempts = 10

// ClassroomService manages classrooms, enrollment, and join codes.
type ClassroomService interface {
	Create(ctx context.Context, actor Actor, payload dto.ClassroomCreateRequest) (dto.ClassroomResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.ClassroomResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.ClassroomUpdateRequest) (dto.ClassroomResponse, error)
	Join(ctx context.Context, actor Actor, payload dto.ClassroomJoinRequest) (dto.ClassroomJoinResponse, error)
	RemoveStudent(ctx context.Context, actor Actor, classroomID, studentID uint) error
	RegenerateCode(ctx context.Context, actor Actor, classroomID uint) (string, error)
	ListTeaching(ctx context.Context, actor Actor) ([]dto.ClassroomResponse, error)
	ListEnrolled(ctx context.Context, actor Actor) ([]dto.ClassroomResponse, error)
}

type classroomService struct {
	classrooms  repository.ClassroomRepository
	assignments repository.AssignmentRepository
	progress    repository.ProgressRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewClassroomService constructs the classroom service.
func NewClassroomService(classroomRepo repository.ClassroomRepository, assignmentRepo repository.AssignmentRepository, progressRepo repository.ProgressRepository, validate *validator.Validate, logger zerolog.Logger) ClassroomService {
	return &classroomService{
		classrooms:  classroomRepo,
		assignments: assignmentRepo,
		progress:    progressRepo,
		validator:   validate,
		logger:      logger.With().Str("component", "classroom_service").Logger(),
	}
}

func (s *classroomService) Create(ctx context.Context, actor Actor, payload dto.ClassroomCreateRequest) (dto.ClassroomResponse, error) {
	if !actor.IsTeacher() {
		return dto.ClassroomResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassroomResponse{}, err
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return dto.ClassroomResponse{}, err
	}

	classroom := models.Classroom{
		Name:        payload.Name,
		Description: payload.Description,
		TeacherID:   actor.ID,
		Code:        code,
		Active:      true,
	}

	if err := s.classrooms.Create(ctx, &classroom); err != nil {
		return dto.ClassroomResponse{}, err
	}

	created, err := s.classrooms.GetByID(ctx, classroom.ID)
	if err != nil {
		return dto.ClassroomResponse{}, err
	}

	s.logger.Info().Uint("classroom_id", created.ID).Msg("classroom created")
	return dto.NewClassroomResponse(created), nil
}

func (s *classroomService) Get(ctx context.Context, actor Actor, id uint) (dto.ClassroomResponse, error) {
	classroom, err := s.load(ctx, id)
	if err != nil {
		return dto.ClassroomResponse{}, err
	}

	if err := CanViewClassroom(actor, classroom); err != nil {
		return dto.ClassroomResponse{}, err
	}

	return dto.NewClassroomResponse(classroom), nil
}

func (s *classroomService) Update(ctx context.Context, actor Actor, id uint, payload dto.ClassroomUpdateRequest) (dto.ClassroomResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassroomResponse{}, err
	}

	classroom, err := s.load(ctx, id)
	if err != nil {
		return dto.ClassroomResponse{}, err
	}

	if err := CanManageClassroom(actor, classroom); err != nil {
		return dto.ClassroomResponse{}, err
	}

	if payload.Name != nil {
		classroom.Name = *payload.Name
	}
	if payload.Description != nil {
		classroom.Description = *payload.Description
	}
	if payload.Active != nil {
		classroom.Active = *payload.Active
	}

	if err := s.classrooms.Update(ctx, &classroom); err != nil {
		return dto.ClassroomResponse{}, err
	}

	return dto.NewClassroomResponse(classroom), nil
}

// Join enrolls the student and backfills a progress record for every
// active assignment of the classroom. Records are independent; failures
// are counted rather than rolled back.
func (s *classroomService) Join(ctx context.Context, actor Actor, payload dto.ClassroomJoinRequest) (dto.ClassroomJoinResponse, error) {
	if !actor.IsStudent() {
		return dto.ClassroomJoinResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassroomJoinResponse{}, err
	}

	classroom, err := s.classrooms.GetByCode(ctx, normalizeCode(payload.Code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassroomJoinResponse{}, ErrClassroomNotFound
		}
		return dto.ClassroomJoinResponse{}, err
	}

	if classroom.HasStudent(actor.ID) {
		return dto.ClassroomJoinResponse{}, ErrAlreadyEnrolled
	}

	if err := s.classrooms.AddStudent(ctx, classroom.ID, models.User{ID: actor.ID}); err != nil {
		return dto.ClassroomJoinResponse{}, err
	}

	result := s.provisionForStudent(ctx, classroom, actor.ID)

	enrolled, err := s.classrooms.GetByID(ctx, classroom.ID)
	if err != nil {
		return dto.ClassroomJoinResponse{}, err
	}

	s.logger.Info().
		Uint("classroom_id", classroom.ID).
		Uint("student_id", actor.ID).
		Int("provisioned", result.Created).
		Int("failed", result.Failed).
		Msg("student joined classroom")

	return dto.ClassroomJoinResponse{
		Classroom:   dto.NewClassroomResponse(enrolled),
		Provisioned: result,
	}, nil
}

func (s *classroomService) RemoveStudent(ctx context.Context, actor Actor, classroomID, studentID uint) error {
	classroom, err := s.load(ctx, classroomID)
	if err != nil {
		return err
	}

	if err := CanManageClassroom(actor, classroom); err != nil {
		return err
	}

	return s.classrooms.RemoveStudent(ctx, classroomID, studentID)
}

func (s *classroomService) RegenerateCode(ctx context.Context, actor Actor, classroomID uint) (string, error) {
	classroom, err := s.load(ctx, classroomID)
	if err != nil {
		return "", err
	}

	if err := CanManageClassroom(actor, classroom); err != nil {
		return "", err
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return "", err
	}

	classroom.Code = code
	if err := s.classrooms.Update(ctx, &classroom); err != nil {
		return "", err
	}

	return code, nil
}

func (s *classroomService) ListTeaching(ctx context.Context, actor Actor) ([]dto.ClassroomResponse, error) {
	if !actor.IsTeacher() {
		return nil, ErrForbidden
	}

	classrooms, err := s.classrooms.ListByTeacher(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	return dto.NewClassroomResponseSlice(classrooms), nil
}

func (s *classroomService) ListEnrolled(ctx context.Context, actor Actor) ([]dto.ClassroomResponse, error) {
	if !actor.IsStudent() {
		return nil, ErrForbidden
	}

	classrooms, err := s.classrooms.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	return dto.NewClassroomResponseSlice(classrooms), nil
}

func (s *classroomService) provisionForStudent(ctx context.Context, classroom models.Classroom, studentID uint) dto.ProvisionResult {
	assignments, err := s.assignments.ListByClassroom(ctx, classroom.ID, true)
	if err != nil {
		s.logger.Warn().Err(err).Uint("classroom_id", classroom.ID).Msg("failed to list assignments for provisioning")
		return dto.ProvisionResult{}
	}

	result := dto.ProvisionResult{}
	for _, assignment := range assignments {
		record := models.Progress{
			StudentID:    studentID,
			AssignmentID: assignment.ID,
			ClassroomID:  classroom.ID,
			Status:       models.ProgressStatusNotStarted,
		}
		if err := s.progress.Create(ctx, &record); err != nil {
			result.Failed++
			s.logger.Warn().Err(err).
				Uint("assignment_id", assignment.ID).
				Uint("student_id", studentID).
				Msg("failed to provision progress record")
			continue
		}
		result.Created++
	}

	return result
}

func (s *classroomService) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < joinCodeAttempts; i++ {
		code := models.NewJoinCode()
		exists, err := s.classrooms.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("could not generate a unique join code")
}

func (s *classroomService) load(ctx context.Context, id uint) (models.Classroom, error) {
	classroom, err := s.classrooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Classroom{}, ErrClassroomNotFound
		}
		return models.Classroom{}, err
	}
	return classroom, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
