package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/solvio/solvio-api/internal/dto"
	"github.com/solvio/solvio-api/internal/models"
	"github.com/solvio/solvio-api/internal/repository"
)

// AssignmentService manages assignments and their question lists.
type AssignmentService interface {
	Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentCreateResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error)
	ListByClassroom(ctx context.Context, actor Actor, classroomID uint) ([]dto.AssignmentResponse, error)
	AddQuestion(ctx context.Context, actor Actor, assignmentID uint, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	Delete(ctx context.Context, actor Actor, assignmentID uint) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	classrooms  repository.ClassroomRepository
	progress    repository.ProgressRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(assignmentRepo repository.AssignmentRepository, classroomRepo repository.ClassroomRepository, progressRepo repository.ProgressRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignmentRepo,
		classrooms:  classroomRepo,
		progress:    progressRepo,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

// Create stores the assignment and provisions one progress record per
// enrolled student. Provisioning failures leave the assignment in place
// and are reported as counts.
func (s *assignmentService) Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentCreateResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentCreateResponse{}, err
	}

	classroom, err := s.loadClassroom(ctx, payload.ClassroomID)
	if err != nil {
		return dto.AssignmentCreateResponse{}, err
	}

	if err := CanManageClassroom(actor, classroom); err != nil {
		return dto.AssignmentCreateResponse{}, err
	}

	questions := make([]models.Question, 0, len(payload.Questions))
	for i, q := range payload.Questions {
		questionType := q.Type
		if questionType == "" {
			questionType = models.QuestionTypeMath
		}
		questions = append(questions, models.Question{
			Position: i + 1,
			Prompt:   q.Prompt,
			Solution: q.Solution,
			Type:     questionType,
		})
	}

	assignment := models.Assignment{
		ClassroomID: payload.ClassroomID,
		Title:       payload.Title,
		Description: payload.Description,
		DueDate:     payload.DueDate,
		Active:      true,
		Questions:   questions,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentCreateResponse{}, err
	}

	result := dto.ProvisionResult{}
	for _, student := range classroom.Students {
		record := models.Progress{
			StudentID:    student.ID,
			AssignmentID: assignment.ID,
			ClassroomID:  classroom.ID,
			Status:       models.ProgressStatusNotStarted,
		}
		if err := s.progress.Create(ctx, &record); err != nil {
			result.Failed++
			s.logger.Warn().Err(err).
				Uint("assignment_id", assignment.ID).
				Uint("student_id", student.ID).
				Msg("failed to provision progress record")
			continue
		}
		result.Created++
	}

	created, err := s.assignments.GetByID(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentCreateResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", created.ID).
		Int("questions", len(created.Questions)).
		Int("provisioned", result.Created).
		Msg("assignment created")

	return dto.AssignmentCreateResponse{
		Assignment:  dto.NewAssignmentResponse(created, true),
		Provisioned: result,
	}, nil
}

func (s *assignmentService) Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.load(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := CanViewClassroom(actor, assignment.Classroom); err != nil {
		return dto.AssignmentResponse{}, err
	}

	isOwner := actor.IsTeacher() && assignment.Classroom.TeacherID == actor.ID
	response := dto.NewAssignmentResponse(assignment, isOwner)

	if actor.IsStudent() {
		response.Status = s.statusFor(ctx, actor.ID, assignment.ID)
	}

	return response, nil
}

// ListByClassroom returns the classroom's assignments. Students see only
// active assignments without reference solutions, each annotated with
// their own progress status; the owning teacher additionally gets a
// completed-student count per assignment.
func (s *assignmentService) ListByClassroom(ctx context.Context, actor Actor, classroomID uint) ([]dto.AssignmentResponse, error) {
	classroom, err := s.loadClassroom(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	if err := CanViewClassroom(actor, classroom); err != nil {
		return nil, err
	}

	isOwner := actor.IsTeacher() && classroom.TeacherID == actor.ID

	assignments, err := s.assignments.ListByClassroom(ctx, classroomID, !isOwner)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AssignmentResponse, 0, len(assignments))

	if isOwner {
		for _, assignment := range assignments {
			response := dto.NewAssignmentResponse(assignment, true)
			if count, err := s.progress.CountCompletedByAssignment(ctx, assignment.ID); err == nil {
				response.CompletedBy = &count
			}
			responses = append(responses, response)
		}
		return responses, nil
	}

	assignmentIDs := make([]uint, 0, len(assignments))
	for _, assignment := range assignments {
		assignmentIDs = append(assignmentIDs, assignment.ID)
	}

	statusByAssignment := map[uint]string{}
	if records, err := s.progress.ListByStudent(ctx, actor.ID, assignmentIDs); err == nil {
		for _, record := range records {
			statusByAssignment[record.AssignmentID] = record.Status
		}
	}

	for _, assignment := range assignments {
		response := dto.NewAssignmentResponse(assignment, false)
		status, ok := statusByAssignment[assignment.ID]
		if !ok {
			status = models.ProgressStatusNotStarted
		}
		response.Status = status
		responses = append(responses, response)
	}

	return responses, nil
}

// AddQuestion appends to the question list. Existing questions are
// immutable and cannot be removed.
func (s *assignmentService) AddQuestion(ctx context.Context, actor Actor, assignmentID uint, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	assignment, err := s.load(ctx, assignmentID)
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := CanManageClassroom(actor, assignment.Classroom); err != nil {
		return dto.QuestionResponse{}, err
	}

	questionType := payload.Type
	if questionType == "" {
		questionType = models.QuestionTypeMath
	}

	question := models.Question{
		AssignmentID: assignment.ID,
		Position:     len(assignment.Questions) + 1,
		Prompt:       payload.Prompt,
		Solution:     payload.Solution,
		Type:         questionType,
	}

	if err := s.assignments.AddQuestion(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(question, true), nil
}

func (s *assignmentService) Delete(ctx context.Context, actor Actor, assignmentID uint) error {
	assignment, err := s.load(ctx, assignmentID)
	if err != nil {
		return err
	}

	if err := CanManageClassroom(actor, assignment.Classroom); err != nil {
		return err
	}

	if err := s.assignments.Delete(ctx, assignmentID); err != nil {
		return err
	}

	s.logger.Info().Uint("assignment_id", assignmentID).Msg("assignment deleted")
	return nil
}

func (s *assignmentService) statusFor(ctx context.Context, studentID, assignmentID uint) string {
	record, err := s.progress.GetByStudentAndAssignment(ctx, studentID, assignmentID)
	if err != nil {
		return models.ProgressStatusNotStarted
	}
	return record.Status
}

func (s *assignmentService) load(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (s *assignmentService) loadClassroom(ctx context.Context, id uint) (models.Classroom, error) {
	classroom, err := s.classrooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Classroom{}, ErrClassroomNotFound
		}
		return models.Classroom{}, err
	}
	return classroom, nil
}
