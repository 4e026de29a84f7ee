package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/solvio/solvio-api/internal/dto"
	"github.com/solvio/solvio-api/internal/models"
	"github.com/solvio/solvio-api/internal/repository"
	"github.com/solvio/solvio-api/pkg/ai"
)

// ProgressService owns the submission state machine: saving work,
// accumulating hints, completing questions with generated feedback, and
// deriving assignment-level status.
type ProgressService interface {
	SaveWork(ctx context.Context, actor Actor, assignmentID, questionID uint, payload dto.SaveWorkRequest) (dto.ProgressResponse, error)
	AddHint(ctx context.Context, actor Actor, assignmentID, questionID uint, payload dto.AddHintRequest) (dto.SubmissionResponse, error)
	CompleteQuestion(ctx context.Context, actor Actor, assignmentID, questionID uint) (dto.SubmissionResponse, error)
	Get(ctx context.Context, actor Actor, assignmentID uint) (dto.ProgressResponse, error)
	ListForAssignment(ctx context.Context, actor Actor, assignmentID uint) ([]dto.ProgressResponse, error)
}

type progressService struct {
	progress    repository.ProgressRepository
	assignments repository.AssignmentRepository
	generator   ai.Generator
	events      EventPublisher
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
	locks       keyedMutex
	now         func() time.Time
}

// NewProgressService constructs the progress service. The generator is an
// injected dependency so tests can stub it and environments can swap
// providers.
func NewProgressService(progressRepo repository.ProgressRepository, assignmentRepo repository.AssignmentRepository, generator ai.Generator, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) ProgressService {
	return &progressService{
		progress:    progressRepo,
		assignments: assignmentRepo,
		generator:   generator,
		events:      events,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "progress_service").Logger(),
		tracer:      otel.Tracer("github.com/solvio/solvio-api/internal/service/progress"),
		now:         time.Now,
	}
}

// keyedMutex serializes writers per progress aggregate. Different students'
// aggregates are fully independent; two requests racing to upsert different
// submissions inside the same aggregate are not.
type keyedMutex struct {
	locks sync.Map
}

func (k *keyedMutex) lock(key uint) func() {
	value, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *progressService) SaveWork(ctx context.Context, actor Actor, assignmentID, questionID uint, payload dto.SaveWorkRequest) (dto.ProgressResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProgressResponse{}, err
	}

	mode := payload.Mode
	if mode == "" {
		mode = models.WorkModeText
	}

	if mode == models.WorkModeCanvas {
		if err := validateCanvasPayload(payload.Work); err != nil {
			return dto.ProgressResponse{}, err
		}
	}

	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}
	if _, ok := assignment.QuestionByID(questionID); !ok {
		return dto.ProgressResponse{}, ErrQuestionNotFound
	}

	progress, _, err := s.mutate(ctx, actor, assignment, func(p *models.Progress) error {
		now := s.now()
		if sub := p.SubmissionFor(questionID); sub != nil {
			sub.Work = payload.Work
			sub.Mode = mode
			sub.SubmittedAt = now
			return nil
		}

		p.Submissions = append(p.Submissions, models.Submission{
			ProgressID:  p.ID,
			QuestionID:  questionID,
			Work:        payload.Work,
			Mode:        mode,
			Hints:       datatypes.JSONSlice[models.Hint]{},
			SubmittedAt: now,
		})
		return nil
	})
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	s.logger.Debug().
		Uint("progress_id", progress.ID).
		Uint("question_id", questionID).
		Str("mode", mode).
		Msg("work saved")

	return dto.NewProgressResponse(progress), nil
}

// AddHint appends to the submission's hint ledger. When no submission
// exists yet the service auto-creates an empty one, so students can ask for
// a hint before writing anything down; the first write wins either way.
func (s *progressService) AddHint(ctx context.Context, actor Actor, assignmentID, questionID uint, payload dto.AddHintRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if _, ok := assignment.QuestionByID(questionID); !ok {
		return dto.SubmissionResponse{}, ErrQuestionNotFound
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))

	progress, _, err := s.mutate(ctx, actor, assignment, func(p *models.Progress) error {
		now := s.now()
		sub := p.SubmissionFor(questionID)
		if sub == nil {
			p.Submissions = append(p.Submissions, models.Submission{
				ProgressID:  p.ID,
				QuestionID:  questionID,
				Mode:        models.WorkModeText,
				Hints:       datatypes.JSONSlice[models.Hint]{},
				SubmittedAt: now,
			})
			sub = p.SubmissionFor(questionID)
		}

		sub.Hints = append(sub.Hints, models.Hint{Content: content, Timestamp: now})
		return nil
	})
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(*progress.SubmissionFor(questionID)), nil
}

func (s *progressService) CompleteQuestion(ctx context.Context, actor Actor, assignmentID, questionID uint) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "progress.complete_question", trace.WithAttributes(
		attribute.Int64("assignment_id", int64(assignmentID)),
		attribute.Int64("question_id", int64(questionID)),
		attribute.Int64("student_id", int64(actor.ID)),
	))
	defer span.End()

	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assignment_lookup_failed")
		return dto.SubmissionResponse{}, err
	}
	if _, ok := assignment.QuestionByID(questionID); !ok {
		return dto.SubmissionResponse{}, ErrQuestionNotFound
	}

	current, err := s.loadProgress(ctx, actor, assignment)
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	existing := current.SubmissionFor(questionID)
	if existing == nil {
		span.SetStatus(codes.Error, "no_work_found")
		return dto.SubmissionResponse{}, ErrNoWorkFound
	}
	if existing.IsComplete {
		// Completion is monotonic; repeating the call returns the stored
		// feedback without a second generator round trip.
		span.SetAttributes(attribute.Bool("idempotent", true))
		return dto.NewSubmissionResponse(*existing), nil
	}

	feedback := s.generateFeedback(ctx, *existing)

	progress, completedNow, err := s.mutate(ctx, actor, assignment, func(p *models.Progress) error {
		sub := p.SubmissionFor(questionID)
		if sub == nil {
			return ErrNoWorkFound
		}
		if sub.IsComplete {
			return nil
		}

		record := datatypes.NewJSONType(models.Feedback{
			Strengths:      feedback.Strengths,
			Improvements:   feedback.Improvements,
			HintsUsed:      len(sub.Hints),
			SubmissionTime: s.now(),
			AIAnalysis:     feedback.Analysis,
		})
		sub.IsComplete = true
		sub.Feedback = &record
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	if completedNow {
		s.publishCompletion(ctx, progress)
	}

	span.SetAttributes(
		attribute.String("progress_status", progress.Status),
		attribute.Bool("assignment_completed", completedNow),
	)

	return dto.NewSubmissionResponse(*progress.SubmissionFor(questionID)), nil
}

func (s *progressService) Get(ctx context.Context, actor Actor, assignmentID uint) (dto.ProgressResponse, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	if actor.IsTeacher() {
		return dto.ProgressResponse{}, ErrForbidden
	}

	progress, err := s.loadProgress(ctx, actor, assignment)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	return dto.NewProgressResponse(progress), nil
}

func (s *progressService) ListForAssignment(ctx context.Context, actor Actor, assignmentID uint) ([]dto.ProgressResponse, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if err := CanManageClassroom(actor, assignment.Classroom); err != nil {
		return nil, err
	}

	records, err := s.progress.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewProgressResponseSlice(records), nil
}

// generateFeedback calls the generator and absorbs every failure into the
// degraded record so completion is never blocked.
func (s *progressService) generateFeedback(ctx context.Context, submission models.Submission) ai.Feedback {
	hints := make([]string, 0, len(submission.Hints))
	for _, hint := range submission.Hints {
		hints = append(hints, hint.Content)
	}

	feedback, err := s.generator.AnalyzeWork(ctx, ai.WorkInput{
		Work:  submission.Work,
		Mode:  submission.Mode,
		Hints: hints,
	})
	if err != nil {
		s.logger.Warn().Err(err).
			Uint("question_id", submission.QuestionID).
			Msg("feedback generation failed, storing degraded feedback")
		return ai.Degraded()
	}

	feedback.Normalize()
	return feedback
}

// mutate loads the actor's aggregate, applies fn, runs the unified status
// transition, and persists the whole aggregate. A stale version triggers a
// single reload-and-retry. It returns the saved aggregate and whether this
// mutation completed the assignment.
func (s *progressService) mutate(ctx context.Context, actor Actor, assignment models.Assignment, fn func(*models.Progress) error) (models.Progress, bool, error) {
	progress, err := s.loadProgress(ctx, actor, assignment)
	if err != nil {
		return models.Progress{}, false, err
	}

	unlock := s.locks.lock(progress.ID)
	defer unlock()

	for attempt := 0; ; attempt++ {
		if err := fn(&progress); err != nil {
			return models.Progress{}, false, err
		}

		completedNow := progress.Recalculate(assignment.Questions, s.now())

		err := s.progress.Save(ctx, &progress)
		if err == nil {
			return progress, completedNow, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) || attempt > 0 {
			return models.Progress{}, false, err
		}

		progress, err = s.progress.GetByID(ctx, progress.ID)
		if err != nil {
			return models.Progress{}, false, err
		}
	}
}

func (s *progressService) loadAssignment(ctx context.Context, assignmentID uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (s *progressService) loadProgress(ctx context.Context, actor Actor, assignment models.Assignment) (models.Progress, error) {
	progress, err := s.progress.GetByStudentAndAssignment(ctx, actor.ID, assignment.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Progress{}, ErrProgressNotFound
		}
		return models.Progress{}, err
	}

	if err := CanMutateProgress(actor, progress); err != nil {
		return models.Progress{}, err
	}

	return progress, nil
}

func (s *progressService) publishCompletion(ctx context.Context, progress models.Progress) {
	if s.events == nil || progress.CompletedAt == nil {
		return
	}

	event := CompletionEvent{
		ProgressID:   progress.ID,
		StudentID:    progress.StudentID,
		AssignmentID: progress.AssignmentID,
		ClassroomID:  progress.ClassroomID,
		CompletedAt:  *progress.CompletedAt,
	}
	if err := s.events.PublishCompletion(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("progress_id", progress.ID).Msg("completion event not delivered")
	}
}

// validateCanvasPayload requires canvas work to be a base64 encoded raster
// image, with or without a data URL prefix.
func validateCanvasPayload(work string) error {
	encoded := work
	if idx := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:image") && idx >= 0 {
		encoded = encoded[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return ErrInvalidWork
	}

	if !strings.HasPrefix(mimetype.Detect(raw).String(), "image/") {
		return ErrInvalidWork
	}

	return nil
}
