package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/solvio/solvio-api/internal/dto"
	"github.com/solvio/solvio-api/internal/models"
	"github.com/solvio/solvio-api/internal/repository"
	"github.com/solvio/solvio-api/pkg/ai"
)

const workSampleLimit = 200

// ReportService aggregates a question's submissions across a class and
// asks the generator for a cohort-level report.
type ReportService interface {
	QuestionReport(ctx context.Context, actor Actor, assignmentID, questionID uint) (dto.QuestionReportResponse, error)
}

type reportService struct {
	progress    repository.ProgressRepository
	assignments repository.AssignmentRepository
	generator   ai.Generator
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewReportService constructs the report aggregator. The cache client may
// be nil, in which case every request hits the generator.
func NewReportService(progressRepo repository.ProgressRepository, assignmentRepo repository.AssignmentRepository, generator ai.Generator, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ReportService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &reportService{
		progress:    progressRepo,
		assignments: assignmentRepo,
		generator:   generator,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "report_service").Logger(),
		tracer:      otel.Tracer("github.com/solvio/solvio-api/internal/service/report"),
		now:         time.Now,
	}
}

func (s *reportService) QuestionReport(ctx context.Context, actor Actor, assignmentID, questionID uint) (dto.QuestionReportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "report.question", trace.WithAttributes(
		attribute.Int64("assignment_id", int64(assignmentID)),
		attribute.Int64("question_id", int64(questionID)),
	))
	defer span.End()

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionReportResponse{}, ErrAssignmentNotFound
		}
		span.RecordError(err)
		return dto.QuestionReportResponse{}, err
	}

	if err := CanManageClassroom(actor, assignment.Classroom); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return dto.QuestionReportResponse{}, err
	}

	question, ok := assignment.QuestionByID(questionID)
	if !ok {
		return dto.QuestionReportResponse{}, ErrQuestionNotFound
	}

	cacheKey := fmt.Sprintf("report:assignment:%d:question:%d", assignmentID, questionID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.QuestionReportResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("key", cacheKey).Msg("report cache hit")
				span.SetAttributes(attribute.Bool("cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read report cache")
		}
	}

	records, err := s.progress.ListByAssignment(ctx, assignmentID)
	if err != nil {
		span.RecordError(err)
		return dto.QuestionReportResponse{}, err
	}

	summaries, stats := buildQuestionStats(records, questionID)

	report, err := s.generator.ClassReport(ctx, ai.ReportInput{
		QuestionText: question.Prompt,
		Submissions:  summaries,
		Stats: ai.ReportStats{
			TotalSubmissions: stats.TotalSubmissions,
			Completed:        stats.Completed,
			InProgress:       stats.InProgress,
			AverageHints:     stats.AverageHints,
		},
	})
	if err != nil {
		s.logger.Warn().Err(err).
			Uint("assignment_id", assignmentID).
			Uint("question_id", questionID).
			Msg("class report generation failed, returning degraded report")
		report = ai.DegradedReport()
	}
	report.Normalize()

	response := dto.QuestionReportResponse{
		AssignmentID:   assignmentID,
		QuestionID:     questionID,
		QuestionNumber: question.Position,
		Stats:          stats,
		Report:         dto.NewClassReportBody(report),
		GeneratedAt:    s.now(),
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store report cache")
			}
		}
	}

	span.SetAttributes(attribute.Int("submissions", stats.TotalSubmissions))
	return response, nil
}

// buildQuestionStats projects each student's submission for the question
// and computes summary statistics. Students without a submission are
// skipped. Summaries are sorted by student id so report requests are
// deterministic regardless of storage iteration order. AverageHints is 0
// when nobody submitted, never NaN.
func buildQuestionStats(records []models.Progress, questionID uint) ([]ai.SubmissionSummary, dto.QuestionStats) {
	summaries := make([]ai.SubmissionSummary, 0, len(records))
	totalHints := 0

	for _, record := range records {
		sub := record.SubmissionFor(questionID)
		if sub == nil {
			continue
		}

		status := models.ProgressStatusInProgress
		if sub.IsComplete {
			status = models.ProgressStatusCompleted
		}

		summaries = append(summaries, ai.SubmissionSummary{
			StudentID:   record.StudentID,
			Status:      status,
			HintsUsed:   len(sub.Hints),
			Mode:        sub.Mode,
			WorkSample:  truncateRunes(sub.Work, workSampleLimit),
			HasFeedback: sub.Feedback != nil,
		})
		totalHints += len(sub.Hints)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StudentID < summaries[j].StudentID
	})

	stats := dto.QuestionStats{TotalSubmissions: len(summaries)}
	for _, summary := range summaries {
		if summary.Status == models.ProgressStatusCompleted {
			stats.Completed++
		} else {
			stats.InProgress++
		}
	}
	if len(summaries) > 0 {
		average := float64(totalHints) / float64(len(summaries))
		stats.AverageHints = math.Round(average*10) / 10
	}

	return summaries, stats
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
