package dto

import (
	"time"

	"github.com/solvio/solvio-api/pkg/ai"
)

// QuestionStats summarises a question's submissions across a class.
// AverageHints is rounded to one decimal and is 0 when no submissions
// exist.
type QuestionStats struct {
	TotalSubmissions int     `json:"total_submissions"`
	Completed        int     `json:"completed"`
	InProgress       int     `json:"in_progress"`
	AverageHints     float64 `json:"average_hints"`
}

// PerformancePatterns mirrors the generator's qualitative summary.
type PerformancePatterns struct {
	Summary     string   `json:"summary"`
	KeyPatterns []string `json:"key_patterns"`
}

// ClassReportBody is the qualitative section of a question report.
type ClassReportBody struct {
	PerformancePatterns     PerformancePatterns `json:"performance_patterns"`
	CommonStrengths         []string            `json:"common_strengths"`
	CommonDifficulties      []string            `json:"common_difficulties"`
	Misconceptions          []string            `json:"misconceptions"`
	TeachingRecommendations []string            `json:"teaching_recommendations"`
}

// QuestionReportResponse is the full payload returned for a class report
// request.
type QuestionReportResponse struct {
	AssignmentID   uint            `json:"assignment_id"`
	QuestionID     uint            `json:"question_id"`
	QuestionNumber int             `json:"question_number"`
	Stats          QuestionStats   `json:"stats"`
	Report         ClassReportBody `json:"report"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// NewClassReportBody maps the generator's report onto the API shape.
func NewClassReportBody(report ai.ClassReport) ClassReportBody {
	return ClassReportBody{
		PerformancePatterns: PerformancePatterns{
			Summary:     report.PerformancePatterns.Summary,
			KeyPatterns: report.PerformancePatterns.KeyPatterns,
		},
		CommonStrengths:         report.CommonStrengths,
		CommonDifficulties:      report.CommonDifficulties,
		Misconceptions:          report.Misconceptions,
		TeachingRecommendations: report.TeachingRecommendations,
	}
}
