package ai

import "context"

// WorkInput carries one student submission to the feedback generator.
type WorkInput struct {
	Work  string
	Mode  string
	Hints []string
}

// Feedback is the structured analysis of one submission. All fields are
// always present; the adapter normalises missing values to empty slices and
// strings before they reach callers.
type Feedback struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Analysis     string   `json:"analysis"`
}

// SubmissionSummary is the per-student projection included in a class
// report request. WorkSample is truncated by the caller.
type SubmissionSummary struct {
	StudentID   uint   `json:"student_id"`
	Status      string `json:"status"`
	HintsUsed   int    `json:"hints_used"`
	Mode        string `json:"mode"`
	WorkSample  string `json:"work_sample"`
	HasFeedback bool   `json:"has_feedback"`
}

// ReportStats summarises a question's submissions for the cohort prompt.
type ReportStats struct {
	TotalSubmissions int     `json:"total_submissions"`
	Completed        int     `json:"completed"`
	InProgress       int     `json:"in_progress"`
	AverageHints     float64 `json:"average_hints"`
}

// ReportInput carries a cohort of submissions for one question.
type ReportInput struct {
	QuestionText string
	Submissions  []SubmissionSummary
	Stats        ReportStats
}

// PerformancePatterns captures the qualitative summary of a class report.
type PerformancePatterns struct {
	Summary     string   `json:"summary"`
	KeyPatterns []string `json:"key_patterns"`
}

// ClassReport is the structured cohort-level report. Every field is
// guaranteed non-nil after normalisation.
type ClassReport struct {
	PerformancePatterns     PerformancePatterns `json:"performance_patterns"`
	CommonStrengths         []string            `json:"common_strengths"`
	CommonDifficulties      []string            `json:"common_difficulties"`
	Misconceptions          []string            `json:"misconceptions"`
	TeachingRecommendations []string            `json:"teaching_recommendations"`
}

// Generator describes an AI model capable of analysing student work and
// producing cohort reports. Implementations may fail; callers on the
// completion path must substitute Degraded values instead of propagating
// those failures.
type Generator interface {
	AnalyzeWork(ctx context.Context, input WorkInput) (Feedback, error)
	ClassReport(ctx context.Context, input ReportInput) (ClassReport, error)
}

// Degraded returns the fallback feedback used when the generator is
// unavailable. Completion must never be blocked by generator failures.
func Degraded() Feedback {
	return Feedback{
		Strengths:    []string{},
		Improvements: []string{},
		Analysis:     "Unable to generate detailed feedback.",
	}
}

// DegradedReport returns the fallback class report used when the generator
// is unavailable.
func DegradedReport() ClassReport {
	return ClassReport{
		PerformancePatterns: PerformancePatterns{
			Summary:     "Unable to generate class report.",
			KeyPatterns: []string{},
		},
		CommonStrengths:         []string{},
		CommonDifficulties:      []string{},
		Misconceptions:          []string{},
		TeachingRecommendations: []string{},
	}
}

// Normalize guarantees the full feedback shape regardless of what the
// model returned.
func (f *Feedback) Normalize() {
	if f.Strengths == nil {
		f.Strengths = []string{}
	}
	if f.Improvements == nil {
		f.Improvements = []string{}
	}
}

// Normalize guarantees the full report shape regardless of what the model
// returned.
func (r *ClassReport) Normalize() {
	if r.PerformancePatterns.KeyPatterns == nil {
		r.PerformancePatterns.KeyPatterns = []string{}
	}
	if r.CommonStrengths == nil {
		r.CommonStrengths = []string{}
	}
	if r.CommonDifficulties == nil {
		r.CommonDifficulties = []string{}
	}
	if r.Misconceptions == nil {
		r.Misconceptions = []string{}
	}
	if r.TeachingRecommendations == nil {
		r.TeachingRecommendations = []string{}
	}
}
