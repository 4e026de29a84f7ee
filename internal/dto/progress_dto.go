package dto

import (
	"time"

	"github.com/solvio/solvio-api/internal/models"
)

// SaveWorkRequest captures a student's work payload for one question.
type SaveWorkRequest struct {
	Work string `json:"work" validate:"required"`
	Mode string `json:"mode" validate:"omitempty,oneof=text latex canvas"`
}

// AddHintRequest records one tutoring hint for a question.
type AddHintRequest struct {
	Content string `json:"content" validate:"required"`
}

// HintResponse is one ledger entry.
type HintResponse struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// FeedbackResponse is the structured feedback attached at completion.
type FeedbackResponse struct {
	Strengths      []string  `json:"strengths"`
	Improvements   []string  `json:"improvements"`
	HintsUsed      int       `json:"hints_used"`
	SubmissionTime time.Time `json:"submission_time"`
	AIAnalysis     string    `json:"ai_analysis"`
}

// SubmissionResponse is the API projection of one submission.
type SubmissionResponse struct {
	QuestionID  uint              `json:"question_id"`
	Work        string            `json:"work"`
	Mode        string            `json:"mode"`
	Hints       []HintResponse    `json:"hints"`
	IsComplete  bool              `json:"is_complete"`
	Feedback    *FeedbackResponse `json:"feedback,omitempty"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

// ProgressResponse is the API projection of one progress aggregate.
type ProgressResponse struct {
	ID           uint                 `json:"id"`
	StudentID    uint                 `json:"student_id"`
	StudentName  string               `json:"student_name,omitempty"`
	AssignmentID uint                 `json:"assignment_id"`
	ClassroomID  uint                 `json:"classroom_id"`
	Status       string               `json:"status"`
	CompletedAt  *time.Time           `json:"completed_at,omitempty"`
	Submissions  []SubmissionResponse `json:"submissions"`
}

// NewSubmissionResponse maps a submission model onto its API shape.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	hints := make([]HintResponse, 0, len(submission.Hints))
	for _, hint := range submission.Hints {
		hints = append(hints, HintResponse{Content: hint.Content, Timestamp: hint.Timestamp})
	}

	response := SubmissionResponse{
		QuestionID:  submission.QuestionID,
		Work:        submission.Work,
		Mode:        submission.Mode,
		Hints:       hints,
		IsComplete:  submission.IsComplete,
		SubmittedAt: submission.SubmittedAt,
	}

	if submission.Feedback != nil {
		feedback := submission.Feedback.Data()
		response.Feedback = &FeedbackResponse{
			Strengths:      feedback.Strengths,
			Improvements:   feedback.Improvements,
			HintsUsed:      feedback.HintsUsed,
			SubmissionTime: feedback.SubmissionTime,
			AIAnalysis:     feedback.AIAnalysis,
		}
	}

	return response
}

// NewProgressResponse maps a progress aggregate onto its API shape.
func NewProgressResponse(progress models.Progress) ProgressResponse {
	submissions := make([]SubmissionResponse, 0, len(progress.Submissions))
	for _, submission := range progress.Submissions {
		submissions = append(submissions, NewSubmissionResponse(submission))
	}

	return ProgressResponse{
		ID:           progress.ID,
		StudentID:    progress.StudentID,
		StudentName:  progress.Student.Name,
		AssignmentID: progress.AssignmentID,
		ClassroomID:  progress.ClassroomID,
		Status:       progress.Status,
		CompletedAt:  progress.CompletedAt,
		Submissions:  submissions,
	}
}

// NewProgressResponseSlice maps a list of aggregates.
func NewProgressResponseSlice(records []models.Progress) []ProgressResponse {
	responses := make([]ProgressResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, NewProgressResponse(record))
	}
	return responses
}
