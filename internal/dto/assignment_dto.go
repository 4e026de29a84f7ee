package dto

import (
	"time"

	"github.com/solvio/solvio-api/internal/models"
)

// QuestionCreateRequest adds one question to an assignment.
type QuestionCreateRequest struct {
	Prompt   string `json:"prompt" validate:"required"`
	Solution string `json:"solution"`
	Type     string `json:"type" validate:"omitempty,oneof=math multiple-choice"`
}

// AssignmentCreateRequest creates an assignment with its initial question
// list.
type AssignmentCreateRequest struct {
	ClassroomID uint                    `json:"classroom_id" validate:"required"`
	Title       string                  `json:"title" validate:"required,max=200"`
	Description string                  `json:"description" validate:"max=1000"`
	DueDate     *time.Time              `json:"due_date"`
	Questions   []QuestionCreateRequest `json:"questions" validate:"dive"`
}

// QuestionResponse is the API projection of one question.
type QuestionResponse struct {
	ID       uint   `json:"id"`
	Position int    `json:"position"`
	Prompt   string `json:"prompt"`
	Solution string `json:"solution,omitempty"`
	Type     string `json:"type"`
}

// AssignmentResponse is the API projection of one assignment. Status is
// only populated for student listings, where it reflects the requesting
// student's progress.
type AssignmentResponse struct {
	ID            uint               `json:"id"`
	ClassroomID   uint               `json:"classroom_id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	DueDate       *time.Time         `json:"due_date,omitempty"`
	Active        bool               `json:"active"`
	Questions     []QuestionResponse `json:"questions"`
	Status        string             `json:"status,omitempty"`
	CompletedBy   *int64             `json:"completed_by,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// AssignmentCreateResponse pairs the new assignment with the progress
// records provisioned for enrolled students.
type AssignmentCreateResponse struct {
	Assignment  AssignmentResponse `json:"assignment"`
	Provisioned ProvisionResult    `json:"provisioned"`
}

// NewQuestionResponse maps a question model, optionally hiding the
// reference solution from students.
func NewQuestionResponse(question models.Question, includeSolution bool) QuestionResponse {
	response := QuestionResponse{
		ID:       question.ID,
		Position: question.Position,
		Prompt:   question.Prompt,
		Type:     question.Type,
	}
	if includeSolution {
		response.Solution = question.Solution
	}
	return response
}

// NewAssignmentResponse maps an assignment model onto its API shape.
func NewAssignmentResponse(assignment models.Assignment, includeSolutions bool) AssignmentResponse {
	questions := make([]QuestionResponse, 0, len(assignment.Questions))
	for _, question := range assignment.Questions {
		questions = append(questions, NewQuestionResponse(question, includeSolutions))
	}

	return AssignmentResponse{
		ID:          assignment.ID,
		ClassroomID: assignment.ClassroomID,
		Title:       assignment.Title,
		Description: assignment.Description,
		DueDate:     assignment.DueDate,
		Active:      assignment.Active,
		Questions:   questions,
		CreatedAt:   assignment.CreatedAt,
	}
}
