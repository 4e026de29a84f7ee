package models

import (
	"time"

	"gorm.io/datatypes"
)

// Progress statuses. Transitions are monotonic: not_started -> in_progress
// -> completed.
const (
	ProgressStatusNotStarted = "not_started"
	ProgressStatusInProgress = "in_progress"
	ProgressStatusCompleted  = "completed"
)

// Submission work modes.
const (
	WorkModeText   = "text"
	WorkModeLatex  = "latex"
	WorkModeCanvas = "canvas"
)

// Hint is one entry of a submission's append-only hint ledger.
type Hint struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Feedback is the structured record attached to a submission exactly once,
// when the question is completed. HintsUsed captures the ledger length at
// completion time.
type Feedback struct {
	Strengths      []string  `json:"strengths"`
	Improvements   []string  `json:"improvements"`
	HintsUsed      int       `json:"hints_used"`
	SubmissionTime time.Time `json:"submission_time"`
	AIAnalysis     string    `json:"ai_analysis"`
}

// Progress tracks one student's journey through one assignment. It owns its
// submissions exclusively; all mutations go through ProgressService which
// persists the whole aggregate.
type Progress struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	StudentID    uint         `gorm:"not null;uniqueIndex:idx_progress_student_assignment" json:"student_id"`
	AssignmentID uint         `gorm:"not null;uniqueIndex:idx_progress_student_assignment" json:"assignment_id"`
	ClassroomID  uint         `gorm:"not null;index" json:"classroom_id"`
	Status       string       `gorm:"size:32;not null;default:not_started" json:"status"`
	CompletedAt  *time.Time   `json:"completed_at"`
	Version      int64        `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Student      User         `gorm:"foreignKey:StudentID" json:"student"`
	Assignment   Assignment   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Submissions  []Submission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"submissions"`
}

// Submission records one student's attempt at one question. At most one
// exists per (progress, question) pair.
type Submission struct {
	ID          uint                           `gorm:"primaryKey" json:"id"`
	ProgressID  uint                           `gorm:"not null;uniqueIndex:idx_submission_progress_question" json:"progress_id"`
	QuestionID  uint                           `gorm:"not null;uniqueIndex:idx_submission_progress_question" json:"question_id"`
	Work        string                         `gorm:"type:text" json:"work"`
	Mode        string                         `gorm:"size:16;not null;default:text" json:"mode"`
	Hints       datatypes.JSONSlice[Hint]      `json:"hints"`
	IsComplete  bool                           `gorm:"not null;default:false" json:"is_complete"`
	Feedback    *datatypes.JSONType[Feedback]  `json:"feedback"`
	SubmittedAt time.Time                      `json:"submitted_at"`
	CreatedAt   time.Time                      `json:"created_at"`
	UpdatedAt   time.Time                      `json:"updated_at"`
}

// SubmissionFor returns the submission matching the question, if any.
func (p *Progress) SubmissionFor(questionID uint) *Submission {
	for i := range p.Submissions {
		if p.Submissions[i].QuestionID == questionID {
			return &p.Submissions[i]
		}
	}
	return nil
}

// Recalculate is the single transition function applied after every
// mutation. It flips not_started to in_progress as soon as any submission
// exists, and marks the whole assignment completed exactly when every
// question has a complete submission. Completion is monotonic: a completed
// progress never reverts. It returns true when this call completed the
// assignment.
func (p *Progress) Recalculate(questions []Question, now time.Time) bool {
	if p.Status == ProgressStatusCompleted {
		return false
	}

	if p.Status == ProgressStatusNotStarted && len(p.Submissions) > 0 {
		p.Status = ProgressStatusInProgress
	}

	if len(questions) == 0 {
		return false
	}

	for _, q := range questions {
		sub := p.SubmissionFor(q.ID)
		if sub == nil || !sub.IsComplete {
			return false
		}
	}

	p.Status = ProgressStatusCompleted
	completedAt := now
	p.CompletedAt = &completedAt
	return true
}
