package models

import "time"

// Question types supported by assignments.
const (
	QuestionTypeMath           = "math"
	QuestionTypeMultipleChoice = "multiple-choice"
)

// Assignment is a set of ordered questions issued to a classroom.
type Assignment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ClassroomID uint       `gorm:"not null;index" json:"classroom_id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"size:1000" json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Active      bool       `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Classroom   Classroom  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"classroom"`
	Questions   []Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
}

// Question is a single prompt inside an assignment. Questions are immutable
// once created; new ones may only be appended.
type Question struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"not null;index" json:"assignment_id"`
	Position     int       `gorm:"not null" json:"position"`
	Prompt       string    `gorm:"type:text;not null" json:"prompt"`
	Solution     string    `gorm:"type:text" json:"solution"`
	Type         string    `gorm:"size:32;not null;default:math" json:"type"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsPastDue returns true when the assignment has a deadline that already
// passed at the reference time.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return a.DueDate != nil && reference.After(*a.DueDate)
}

// QuestionByID finds a question in the assignment's list.
func (a Assignment) QuestionByID(questionID uint) (Question, bool) {
	for _, q := range a.Questions {
		if q.ID == questionID {
			return q, true
		}
	}
	return Question{}, false
}
