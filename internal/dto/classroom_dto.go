package dto

import (
	"time"

	"github.com/solvio/solvio-api/internal/models"
)

// ClassroomCreateRequest creates a new classroom.
type ClassroomCreateRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// ClassroomUpdateRequest updates mutable classroom attributes.
type ClassroomUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Active      *bool   `json:"active"`
}

// ClassroomJoinRequest enrolls a student via join code.
type ClassroomJoinRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// MemberResponse is the classroom projection of an enrolled user.
type MemberResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ClassroomResponse is the API projection of a classroom.
type ClassroomResponse struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	TeacherID   uint             `json:"teacher_id"`
	TeacherName string           `json:"teacher_name,omitempty"`
	Code        string           `json:"code"`
	Active      bool             `json:"active"`
	Students    []MemberResponse `json:"students"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ProvisionResult reports the outcome of a bulk progress-record creation.
// Each record is independent, so partial failure is reported as counts
// rather than rolled back.
type ProvisionResult struct {
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

// ClassroomJoinResponse confirms enrollment together with the progress
// records provisioned for the classroom's active assignments.
type ClassroomJoinResponse struct {
	Classroom   ClassroomResponse `json:"classroom"`
	Provisioned ProvisionResult   `json:"provisioned"`
}

// NewMemberResponse maps a user onto the member shape.
func NewMemberResponse(user models.User) MemberResponse {
	return MemberResponse{ID: user.ID, Name: user.Name, Email: user.Email}
}

// NewClassroomResponse maps a classroom model onto its API shape.
func NewClassroomResponse(classroom models.Classroom) ClassroomResponse {
	students := make([]MemberResponse, 0, len(classroom.Students))
	for _, student := range classroom.Students {
		students = append(students, NewMemberResponse(student))
	}

	return ClassroomResponse{
		ID:          classroom.ID,
		Name:        classroom.Name,
		Description: classroom.Description,
		TeacherID:   classroom.TeacherID,
		TeacherName: classroom.Teacher.Name,
		Code:        classroom.Code,
		Active:      classroom.Active,
		Students:    students,
		CreatedAt:   classroom.CreatedAt,
	}
}

// NewClassroomResponseSlice maps a list of classrooms.
func NewClassroomResponseSlice(classrooms []models.Classroom) []ClassroomResponse {
	responses := make([]ClassroomResponse, 0, len(classrooms))
	for _, classroom := range classrooms {
		responses = append(responses, NewClassroomResponse(classroom))
	}
	return responses
}
