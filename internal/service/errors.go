package service

import "errors"

// Not-found errors map to 404 at the boundary. They are distinct from
// ErrForbidden: a caller who lacks access to an existing resource must not
// be told it is missing, and vice versa.
var (
	ErrClassroomNotFound  = errors.New("classroom not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrProgressNotFound   = errors.New("progress not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrProblemNotFound    = errors.New("problem not found")
)

// ErrForbidden indicates the actor is authenticated but lacks the role or
// ownership required for the operation.
var ErrForbidden = errors.New("access denied")

// Invalid-state errors indicate the aggregate forbids the operation.
var (
	ErrNoWorkFound     = errors.New("no work found for this question")
	ErrAlreadyEnrolled = errors.New("already enrolled in this classroom")
	ErrInvalidWork     = errors.New("work payload is not valid for the given mode")
)
