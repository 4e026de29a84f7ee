package dto

import "github.com/solvio/solvio-api/internal/models"

// ProblemResponse is the API projection of a problem bank entry.
type ProblemResponse struct {
	ProblemID string `json:"problem_id"`
	Topic     string `json:"topic"`
	Level     int    `json:"level"`
	Problem   string `json:"problem"`
	Solution  string `json:"solution,omitempty"`
	Type      string `json:"type"`
}

// ProblemListResponse is a paginated problem bank listing.
type ProblemListResponse struct {
	Problems    []ProblemResponse `json:"problems"`
	Total       int64             `json:"total"`
	CurrentPage int               `json:"current_page"`
	TotalPages  int               `json:"total_pages"`
}

// NewProblemResponse maps a problem model onto its API shape.
func NewProblemResponse(problem models.Problem, includeSolution bool) ProblemResponse {
	response := ProblemResponse{
		ProblemID: problem.ProblemID,
		Topic:     problem.Topic,
		Level:     problem.Level,
		Problem:   problem.Problem,
		Type:      problem.Type,
	}
	if includeSolution {
		response.Solution = problem.Solution
	}
	return response
}
