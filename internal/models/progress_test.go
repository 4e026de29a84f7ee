package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func twoQuestions() []Question {
	return []Question{
		{ID: 1, Position: 1, Prompt: "q1"},
		{ID: 2, Position: 2, Prompt: "q2"},
	}
}

func TestRecalculateStartsProgress(t *testing.T) {
	progress := Progress{Status: ProgressStatusNotStarted}
	progress.Submissions = append(progress.Submissions, Submission{QuestionID: 1})

	completed := progress.Recalculate(twoQuestions(), time.Now())
	require.False(t, completed)
	require.Equal(t, ProgressStatusInProgress, progress.Status)
	require.Nil(t, progress.CompletedAt)
}

func TestRecalculateRequiresEveryQuestion(t *testing.T) {
	progress := Progress{
		Status: ProgressStatusInProgress,
		Submissions: []Submission{
			{QuestionID: 1, IsComplete: true},
		},
	}

	require.False(t, progress.Recalculate(twoQuestions(), time.Now()))
	require.Equal(t, ProgressStatusInProgress, progress.Status)

	progress.Submissions = append(progress.Submissions, Submission{QuestionID: 2, IsComplete: true})

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.True(t, progress.Recalculate(twoQuestions(), now))
	require.Equal(t, ProgressStatusCompleted, progress.Status)
	require.NotNil(t, progress.CompletedAt)
	require.Equal(t, now, *progress.CompletedAt)
}

func TestRecalculateIsMonotonic(t *testing.T) {
	now := time.Now()
	progress := Progress{
		Status:      ProgressStatusCompleted,
		CompletedAt: &now,
		Submissions: []Submission{
			{QuestionID: 1, IsComplete: true},
			{QuestionID: 2, IsComplete: true},
		},
	}

	// Already completed: never reported as newly completed, never reverted.
	require.False(t, progress.Recalculate(twoQuestions(), time.Now().Add(time.Hour)))
	require.Equal(t, ProgressStatusCompleted, progress.Status)
	require.Equal(t, now, *progress.CompletedAt)
}

func TestRecalculateIgnoresEmptyQuestionList(t *testing.T) {
	progress := Progress{Status: ProgressStatusNotStarted}

	require.False(t, progress.Recalculate(nil, time.Now()))
	require.Equal(t, ProgressStatusNotStarted, progress.Status)
}

func TestSubmissionFor(t *testing.T) {
	progress := Progress{Submissions: []Submission{
		{QuestionID: 1, Work: "a"},
		{QuestionID: 2, Work: "b"},
	}}

	sub := progress.SubmissionFor(2)
	require.NotNil(t, sub)
	require.Equal(t, "b", sub.Work)

	// The pointer aliases the slice so callers can mutate in place.
	sub.Work = "edited"
	require.Equal(t, "edited", progress.Submissions[1].Work)

	require.Nil(t, progress.SubmissionFor(99))
}

func TestSubmissionFeedbackRoundTrip(t *testing.T) {
	record := datatypes.NewJSONType(Feedback{
		Strengths:  []string{"clear"},
		HintsUsed:  3,
		AIAnalysis: "good",
	})
	sub := Submission{QuestionID: 1, Feedback: &record}

	feedback := sub.Feedback.Data()
	require.Equal(t, 3, feedback.HintsUsed)
	require.Equal(t, []string{"clear"}, feedback.Strengths)
}
