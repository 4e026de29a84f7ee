package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// CompletionEvent is emitted when a student finishes every question of an
// assignment.
type CompletionEvent struct {
	EventID      string    `json:"event_id"`
	ProgressID   uint      `json:"progress_id"`
	StudentID    uint      `json:"student_id"`
	AssignmentID uint      `json:"assignment_id"`
	ClassroomID  uint      `json:"classroom_id"`
	CompletedAt  time.Time `json:"completed_at"`
}

// EventPublisher fans completion events out to interested consumers
// (teacher dashboards, notification workers).
type EventPublisher interface {
	PublishCompletion(ctx context.Context, event CompletionEvent) error
}

type natsEventPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSEventPublisher builds an EventPublisher backed by NATS. The
// subject defaults to "solvio.progress.completed".
func NewNATSEventPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) EventPublisher {
	if subject == "" {
		subject = "solvio.progress.completed"
	}

	return &natsEventPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsEventPublisher) PublishCompletion(_ context.Context, event CompletionEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Uint("progress_id", event.ProgressID).Msg("failed to publish completion event")
		return err
	}

	return nil
}
