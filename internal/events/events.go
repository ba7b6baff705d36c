// Package events publishes submission lifecycle notifications to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectSubmissionReviewed is published after a submission finishes the review pipeline.
const SubjectSubmissionReviewed = "codecoach.submissions.reviewed"

// SubmissionReviewed describes a completed submit-and-review run.
type SubmissionReviewed struct {
	SubmissionID    uint      `json:"submission_id"`
	UserID          uint      `json:"user_id"`
	QuestionID      uint      `json:"question_id"`
	Result          string    `json:"result"`
	TestCasesPassed int       `json:"test_cases_passed"`
	TotalTestCases  int       `json:"total_test_cases"`
	ReviewedAt      time.Time `json:"reviewed_at"`
}

// Publisher emits domain events.
type Publisher interface {
	SubmissionReviewed(ctx context.Context, event SubmissionReviewed) error
}

// Conn is the subset of *nats.Conn used by NATSPublisher.
type Conn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes JSON encoded events on a NATS connection.
type NATSPublisher struct {
	conn Conn
}

// NewNATSPublisher wraps an established connection.
func NewNATSPublisher(conn Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

// Connect dials the NATS server at url.
func Connect(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return conn, nil
}

func (p *NATSPublisher) SubmissionReviewed(ctx context.Context, event SubmissionReviewed) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.conn.Publish(SubjectSubmissionReviewed, payload)
}
