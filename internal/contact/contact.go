// Package contact handles messages sent through the portfolio contact form.
package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Zachkp/portfolio/internal/logger"
)

var (
	ErrInvalidMessage = errors.New("invalid message")
	// ErrRejected means the downstream service answered with a non-success
	// status.
	ErrRejected      = errors.New("message rejected")
	ErrNotConfigured = errors.New("contact sender not configured")
)

// DefaultSubject is sent as the form endpoint's _subject field.
const DefaultSubject = "New message from portfolio contact form"

// Message is one contact form submission.
type Message struct {
	Name    string
	Email   string
	Subject string
	Body    string
	// Honeypot is the hidden _gotcha field. People never fill it in.
	Honeypot string
}

// Normalize trims surrounding whitespace from every field.
func (m Message) Normalize() Message {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Body = strings.TrimSpace(m.Body)
	m.Honeypot = strings.TrimSpace(m.Honeypot)
	return m
}

var validate = validator.New()

// Validate requires a name, a well-formed email address and a body.
func (m Message) Validate() error {
	var problems []string
	if m.Name == "" {
		problems = append(problems, "name is required")
	}
	if m.Email == "" {
		problems = append(problems, "email is required")
	} else if err := validate.Var(m.Email, "email"); err != nil {
		problems = append(problems, "email is invalid")
	}
	if m.Body == "" {
		problems = append(problems, "message is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidMessage, strings.Join(problems, ", "))
	}
	return nil
}

// IsSpam reports whether the honeypot field was filled in.
func (m Message) IsSpam() bool {
	return m.Honeypot != ""
}

// Sender delivers a message somewhere the site owner will read it.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
	StatusSpam   Status = "spam"
)

// Recorder keeps a log of submissions.
type Recorder interface {
	RecordSubmission(ctx context.Context, m Message, status Status, sendErr error) error
}

// Service validates, filters and forwards submissions. Each submission is
// forwarded at most once.
type Service struct {
	sender   Sender
	recorder Recorder
}

// NewService builds a Service. recorder may be nil.
func NewService(sender Sender, recorder Recorder) *Service {
	return &Service{sender: sender, recorder: recorder}
}

// Submit forwards m. Honeypot hits are reported as success without being
// forwarded.
func (s *Service) Submit(ctx context.Context, m Message) error {
	m = m.Normalize()
	if err := m.Validate(); err != nil {
		return err
	}

	log := logger.FromContext(ctx).With(slog.String("component", "contact"))
	if m.IsSpam() {
		log.Warn("Dropping contact submission caught by honeypot")
		s.record(ctx, m, StatusSpam, nil)
		return nil
	}

	err := s.sender.Send(ctx, m)
	if err != nil {
		log.Error("Failed to send contact message", slog.Any("error", err))
		s.record(ctx, m, StatusFailed, err)
		return fmt.Errorf("failed to send message: %w", err)
	}

	log.Info("Contact message sent", slog.String("name", m.Name))
	s.record(ctx, m, StatusSent, nil)
	return nil
}

func (s *Service) record(ctx context.Context, m Message, status Status, sendErr error) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordSubmission(ctx, m, status, sendErr); err != nil {
		logger.FromContext(ctx).Warn("Failed to record contact submission", slog.Any("error", err))
	}
}
