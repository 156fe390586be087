package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/joliday/backend/internal/domain"
	"github.com/joliday/backend/internal/email"
)

// ContactRequest is a message left through the public contact form.
type ContactRequest struct {
	Email   string
	Subject string
	Body    string
}

// ContactService forwards contact requests by email.
type ContactService struct {
	sender     email.Sender
	recipients []string
}

// NewContactService constructs a ContactService. Every request is copied to
// recipients in addition to the requester.
func NewContactService(sender email.Sender, recipients []string) *ContactService {
	return &ContactService{sender: sender, recipients: recipients}
}

// Send emails the request to its author and to the configured recipients.
// Returns domain.ErrEmailNotSent if the sender reports a failure.
func (s *ContactService) Send(ctx context.Context, req ContactRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Body = strings.TrimSpace(req.Body)
	switch {
	case req.Email == "":
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	case req.Subject == "":
		return fmt.Errorf("%w: subject is required", domain.ErrValidation)
	case req.Body == "":
		return fmt.Errorf("%w: body is required", domain.ErrValidation)
	}

	to := append([]string{req.Email}, s.recipients...)
	body := fmt.Sprintf("<p><strong>From:</strong> %s</p><p>%s</p>",
		html.EscapeString(req.Email),
		strings.ReplaceAll(html.EscapeString(req.Body), "\n", "<br>"))

	if !s.sender.Send(ctx, email.Message{To: to, Subject: req.Subject, Body: body}) {
		return fmt.Errorf("service.ContactService.Send: %w", domain.ErrEmailNotSent)
	}
	return nil
}
