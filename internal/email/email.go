// Package email delivers transactional mail.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// Message is a single HTML email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Sender delivers a message and reports whether delivery succeeded.
// Failures are logged by the sender; callers only branch on the result.
type Sender interface {
	Send(ctx context.Context, msg Message) bool
}

// SMTPConfig holds the connection settings for SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

// NewSMTPSender constructs an SMTPSender. No connection is opened until Send.
func NewSMTPSender(cfg SMTPConfig, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) bool {
	if err := s.send(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "email send failed",
			slog.String("subject", msg.Subject),
			slog.Int("recipients", len(msg.To)),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

func (s *SMTPSender) send(ctx context.Context, msg Message) error {
	m, err := buildMessage(s.cfg.From, msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	c, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("email.SMTPSender: client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("email.SMTPSender: send: %w", err)
	}
	return nil
}

// buildMessage assembles the MIME message for msg.
func buildMessage(from string, msg Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("email: no recipients")
	}
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("email: from: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("email: to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.Body)
	return m, nil
}

// LogSender writes messages to the log instead of sending them.
// It is used when no SMTP relay is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender constructs a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) bool {
	s.logger.InfoContext(ctx, "email not sent: no SMTP relay configured",
		slog.Any("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return true
}
