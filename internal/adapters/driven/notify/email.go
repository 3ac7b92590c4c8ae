package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/core/ports/driven"
)

// Ensure EmailSink implements the interface.
var _ driven.NotificationSink = (*EmailSink)(nil)

// DefaultEmailSubject is used for every alert mail.
const DefaultEmailSubject = "Stock alert"

type sendFunc func(mail *email.Email, addr string, auth smtp.Auth) error

func sendMail(mail *email.Email, addr string, auth smtp.Auth) error {
	return mail.Send(addr, auth)
}

// EmailSink sends each alert as a plain-text mail.
type EmailSink struct {
	settings domain.EmailSettings
	send     sendFunc
}

// NewEmailSink creates a sink from SMTP settings.
func NewEmailSink(settings domain.EmailSettings) *EmailSink {
	return &EmailSink{settings: settings, send: sendMail}
}

// Deliver sends one message. Servers without AUTH are retried
// unauthenticated.
func (s *EmailSink) Deliver(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDispatch, err)
	}

	mail := email.NewEmail()
	mail.From = s.settings.From
	mail.To = s.settings.To
	mail.Subject = subjectLine(message)
	mail.Text = []byte(message)

	addr := fmt.Sprintf("%s:%d", s.settings.Host, s.settings.Port)

	var auth smtp.Auth
	if s.settings.Username != "" {
		auth = smtp.PlainAuth("", s.settings.Username, s.settings.Password, s.settings.Host)
	}

	err := s.send(mail, addr, auth)
	if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = s.send(mail, addr, nil)
	}
	if err != nil {
		return fmt.Errorf("%w: email: %w", domain.ErrDispatch, err)
	}
	return nil
}

// subjectLine uses the first line of the message.
func subjectLine(message string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	first = strings.TrimSpace(first)
	if first == "" {
		return DefaultEmailSubject
	}
	return truncate(first, 120)
}
