// Package delivery holds the outbound channel adapters. Both adapters carry
// the raw credential only transiently; nothing here is persisted or logged in
// full.
package delivery

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailSender delivers messages over SMTP.
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailSender(host string, port int, username, password, from string) *EmailSender {
	return &EmailSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *EmailSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	return nil
}
