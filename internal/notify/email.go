package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// EmailSender sends one email. Email is a secondary channel; the call flow
// never depends on it succeeding.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody, plainBody string) error
}

// SMTPEmail sends through a plain SMTP relay with AUTH.
type SMTPEmail struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPEmail(host string, port int, username, password, from string) *SMTPEmail {
	if port <= 0 {
		port = 587
	}
	return &SMTPEmail{host: host, port: port, username: username, password: password, from: from}
}

func (s *SMTPEmail) SendEmail(ctx context.Context, to, subject, htmlBody, plainBody string) error {
	_ = ctx // net/smtp has no context support; the dial timeout bounds us.

	body := plainBody
	contentType := "text/plain; charset=utf-8"
	if htmlBody != "" {
		body = htmlBody
		contentType = "text/html; charset=utf-8"
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\nContent-Type: %s\r\n\r\n", contentType)
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	return smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg.String()))
}
