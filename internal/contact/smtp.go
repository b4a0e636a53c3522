package contact

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
)

// SMTPConfig holds the mail server settings for SMTPSender.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	To   string
}

// SMTPSender mails each message to the site owner with Reply-To set to the
// visitor.
type SMTPSender struct {
	cfg SMTPConfig
	// sendMail is smtp.SendMail outside of tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &SMTPSender{cfg: cfg, sendMail: smtp.SendMail}
}

func (s *SMTPSender) Send(_ context.Context, m Message) error {
	if s.cfg.User == "" || s.cfg.Pass == "" {
		return fmt.Errorf("%w: SMTP credentials missing", ErrNotConfigured)
	}
	to := s.cfg.To
	if to == "" {
		to = s.cfg.User
	}

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	if err := s.sendMail(addr, auth, s.cfg.User, []string{to}, composeMail(s.cfg.User, to, m)); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func composeMail(from, to string, m Message) []byte {
	email := sanitizeHeader(m.Email)
	subject := fmt.Sprintf("Portfolio Contact: %s", m.Name)
	if m.Subject != "" {
		subject = fmt.Sprintf("Portfolio Contact: %s (%s)", m.Subject, m.Name)
	}
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Subject: %s
Message:
%s

---
Sent from your portfolio contact form
`, m.Name, email, m.Subject, m.Body)

	return []byte("To: " + to + "\r\n" +
		"Subject: " + sanitizeHeader(subject) + "\r\n" +
		"From: " + from + "\r\n" +
		"Reply-To: " + email + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

// sanitizeHeader strips CR and LF so visitor input cannot add headers.
func sanitizeHeader(v string) string {
	out := make([]rune, 0, len(v))
	for _, r := range v {
		if r == '\r' || r == '\n' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
