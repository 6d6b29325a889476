package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

type EmailConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
	To       []string
	Timeout  time.Duration
}

// Email sends the report as a plain-text message over SMTP. Credentials
// only ever come from EmailConfig.
type Email struct {
	cfg  EmailConfig
	auth smtp.Auth
}

// NewEmail returns nil when host, sender or recipients are missing.
func NewEmail(cfg EmailConfig) *Email {
	if cfg.Host == "" || cfg.From == "" || len(cfg.To) == 0 {
		return nil
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	var auth smtp.Auth
	if cfg.User != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	return &Email{cfg: cfg, auth: auth}
}

func (e *Email) Send(ctx context.Context, title, text string) error {
	if e == nil {
		return errors.New("email disabled")
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	addr := net.JoinHostPort(e.cfg.Host, e.cfg.Port)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}

	c, err := smtp.NewClient(conn, e.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = c.Close() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(nil); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if e.auth != nil {
		if err := c.Auth(e.auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if err := c.Mail(e.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range e.cfg.To {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(e.message(title, text)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return c.Quit()
}

func (e *Email) message(subject, body string) []byte {
	to := make([]string, len(e.cfg.To))
	for i, r := range e.cfg.To {
		to[i] = sanitizeHeader(r)
	}
	lines := []string{
		"From: " + sanitizeHeader(e.cfg.From),
		"To: " + strings.Join(to, ", "),
		"Subject: " + sanitizeHeader(subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		strings.ReplaceAll(body, "\n", "\r\n"),
	}
	return []byte(strings.Join(lines, "\r\n"))
}

func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", "")
}
