package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

const defaultSendTimeout = 30 * time.Second

// Config defines a public type used by tripauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Host string
	Port int
	// Username and Password authenticate against the relay. Auth is only
	// attempted when the server advertises it and Username is non-empty.
	Username string
	Password string
	// From is the sender address. Required.
	From string
	// DisplayName is the human-readable sender name. Required.
	DisplayName string
	// Timeout bounds the whole SMTP session. Zero means 30 seconds.
	Timeout time.Duration
}

// SMTP sends verification and reset emails through a single relay.
type SMTP struct {
	config Config
	logger *slog.Logger
}

// NewSMTP validates cfg and returns a sender. Passing a nil logger falls back
// to slog.Default().
func NewSMTP(cfg Config, logger *slog.Logger) (*SMTP, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is not configured")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, errors.New("smtp port is not configured")
	}
	if cfg.From == "" {
		return nil, errors.New("sender email is not configured")
	}
	if cfg.DisplayName == "" {
		return nil, errors.New("sender name is not configured")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTP{config: cfg, logger: logger}, nil
}

// SendVerificationCode emails the signup verification code to the given
// address.
func (s *SMTP) SendVerificationCode(ctx context.Context, to, code string) error {
	if err := s.send(ctx, to, verifySubject, verifyTemplate, code); err != nil {
		s.logger.Error("mail: verification email delivery failed", "to", to, "error", err)
		return err
	}
	s.logger.Info("mail: verification email delivered", "to", to)
	return nil
}

// SendResetCode emails the password reset code to the given address.
func (s *SMTP) SendResetCode(ctx context.Context, to, code string) error {
	if err := s.send(ctx, to, resetSubject, resetTemplate, code); err != nil {
		s.logger.Error("mail: reset email delivery failed", "to", to, "error", err)
		return err
	}
	s.logger.Info("mail: reset email delivered", "to", to)
	return nil
}

func (s *SMTP) send(ctx context.Context, to, subject string, tmpl *template.Template, code string) error {
	if to == "" {
		return errors.New("empty recipient")
	}

	body, err := renderTemplate(tmpl, code)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	dialer := net.Dialer{Timeout: s.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	// The deadline covers the whole session so a stalled server cannot
	// hold the connection past the configured timeout.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(s.config.Timeout))
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() { _ = client.Close() }()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
			return err
		}
	}
	if ok, _ := client.Extension("AUTH"); ok && s.config.Username != "" {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(s.config.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(s.message(to, subject, body))); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func (s *SMTP) message(to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", s.config.DisplayName), s.config.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return b.String()
}
