// Package notify renders and delivers customer emails. Delivery is always
// fire-and-forget from the caller's point of view.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"hirdavat/internal/config"

	"github.com/rs/zerolog"
)

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers mail through an SMTP relay, upgrading to TLS when the
// server offers STARTTLS.
type SMTPSender struct {
	host     string
	addr     string
	from     string
	user     string
	password string
	logger   zerolog.Logger
}

// NewSMTPSender creates an SMTP sender.
func NewSMTPSender(cfg config.SMTPConfig, logger zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		host:     cfg.Host,
		addr:     cfg.Address(),
		from:     cfg.From,
		user:     cfg.User,
		password: cfg.Password,
		logger:   logger.With().Str("component", "smtp-sender").Logger(),
	}
}

// Send delivers msg, honouring the context deadline for the whole exchange.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if s.user != "" {
		if err := client.Auth(smtp.PlainAuth("", s.user, s.password, s.host)); err != nil {
			return fmt.Errorf("failed to authenticate with SMTP server: %w", err)
		}
	}

	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message body: %w", err)
	}
	if _, err := w.Write(buildMIME(s.from, msg, time.Now())); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	if err := client.Quit(); err != nil {
		s.logger.Debug().Err(err).Msg("SMTP quit failed after delivery")
	}

	s.logger.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email sent")
	return nil
}

func buildMIME(from string, msg Message, now time.Time) []byte {
	var b bytes.Buffer
	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}
	header("From", from)
	header("To", msg.To)
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/html; charset="utf-8"`)
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.HTML, "\n", "\r\n"))
	return b.Bytes()
}

// LogSender writes messages to the log instead of delivering them. It is
// used when SMTP is disabled.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a log-only sender.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "log-sender").Logger()}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("bytes", len(msg.HTML)).
		Msg("email not sent, SMTP disabled")
	return nil
}

// NewSender picks the SMTP sender when it is enabled.
func NewSender(cfg config.SMTPConfig, logger zerolog.Logger) Sender {
	if cfg.Enabled {
		return NewSMTPSender(cfg, logger)
	}
	return NewLogSender(logger)
}
