// Package mail delivers outbound messages such as registration
// verification links. Delivery is always best-effort: callers must treat a
// failed send as non-fatal and fall back to operator-log delivery.
package mail

import (
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/keyhaven/keyhaven/internal/config"
	"github.com/keyhaven/keyhaven/internal/logger"
)

// Mailer sends a single HTML message. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// NewMailer selects an implementation from configuration: SMTP when a host
// is configured, otherwise the operator-log mailer.
func NewMailer(cfg config.Mail, log *logger.Logger) Mailer {
	if cfg.Host == "" {
		log.Warn().Msg("no SMTP host configured, mail will be written to the operator log")
		return &logMailer{logger: log}
	}

	return &smtpMailer{cfg: cfg, logger: log}
}

// smtpMailer delivers through a plain SMTP server, authenticating only when
// credentials are configured.
type smtpMailer struct {
	cfg    config.Mail
	logger *logger.Logger
}

func (m *smtpMailer) Send(to, subject, htmlBody string) error {
	addr := m.cfg.Host + ":" + strconv.Itoa(m.cfg.Port)

	msg := []byte("From: " + m.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		htmlBody + "\r\n")

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}

	return nil
}

// logMailer writes the whole message to the server log so an operator can
// hand the contained token to the user out of band.
type logMailer struct {
	logger *logger.Logger
}

func (m *logMailer) Send(to, subject, htmlBody string) error {
	m.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", htmlBody).
		Msg("operator-log mail delivery")
	return nil
}
