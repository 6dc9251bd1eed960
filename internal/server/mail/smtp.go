package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/agencyhub/internal/logging"
	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the delivery settings for the SMTP sender.
type SMTPConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	FromName  string
	FromEmail string
}

// SMTPSender delivers email over SMTP.
type SMTPSender struct {
	cfg    SMTPConfig
	logger logging.Logger

	// dialAndSend is a seam for testing delivery without a live SMTP server.
	dialAndSend func(m ...*gomail.Message) error
}

// NewSMTPSender creates an SMTP-backed Sender.
func NewSMTPSender(cfg SMTPConfig, logger logging.Logger) *SMTPSender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &SMTPSender{
		cfg:         cfg,
		logger:      logger.With("module", "mail"),
		dialAndSend: d.DialAndSend,
	}
}

// Send delivers one HTML message. When the SMTP settings are incomplete the
// message is skipped with a warning instead of failing the caller.
func (s *SMTPSender) Send(ctx context.Context, to string, subject string, htmlBody string) error {
	if s.cfg.Host == "" || s.cfg.FromEmail == "" {
		s.logger.Warn(ctx, "smtp config missing, skipping email", "to", to, "subject", subject)
		return nil
	}
	if strings.TrimSpace(to) == "" {
		s.logger.Warn(ctx, "email recipient empty, skipping email", "subject", subject)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.FromEmail, s.cfg.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info(ctx, "email sent", "to", to, "subject", subject)
	return nil
}
