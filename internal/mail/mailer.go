package mail

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// Mailer sends account emails. Implementations must be safe for
// concurrent use.
type Mailer interface {
	SendVerification(to, token string) error
}

type smtpMailer struct {
	host      string
	port      string
	username  string
	password  string
	from      string
	verifyURL string
	logger    *zap.Logger
}

// Config holds SMTP connection settings and the base URL embedded in
// verification links
type Config struct {
	Host      string
	Port      string
	Username  string
	Password  string
	From      string
	VerifyURL string
}

// NewSMTPMailer creates a new instance of Mailer backed by an SMTP relay
func NewSMTPMailer(cfg Config, logger *zap.Logger) Mailer {
	return &smtpMailer{
		host:      cfg.Host,
		port:      cfg.Port,
		username:  cfg.Username,
		password:  cfg.Password,
		from:      cfg.From,
		verifyURL: cfg.VerifyURL,
		logger:    logger,
	}
}

func (m *smtpMailer) addr() string {
	return fmt.Sprintf("%s:%s", m.host, m.port)
}

func (m *smtpMailer) message(to, token string) []byte {
	link := fmt.Sprintf("%s?token=%s", m.verifyURL, token)
	return []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Confirm your email\r\n\r\n"+
			"Welcome! Confirm your email to unlock capture:\r\n\r\n%s\r\n",
		m.from, to, link,
	))
}

// SendVerification emails a confirmation link carrying the token
func (m *smtpMailer) SendVerification(to, token string) error {
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(m.addr(), auth, m.from, []string{to}, m.message(to, token)); err != nil {
		m.logger.Error("failed to send verification email", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	m.logger.Info("verification email sent", zap.String("to", to))
	return nil
}
