package service

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/taskhub-io/ms-go-taskhub/config"

	"github.com/sirupsen/logrus"
)

// Mailer delivers the out-of-band ephemeral token URLs. Delivery is not
// part of any request's success criteria; callers log failures and move on.
type Mailer interface {
	SendVerificationMail(ctx context.Context, to, username, verificationURL string) error
	SendPasswordResetMail(ctx context.Context, to, username, resetURL string) error
}

// NewMailer picks the SMTP implementation when configured and falls back to
// a logging mailer otherwise (local development, tests).
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return &LogMailer{}
	}
	return NewSMTPMailer(cfg)
}

type SMTPMailer struct {
	addr     string
	host     string
	username string
	password string
	from     string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		addr:     net.JoinHostPort(cfg.SMTPHost, cfg.SMTPPort),
		host:     cfg.SMTPHost,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     cfg.MailFrom,
	}
}

func (m *SMTPMailer) SendVerificationMail(_ context.Context, to, username, verificationURL string) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nWelcome to TaskHub! We're very excited to have you on board.\r\n\r\nTo get started, please verify your email:\r\n%s\r\n\r\nNeed help, or have questions? Just reply to this email.\r\n",
		username, verificationURL,
	)
	return m.send(to, "Verify your email", body)
}

func (m *SMTPMailer) SendPasswordResetMail(_ context.Context, to, username, resetURL string) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nWe got a request to reset your password.\r\n\r\nTo choose a new password, open this link:\r\n%s\r\n\r\nIf you didn't ask for this, you can ignore this email.\r\n",
		username, resetURL,
	)
	return m.send(to, "Password reset request", body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	return smtp.SendMail(m.addr, auth, m.from, []string{to}, []byte(msg.String()))
}

// LogMailer writes the would-be mail to the log instead of delivering it.
type LogMailer struct{}

func (m *LogMailer) SendVerificationMail(_ context.Context, to, username, verificationURL string) error {
	logrus.WithFields(logrus.Fields{
		"to":       to,
		"username": username,
		"url":      verificationURL,
	}).Info("verification mail (smtp not configured)")
	return nil
}

func (m *LogMailer) SendPasswordResetMail(_ context.Context, to, username, resetURL string) error {
	logrus.WithFields(logrus.Fields{
		"to":       to,
		"username": username,
		"url":      resetURL,
	}).Info("password reset mail (smtp not configured)")
	return nil
}
