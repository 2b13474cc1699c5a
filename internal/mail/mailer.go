package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/finbot-app/finbot/internal/config"
)

// Mailer delivers account emails. It is constructed once at process
// start and injected into the auth service; a failed send is reported to
// the caller as an error value and never aborts an already-persisted
// account mutation.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, firstName, code, window string) error
	SendPasswordReset(ctx context.Context, to, firstName, code string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg      config.SMTPConfig
	siteName string
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer constructs an SMTPMailer.
func NewSMTPMailer(cfg config.SMTPConfig, siteName string) *SMTPMailer {
	if strings.TrimSpace(siteName) == "" {
		siteName = "Fin-Bot"
	}
	return &SMTPMailer{cfg: cfg, siteName: siteName, send: smtp.SendMail}
}

// SendVerificationCode emails a signup verification code.
func (m *SMTPMailer) SendVerificationCode(ctx context.Context, to, firstName, code, window string) error {
	subject := fmt.Sprintf("Verify Your %s Account", m.siteName)
	text, html := verificationBody(m.siteName, firstName, code, window)
	return m.deliver(ctx, to, subject, text, html)
}

// SendPasswordReset emails a password reset code.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, firstName, code string) error {
	subject := fmt.Sprintf("Reset Your %s Password", m.siteName)
	text, html := resetBody(m.siteName, firstName, code)
	return m.deliver(ctx, to, subject, text, html)
}

// deliver builds the multipart message and hands it to the relay.
func (m *SMTPMailer) deliver(ctx context.Context, to, subject, text, html string) error {
	if strings.TrimSpace(m.cfg.Host) == "" {
		return fmt.Errorf("mail: smtp host not configured")
	}
	if errCtx := ctx.Err(); errCtx != nil {
		return errCtx
	}

	from := strings.TrimSpace(m.cfg.From)
	if from == "" {
		from = m.cfg.Username
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	msg := BuildMessage(from, to, subject, text, html)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if errSend := m.send(addr, auth, from, []string{to}, msg); errSend != nil {
		return fmt.Errorf("mail: send to %s: %w", to, errSend)
	}
	return nil
}

// BuildMessage assembles a multipart/alternative RFC 822 message.
func BuildMessage(from, to, subject, text, html string) []byte {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/alternative; boundary=BOUNDARY\r\n")
	b.WriteString("\r\n")

	b.WriteString("--BOUNDARY\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(text)
	b.WriteString("\r\n")

	b.WriteString("--BOUNDARY\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")

	b.WriteString("--BOUNDARY--\r\n")
	return []byte(b.String())
}
