package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/dhanadurga/backend/internal/config"
)

// Mailer sends HTML email over authenticated SMTP.
type Mailer struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

func NewMailer(cfg config.SMTPConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{cfg: cfg, logger: logger}
}

func (m *Mailer) Configured() bool {
	return m.cfg.Host != "" && m.cfg.User != ""
}

func (m *Mailer) Send(ctx context.Context, target, subject, body string) error {
	if !m.Configured() {
		return fmt.Errorf("smtp not configured")
	}

	msg := buildMessage(m.cfg.From, m.cfg.User, target, subject, body)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.cfg.User, []string{target}, msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			m.logger.Error("email send failed", zap.String("to", target), zap.Error(err))
			return err
		}
		m.logger.Info("email sent", zap.String("to", target), zap.String("subject", subject))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(from, fromAddr, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", from, fromAddr)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(wrapHTML(body))
	return []byte(b.String())
}

// wrapHTML puts the body into the standard mail shell so reminders and
// summaries share one look.
func wrapHTML(body string) string {
	return fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 16px;">
%s
<hr style="border: none; border-top: 1px solid #eee; margin-top: 24px;">
<p style="font-size: 12px; color: #999;">Sent by Dhana Durga</p>
</div>
</body></html>`, body)
}
