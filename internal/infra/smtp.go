package infra

import (
	"errors"
	"fmt"
	"net/smtp"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/config"

	"github.com/jordan-wright/email"
)

// ErrMailerDisabled is returned when SMTP_HOST or the recipient list is empty.
var ErrMailerDisabled = errors.New("mailer: smtp no configurado")

// Mailer wraps SMTP configuration for sending the closing report.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	to       []string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		to:       cfg.ReportRecipients(),
	}
}

// Enabled reports whether there is a relay and at least one recipient.
func (m *Mailer) Enabled() bool {
	return m.host != "" && len(m.to) > 0
}

// SendReporteCierre mails the closing PDF to REPORT_EMAIL_TO.
func (m *Mailer) SendReporteCierre(subject, body, pdfPath string) error {
	if !m.Enabled() {
		return ErrMailerDisabled
	}

	e := email.NewEmail()
	e.From = m.user
	e.To = m.to
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
