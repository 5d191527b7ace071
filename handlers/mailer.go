package handlers

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// Mailer wraps the SMTP transport. When SMTP is unconfigured (dev,
// staging) sends are logged instead of failing, so the outbox drains
// normally.
type Mailer struct {
	Host     string // SMTP_HOST, e.g. smtp.gmail.com
	Port     string // SMTP_PORT, e.g. 587
	Username string // SMTP_USERNAME
	Password string // SMTP_PASSWORD, app password or smtp password
	From     string // SMTP_FROM, falls back to Username
	AppName  string // APP_NAME, used in subjects/footers
}

func NewMailer() *Mailer {
	get := func(k, d string) string {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
		return d
	}
	return &Mailer{
		Host:     get("SMTP_HOST", ""),
		Port:     get("SMTP_PORT", "587"),
		Username: get("SMTP_USERNAME", ""),
		Password: get("SMTP_PASSWORD", ""),
		From:     get("SMTP_FROM", ""),
		AppName:  get("APP_NAME", "Inspectra"),
	}
}

// Configured reports whether a real SMTP endpoint is available.
func (m *Mailer) Configured() bool {
	return m.Host != "" && (m.Username != "" || m.From != "")
}

// Send delivers one message to all recipients. html switches the
// content type header.
func (m *Mailer) Send(recipients []string, subject, body string, html bool) error {
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients")
	}

	// Unconfigured SMTP → dev mode: log and report success.
	if !m.Configured() {
		log.Printf("[DEV] 📧 Would send %q to %s", subject, strings.Join(recipients, ", "))
		return nil
	}

	fromAddr := m.From
	if fromAddr == "" {
		fromAddr = m.Username
	}

	contentType := "text/plain; charset=UTF-8"
	if html {
		contentType = "text/html; charset=UTF-8"
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", m.AppName, fromAddr)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\nContent-Type: %s\r\n\r\n", contentType)
	msg.WriteString(body)

	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	if err := smtp.SendMail(m.Host+":"+m.Port, auth, fromAddr, recipients, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
