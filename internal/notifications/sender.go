package notifications

import (
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/reservar-app/backend/config"
)

// Sender delivers one email, optionally with a calendar attachment.
type Sender interface {
	Send(to, subject, body string, ics []byte) error
}

// SMTPSender sends email via SMTP. Credentials are optional so local
// Mailpit-style relays work unauthenticated.
type SMTPSender struct {
	addr     string
	host     string
	from     string
	fromName string
	user     string
	pass     string
}

// NewSMTPSender creates an SMTP sender from config.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	from := strings.TrimSpace(cfg.FromAddress)
	if from == "" {
		from = "noreply@reservar.local"
	}
	return &SMTPSender{
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		host:     cfg.SMTPHost,
		from:     from,
		fromName: cfg.FromName,
		user:     cfg.SMTPUser,
		pass:     cfg.SMTPPass,
	}
}

// Send delivers the message. A non-nil ics becomes an invite.ics attachment.
func (s *SMTPSender) Send(to, subject, body string, ics []byte) error {
	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}
	msg := s.buildMessage(to, subject, body, ics)
	return smtp.SendMail(s.addr, auth, s.from, []string{to}, msg)
}

func (s *SMTPSender) fromHeader() string {
	if s.fromName != "" {
		return fmt.Sprintf("%s <%s>", s.fromName, s.from)
	}
	return s.from
}

func (s *SMTPSender) buildMessage(to, subject, body string, ics []byte) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.fromHeader())
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	if len(ics) == 0 {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(body)
		b.WriteString("\r\n")
		return []byte(b.String())
	}

	const boundary = "reservar-boundary"
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/calendar; method=REQUEST; charset=utf-8\r\n")
	b.WriteString("Content-Disposition: attachment; filename=\"invite.ics\"\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	b.WriteString(base64.StdEncoding.EncodeToString(ics))
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
