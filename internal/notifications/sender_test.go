package notifications

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reservar-app/backend/config"
)

func testSender() *SMTPSender {
	return NewSMTPSender(config.EmailConfig{
		FromAddress: "reservas@edificio.test",
		FromName:    "ReservAr",
		SMTPHost:    "localhost",
		SMTPPort:    1025,
	})
}

func TestBuildMessage_PlainText(t *testing.T) {
	msg := string(testSender().buildMessage("ana@example.com", "Reserva confirmada", "Hola Ana", nil))

	assert.Contains(t, msg, "From: ReservAr <reservas@edificio.test>\r\n")
	assert.Contains(t, msg, "To: ana@example.com\r\n")
	assert.Contains(t, msg, "Subject: Reserva confirmada\r\n")
	assert.Contains(t, msg, "Content-Type: text/plain; charset=utf-8\r\n\r\nHola Ana")
	assert.NotContains(t, msg, "multipart")
}

func TestBuildMessage_WithAttachment(t *testing.T) {
	ics := []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	msg := string(testSender().buildMessage("ana@example.com", "Reserva", "Hola", ics))

	assert.Contains(t, msg, "Content-Type: multipart/mixed")
	assert.Contains(t, msg, "Content-Type: text/calendar; method=REQUEST")
	assert.Contains(t, msg, `filename="invite.ics"`)
	assert.Contains(t, msg, base64.StdEncoding.EncodeToString(ics))
	// Closing boundary terminates the message.
	assert.True(t, strings.Contains(msg, "--reservar-boundary--\r\n"))
}

func TestNewSMTPSender_DefaultFrom(t *testing.T) {
	s := NewSMTPSender(config.EmailConfig{SMTPHost: "localhost", SMTPPort: 25})
	assert.Equal(t, "noreply@reservar.local", s.from)
	assert.Equal(t, "localhost:25", s.addr)
}
