package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/reservar-app/backend/internal/models"
)

const icsTimeLayout = "20060102T150405Z"

// escapeICS escapes text per RFC 5545 section 3.3.11.
func escapeICS(s string) string {
	r := strings.NewReplacer("\\", "\\\\", ";", "\\;", ",", "\\,", "\n", "\\n", "\r", "")
	return r.Replace(s)
}

// BuildICS renders a single-event calendar invite for a reservation.
// Times are emitted in UTC; the recipient's calendar localizes them.
func BuildICS(res *models.Reservation, tenant *models.Tenant) []byte {
	summary := "Reserva"
	location := ""
	if res.Space != nil {
		summary = fmt.Sprintf("Reserva: %s", res.Space.Name)
		location = res.Space.Name
	}
	if res.Resource != nil {
		location = fmt.Sprintf("%s - %s", location, res.Resource.FullName)
	}
	description := ""
	if tenant != nil {
		description = tenant.Name
	}

	var b strings.Builder
	fold := func(line string) {
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	fold("BEGIN:VCALENDAR")
	fold("VERSION:2.0")
	fold("PRODID:-//reservar//backend//ES")
	fold("METHOD:REQUEST")
	fold("BEGIN:VEVENT")
	fold(fmt.Sprintf("UID:%s@reservar", res.ID))
	fold(fmt.Sprintf("DTSTAMP:%s", time.Now().UTC().Format(icsTimeLayout)))
	fold(fmt.Sprintf("DTSTART:%s", res.StartTime.UTC().Format(icsTimeLayout)))
	fold(fmt.Sprintf("DTEND:%s", res.EndTime.UTC().Format(icsTimeLayout)))
	fold(fmt.Sprintf("SUMMARY:%s", escapeICS(summary)))
	if description != "" {
		fold(fmt.Sprintf("DESCRIPTION:%s", escapeICS(description)))
	}
	if location != "" {
		fold(fmt.Sprintf("LOCATION:%s", escapeICS(location)))
	}
	fold("STATUS:CONFIRMED")
	fold("END:VEVENT")
	fold("END:VCALENDAR")
	return []byte(b.String())
}
