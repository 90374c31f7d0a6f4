package notifications

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservar-app/backend/internal/models"
)

func testReservation() *models.Reservation {
	return &models.Reservation{
		ID:        uuid.MustParse("6fa459ea-ee8a-3ca4-894e-db77e160355e"),
		StartTime: time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 6, 13, 0, 0, 0, time.UTC),
		Space:     &models.Space{Name: "Quincho"},
		Customer:  &models.Customer{FirstName: "Ana", Email: "ana@example.com"},
	}
}

func TestBuildICS(t *testing.T) {
	tenant := &models.Tenant{Name: "Edificio Libertador", Timezone: "America/Argentina/Buenos_Aires"}
	ics := string(BuildICS(testReservation(), tenant))

	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "BEGIN:VEVENT")
	assert.Contains(t, ics, "UID:6fa459ea-ee8a-3ca4-894e-db77e160355e@reservar")
	assert.Contains(t, ics, "DTSTART:20260306T120000Z")
	assert.Contains(t, ics, "DTEND:20260306T130000Z")
	assert.Contains(t, ics, "SUMMARY:Reserva: Quincho")
	assert.Contains(t, ics, "DESCRIPTION:Edificio Libertador")
	assert.Contains(t, ics, "END:VCALENDAR")

	// RFC 5545 requires CRLF line endings throughout.
	for _, line := range strings.Split(strings.TrimSuffix(ics, "\r\n"), "\r\n") {
		require.NotContains(t, line, "\n")
	}
}

func TestBuildICS_EscapesSpecials(t *testing.T) {
	res := testReservation()
	res.Space.Name = "Sala, planta baja; norte"
	ics := string(BuildICS(res, nil))
	assert.Contains(t, ics, `SUMMARY:Reserva: Sala\, planta baja\; norte`)
}

func TestBuildICS_ResourceInLocation(t *testing.T) {
	res := testReservation()
	res.Resource = &models.Resource{FullName: "Parrilla 2"}
	ics := string(BuildICS(res, nil))
	assert.Contains(t, ics, "LOCATION:Quincho - Parrilla 2")
}
