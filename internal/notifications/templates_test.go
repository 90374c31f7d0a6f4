package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reservar-app/backend/internal/models"
)

func testTenant() *models.Tenant {
	return &models.Tenant{
		Name:     "Edificio Libertador",
		Slug:     "libertador",
		Timezone: "America/Argentina/Buenos_Aires",
	}
}

func TestRenderConfirmation(t *testing.T) {
	email := RenderConfirmation(testReservation(), testTenant(), "https://reservar.app/")

	assert.Equal(t, "Reserva confirmada - Quincho", email.Subject)
	assert.Contains(t, email.Body, "Hola Ana,")
	assert.Contains(t, email.Body, "Edificio Libertador")
	// 12:00 UTC is 09:00 wall clock in Buenos Aires.
	assert.Contains(t, email.Body, "06/03/2026, 09:00 - 10:00")
	assert.Contains(t, email.Body, "https://reservar.app/libertador")
}

func TestRenderConfirmation_MissingJoinsFallBack(t *testing.T) {
	res := testReservation()
	res.Space = nil
	res.Customer = nil
	email := RenderConfirmation(res, nil, "")

	assert.Contains(t, email.Body, "Hola vecino/a,")
	assert.Contains(t, email.Body, "el espacio reservado")
	// No tenant timezone, so the interval stays in UTC.
	assert.Contains(t, email.Body, "06/03/2026, 12:00 - 13:00")
}

func TestRenderCancellation(t *testing.T) {
	email := RenderCancellation(testReservation(), testTenant(), "mantenimiento", "")

	assert.Equal(t, "Reserva cancelada - Quincho", email.Subject)
	assert.Contains(t, email.Body, "fue cancelada")
	assert.Contains(t, email.Body, "Motivo: mantenimiento")
}

func TestRenderCancellation_NoReason(t *testing.T) {
	email := RenderCancellation(testReservation(), testTenant(), "", "")
	assert.NotContains(t, email.Body, "Motivo:")
}

func TestRenderReminder(t *testing.T) {
	email := RenderReminder(testReservation(), testTenant(), "")

	assert.Equal(t, "Recordatorio de reserva - Quincho", email.Subject)
	assert.Contains(t, email.Body, "Te recordamos tu reserva")
	assert.Contains(t, email.Body, "06/03/2026, 09:00 - 10:00")
}
