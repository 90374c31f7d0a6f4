package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/reservar-app/backend/internal/models"
)

// Email is a rendered subject and plain-text body.
type Email struct {
	Subject string
	Body    string
}

// localWhen formats the reservation interval in the tenant's timezone,
// falling back to UTC when the zone name does not resolve.
func localWhen(res *models.Reservation, tz string) string {
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc = time.UTC
	}
	start := res.StartTime.In(loc)
	end := res.EndTime.In(loc)
	return fmt.Sprintf("%s, %s - %s",
		start.Format("02/01/2006"),
		start.Format("15:04"),
		end.Format("15:04"))
}

func spaceLine(res *models.Reservation) string {
	name := "el espacio reservado"
	if res.Space != nil {
		name = res.Space.Name
	}
	if res.Resource != nil {
		name = fmt.Sprintf("%s (%s)", name, res.Resource.FullName)
	}
	return name
}

func customerName(res *models.Reservation) string {
	if res.Customer != nil && res.Customer.FirstName != "" {
		return res.Customer.FirstName
	}
	return "vecino/a"
}

func tenantName(t *models.Tenant) string {
	if t != nil && t.Name != "" {
		return t.Name
	}
	return "tu edificio"
}

// RenderConfirmation builds the booking confirmation email.
func RenderConfirmation(res *models.Reservation, tenant *models.Tenant, frontendURL string) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s,\n\n", customerName(res))
	fmt.Fprintf(&b, "Tu reserva de %s en %s quedo confirmada.\n\n", spaceLine(res), tenantName(tenant))
	fmt.Fprintf(&b, "Fecha y hora: %s\n", localWhen(res, tenantTZ(tenant)))
	if res.Unit != "" {
		fmt.Fprintf(&b, "Unidad: %s\n", res.Unit)
	}
	if frontendURL != "" && tenant != nil {
		fmt.Fprintf(&b, "\nPodes ver la disponibilidad en %s/%s\n", strings.TrimRight(frontendURL, "/"), tenant.Slug)
	}
	b.WriteString("\nEncontraras adjunta la invitacion de calendario.\n")
	return Email{
		Subject: fmt.Sprintf("Reserva confirmada - %s", spaceLine(res)),
		Body:    b.String(),
	}
}

// RenderCancellation builds the cancellation notice. Reason may be empty.
func RenderCancellation(res *models.Reservation, tenant *models.Tenant, reason, frontendURL string) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s,\n\n", customerName(res))
	fmt.Fprintf(&b, "Tu reserva de %s en %s del %s fue cancelada.\n",
		spaceLine(res), tenantName(tenant), localWhen(res, tenantTZ(tenant)))
	if reason != "" {
		fmt.Fprintf(&b, "\nMotivo: %s\n", reason)
	}
	if frontendURL != "" && tenant != nil {
		fmt.Fprintf(&b, "\nPodes hacer una nueva reserva en %s/%s\n", strings.TrimRight(frontendURL, "/"), tenant.Slug)
	}
	return Email{
		Subject: fmt.Sprintf("Reserva cancelada - %s", spaceLine(res)),
		Body:    b.String(),
	}
}

// RenderReminder builds the day-before reminder email.
func RenderReminder(res *models.Reservation, tenant *models.Tenant, frontendURL string) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s,\n\n", customerName(res))
	fmt.Fprintf(&b, "Te recordamos tu reserva de %s en %s.\n\n", spaceLine(res), tenantName(tenant))
	fmt.Fprintf(&b, "Fecha y hora: %s\n", localWhen(res, tenantTZ(tenant)))
	return Email{
		Subject: fmt.Sprintf("Recordatorio de reserva - %s", spaceLine(res)),
		Body:    b.String(),
	}
}

func tenantTZ(t *models.Tenant) string {
	if t == nil {
		return ""
	}
	return t.Timezone
}
