package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is an isolated building/condominium owning its own spaces,
// schedules, customers and reservations.
type Tenant struct {
	ID           uuid.UUID `json:"id"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	LogoURL      string    `json:"logo_url,omitempty"`
	PrimaryColor string    `json:"primary_color"`
	Timezone     string    `json:"timezone"`
	Locale       string    `json:"locale"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TenantPublic is the branding view exposed on the public tenant endpoints.
// Inactive tenants are never returned, so the active flag is omitted.
type TenantPublic struct {
	ID           uuid.UUID `json:"id"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	LogoURL      string    `json:"logo_url,omitempty"`
	PrimaryColor string    `json:"primary_color"`
	Timezone     string    `json:"timezone"`
	Locale       string    `json:"locale"`
}

// ToPublic converts Tenant to its public branding view.
func (t *Tenant) ToPublic() TenantPublic {
	return TenantPublic{
		ID:           t.ID,
		Slug:         t.Slug,
		Name:         t.Name,
		Email:        t.Email,
		Phone:        t.Phone,
		Address:      t.Address,
		LogoURL:      t.LogoURL,
		PrimaryColor: t.PrimaryColor,
		Timezone:     t.Timezone,
		Locale:       t.Locale,
	}
}

// OnboardingToken is a one-time token authorizing public tenant creation.
type OnboardingToken struct {
	ID             uuid.UUID  `json:"id"`
	Token          string     `json:"token"`
	UsedAt         *time.Time `json:"used_at,omitempty"`
	UsedByTenantID *uuid.UUID `json:"used_by_tenant_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
