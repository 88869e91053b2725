package models

import (
	"time"

	"github.com/google/uuid"

	"rechnung-backend/internal/apperr"
)

// Customer is an invoice recipient owned by one user.
type Customer struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	Street     *string   `json:"street"`
	PostalCode *string   `json:"postal_code"`
	City       *string   `json:"city"`
	Country    string    `json:"country"`
	Email      *string   `json:"email"`
	Phone      *string   `json:"phone"`
	VatID      *string   `json:"vat_id"`
	Notes      *string   `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CustomerInput is the create/update payload for a customer.
type CustomerInput struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	VatID      string `json:"vat_id"`
	Notes      string `json:"notes"`
}

// Validate checks the fields in declaration order, returning the first
// violation, and applies defaults (country "Deutschland").
func (c *CustomerInput) Validate() error {
	if c.Name == "" {
		return apperr.Validation("Kundenname ist erforderlich")
	}
	if len(c.Name) > 255 {
		return apperr.Validation("Kundenname ist zu lang")
	}
	if len(c.Street) > 255 {
		return apperr.Validation("Straße ist zu lang")
	}
	if len(c.PostalCode) > 10 {
		return apperr.Validation("Postleitzahl ist zu lang")
	}
	if len(c.City) > 100 {
		return apperr.Validation("Ort ist zu lang")
	}
	if c.Country == "" {
		c.Country = "Deutschland"
	}
	if len(c.Country) > 100 {
		return apperr.Validation("Land ist zu lang")
	}
	if c.Email != "" && !emailPattern.MatchString(c.Email) {
		return apperr.Validation("Ungültige E-Mail-Adresse")
	}
	if len(c.Phone) > 50 {
		return apperr.Validation("Telefonnummer ist zu lang")
	}
	if len(c.VatID) > 50 {
		return apperr.Validation("USt-IdNr. ist zu lang")
	}
	if len(c.Notes) > 1000 {
		return apperr.Validation("Notizen sind zu lang")
	}
	return nil
}
