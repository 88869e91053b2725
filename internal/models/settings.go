package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"rechnung-backend/internal/apperr"
)

// UserSettings is the per-owner company configuration. Exactly one record
// exists per user (UNIQUE constraint on user_id); it carries company
// identity, tax and bank data plus the invoice numbering state.
// NextInvoiceNumber only ever increases, exactly once per successfully
// created invoice.
type UserSettings struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	CompanyName       string    `json:"company_name"`
	Street            *string   `json:"street"`
	PostalCode        *string   `json:"postal_code"`
	City              *string   `json:"city"`
	Country           string    `json:"country"`
	Email             *string   `json:"email"`
	Phone             *string   `json:"phone"`
	TaxNumber         *string   `json:"tax_number"`
	VatID             *string   `json:"vat_id"`
	IBAN              *string   `json:"iban"`
	BIC               *string   `json:"bic"`
	BankName          *string   `json:"bank_name"`
	DefaultVatRate    float64   `json:"default_vat_rate"`
	InvoicePrefix     string    `json:"invoice_prefix"`
	NextInvoiceNumber int       `json:"next_invoice_number"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// SettingsInput is the save payload. NextInvoiceNumber is deliberately not
// part of it; the counter is only ever advanced by invoice creation.
type SettingsInput struct {
	CompanyName    string   `json:"company_name"`
	Street         string   `json:"street"`
	PostalCode     string   `json:"postal_code"`
	City           string   `json:"city"`
	Country        string   `json:"country"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	TaxNumber      string   `json:"tax_number"`
	VatID          string   `json:"vat_id"`
	IBAN           string   `json:"iban"`
	BIC            string   `json:"bic"`
	BankName       string   `json:"bank_name"`
	DefaultVatRate *float64 `json:"default_vat_rate"`
	InvoicePrefix  string   `json:"invoice_prefix"`
}

var (
	ibanPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{4,30}$`)
	bicPattern  = regexp.MustCompile(`^[A-Z]{4}[A-Z]{2}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
)

// Validate checks the fields in declaration order and applies defaults
// (country "Deutschland", VAT rate 19, prefix "INV-").
func (s *SettingsInput) Validate() error {
	if s.CompanyName == "" {
		return apperr.Validation("Firmenname ist erforderlich")
	}
	if len(s.CompanyName) > 255 {
		return apperr.Validation("Firmenname ist zu lang")
	}
	if len(s.Street) > 255 {
		return apperr.Validation("Straße ist zu lang")
	}
	if len(s.PostalCode) > 10 {
		return apperr.Validation("Postleitzahl ist zu lang")
	}
	if len(s.City) > 100 {
		return apperr.Validation("Ort ist zu lang")
	}
	if s.Country == "" {
		s.Country = "Deutschland"
	}
	if s.Email != "" && !emailPattern.MatchString(s.Email) {
		return apperr.Validation("Ungültige E-Mail-Adresse")
	}
	if len(s.TaxNumber) > 50 {
		return apperr.Validation("Steuernummer ist zu lang")
	}
	if len(s.VatID) > 50 {
		return apperr.Validation("USt-IdNr. ist zu lang")
	}
	if s.IBAN != "" && !ibanPattern.MatchString(s.IBAN) {
		return apperr.Validation("Ungültige IBAN")
	}
	if s.BIC != "" && !bicPattern.MatchString(s.BIC) {
		return apperr.Validation("Ungültige BIC")
	}
	if s.DefaultVatRate == nil {
		rate := 19.0
		s.DefaultVatRate = &rate
	}
	if *s.DefaultVatRate < 0 {
		return apperr.Validation("MwSt.-Satz muss mindestens 0% sein")
	}
	if *s.DefaultVatRate > 100 {
		return apperr.Validation("MwSt.-Satz darf maximal 100% sein")
	}
	if s.InvoicePrefix == "" {
		s.InvoicePrefix = "INV-"
	}
	if len(s.InvoicePrefix) > 10 {
		return apperr.Validation("Rechnungspräfix ist zu lang")
	}
	return nil
}
