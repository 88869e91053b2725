package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"rechnung-backend/internal/apperr"
)

// InvoiceStatus is the lifecycle state of an invoice. The four values form
// a closed enum; anything else is rejected at the decode boundary.
type InvoiceStatus string

const (
	StatusDraft     InvoiceStatus = "draft"
	StatusOpen      InvoiceStatus = "open"
	StatusPaid      InvoiceStatus = "paid"
	StatusCancelled InvoiceStatus = "cancelled"
)

// Valid reports whether s is one of the four enumerated statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusOpen, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions leave this status.
func (s InvoiceStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// CanTransitionTo implements the lifecycle table:
// draft -> open, draft -> cancelled, open -> paid, open -> cancelled.
// Nothing transitions back into draft, nothing leaves paid or cancelled.
func (s InvoiceStatus) CanTransitionTo(to InvoiceStatus) bool {
	switch s {
	case StatusDraft:
		return to == StatusOpen || to == StatusCancelled
	case StatusOpen:
		return to == StatusPaid || to == StatusCancelled
	}
	return false
}

// Label returns the German display name of the status.
func (s InvoiceStatus) Label() string {
	switch s {
	case StatusDraft:
		return "Entwurf"
	case StatusOpen:
		return "Offen"
	case StatusPaid:
		return "Bezahlt"
	case StatusCancelled:
		return "Storniert"
	}
	return string(s)
}

// Invoice is the header record. Number and items are fixed at creation
// time; only the status changes afterwards, and deletion is allowed in
// draft only.
type Invoice struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	CustomerID    uuid.UUID     `json:"customer_id"`
	InvoiceNumber string        `json:"invoice_number"`
	InvoiceDate   string        `json:"invoice_date"`
	DueDate       *string       `json:"due_date"`
	Status        InvoiceStatus `json:"status"`
	Notes         *string       `json:"notes"`
	NetTotal      float64       `json:"net_total"`
	VatTotal      float64       `json:"vat_total"`
	GrossTotal    float64       `json:"gross_total"`
	PDFURL        *string       `json:"pdf_url"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// InvoiceItem is one position of an invoice, ordered by Position
// (zero-based insertion order). Items are immutable once created.
type InvoiceItem struct {
	ID          uuid.UUID `json:"id"`
	InvoiceID   uuid.UUID `json:"invoice_id"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	Unit        string    `json:"unit"`
	UnitPrice   float64   `json:"unit_price"`
	VatRate     float64   `json:"vat_rate"`
	NetAmount   float64   `json:"net_amount"`
	VatAmount   float64   `json:"vat_amount"`
	GrossAmount float64   `json:"gross_amount"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// InvoiceWithDetails is an invoice with its customer and ordered items.
type InvoiceWithDetails struct {
	Invoice
	Customer Customer      `json:"customer"`
	Items    []InvoiceItem `json:"items"`
}

// InvoiceListItem is the list-view projection.
type InvoiceListItem struct {
	ID            uuid.UUID     `json:"id"`
	InvoiceNumber string        `json:"invoice_number"`
	InvoiceDate   string        `json:"invoice_date"`
	DueDate       *string       `json:"due_date"`
	Status        InvoiceStatus `json:"status"`
	GrossTotal    float64       `json:"gross_total"`
	CustomerID    uuid.UUID     `json:"customer_id"`
	CustomerName  string        `json:"customer_name"`
}

// InvoiceItemInput is one position of the creation payload.
type InvoiceItemInput struct {
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity"`
	Unit        string   `json:"unit"`
	UnitPrice   float64  `json:"unit_price"`
	VatRate     *float64 `json:"vat_rate"`
}

// InvoiceInput is the creation payload for the whole aggregate.
type InvoiceInput struct {
	CustomerID  string             `json:"customer_id"`
	InvoiceDate string             `json:"invoice_date"`
	DueDate     string             `json:"due_date"`
	Status      InvoiceStatus      `json:"status"`
	Notes       string             `json:"notes"`
	Items       []InvoiceItemInput `json:"items"`
}

// StatusUpdateRequest is the payload of the status-update operation.
type StatusUpdateRequest struct {
	Status InvoiceStatus `json:"status"`
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// FilterBlankItems drops positions whose description is blank. The form
// grid submits empty trailing rows; they are not part of the invoice.
func (in *InvoiceInput) FilterBlankItems() {
	kept := in.Items[:0]
	for _, item := range in.Items {
		if strings.TrimSpace(item.Description) != "" {
			kept = append(kept, item)
		}
	}
	in.Items = kept
}

// Validate checks the fields in declaration order, returning the first
// violation, and applies defaults (status draft, unit "Stk.", VAT rate 19).
func (in *InvoiceInput) Validate() error {
	if _, err := uuid.Parse(in.CustomerID); err != nil {
		return apperr.Validation("Kunde ist erforderlich")
	}
	if !datePattern.MatchString(in.InvoiceDate) {
		return apperr.Validation("Ungültiges Datum")
	}
	if in.DueDate != "" && !datePattern.MatchString(in.DueDate) {
		return apperr.Validation("Ungültiges Datum")
	}
	if in.Status == "" {
		in.Status = StatusDraft
	}
	if !in.Status.Valid() {
		return apperr.Validation("Ungültiger Status")
	}
	if len(in.Notes) > 2000 {
		return apperr.Validation("Hinweise sind zu lang")
	}
	if len(in.Items) == 0 {
		return apperr.Validation("Mindestens eine Position ist erforderlich")
	}
	for i := range in.Items {
		if err := in.Items[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

func (it *InvoiceItemInput) validate() error {
	if it.Description == "" {
		return apperr.Validation("Beschreibung ist erforderlich")
	}
	if len(it.Description) > 500 {
		return apperr.Validation("Beschreibung ist zu lang")
	}
	if it.Quantity < 0.01 {
		return apperr.Validation("Menge muss größer als 0 sein")
	}
	if it.Quantity > 999999 {
		return apperr.Validation("Menge ist zu groß")
	}
	if it.Unit == "" {
		it.Unit = "Stk."
	}
	if len(it.Unit) > 20 {
		return apperr.Validation("Einheit ist zu lang")
	}
	if it.UnitPrice < 0 {
		return apperr.Validation("Preis darf nicht negativ sein")
	}
	if it.UnitPrice > 9999999.99 {
		return apperr.Validation("Preis ist zu hoch")
	}
	if it.VatRate == nil {
		rate := 19.0
		it.VatRate = &rate
	}
	if *it.VatRate < 0 {
		return apperr.Validation("MwSt.-Satz muss mindestens 0% sein")
	}
	if *it.VatRate > 100 {
		return apperr.Validation("MwSt.-Satz darf maximal 100% sein")
	}
	return nil
}

// TransitionError builds the conflict message for an illegal status change.
func TransitionError(from, to InvoiceStatus) error {
	return apperr.Conflict(fmt.Sprintf("Statuswechsel von '%s' nach '%s' ist nicht zulässig", from.Label(), to.Label()))
}
