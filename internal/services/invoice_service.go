package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"rechnung-backend/internal/apperr"
	"rechnung-backend/internal/billing"
	"rechnung-backend/internal/logger"
	"rechnung-backend/internal/metrics"
	"rechnung-backend/internal/models"
)

type invoiceStore interface {
	CreateWithItems(ctx context.Context, inv *models.Invoice, items []models.InvoiceItem) error
	Get(ctx context.Context, userID, id uuid.UUID) (*models.InvoiceWithDetails, error)
	List(ctx context.Context, userID uuid.UUID, status models.InvoiceStatus) ([]*models.InvoiceListItem, error)
	GetStatus(ctx context.Context, userID, id uuid.UUID) (models.InvoiceStatus, error)
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, from, to models.InvoiceStatus) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetPDFURL(ctx context.Context, userID, id uuid.UUID, url string) error
}

type customerReader interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Customer, error)
}

// PDFRenderer renders an invoice with the owner's company settings into a
// finished PDF document.
type PDFRenderer interface {
	Render(inv *models.InvoiceWithDetails, settings *models.UserSettings) ([]byte, error)
}

// PDFArchiver stores a rendered PDF and returns its public URL. Archiving
// is best effort; export succeeds without it.
type PDFArchiver interface {
	Store(ctx context.Context, key string, data []byte) (string, error)
}

type InvoiceService struct {
	invoices  invoiceStore
	customers customerReader
	settings  settingsStore
	cache     settingsCache
	renderer  PDFRenderer
	archive   PDFArchiver
	log       zerolog.Logger
}

func NewInvoiceService(invoices invoiceStore, customers customerReader, settings settingsStore, cache settingsCache, renderer PDFRenderer, archive PDFArchiver) *InvoiceService {
	return &InvoiceService{
		invoices:  invoices,
		customers: customers,
		settings:  settings,
		cache:     cache,
		renderer:  renderer,
		archive:   archive,
		log:       logger.WithComponent("invoices"),
	}
}

// Create validates the payload, computes all amounts server side and
// persists the aggregate in one transaction. The invoice number is claimed
// inside that transaction, so a failed creation never consumes a number.
func (s *InvoiceService) Create(ctx context.Context, ownerID uuid.UUID, in *models.InvoiceInput) (*models.InvoiceWithDetails, error) {
	if ownerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	in.FilterBlankItems()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	customerID, _ := uuid.Parse(in.CustomerID)

	if _, err := s.customers.Get(ctx, ownerID, customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Validation("Kunde nicht gefunden")
		}
		return nil, apperr.Persistence("Fehler beim Erstellen der Rechnung", err)
	}

	// Settings must exist before the first invoice; they hold the
	// numbering counter.
	if _, err := s.settings.Get(ctx, ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrSettingsRequired
		}
		return nil, apperr.Persistence("Fehler beim Erstellen der Rechnung", err)
	}

	items := make([]models.InvoiceItem, len(in.Items))
	lines := make([]billing.Line, len(in.Items))
	for i, it := range in.Items {
		amounts := billing.ItemAmounts(it.Quantity, it.UnitPrice, *it.VatRate)
		items[i] = models.InvoiceItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
			VatRate:     *it.VatRate,
			NetAmount:   amounts.Net,
			VatAmount:   amounts.Vat,
			GrossAmount: amounts.Gross,
			Position:    i,
		}
		lines[i] = billing.Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice, VatRate: *it.VatRate}
	}
	totals := billing.InvoiceTotals(lines)

	invoice := &models.Invoice{
		UserID:      ownerID,
		CustomerID:  customerID,
		InvoiceDate: in.InvoiceDate,
		DueDate:     optional(in.DueDate),
		Status:      in.Status,
		Notes:       optional(in.Notes),
		NetTotal:    totals.Net,
		VatTotal:    totals.Vat,
		GrossTotal:  totals.Gross,
	}

	if err := s.invoices.CreateWithItems(ctx, invoice, items); err != nil {
		return nil, apperr.Persistence("Fehler beim Erstellen der Rechnung", err)
	}

	metrics.InvoicesCreatedTotal.Inc()
	s.cache.InvalidateSettings(ctx, ownerID)

	created, err := s.invoices.Get(ctx, ownerID, invoice.ID)
	if err != nil {
		return nil, apperr.Persistence("Fehler beim Laden der Rechnung", err)
	}
	return created, nil
}

func (s *InvoiceService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.InvoiceWithDetails, error) {
	if ownerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	invoice, err := s.invoices.Get(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Persistence("Fehler beim Laden der Rechnung", err)
	}
	return invoice, nil
}

func (s *InvoiceService) List(ctx context.Context, ownerID uuid.UUID, status models.InvoiceStatus) ([]*models.InvoiceListItem, error) {
	if ownerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	if status != "" && !status.Valid() {
		return nil, apperr.Validation("Ungültiger Status")
	}
	invoices, err := s.invoices.List(ctx, ownerID, status)
	if err != nil {
		return nil, apperr.Persistence("Fehler beim Laden der Rechnungen", err)
	}
	return invoices, nil
}

// UpdateStatus applies a lifecycle transition. Only draft to open, draft to
// cancelled, open to paid and open to cancelled are allowed; paid and
// cancelled are terminal.
func (s *InvoiceService) UpdateStatus(ctx context.Context, ownerID, id uuid.UUID, to models.InvoiceStatus) (*models.InvoiceWithDetails, error) {
	if ownerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	if !to.Valid() {
		return nil, apperr.Validation("Ungültiger Status")
	}
	from, err := s.invoices.GetStatus(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Persistence("Fehler beim Aktualisieren des Status", err)
	}
	if !from.CanTransitionTo(to) {
		return nil, models.TransitionError(from, to)
	}
	if err := s.invoices.UpdateStatus(ctx, ownerID, id, from, to); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The status changed between the read and the conditional
			// write. Report the transition from the current status.
			current, cerr := s.invoices.GetStatus(ctx, ownerID, id)
			if cerr != nil {
				if errors.Is(cerr, pgx.ErrNoRows) {
					return nil, apperr.ErrNotFound
				}
				return nil, apperr.Persistence("Fehler beim Aktualisieren des Status", cerr)
			}
			return nil, models.TransitionError(current, to)
		}
		return nil, apperr.Persistence("Fehler beim Aktualisieren des Status", err)
	}
	return s.Get(ctx, ownerID, id)
}

// Delete removes an invoice. Only drafts can be deleted; issued invoices
// are cancelled instead.
func (s *InvoiceService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if ownerID == uuid.Nil {
		return apperr.ErrUnauthenticated
	}
	status, err := s.invoices.GetStatus(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.ErrNotFound
		}
		return apperr.Persistence("Fehler beim Löschen der Rechnung", err)
	}
	if status != models.StatusDraft {
		return apperr.Conflict("Nur Entwürfe können gelöscht werden")
	}
	if err := s.invoices.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The delete is conditioned on draft status. No row matched,
			// so the invoice is gone or was issued concurrently.
			if _, cerr := s.invoices.GetStatus(ctx, ownerID, id); cerr != nil {
				if errors.Is(cerr, pgx.ErrNoRows) {
					return apperr.ErrNotFound
				}
				return apperr.Persistence("Fehler beim Löschen der Rechnung", cerr)
			}
			return apperr.Conflict("Nur Entwürfe können gelöscht werden")
		}
		return apperr.Persistence("Fehler beim Löschen der Rechnung", err)
	}
	return nil
}

// ExportPDF renders the invoice document and returns it with its download
// filename. When an archive is configured the PDF is also uploaded and the
// invoice keeps the resulting URL; upload failure does not fail the export.
func (s *InvoiceService) ExportPDF(ctx context.Context, ownerID, id uuid.UUID) ([]byte, string, error) {
	if ownerID == uuid.Nil {
		return nil, "", apperr.ErrUnauthenticated
	}
	invoice, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, "", err
	}
	settings, err := s.settings.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperr.ErrSettingsRequired
		}
		return nil, "", apperr.Persistence("Fehler beim Erstellen des PDFs", err)
	}

	data, err := s.renderer.Render(invoice, settings)
	if err != nil {
		return nil, "", apperr.Persistence("Fehler beim Erstellen des PDFs", err)
	}
	metrics.PDFExportsTotal.Inc()

	filename := "Rechnung_" + invoice.InvoiceNumber + ".pdf"
	if s.archive != nil {
		key := ownerID.String() + "/" + filename
		url, err := s.archive.Store(ctx, key, data)
		if err != nil {
			s.log.Warn().Err(err).Str("invoice", invoice.InvoiceNumber).Msg("pdf archive upload failed")
		} else if err := s.invoices.SetPDFURL(ctx, ownerID, id, url); err != nil {
			s.log.Warn().Err(err).Str("invoice", invoice.InvoiceNumber).Msg("storing pdf url failed")
		}
	}
	return data, filename, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
