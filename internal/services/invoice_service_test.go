package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rechnung-backend/internal/apperr"
	"rechnung-backend/internal/models"
)

type fakeInvoiceStore struct {
	created      *models.Invoice
	createdItems []models.InvoiceItem
	createErr    error
	nextNumber   int
	statuses     map[uuid.UUID]models.InvoiceStatus
	deleted      []uuid.UUID
	pdfURLs      map[uuid.UUID]string

	// staleReads makes GetStatus return staleStatus that many times,
	// emulating a concurrent writer between read and conditional write.
	staleReads  int
	staleStatus models.InvoiceStatus
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{
		nextNumber: 1,
		statuses:   map[uuid.UUID]models.InvoiceStatus{},
		pdfURLs:    map[uuid.UUID]string{},
	}
}

func (f *fakeInvoiceStore) CreateWithItems(_ context.Context, inv *models.Invoice, items []models.InvoiceItem) error {
	if f.createErr != nil {
		return f.createErr
	}
	inv.ID = uuid.New()
	inv.InvoiceNumber = fmt.Sprintf("INV-%04d", f.nextNumber)
	f.nextNumber++
	f.created = inv
	f.createdItems = items
	f.statuses[inv.ID] = inv.Status
	return nil
}

func (f *fakeInvoiceStore) Get(_ context.Context, _, id uuid.UUID) (*models.InvoiceWithDetails, error) {
	if f.created == nil || f.created.ID != id {
		return nil, pgx.ErrNoRows
	}
	return &models.InvoiceWithDetails{Invoice: *f.created, Items: f.createdItems}, nil
}

func (f *fakeInvoiceStore) List(_ context.Context, _ uuid.UUID, _ models.InvoiceStatus) ([]*models.InvoiceListItem, error) {
	return nil, nil
}

func (f *fakeInvoiceStore) GetStatus(_ context.Context, _, id uuid.UUID) (models.InvoiceStatus, error) {
	if f.staleReads > 0 {
		f.staleReads--
		return f.staleStatus, nil
	}
	status, ok := f.statuses[id]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return status, nil
}

func (f *fakeInvoiceStore) UpdateStatus(_ context.Context, _, id uuid.UUID, from, to models.InvoiceStatus) error {
	if current, ok := f.statuses[id]; !ok || current != from {
		return pgx.ErrNoRows
	}
	f.statuses[id] = to
	if f.created != nil && f.created.ID == id {
		f.created.Status = to
	}
	return nil
}

func (f *fakeInvoiceStore) Delete(_ context.Context, _, id uuid.UUID) error {
	if current, ok := f.statuses[id]; !ok || current != models.StatusDraft {
		return pgx.ErrNoRows
	}
	delete(f.statuses, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeInvoiceStore) SetPDFURL(_ context.Context, _, id uuid.UUID, url string) error {
	f.pdfURLs[id] = url
	return nil
}

type fakeCustomerReader struct {
	customers map[uuid.UUID]*models.Customer
}

func (f *fakeCustomerReader) Get(_ context.Context, _, id uuid.UUID) (*models.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

type fakeSettingsStore struct {
	settings *models.UserSettings
	upserts  int
}

func (f *fakeSettingsStore) Get(_ context.Context, _ uuid.UUID) (*models.UserSettings, error) {
	if f.settings == nil {
		return nil, pgx.ErrNoRows
	}
	return f.settings, nil
}

func (f *fakeSettingsStore) Upsert(_ context.Context, userID uuid.UUID, in *models.SettingsInput) (*models.UserSettings, error) {
	f.upserts++
	f.settings = &models.UserSettings{
		UserID:            userID,
		CompanyName:       in.CompanyName,
		Country:           in.Country,
		DefaultVatRate:    *in.DefaultVatRate,
		InvoicePrefix:     in.InvoicePrefix,
		NextInvoiceNumber: 1,
	}
	return f.settings, nil
}

type fakeCache struct {
	stored        map[uuid.UUID]*models.UserSettings
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{stored: map[uuid.UUID]*models.UserSettings{}}
}

func (f *fakeCache) GetSettings(_ context.Context, userID uuid.UUID) *models.UserSettings {
	return f.stored[userID]
}

func (f *fakeCache) CacheSettings(_ context.Context, s *models.UserSettings) {
	f.stored[s.UserID] = s
}

func (f *fakeCache) InvalidateSettings(_ context.Context, userID uuid.UUID) {
	delete(f.stored, userID)
	f.invalidations++
}

type staticRenderer struct{ data []byte }

func (r *staticRenderer) Render(_ *models.InvoiceWithDetails, _ *models.UserSettings) ([]byte, error) {
	return r.data, nil
}

type recordingArchiver struct {
	keys []string
	url  string
	err  error
}

func (a *recordingArchiver) Store(_ context.Context, key string, _ []byte) (string, error) {
	a.keys = append(a.keys, key)
	return a.url, a.err
}

func invoiceFixture(ownerID, customerID uuid.UUID) (*fakeInvoiceStore, *fakeCustomerReader, *fakeSettingsStore, *fakeCache) {
	invoices := newFakeInvoiceStore()
	customers := &fakeCustomerReader{customers: map[uuid.UUID]*models.Customer{
		customerID: {ID: customerID, UserID: ownerID, Name: "Musterfirma GmbH"},
	}}
	settings := &fakeSettingsStore{settings: &models.UserSettings{
		UserID:            ownerID,
		CompanyName:       "Eigene Firma",
		InvoicePrefix:     "INV-",
		NextInvoiceNumber: 1,
		DefaultVatRate:    19,
	}}
	return invoices, customers, settings, newFakeCache()
}

func validInput(customerID uuid.UUID) *models.InvoiceInput {
	return &models.InvoiceInput{
		CustomerID:  customerID.String(),
		InvoiceDate: "2026-08-29",
		Items: []models.InvoiceItemInput{
			{Description: "Beratung", Quantity: 2, UnitPrice: 100},
		},
	}
}

func TestInvoiceCreate_ComputesAmounts(t *testing.T) {
	t.Parallel()
	ownerID, customerID := uuid.New(), uuid.New()
	invoices, customers, settings, cache := invoiceFixture(ownerID, customerID)
	svc := NewInvoiceService(invoices, customers, settings, cache, nil, nil)

	created, err := svc.Create(context.Background(), ownerID, validInput(customerID))
	require.NoError(t, err)

	require.Len(t, invoices.createdItems, 1)
	item := invoices.createdItems[0]
	assert.Equal(t, 200.0, item.NetAmount)
	assert.Equal(t, 38.0, item.VatAmount)
	assert.Equal(t, 238.0, item.GrossAmount)
	assert.Equal(t, 19.0, item.VatRate)
	assert.Equal(t, "Stk.", item.Unit)
	assert.Equal(t, 0, item.Position)

	assert.Equal(t, 200.0, created.NetTotal)
	assert.Equal(t, 38.0, created.VatTotal)
	assert.Equal(t, 238.0, created.GrossTotal)
	assert.Equal(t, models.StatusDraft, created.Status)
}

func TestInvoiceCreate_RequiresSettings(t *testing.T) {
	t.Parallel()
	ownerID, customerID := uuid.New(), uuid.New()
	invoices, customers, _, cache := invoiceFixture(ownerID, customerID)
	settings := &fakeSettingsStore{}
	svc := NewInvoiceService(invoices, customers, settings, cache, nil, nil)

	_, err := svc.Create(context.Background(), ownerID, validInput(customerID))
	assert.ErrorIs(t, err, apperr.ErrSettingsRequired)
	assert.Nil(t, invoices.created)
}

func TestInvoiceCreate_UnknownCustomer(t *testing.T) {
	t.Parallel()
	ownerID := uuid.New()
	invoices, customers, settings, cache := invoiceFixture(ownerID, uuid.New())
	svc := NewInvoiceService(invoices, customers, settings, cache, nil, nil)

	_, err := svc.Create(context.Background(), ownerID, validInput(uuid.New()))
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Kunde nicht gefunden", ve.Message)
	assert.Nil(t, invoices.created)
}

func TestInvoiceCreate_BlankItemsFiltered(t *testing.T) {
	t.Parallel()
	ownerID, customerID := uuid.New(), uuid.New()
	invoices, customers, settings, cache := invoiceFixture(ownerID, customerID)
	svc := NewInvoiceService(invoices, customers, settings, cache, nil, nil)

	in := validInput(customerID)
	in.Items = append(in.Items, models.InvoiceItemInput{Description: "   "})
	_, err := svc.Create(context.Background(), ownerID, in)
	require.NoError(t, err)
	assert.Len(t, invoices.createdItems, 1)
}

func TestInvoiceCreate_AllItemsBlank(t *testing.T) {
	t.Parallel()
	ownerID, customerID := uuid.New(), uuid.New()
	invoices, customers, settings, cache := invoiceFixture(ownerID, customerID)
	svc := NewInvoiceService(invoices, customers, settings, cache, nil, nil)

	in := validInput(customerID)
	in.Items = []models.InvoiceItemInput{{Description: "  "}}
	_, err := svc.Create(context.Background(), ownerID, in)
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Mindestens eine Position ist erforderlich", ve.Message)
}

func TestInvoiceCreate_Unauthenticated(t *testing.T) {
	t.Parallel()
	invoices, customers, settings, cache := invoiceFixture(uuid.New(), uuid.New())
	svc := NewInvoiceService(invoices, customers, settings, cache, nil, nil)

	_, err := svc.Create(context.Background(), uuid.Nil, validInput(uuid.New()))
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestInvoiceCreate_PersistenceFailure(t *testing.T) {
	t.Parallel()
	ownerID, customerID := uuid.New(), uuid.New()
	invoices, customers, settings, cache := invoiceFixture(ownerID, customerID)
	invoices.createErr = errors.New("deadlock detected")
	svc := NewInvoiceService(invoices, customers, settings, cache, nil, nil)

	_, err := svc.Create(context.Background(), ownerID, validInput(customerID))
	var pe *apperr.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "Fehler beim Erstellen der Rechnung", pe.Message)

	// A failed creation leaves no state behind: nothing persisted, the
	// cached settings (and with them the numbering counter) untouched.
	assert.Nil(t, invoices.created)
	assert.Empty(t, invoices.createdItems)
	assert.Zero(t, cache.invalidations)
}

func TestInvoiceUpdateStatus_Transitions(t *testing.T) {
	t.Parallel()
	ownerID, customerID := uuid.New(), uuid.New()
	invoices, customers, settings, cache := invoiceFixture(ownerID, customerID)
	svc := NewInvoiceService(invoices, customers, settings, cache, nil, nil)

	created, err := svc.Create(context.Background(), ownerID, validInput(customerID))
	require.NoError(t, err)

	opened, err := svc.UpdateStatus(context.Background(), ownerID, created.ID, models.StatusOpen)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, opened.Status)

	paid, err := svc.UpdateStatus(context.Background(), ownerID, created.ID, models.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, paid.Status)

	// Paid is terminal.
	_, err = svc.UpdateStatus(context.Background(), ownerID, created.ID, models.StatusOpen)
	var ce *apperr.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Statuswechsel von 'Bezahlt' nach 'Offen' ist nicht zulässig", ce.Message)
}

func TestInvoiceUpdateStatus_Invalid(t *testing.T) {
	t.Parallel()
	ownerID, customerID := uuid.New(), uuid.New()
	invoices, customers, settings, cache := invoiceFixture(ownerID, customerID)
	svc := NewInvoiceService(invoices, customers, settings, cache, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), ownerID, uuid.New(), models.InvoiceStatus("archived"))
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Ungültiger Status", ve.Message)
}

func TestInvoiceUpdateStatus_ConcurrentWriter(t *testing.T) {
	t.Parallel()
	ownerID, customerID := uuid.New(), uuid.New()
	invoices, customers, settings, cache := invoiceFixture(ownerID, customerID)
	svc := NewInvoiceService(invoices, customers, settings, cache, nil, nil)

	created, err := svc.Create(context.Background(), ownerID, validInput(customerID))
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), ownerID, created.ID, models.StatusOpen)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), ownerID, created.ID, models.StatusPaid)
	require.NoError(t, err)

	// Another request marked the invoice paid after our status read; the
	// conditional write must reject the now-illegal cancellation.
	invoices.staleReads = 1
	invoices.staleStatus = models.StatusOpen
	_, err = svc.UpdateStatus(context.Background(), ownerID, created.ID, models.StatusCancelled)
	var ce *apperr.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Statuswechsel von 'Bezahlt' nach 'Storniert' ist nicht zulässig", ce.Message)
	assert.Equal(t, models.StatusPaid, invoices.statuses[created.ID])
}

func TestInvoiceDelete_ConcurrentIssue(t *testing.T) {
	t.Parallel()
	ownerID, customerID := uuid.New(), uuid.New()
	invoices, customers, settings, cache := invoiceFixture(ownerID, customerID)
	svc := NewInvoiceService(invoices, customers, settings, cache, nil, nil)

	created, err := svc.Create(context.Background(), ownerID, validInput(customerID))
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), ownerID, created.ID, models.StatusOpen)
	require.NoError(t, err)

	// The draft was issued after our status read; the draft-conditioned
	// delete must not remove the now-open invoice.
	invoices.staleReads = 1
	invoices.staleStatus = models.StatusDraft
	err = svc.Delete(context.Background(), ownerID, created.ID)
	var ce *apperr.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Nur Entwürfe können gelöscht werden", ce.Message)
	assert.Empty(t, invoices.deleted)
	assert.Equal(t, models.StatusOpen, invoices.statuses[created.ID])
}

func TestInvoiceDelete_OnlyDrafts(t *testing.T) {
	t.Parallel()
	ownerID, customerID := uuid.New(), uuid.New()
	invoices, customers, settings, cache := invoiceFixture(ownerID, customerID)
	svc := NewInvoiceService(invoices, customers, settings, cache, nil, nil)

	created, err := svc.Create(context.Background(), ownerID, validInput(customerID))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), ownerID, created.ID, models.StatusOpen)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), ownerID, created.ID)
	var ce *apperr.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Nur Entwürfe können gelöscht werden", ce.Message)
	assert.Empty(t, invoices.deleted)
}

func TestInvoiceDelete_Draft(t *testing.T) {
	t.Parallel()
	ownerID, customerID := uuid.New(), uuid.New()
	invoices, customers, settings, cache := invoiceFixture(ownerID, customerID)
	svc := NewInvoiceService(invoices, customers, settings, cache, nil, nil)

	created, err := svc.Create(context.Background(), ownerID, validInput(customerID))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), ownerID, created.ID))
	assert.Equal(t, []uuid.UUID{created.ID}, invoices.deleted)

	err = svc.Delete(context.Background(), ownerID, created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestInvoiceList_InvalidStatusFilter(t *testing.T) {
	t.Parallel()
	ownerID := uuid.New()
	invoices, customers, settings, cache := invoiceFixture(ownerID, uuid.New())
	svc := NewInvoiceService(invoices, customers, settings, cache, nil, nil)

	_, err := svc.List(context.Background(), ownerID, models.InvoiceStatus("overdue"))
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Ungültiger Status", ve.Message)
}

func TestExportPDF_ArchivesBestEffort(t *testing.T) {
	t.Parallel()
	ownerID, customerID := uuid.New(), uuid.New()
	invoices, customers, settings, cache := invoiceFixture(ownerID, customerID)
	archiver := &recordingArchiver{url: "https://files.example.com/r.pdf"}
	svc := NewInvoiceService(invoices, customers, settings, cache, &staticRenderer{data: []byte("%PDF-1.4")}, archiver)

	created, err := svc.Create(context.Background(), ownerID, validInput(customerID))
	require.NoError(t, err)

	data, filename, err := svc.ExportPDF(context.Background(), ownerID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)
	assert.Equal(t, "Rechnung_"+created.InvoiceNumber+".pdf", filename)
	require.Len(t, archiver.keys, 1)
	assert.Equal(t, archiver.url, invoices.pdfURLs[created.ID])
}

func TestExportPDF_ArchiveFailureIgnored(t *testing.T) {
	t.Parallel()
	ownerID, customerID := uuid.New(), uuid.New()
	invoices, customers, settings, cache := invoiceFixture(ownerID, customerID)
	archiver := &recordingArchiver{err: context.DeadlineExceeded}
	svc := NewInvoiceService(invoices, customers, settings, cache, &staticRenderer{data: []byte("%PDF-1.4")}, archiver)

	created, err := svc.Create(context.Background(), ownerID, validInput(customerID))
	require.NoError(t, err)

	data, _, err := svc.ExportPDF(context.Background(), ownerID, created.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Empty(t, invoices.pdfURLs)
}

func TestExportPDF_RequiresSettings(t *testing.T) {
	t.Parallel()
	ownerID, customerID := uuid.New(), uuid.New()
	invoices, customers, settings, cache := invoiceFixture(ownerID, customerID)
	svc := NewInvoiceService(invoices, customers, settings, cache, &staticRenderer{data: []byte("%PDF-1.4")}, nil)

	created, err := svc.Create(context.Background(), ownerID, validInput(customerID))
	require.NoError(t, err)

	settings.settings = nil
	_, _, err = svc.ExportPDF(context.Background(), ownerID, created.ID)
	assert.ErrorIs(t, err, apperr.ErrSettingsRequired)
}
