package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rechnung-backend/internal/apperr"
	"rechnung-backend/internal/models"
)

type fakeCustomerStore struct {
	customers    map[uuid.UUID]*models.Customer
	invoiceCount map[uuid.UUID]int
	deleted      []uuid.UUID
}

func newFakeCustomerStore() *fakeCustomerStore {
	return &fakeCustomerStore{
		customers:    map[uuid.UUID]*models.Customer{},
		invoiceCount: map[uuid.UUID]int{},
	}
}

func (f *fakeCustomerStore) Create(_ context.Context, userID uuid.UUID, in *models.CustomerInput) (*models.Customer, error) {
	c := &models.Customer{ID: uuid.New(), UserID: userID, Name: in.Name, Country: in.Country}
	f.customers[c.ID] = c
	return c, nil
}

func (f *fakeCustomerStore) Get(_ context.Context, _, id uuid.UUID) (*models.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

func (f *fakeCustomerStore) List(_ context.Context, _ uuid.UUID) ([]*models.Customer, error) {
	var out []*models.Customer
	for _, c := range f.customers {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCustomerStore) Update(_ context.Context, _, id uuid.UUID, in *models.CustomerInput) (*models.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c.Name = in.Name
	return c, nil
}

func (f *fakeCustomerStore) Delete(_ context.Context, _, id uuid.UUID) error {
	if _, ok := f.customers[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.customers, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCustomerStore) CountInvoices(_ context.Context, _, customerID uuid.UUID) (int, error) {
	return f.invoiceCount[customerID], nil
}

func TestCustomerCreate_AppliesDefaults(t *testing.T) {
	t.Parallel()
	store := newFakeCustomerStore()
	svc := NewCustomerService(store)

	created, err := svc.Create(context.Background(), uuid.New(), &models.CustomerInput{Name: "Musterfirma GmbH"})
	require.NoError(t, err)
	assert.Equal(t, "Deutschland", created.Country)
}

func TestCustomerCreate_ValidatesName(t *testing.T) {
	t.Parallel()
	svc := NewCustomerService(newFakeCustomerStore())

	_, err := svc.Create(context.Background(), uuid.New(), &models.CustomerInput{})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Kundenname ist erforderlich", ve.Message)
}

func TestCustomerDelete_BlockedByInvoices(t *testing.T) {
	t.Parallel()
	store := newFakeCustomerStore()
	svc := NewCustomerService(store)
	ownerID := uuid.New()

	created, err := svc.Create(context.Background(), ownerID, &models.CustomerInput{Name: "Musterfirma GmbH"})
	require.NoError(t, err)
	store.invoiceCount[created.ID] = 3

	err = svc.Delete(context.Background(), ownerID, created.ID)
	var ce *apperr.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Kunde kann nicht gelöscht werden, da noch Rechnungen vorhanden sind", ce.Message)
	assert.Empty(t, store.deleted)
}

func TestCustomerDelete_WithoutInvoices(t *testing.T) {
	t.Parallel()
	store := newFakeCustomerStore()
	svc := NewCustomerService(store)
	ownerID := uuid.New()

	created, err := svc.Create(context.Background(), ownerID, &models.CustomerInput{Name: "Musterfirma GmbH"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), ownerID, created.ID))
	assert.Equal(t, []uuid.UUID{created.ID}, store.deleted)
}

func TestCustomerGet_NotFound(t *testing.T) {
	t.Parallel()
	svc := NewCustomerService(newFakeCustomerStore())

	_, err := svc.Get(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCustomerService_Unauthenticated(t *testing.T) {
	t.Parallel()
	svc := NewCustomerService(newFakeCustomerStore())

	_, err := svc.List(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	err = svc.Delete(context.Background(), uuid.Nil, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}
