package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rechnung-backend/internal/apperr"
	"rechnung-backend/internal/models"
)

func TestSettingsGet_CachesResult(t *testing.T) {
	t.Parallel()
	ownerID := uuid.New()
	store := &fakeSettingsStore{settings: &models.UserSettings{UserID: ownerID, CompanyName: "Eigene Firma"}}
	cache := newFakeCache()
	svc := NewSettingsService(store, cache)

	first, err := svc.Get(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, "Eigene Firma", first.CompanyName)
	require.NotNil(t, cache.stored[ownerID])

	// Second read is served from the cache even after the store empties.
	store.settings = nil
	second, err := svc.Get(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, first.CompanyName, second.CompanyName)
}

func TestSettingsGet_NotFound(t *testing.T) {
	t.Parallel()
	svc := NewSettingsService(&fakeSettingsStore{}, newFakeCache())

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSettingsSave_AppliesDefaultsAndInvalidates(t *testing.T) {
	t.Parallel()
	ownerID := uuid.New()
	store := &fakeSettingsStore{}
	cache := newFakeCache()
	cache.stored[ownerID] = &models.UserSettings{UserID: ownerID, CompanyName: "Alte Firma"}
	svc := NewSettingsService(store, cache)

	saved, err := svc.Save(context.Background(), ownerID, &models.SettingsInput{CompanyName: "Eigene Firma"})
	require.NoError(t, err)
	assert.Equal(t, "Deutschland", saved.Country)
	assert.Equal(t, 19.0, saved.DefaultVatRate)
	assert.Equal(t, "INV-", saved.InvoicePrefix)
	assert.Equal(t, 1, cache.invalidations)
	assert.Nil(t, cache.stored[ownerID])
}

func TestSettingsSave_ValidatesIBAN(t *testing.T) {
	t.Parallel()
	svc := NewSettingsService(&fakeSettingsStore{}, newFakeCache())

	_, err := svc.Save(context.Background(), uuid.New(), &models.SettingsInput{
		CompanyName: "Eigene Firma",
		IBAN:        "nicht-eine-iban",
	})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Ungültige IBAN", ve.Message)
}

func TestSettingsService_Unauthenticated(t *testing.T) {
	t.Parallel()
	svc := NewSettingsService(&fakeSettingsStore{}, newFakeCache())

	_, err := svc.Get(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = svc.Save(context.Background(), uuid.Nil, &models.SettingsInput{CompanyName: "Eigene Firma"})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}
