package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"rechnung-backend/internal/apperr"
	"rechnung-backend/internal/models"
)

type settingsStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)
	Upsert(ctx context.Context, userID uuid.UUID, in *models.SettingsInput) (*models.UserSettings, error)
}

type settingsCache interface {
	GetSettings(ctx context.Context, userID uuid.UUID) *models.UserSettings
	CacheSettings(ctx context.Context, settings *models.UserSettings)
	InvalidateSettings(ctx context.Context, userID uuid.UUID)
}

type SettingsService struct {
	settings settingsStore
	cache    settingsCache
}

func NewSettingsService(settings settingsStore, cache settingsCache) *SettingsService {
	return &SettingsService{settings: settings, cache: cache}
}

// Get returns the owner's settings, cache first. ErrNotFound means the
// owner has not saved settings yet.
func (s *SettingsService) Get(ctx context.Context, ownerID uuid.UUID) (*models.UserSettings, error) {
	if ownerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	if cached := s.cache.GetSettings(ctx, ownerID); cached != nil {
		return cached, nil
	}
	settings, err := s.settings.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Persistence("Fehler beim Laden der Einstellungen", err)
	}
	s.cache.CacheSettings(ctx, settings)
	return settings, nil
}

// Save creates or updates the owner's settings record. The numbering
// counter is never written here; a save cannot reset it.
func (s *SettingsService) Save(ctx context.Context, ownerID uuid.UUID, in *models.SettingsInput) (*models.UserSettings, error) {
	if ownerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	settings, err := s.settings.Upsert(ctx, ownerID, in)
	if err != nil {
		return nil, apperr.Persistence("Fehler beim Speichern der Einstellungen", err)
	}
	s.cache.InvalidateSettings(ctx, ownerID)
	return settings, nil
}
