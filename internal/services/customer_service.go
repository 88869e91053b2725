package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"rechnung-backend/internal/apperr"
	"rechnung-backend/internal/models"
)

type customerStore interface {
	Create(ctx context.Context, userID uuid.UUID, in *models.CustomerInput) (*models.Customer, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.Customer, error)
	Update(ctx context.Context, userID, id uuid.UUID, in *models.CustomerInput) (*models.Customer, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	CountInvoices(ctx context.Context, userID, customerID uuid.UUID) (int, error)
}

type CustomerService struct {
	customers customerStore
}

func NewCustomerService(customers customerStore) *CustomerService {
	return &CustomerService{customers: customers}
}

func (s *CustomerService) Create(ctx context.Context, ownerID uuid.UUID, in *models.CustomerInput) (*models.Customer, error) {
	if ownerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	customer, err := s.customers.Create(ctx, ownerID, in)
	if err != nil {
		return nil, apperr.Persistence("Fehler beim Erstellen des Kunden", err)
	}
	return customer, nil
}

func (s *CustomerService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Customer, error) {
	if ownerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	customer, err := s.customers.Get(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Persistence("Fehler beim Laden des Kunden", err)
	}
	return customer, nil
}

func (s *CustomerService) List(ctx context.Context, ownerID uuid.UUID) ([]*models.Customer, error) {
	if ownerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	customers, err := s.customers.List(ctx, ownerID)
	if err != nil {
		return nil, apperr.Persistence("Fehler beim Laden der Kunden", err)
	}
	return customers, nil
}

func (s *CustomerService) Update(ctx context.Context, ownerID, id uuid.UUID, in *models.CustomerInput) (*models.Customer, error) {
	if ownerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	customer, err := s.customers.Update(ctx, ownerID, id, in)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Persistence("Fehler beim Aktualisieren des Kunden", err)
	}
	return customer, nil
}

// Delete removes a customer unless invoices still reference it.
func (s *CustomerService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if ownerID == uuid.Nil {
		return apperr.ErrUnauthenticated
	}
	count, err := s.customers.CountInvoices(ctx, ownerID, id)
	if err != nil {
		return apperr.Persistence("Fehler beim Löschen des Kunden", err)
	}
	if count > 0 {
		return apperr.Conflict("Kunde kann nicht gelöscht werden, da noch Rechnungen vorhanden sind")
	}
	if err := s.customers.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.ErrNotFound
		}
		return apperr.Persistence("Fehler beim Löschen des Kunden", err)
	}
	return nil
}
