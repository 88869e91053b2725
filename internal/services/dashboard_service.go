package services

import (
	"context"

	"github.com/google/uuid"

	"rechnung-backend/internal/apperr"
	"rechnung-backend/internal/models"
)

type statsStore interface {
	Stats(ctx context.Context, userID uuid.UUID) (*models.DashboardStats, error)
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.RecentInvoice, error)
}

type customerCounter interface {
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

type DashboardService struct {
	invoices  statsStore
	customers customerCounter
}

func NewDashboardService(invoices statsStore, customers customerCounter) *DashboardService {
	return &DashboardService{invoices: invoices, customers: customers}
}

// Stats aggregates invoice counts, open and paid sums, the customer count
// and the five most recent invoices.
func (s *DashboardService) Stats(ctx context.Context, ownerID uuid.UUID) (*models.DashboardData, error) {
	if ownerID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	stats, err := s.invoices.Stats(ctx, ownerID)
	if err != nil {
		return nil, apperr.Persistence("Fehler beim Laden der Übersicht", err)
	}
	customers, err := s.customers.Count(ctx, ownerID)
	if err != nil {
		return nil, apperr.Persistence("Fehler beim Laden der Übersicht", err)
	}
	stats.TotalCustomers = customers

	recent, err := s.invoices.Recent(ctx, ownerID, 5)
	if err != nil {
		return nil, apperr.Persistence("Fehler beim Laden der Übersicht", err)
	}
	return &models.DashboardData{DashboardStats: *stats, RecentInvoices: recent}, nil
}
