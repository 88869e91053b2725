package models

import "github.com/google/uuid"

// DashboardStats aggregates the owner's invoice and customer counts.
type DashboardStats struct {
	TotalInvoices  int     `json:"total_invoices"`
	OpenInvoices   int     `json:"open_invoices"`
	PaidInvoices   int     `json:"paid_invoices"`
	TotalCustomers int     `json:"total_customers"`
	OpenAmount     float64 `json:"open_amount"`
	PaidAmount     float64 `json:"paid_amount"`
}

// DashboardData is the full dashboard payload.
type DashboardData struct {
	DashboardStats
	RecentInvoices []*RecentInvoice `json:"recent_invoices"`
}

// RecentInvoice is a dashboard row for the latest invoices.
type RecentInvoice struct {
	ID            uuid.UUID     `json:"id"`
	InvoiceNumber string        `json:"invoice_number"`
	CustomerName  string        `json:"customer_name"`
	InvoiceDate   string        `json:"invoice_date"`
	GrossTotal    float64       `json:"gross_total"`
	Status        InvoiceStatus `json:"status"`
}
