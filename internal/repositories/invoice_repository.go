package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rechnung-backend/internal/billing"
	"rechnung-backend/internal/models"
)

type InvoiceRepository struct {
	DB *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{DB: db}
}

// CreateWithItems persists the whole invoice aggregate in one transaction:
// the numbering counter claim, the header and all items commit or roll
// back together.
//
// The counter claim is the first statement and uses a single
// increment-and-return UPDATE; the row lock it takes serializes concurrent
// creations per owner, so two requests can never format the same number.
// A failure anywhere in the transaction releases the claim with the
// rollback, which keeps the sequence gap-free across failed attempts.
func (r *InvoiceRepository) CreateWithItems(ctx context.Context, inv *models.Invoice, items []models.InvoiceItem) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var prefix string
	var claimed int
	err = tx.QueryRow(ctx,
		`UPDATE user_settings
         SET next_invoice_number = next_invoice_number + 1, updated_at = CURRENT_TIMESTAMP
         WHERE user_id = $1
         RETURNING invoice_prefix, next_invoice_number - 1`,
		inv.UserID,
	).Scan(&prefix, &claimed)
	if err != nil {
		return err
	}
	inv.InvoiceNumber = billing.InvoiceNumber(prefix, claimed)

	err = tx.QueryRow(ctx,
		`INSERT INTO invoices(user_id, customer_id, invoice_number, invoice_date, due_date, status,
		     notes, net_total, vat_total, gross_total)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
         RETURNING id, created_at, updated_at`,
		inv.UserID, inv.CustomerID, inv.InvoiceNumber, inv.InvoiceDate, inv.DueDate,
		inv.Status, inv.Notes, inv.NetTotal, inv.VatTotal, inv.GrossTotal,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range items {
		items[i].InvoiceID = inv.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO invoice_items(invoice_id, description, quantity, unit, unit_price, vat_rate,
			     net_amount, vat_amount, gross_amount, position)
             VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
             RETURNING id, created_at`,
			inv.ID, items[i].Description, items[i].Quantity, items[i].Unit, items[i].UnitPrice,
			items[i].VatRate, items[i].NetAmount, items[i].VatAmount, items[i].GrossAmount,
			items[i].Position,
		).Scan(&items[i].ID, &items[i].CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Get retrieves an invoice with its customer and items ordered by position.
func (r *InvoiceRepository) Get(ctx context.Context, userID, id uuid.UUID) (*models.InvoiceWithDetails, error) {
	var inv models.InvoiceWithDetails
	err := r.DB.QueryRow(ctx,
		`SELECT i.id, i.user_id, i.customer_id, i.invoice_number, i.invoice_date::text,
		        i.due_date::text, i.status, i.notes, i.net_total, i.vat_total, i.gross_total,
		        i.pdf_url, i.created_at, i.updated_at,
		        c.id, c.user_id, c.name, c.street, c.postal_code, c.city, c.country,
		        c.email, c.phone, c.vat_id, c.notes, c.created_at, c.updated_at
         FROM invoices i
         JOIN customers c ON i.customer_id = c.id
         WHERE i.user_id = $1 AND i.id = $2`, userID, id,
	).Scan(&inv.ID, &inv.UserID, &inv.CustomerID, &inv.InvoiceNumber, &inv.InvoiceDate,
		&inv.DueDate, &inv.Status, &inv.Notes, &inv.NetTotal, &inv.VatTotal, &inv.GrossTotal,
		&inv.PDFURL, &inv.CreatedAt, &inv.UpdatedAt,
		&inv.Customer.ID, &inv.Customer.UserID, &inv.Customer.Name, &inv.Customer.Street,
		&inv.Customer.PostalCode, &inv.Customer.City, &inv.Customer.Country, &inv.Customer.Email,
		&inv.Customer.Phone, &inv.Customer.VatID, &inv.Customer.Notes, &inv.Customer.CreatedAt,
		&inv.Customer.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, invoice_id, description, quantity, unit, unit_price, vat_rate,
		        net_amount, vat_amount, gross_amount, position, created_at
         FROM invoice_items WHERE invoice_id = $1 ORDER BY position ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.InvoiceItem
		err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description, &item.Quantity, &item.Unit,
			&item.UnitPrice, &item.VatRate, &item.NetAmount, &item.VatAmount, &item.GrossAmount,
			&item.Position, &item.CreatedAt)
		if err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, item)
	}
	return &inv, rows.Err()
}

// List returns the owner's invoices newest first, optionally filtered by
// status.
func (r *InvoiceRepository) List(ctx context.Context, userID uuid.UUID, status models.InvoiceStatus) ([]*models.InvoiceListItem, error) {
	query := `SELECT i.id, i.invoice_number, i.invoice_date::text, i.due_date::text, i.status,
	                 i.gross_total, c.id, c.name
              FROM invoices i
              JOIN customers c ON i.customer_id = c.id
              WHERE i.user_id = $1`
	args := []any{userID}
	if status != "" {
		query += ` AND i.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY i.invoice_date DESC, i.created_at DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.InvoiceListItem
	for rows.Next() {
		var li models.InvoiceListItem
		err := rows.Scan(&li.ID, &li.InvoiceNumber, &li.InvoiceDate, &li.DueDate, &li.Status,
			&li.GrossTotal, &li.CustomerID, &li.CustomerName)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, &li)
	}
	return invoices, rows.Err()
}

// GetStatus returns the current lifecycle status of an invoice.
func (r *InvoiceRepository) GetStatus(ctx context.Context, userID, id uuid.UUID) (models.InvoiceStatus, error) {
	var status models.InvoiceStatus
	err := r.DB.QueryRow(ctx,
		`SELECT status FROM invoices WHERE user_id=$1 AND id=$2`, userID, id,
	).Scan(&status)
	return status, err
}

// UpdateStatus applies the transition only while the invoice still has the
// expected current status. The condition makes concurrent transitions safe:
// of two racing requests exactly one matches, the other gets pgx.ErrNoRows.
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, userID, id uuid.UUID, from, to models.InvoiceStatus) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE invoices SET status=$1, updated_at=CURRENT_TIMESTAMP
         WHERE user_id=$2 AND id=$3 AND status=$4`,
		to, userID, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes the invoice while it is still a draft; items go with it
// via ON DELETE CASCADE. The status condition closes the window between a
// status read and the delete.
func (r *InvoiceRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx,
		`DELETE FROM invoices WHERE user_id=$1 AND id=$2 AND status='draft'`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *InvoiceRepository) SetPDFURL(ctx context.Context, userID, id uuid.UUID, url string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE invoices SET pdf_url=$1, updated_at=CURRENT_TIMESTAMP WHERE user_id=$2 AND id=$3`,
		url, userID, id)
	return err
}

// Stats aggregates invoice counts and open/paid gross sums for the
// dashboard in one scan.
func (r *InvoiceRepository) Stats(ctx context.Context, userID uuid.UUID) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'open'),
		        COUNT(*) FILTER (WHERE status = 'paid'),
		        COALESCE(SUM(gross_total) FILTER (WHERE status = 'open'), 0),
		        COALESCE(SUM(gross_total) FILTER (WHERE status = 'paid'), 0)
         FROM invoices WHERE user_id = $1`, userID,
	).Scan(&stats.TotalInvoices, &stats.OpenInvoices, &stats.PaidInvoices,
		&stats.OpenAmount, &stats.PaidAmount)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Recent returns the owner's latest invoices for the dashboard.
func (r *InvoiceRepository) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.RecentInvoice, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT i.id, i.invoice_number, c.name, i.invoice_date::text, i.gross_total, i.status
         FROM invoices i
         JOIN customers c ON i.customer_id = c.id
         WHERE i.user_id = $1
         ORDER BY i.created_at DESC
         LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recent []*models.RecentInvoice
	for rows.Next() {
		var ri models.RecentInvoice
		err := rows.Scan(&ri.ID, &ri.InvoiceNumber, &ri.CustomerName, &ri.InvoiceDate,
			&ri.GrossTotal, &ri.Status)
		if err != nil {
			return nil, err
		}
		recent = append(recent, &ri)
	}
	return recent, rows.Err()
}
