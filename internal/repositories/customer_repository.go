package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rechnung-backend/internal/models"
)

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

const customerColumns = `id, user_id, name, street, postal_code, city, country, email, phone, vat_id, notes, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Street, &c.PostalCode, &c.City,
		&c.Country, &c.Email, &c.Phone, &c.VatID, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// nullable maps empty strings to NULL so optional fields stay NULL in the
// database instead of accumulating empty strings.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *CustomerRepository) Create(ctx context.Context, userID uuid.UUID, in *models.CustomerInput) (*models.Customer, error) {
	row := r.DB.QueryRow(ctx,
		`INSERT INTO customers(user_id, name, street, postal_code, city, country, email, phone, vat_id, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
         RETURNING `+customerColumns,
		userID, in.Name, nullable(in.Street), nullable(in.PostalCode), nullable(in.City),
		in.Country, nullable(in.Email), nullable(in.Phone), nullable(in.VatID), nullable(in.Notes))
	return scanCustomer(row)
}

func (r *CustomerRepository) Get(ctx context.Context, userID, id uuid.UUID) (*models.Customer, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE user_id=$1 AND id=$2`, userID, id)
	return scanCustomer(row)
}

func (r *CustomerRepository) List(ctx context.Context, userID uuid.UUID) ([]*models.Customer, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE user_id=$1 ORDER BY name ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Update(ctx context.Context, userID, id uuid.UUID, in *models.CustomerInput) (*models.Customer, error) {
	row := r.DB.QueryRow(ctx,
		`UPDATE customers
         SET name=$1, street=$2, postal_code=$3, city=$4, country=$5, email=$6,
             phone=$7, vat_id=$8, notes=$9, updated_at=CURRENT_TIMESTAMP
         WHERE user_id=$10 AND id=$11
         RETURNING `+customerColumns,
		in.Name, nullable(in.Street), nullable(in.PostalCode), nullable(in.City), in.Country,
		nullable(in.Email), nullable(in.Phone), nullable(in.VatID), nullable(in.Notes),
		userID, id)
	return scanCustomer(row)
}

func (r *CustomerRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM customers WHERE user_id=$1 AND id=$2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountInvoices returns how many invoices reference the customer. The
// delete guard checks this before attempting a delete.
func (r *CustomerRepository) CountInvoices(ctx context.Context, userID, customerID uuid.UUID) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices WHERE user_id=$1 AND customer_id=$2`,
		userID, customerID,
	).Scan(&count)
	return count, err
}

// Count returns the owner's total number of customers.
func (r *CustomerRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM customers WHERE user_id=$1`, userID,
	).Scan(&count)
	return count, err
}
