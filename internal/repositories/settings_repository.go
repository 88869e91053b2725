package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"rechnung-backend/internal/models"
)

type SettingsRepository struct {
	DB *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{DB: db}
}

const settingsColumns = `id, user_id, company_name, street, postal_code, city, country, email, phone,
	tax_number, vat_id, iban, bic, bank_name, default_vat_rate, invoice_prefix, next_invoice_number,
	created_at, updated_at`

func scanSettings(row interface{ Scan(...any) error }) (*models.UserSettings, error) {
	var s models.UserSettings
	err := row.Scan(&s.ID, &s.UserID, &s.CompanyName, &s.Street, &s.PostalCode, &s.City,
		&s.Country, &s.Email, &s.Phone, &s.TaxNumber, &s.VatID, &s.IBAN, &s.BIC, &s.BankName,
		&s.DefaultVatRate, &s.InvoicePrefix, &s.NextInvoiceNumber, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepository) Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+settingsColumns+` FROM user_settings WHERE user_id=$1`, userID)
	return scanSettings(row)
}

// Upsert saves the owner's settings, creating the record on first save.
// The UNIQUE constraint on user_id makes this race-free: two concurrent
// first-time saves resolve to one insert and one update. The invoice
// number counter is never touched here; only invoice creation advances it.
func (r *SettingsRepository) Upsert(ctx context.Context, userID uuid.UUID, in *models.SettingsInput) (*models.UserSettings, error) {
	row := r.DB.QueryRow(ctx,
		`INSERT INTO user_settings(user_id, company_name, street, postal_code, city, country, email,
		     phone, tax_number, vat_id, iban, bic, bank_name, default_vat_rate, invoice_prefix)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
         ON CONFLICT (user_id)
         DO UPDATE SET company_name=$2, street=$3, postal_code=$4, city=$5, country=$6, email=$7,
             phone=$8, tax_number=$9, vat_id=$10, iban=$11, bic=$12, bank_name=$13,
             default_vat_rate=$14, invoice_prefix=$15, updated_at=CURRENT_TIMESTAMP
         RETURNING `+settingsColumns,
		userID, in.CompanyName, nullable(in.Street), nullable(in.PostalCode), nullable(in.City),
		in.Country, nullable(in.Email), nullable(in.Phone), nullable(in.TaxNumber), nullable(in.VatID),
		nullable(in.IBAN), nullable(in.BIC), nullable(in.BankName), *in.DefaultVatRate, in.InvoicePrefix)
	return scanSettings(row)
}
