package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facturio/invoice-analyst/internal/entity"
)

// SaveExtractionRequest wraps one validated extraction for persistence.
type SaveExtractionRequest struct {
	Structured entity.StructuredInvoice
	Articles   []entity.Article
	FileName   string
}

type InvoiceRepository interface {
	SaveExtraction(ctx context.Context, req *SaveExtractionRequest) (uuid.UUID, error)
	ListInvoices(ctx context.Context, supplierName string) ([]InvoiceSummary, error)
}

// InvoiceSummary is one row of the invoice listing.
type InvoiceSummary struct {
	ID            uuid.UUID
	InvoiceNumber string
	InvoiceDate   string
	SupplierName  string
	TotalAmount   float64
	ArticleCount  int
	CreatedAt     time.Time
}

type invoiceRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewInvoiceRepository(pool *pgxpool.Pool, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{pool: pool, logger: logger}
}

// SaveExtraction stores the invoice with its line items in one
// transaction. Suppliers are deduplicated by name and products are
// upserted by reference, so re-saving the same invoice refreshes
// prices instead of growing the catalog.
func (r *invoiceRepository) SaveExtraction(ctx context.Context, req *SaveExtractionRequest) (uuid.UUID, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback(ctx)

	s := req.Structured

	var supplierID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO suppliers (id, name, address)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET address = COALESCE(NULLIF(EXCLUDED.address, ''), suppliers.address)
		RETURNING id`,
		uuid.New(), s.SupplierName, s.SupplierAddress,
	).Scan(&supplierID)
	if err != nil {
		r.logger.Error("failed to upsert supplier", "supplier", s.SupplierName, "error", err)
		return uuid.Nil, err
	}

	invoiceID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO invoices
			(id, supplier_id, invoice_number, invoice_date, total_packages,
			 total_without_taxes, taxes_amount, total_amount, file_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		invoiceID, supplierID, s.InvoiceNumber, s.InvoiceDate, s.TotalPackages,
		s.TotalWithoutTaxes, s.TaxesAmount, s.TotalAmount, req.FileName,
	)
	if err != nil {
		r.logger.Error("failed to insert invoice", "invoice_number", s.InvoiceNumber, "error", err)
		return uuid.Nil, err
	}

	for pos, a := range req.Articles {
		var productID uuid.UUID
		err = tx.QueryRow(ctx, `
			INSERT INTO products (id, supplier_id, reference, designation, brand, category)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (supplier_id, reference) DO UPDATE SET
				designation = EXCLUDED.designation,
				brand       = COALESCE(NULLIF(EXCLUDED.brand, ''), products.brand),
				category    = COALESCE(NULLIF(EXCLUDED.category, ''), products.category)
			RETURNING id`,
			uuid.New(), supplierID, a.Reference, a.Designation, a.Brand, a.Category,
		).Scan(&productID)
		if err != nil {
			r.logger.Error("failed to upsert product", "reference", a.Reference, "error", err)
			return uuid.Nil, err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO invoice_items
				(id, invoice_id, product_id, position, unit_price, packaging,
				 quantity, unit, weight_volume, total, validation_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			uuid.New(), invoiceID, productID, pos, a.UnitPrice, a.Packaging,
			a.Quantity, a.Unit, a.WeightVolume, a.Total, a.ValidationStatus,
		)
		if err != nil {
			r.logger.Error("failed to insert invoice item", "reference", a.Reference, "error", err)
			return uuid.Nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, err
	}
	r.logger.Info("invoice saved", "invoice_id", invoiceID, "items", len(req.Articles))
	return invoiceID, nil
}

func (r *invoiceRepository) ListInvoices(ctx context.Context, supplierName string) ([]InvoiceSummary, error) {
	q := `
		SELECT i.id, i.invoice_number, i.invoice_date, s.name, i.total_amount,
		       (SELECT COUNT(*) FROM invoice_items it WHERE it.invoice_id = i.id),
		       i.created_at
		FROM invoices i
		JOIN suppliers s ON s.id = i.supplier_id`
	args := []any{}
	if supplierName != "" {
		q += ` WHERE s.name = $1`
		args = append(args, supplierName)
	}
	q += ` ORDER BY i.created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list invoices", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []InvoiceSummary
	for rows.Next() {
		var m InvoiceSummary
		if err := rows.Scan(&m.ID, &m.InvoiceNumber, &m.InvoiceDate, &m.SupplierName,
			&m.TotalAmount, &m.ArticleCount, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
