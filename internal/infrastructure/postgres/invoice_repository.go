package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/facturacion-afip/internal/domain"
	"github.com/jhoicas/facturacion-afip/internal/domain/entity"
	"github.com/jhoicas/facturacion-afip/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación del puerto InvoiceRepository sobre PostgreSQL.
// Acepta un Querier para poder operar tanto sobre el pool como dentro de una
// transacción (ver TxRunner).
type InvoiceRepo struct {
	q Querier
}

func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, company_id, party_id, pos_id, direction, voucher_type_code,
	       voucher_number, number_pretty, concept, invoice_date, service_from, service_to,
	       payment_due, currency_iso, currency_rate, untaxed_amount, tax_amount, total_amount,
	       incoterms, comment, afip_status, cae, cae_due_date, barcode, created_at, updated_at`

// Create persiste la cabecera de una factura.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	if invoice.AFIPStatus == "" {
		invoice.AFIPStatus = entity.AFIPStatusUnsent
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.CompanyID, invoice.PartyID, invoice.PosID,
		invoice.Direction, nullIfEmpty(invoice.VoucherTypeCode), invoice.VoucherNumber,
		nullIfEmpty(invoice.NumberPretty), invoice.Concept, invoice.InvoiceDate,
		invoice.ServiceFrom, invoice.ServiceTo, invoice.PaymentDue,
		invoice.CurrencyISO, invoice.CurrencyRate, invoice.UntaxedAmount,
		invoice.TaxAmount, invoice.TotalAmount, nullIfEmpty(invoice.Incoterms),
		invoice.Comment, invoice.AFIPStatus, nullIfEmpty(invoice.CAE),
		invoice.CAEDueDate, nullIfEmpty(invoice.Barcode),
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de detalle.
func (r *InvoiceRepo) CreateLine(line *entity.InvoiceLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_lines (id, invoice_id, product_code, description, quantity, unit_price, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.InvoiceID, line.ProductCode, line.Description,
		line.Quantity, line.UnitPrice, line.Amount,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

// CreateTaxLine persiste una línea de impuesto.
func (r *InvoiceRepo) CreateTaxLine(line *entity.InvoiceTaxLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_tax_lines (id, invoice_id, tax_group, tax_name, rate, base, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.InvoiceID, line.TaxGroup, line.TaxName,
		line.Rate, line.Base, line.Amount,
	)
	if err != nil {
		return fmt.Errorf("insert invoice tax line: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) scanInvoice(row interface{ Scan(...any) error }) (*entity.Invoice, error) {
	var i entity.Invoice
	var voucherType, numberPretty, incoterms, cae, barcode *string
	err := row.Scan(
		&i.ID, &i.CompanyID, &i.PartyID, &i.PosID, &i.Direction, &voucherType,
		&i.VoucherNumber, &numberPretty, &i.Concept, &i.InvoiceDate,
		&i.ServiceFrom, &i.ServiceTo, &i.PaymentDue, &i.CurrencyISO,
		&i.CurrencyRate, &i.UntaxedAmount, &i.TaxAmount, &i.TotalAmount,
		&incoterms, &i.Comment, &i.AFIPStatus, &cae, &i.CAEDueDate, &barcode,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	i.VoucherTypeCode = derefStr(voucherType)
	i.NumberPretty = derefStr(numberPretty)
	i.Incoterms = derefStr(incoterms)
	i.CAE = derefStr(cae)
	i.Barcode = derefStr(barcode)
	return &i, nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	i, err := r.scanInvoice(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return i, nil
}

// GetLines devuelve las líneas de detalle de una factura.
func (r *InvoiceRepo) GetLines(invoiceID string) ([]*entity.InvoiceLine, error) {
	query := `
		SELECT id, invoice_id, product_code, description, quantity, unit_price, amount
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice lines: %w", err)
	}
	defer rows.Close()

	var list []*entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.ProductCode, &l.Description, &l.Quantity, &l.UnitPrice, &l.Amount); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// GetTaxLines devuelve las líneas de impuesto de una factura.
func (r *InvoiceRepo) GetTaxLines(invoiceID string) ([]*entity.InvoiceTaxLine, error) {
	query := `
		SELECT id, invoice_id, tax_group, tax_name, rate, base, amount
		FROM invoice_tax_lines WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice tax lines: %w", err)
	}
	defer rows.Close()

	var list []*entity.InvoiceTaxLine
	for rows.Next() {
		var l entity.InvoiceTaxLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.TaxGroup, &l.TaxName, &l.Rate, &l.Base, &l.Amount); err != nil {
			return nil, fmt.Errorf("scan invoice tax line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// Update persiste los campos AFIP de la factura tras un intento de autorización.
func (r *InvoiceRepo) Update(invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET voucher_type_code = $2, voucher_number = $3, number_pretty = $4,
		    afip_status = $5, cae = $6, cae_due_date = $7, barcode = $8,
		    updated_at = now()
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		invoice.ID, nullIfEmpty(invoice.VoucherTypeCode), invoice.VoucherNumber,
		nullIfEmpty(invoice.NumberPretty), invoice.AFIPStatus,
		nullIfEmpty(invoice.CAE), invoice.CAEDueDate, nullIfEmpty(invoice.Barcode),
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany devuelve las facturas de una empresa con paginación.
func (r *InvoiceRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		i, err := r.scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, i)
	}
	return list, rows.Err()
}
