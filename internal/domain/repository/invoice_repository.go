package repository

import "github.com/jhoicas/facturacion-afip/internal/domain/entity"

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateLine(line *entity.InvoiceLine) error
	CreateTaxLine(line *entity.InvoiceTaxLine) error
	GetByID(id string) (*entity.Invoice, error)
	GetLines(invoiceID string) ([]*entity.InvoiceLine, error)
	GetTaxLines(invoiceID string) ([]*entity.InvoiceTaxLine, error)
	// Update actualiza los campos AFIP de la factura: número, estado,
	// cae, cae_due_date y barcode.
	Update(invoice *entity.Invoice) error
	ListByCompany(companyID string, limit, offset int) ([]*entity.Invoice, error)
}
