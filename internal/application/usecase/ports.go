package usecase

import (
	"context"

	"github.com/jhoicas/facturacion-afip/internal/domain/repository"
)

// InvoiceTxRunner ejecuta un callback con un InvoiceRepository atado a una
// transacción: cabecera, líneas y líneas de impuesto se persisten de forma
// atómica.
type InvoiceTxRunner interface {
	Run(ctx context.Context, fn func(invoices repository.InvoiceRepository) error) error
}
