package repository

import "github.com/jhoicas/facturacion-afip/internal/domain/entity"

// AFIPTransactionRepository define el puerto de persistencia para el log de
// transacciones AFIP. La implementación DEBE comitear cada fila en su propio
// alcance, independiente de la transacción del caller: el registro forense
// sobrevive a un rollback externo.
type AFIPTransactionRepository interface {
	Create(tx *entity.AFIPTransaction) error
	ListByInvoice(invoiceID string) ([]*entity.AFIPTransaction, error)
	CountByInvoice(invoiceID string) (int, error)
}
