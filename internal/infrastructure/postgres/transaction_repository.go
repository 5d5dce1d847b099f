package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/facturacion-afip/internal/domain/entity"
	"github.com/jhoicas/facturacion-afip/internal/domain/repository"
)

var _ repository.AFIPTransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo persiste el log de transacciones AFIP. Opera directamente
// sobre el pool, nunca dentro de la transacción del caller: la fila de
// auditoría queda comiteada aunque el resto de la operación haga rollback.
type TransactionRepo struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create registra un intento de autorización con el XML crudo intercambiado.
func (r *TransactionRepo) Create(tx *entity.AFIPTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	query := `
		INSERT INTO afip_transactions (id, invoice_id, result, message, xml_request, xml_response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(context.Background(), query,
		tx.ID, tx.InvoiceID, nullIfEmpty(tx.Result), tx.Message,
		tx.XMLRequest, tx.XMLResponse, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert afip transaction: %w", err)
	}
	return nil
}

// ListByInvoice devuelve los intentos de autorización de una factura, del más
// reciente al más antiguo.
func (r *TransactionRepo) ListByInvoice(invoiceID string) ([]*entity.AFIPTransaction, error) {
	query := `
		SELECT id, invoice_id, result, message, xml_request, xml_response, created_at
		FROM afip_transactions WHERE invoice_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list afip transactions: %w", err)
	}
	defer rows.Close()

	var list []*entity.AFIPTransaction
	for rows.Next() {
		var t entity.AFIPTransaction
		var result *string
		if err := rows.Scan(&t.ID, &t.InvoiceID, &result, &t.Message, &t.XMLRequest, &t.XMLResponse, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan afip transaction: %w", err)
		}
		t.Result = derefStr(result)
		list = append(list, &t)
	}
	return list, rows.Err()
}

// CountByInvoice cuenta los intentos de autorización de una factura.
func (r *TransactionRepo) CountByInvoice(invoiceID string) (int, error) {
	var count int
	err := r.pool.QueryRow(context.Background(),
		`SELECT count(*) FROM afip_transactions WHERE invoice_id = $1`, invoiceID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count afip transactions: %w", err)
	}
	return count, nil
}
