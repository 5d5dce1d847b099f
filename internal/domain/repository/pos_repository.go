package repository

import (
	"context"

	"github.com/jhoicas/facturacion-afip/internal/domain/entity"
)

// PointOfSaleRepository define el puerto de persistencia para puntos de venta
// y sus secuencias de numeración.
type PointOfSaleRepository interface {
	Create(pos *entity.PointOfSale) error
	GetByID(id string) (*entity.PointOfSale, error)
	ListByCompany(companyID string) ([]*entity.PointOfSale, error)
	Update(pos *entity.PointOfSale) error

	// CreateSequence registra la secuencia inicial de un tipo de comprobante.
	CreateSequence(seq *entity.VoucherSequence) error
	// GetSequence devuelve la secuencia de (pos, tipo). Detecta faltantes y
	// duplicadas (SequenceError) según la configuración del punto de venta.
	GetSequence(posID, voucherTypeCode string) (*entity.VoucherSequence, error)
	// AllocateNext asigna atómicamente el próximo número interno del comprobante
	// (UPDATE ... RETURNING) para (pos, tipo).
	AllocateNext(ctx context.Context, posID, voucherTypeCode string) (int64, error)
}
