package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-afip/internal/domain/entity"
)

// CurrencyRepository define el puerto de persistencia para monedas.
type CurrencyRepository interface {
	Create(currency *entity.Currency) error
	GetByISO(iso string) (*entity.Currency, error)
	List() ([]*entity.Currency, error)
	// UpdateRate actualiza la tasa contra ARS (ej. cotización DOL de WSFEv1).
	UpdateRate(iso string, rate decimal.Decimal) error
}
