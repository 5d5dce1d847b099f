package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency representa una moneda con su código AFIP (3 caracteres) y su tasa
// contra la moneda de la empresa (ARS). ARS tiene código "PES" y tasa 1.
type Currency struct {
	ID        string
	ISOCode   string // "ARS", "USD", ...
	AfipCode  string // "PES", "DOL", ...
	Rate      decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
