package dto

import "time"

// CreateCurrencyRequest entrada para registrar una moneda con su código AFIP.
type CreateCurrencyRequest struct {
	ISOCode  string `json:"iso_code" validate:"required,len=3"`
	AfipCode string `json:"afip_code" validate:"required,min=1,max=3"`
	Rate     string `json:"rate" validate:"required"`
}

// CurrencyResponse salida de una moneda.
type CurrencyResponse struct {
	ID        string    `json:"id"`
	ISOCode   string    `json:"iso_code"`
	AfipCode  string    `json:"afip_code"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CurrencyListResponse lista de monedas registradas.
type CurrencyListResponse struct {
	Items []CurrencyResponse `json:"items"`
}
