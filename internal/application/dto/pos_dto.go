package dto

import "time"

// CreatePosRequest entrada para dar de alta un punto de venta. Para puntos
// electrónicos se crean las secuencias iniciales de los tipos indicados.
type CreatePosRequest struct {
	Number       int      `json:"number" validate:"required,min=1,max=9999"`
	Type         string   `json:"type" validate:"required,oneof=manual electronic fiscal_printer"`
	Service      string   `json:"service" validate:"omitempty,oneof=wsfe wsfex"`
	VoucherTypes []string `json:"voucher_types"` // códigos AFIP a secuenciar ("1", "6", "19", ...)
}

// PosResponse salida de un punto de venta.
type PosResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Number    int       `json:"number"`
	Type      string    `json:"type"`
	Service   string    `json:"service,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PosListResponse lista de puntos de venta de la empresa.
type PosListResponse struct {
	Items []PosResponse `json:"items"`
}

// SequenceResponse secuencia de numeración de un tipo de comprobante.
type SequenceResponse struct {
	VoucherTypeCode string `json:"voucher_type_code"`
	NextNumber      int64  `json:"next_number"`
}
