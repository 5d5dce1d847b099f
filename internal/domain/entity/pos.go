package entity

import "time"

// Tipos de punto de venta.
const (
	POSManual          = "manual"
	POSElectronico     = "electronic"
	POSImpresoraFiscal = "fiscal_printer"
)

// Servicios web de autorización AFIP.
const (
	ServicioWSFE  = "wsfe"
	ServicioWSFEX = "wsfex"
)

// PointOfSale representa un punto de venta habilitado ante AFIP.
// Invariante: Type=electronic implica Service en {wsfe, wsfex} y una secuencia
// por cada tipo de comprobante que el punto de venta puede emitir.
type PointOfSale struct {
	ID        string
	CompanyID string
	Number    int    // prefijo del comprobante (0001 en "0001-00000057")
	Type      string // manual, electronic, fiscal_printer
	Service   string // "", wsfe, wsfex
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Electronico indica si el punto de venta autoriza contra un WS de AFIP.
func (p *PointOfSale) Electronico() bool {
	return p.Type == POSElectronico
}

// VoucherSequence contador monotónico por (punto de venta, tipo de comprobante).
// NextNumber es el próximo número interno a asignar (8 dígitos).
type VoucherSequence struct {
	ID              string
	PosID           string
	VoucherTypeCode string
	NextNumber      int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
