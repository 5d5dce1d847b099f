// Piezas compartidas por los listados del API de facturación (empresas,
// clientes, facturas, transacciones AFIP): paginación limit/offset y el
// cuerpo de error uniforme que produce el mapeador de errores HTTP.
package dto

// PageRequest paginación de los listados (query params limit y offset).
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse eco de la página servida; Total solo cuando el listado lo calcula.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error uniforme del API. Code es un identificador
// estable (NOT_FOUND, AFIP_REJECTED, WSAA) y Message el detalle legible.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
