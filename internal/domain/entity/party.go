package entity

import "time"

// Party representa un cliente/tercero con su perfil fiscal AFIP.
type Party struct {
	ID             string
	CompanyID      string
	Name           string
	IVACondition   string // ver constantes IVA* en pkg/afip; vacío para clientes del exterior
	DocumentType   string // código de la tabla de tipos de documento AFIP (default "80" = CUIT)
	DocumentNumber string
	VatCountry     string // ISO 3166-1 alfa-2 ("AR" para locales)
	Street         string
	StreetBis      string
	Zip            string
	City           string
	Email          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Domicilio concatena los campos de dirección para el WSFEXv1 (Domicilio_cliente).
func (p *Party) Domicilio() string {
	out := ""
	for _, part := range []string{p.Street, p.StreetBis, p.Zip, p.City} {
		if part == "" {
			continue
		}
		if out != "" {
			out += " - "
		}
		out += part
	}
	return out
}
