package dto

import "time"

// CreatePartyRequest entrada para crear un cliente/tercero.
type CreatePartyRequest struct {
	Name           string `json:"name" validate:"required,min=1,max=200"`
	IVACondition   string `json:"iva_condition"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	VatCountry     string `json:"vat_country" validate:"omitempty,len=2"`
	Street         string `json:"street"`
	StreetBis      string `json:"street_bis"`
	Zip            string `json:"zip"`
	City           string `json:"city"`
	Email          string `json:"email" validate:"omitempty,email"`
}

// UpdatePartyRequest entrada para actualizar un tercero (campos opcionales).
type UpdatePartyRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=200"`
	IVACondition   *string `json:"iva_condition"`
	DocumentType   *string `json:"document_type"`
	DocumentNumber *string `json:"document_number"`
	VatCountry     *string `json:"vat_country" validate:"omitempty,len=2"`
	Street         *string `json:"street"`
	StreetBis      *string `json:"street_bis"`
	Zip            *string `json:"zip"`
	City           *string `json:"city"`
	Email          *string `json:"email" validate:"omitempty,email"`
}

// PartyResponse salida de un tercero.
type PartyResponse struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	Name           string    `json:"name"`
	IVACondition   string    `json:"iva_condition,omitempty"`
	DocumentType   string    `json:"document_type,omitempty"`
	DocumentNumber string    `json:"document_number,omitempty"`
	VatCountry     string    `json:"vat_country,omitempty"`
	Street         string    `json:"street,omitempty"`
	StreetBis      string    `json:"street_bis,omitempty"`
	Zip            string    `json:"zip,omitempty"`
	City           string    `json:"city,omitempty"`
	Email          string    `json:"email,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PartyListResponse lista paginada de terceros.
type PartyListResponse struct {
	Items []PartyResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// PadronResponse datos de un contribuyente según el padrón de AFIP.
type PadronResponse struct {
	CUIT        string `json:"cuit"`
	Nombre      string `json:"nombre"`
	TipoPersona string `json:"tipo_persona,omitempty"`
	Direccion   string `json:"direccion,omitempty"`
	Localidad   string `json:"localidad,omitempty"`
	CodPostal   string `json:"cod_postal,omitempty"`
	EstadoClave string `json:"estado_clave,omitempty"`
}
