package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa emisora.
type CreateCompanyRequest struct {
	Name           string `json:"name" validate:"required,min=1,max=200"`
	CUIT           string `json:"cuit" validate:"required"`
	IVACondition   string `json:"iva_condition" validate:"required"`
	CertificatePEM string `json:"certificate_pem"`
	PrivateKeyPEM  string `json:"private_key_pem"`
	Environment    string `json:"environment" validate:"omitempty,oneof=homologation production"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Email          string `json:"email" validate:"omitempty,email"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
// El CUIT no se actualiza: identifica a la empresa ante AFIP.
type UpdateCompanyRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=200"`
	IVACondition   *string `json:"iva_condition"`
	CertificatePEM *string `json:"certificate_pem"`
	PrivateKeyPEM  *string `json:"private_key_pem"`
	Environment    *string `json:"environment" validate:"omitempty,oneof='' homologation production"`
	Address        *string `json:"address"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Status         *string `json:"status" validate:"omitempty,oneof=active suspended inactive"`
}

// CompanyResponse salida de una empresa. Nunca expone la llave privada; del
// certificado solo indica si está cargado.
type CompanyResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CUIT           string    `json:"cuit"`
	IVACondition   string    `json:"iva_condition"`
	HasCredentials bool      `json:"has_credentials"`
	Environment    string    `json:"environment"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CompanyListResponse lista paginada de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
