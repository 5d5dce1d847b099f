package entity

import "time"

// Entornos AFIP. Vacío significa que la empresa no autoriza electrónicamente.
const (
	AFIPEnvHomologacion = "homologation"
	AFIPEnvProduccion   = "production"
)

// Company representa una empresa emisora (enfoque Argentina).
// Las credenciales WSAA (certificado X.509 y llave privada RSA en PEM) se
// validan con un round-trip a WSAA cuando Environment no es vacío.
type Company struct {
	ID             string
	Name           string
	CUIT           string // 11 dígitos, sin guiones
	IVACondition   string // ver constantes IVA* en pkg/afip
	CertificatePEM string
	PrivateKeyPEM  string
	Environment    string // "", homologation, production
	Address        string
	Phone          string
	Email          string
	Status         string // active, suspended, inactive
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Electronica indica si la empresa tiene habilitada la factura electrónica.
func (c *Company) Electronica() bool {
	return c.Environment == AFIPEnvHomologacion || c.Environment == AFIPEnvProduccion
}
