package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio genéricos (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)

// Errores del ciclo de autorización AFIP. Los de configuración se levantan antes
// de contactar el web service y bloquean la transición; los de envío siempre
// dejan una fila de auditoría.
var (
	ErrModoAFIPIncorrecto      = errors.New("entorno AFIP mal configurado o credenciales rechazadas por WSAA")
	ErrWSAA                    = errors.New("error de transporte o SOAP contra WSAA")
	ErrServicioNoSoportado     = errors.New("servicio AFIP desconocido")
	ErrCodigoAFIPVacio         = errors.New("la moneda no tiene código AFIP")
	ErrFechasServicioFaltantes = errors.New("facturas de servicios requieren período (desde/hasta)")
	ErrIncotermsFaltante       = errors.New("factura E requiere INCOTERMS")
	ErrCondicionIVAEmpresa     = errors.New("la empresa no tiene condición frente al IVA")
	ErrCondicionIVACliente     = errors.New("el cliente no tiene condición frente al IVA")
	ErrTipoComprobante         = errors.New("no se pudo determinar el tipo de comprobante")
	ErrSinCAE                  = errors.New("AFIP no otorgó CAE; ver el log de transacciones")
)

// InvalidInvoiceNumberError número de comprobante local distinto del próximo
// autorizado por AFIP (último autorizado + 1).
type InvalidInvoiceNumberError struct {
	Actual   int64
	Esperado int64
}

func (e *InvalidInvoiceNumberError) Error() string {
	return fmt.Sprintf("número de comprobante inválido: %d (AFIP espera %d)", e.Actual, e.Esperado)
}

// SequenceError secuencia faltante o duplicada para un tipo de comprobante en
// el punto de venta.
type SequenceError struct {
	TipoComprobante string
	Duplicada       bool
}

func (e *SequenceError) Error() string {
	if e.Duplicada {
		return fmt.Sprintf("múltiples secuencias para el tipo de comprobante %q en el punto de venta", e.TipoComprobante)
	}
	return fmt.Sprintf("falta secuencia para el tipo de comprobante %q en el punto de venta", e.TipoComprobante)
}
