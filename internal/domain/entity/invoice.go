package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Estados de autorización AFIP del comprobante.
const (
	AFIPStatusUnsent     = "UNSENT"     // Contabilizada, sin intento de autorización
	AFIPStatusSubmitted  = "SUBMITTED"  // Enviada a AFIP, respuesta pendiente
	AFIPStatusAuthorized = "AUTHORIZED" // CAE otorgado, resultado A
	AFIPStatusObserved   = "OBSERVED"   // CAE otorgado con observaciones (resultado O)
	AFIPStatusRejected   = "REJECTED"   // Rechazada por AFIP (resultado R), sin CAE
	AFIPStatusFailed     = "FAILED"     // Error de transporte o de ensamblado
)

// Direcciones de comprobante.
const (
	DirOutInvoice    = "out_invoice"
	DirOutCreditNote = "out_credit_note"
	DirInInvoice     = "in_invoice"
	DirInCreditNote  = "in_credit_note"
)

// Conceptos AFIP.
const (
	ConceptoProductos          = "1"
	ConceptoServicios          = "2"
	ConceptoProductosServicios = "3"
	ConceptoExportacion        = "4"
)

// Invoice representa la proyección de una factura visible para el motor de
// autorización AFIP. Una vez asignado el CAE, los campos que alimentaron la
// solicitud son inmutables.
type Invoice struct {
	ID              string
	CompanyID       string
	PartyID         string
	PosID           string
	Direction       string // out_invoice, out_credit_note, in_invoice, in_credit_note
	VoucherTypeCode string // código de la tabla de tipos de comprobante; vacío hasta ensamblar
	VoucherNumber   int64  // número interno (últimos 8 dígitos); 0 hasta asignar
	NumberPretty    string // "<pos:04>-<nro:08>" al contabilizar
	Concept         string // "1".."4"
	InvoiceDate     time.Time
	ServiceFrom     *time.Time // obligatorio para conceptos 2 y 3
	ServiceTo       *time.Time
	PaymentDue      *time.Time
	CurrencyISO     string
	CurrencyRate    decimal.Decimal // tasa de la factura contra ARS
	UntaxedAmount   decimal.Decimal
	TaxAmount       decimal.Decimal
	TotalAmount     decimal.Decimal
	Incoterms       string // obligatorio en Factura E (tipo 19)
	Comment         string
	AFIPStatus      string
	CAE             string
	CAEDueDate      *time.Time
	Barcode         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Autorizada indica que el comprobante ya tiene CAE (estado terminal).
func (i *Invoice) Autorizada() bool {
	return i.CAE != ""
}

// FormatNumberPretty arma el número de presentación "<pos:04>-<nro:08>".
func FormatNumberPretty(posNumber int, voucherNumber int64) string {
	return fmt.Sprintf("%04d-%08d", posNumber, voucherNumber)
}

// InvoiceLine línea de detalle (obligatoria en el WSFEXv1).
type InvoiceLine struct {
	ID          string
	InvoiceID   string
	ProductCode string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// InvoiceTaxLine línea de impuesto de la factura. Los totales los provee el
// ERP; el motor solo agrega por grupo (IVA vs otros tributos).
type InvoiceTaxLine struct {
	ID        string
	InvoiceID string
	TaxGroup  string // "IVA" u otro grupo de impuestos
	TaxName   string
	Rate      decimal.Decimal // alícuota (0.21 = 21%)
	Base      decimal.Decimal
	Amount    decimal.Decimal
}
