package dto

import "time"

// InvoiceLineRequest línea de detalle de la factura.
type InvoiceLineRequest struct {
	ProductCode string `json:"product_code"`
	Description string `json:"description" validate:"required"`
	Quantity    string `json:"quantity" validate:"required"`
	UnitPrice   string `json:"unit_price" validate:"required"`
	Amount      string `json:"amount" validate:"required"`
}

// InvoiceTaxLineRequest línea de impuesto de la factura. Los importes vienen
// calculados por el sistema de origen; acá no se recalculan.
type InvoiceTaxLineRequest struct {
	TaxGroup string `json:"tax_group" validate:"required"`
	TaxName  string `json:"tax_name" validate:"required"`
	Rate     string `json:"rate" validate:"required"`
	Base     string `json:"base" validate:"required"`
	Amount   string `json:"amount" validate:"required"`
}

// CreateInvoiceRequest entrada para contabilizar una factura. Queda en estado
// UNSENT hasta que se solicite la autorización.
type CreateInvoiceRequest struct {
	PartyID       string                  `json:"party_id" validate:"required,uuid"`
	PosID         string                  `json:"pos_id" validate:"required,uuid"`
	Direction     string                  `json:"direction" validate:"required,oneof=out_invoice out_credit_note in_invoice in_credit_note"`
	Concept       string                  `json:"concept" validate:"required,oneof=1 2 3 4"`
	InvoiceDate   string                  `json:"invoice_date" validate:"required"` // YYYY-MM-DD
	ServiceFrom   string                  `json:"service_from"`
	ServiceTo     string                  `json:"service_to"`
	PaymentDue    string                  `json:"payment_due"`
	CurrencyISO   string                  `json:"currency_iso" validate:"required,len=3"`
	CurrencyRate  string                  `json:"currency_rate"`
	UntaxedAmount string                  `json:"untaxed_amount" validate:"required"`
	TaxAmount     string                  `json:"tax_amount" validate:"required"`
	TotalAmount   string                  `json:"total_amount" validate:"required"`
	Incoterms     string                  `json:"incoterms"`
	Comment       string                  `json:"comment"`
	Lines         []InvoiceLineRequest    `json:"lines" validate:"required,min=1,dive"`
	TaxLines      []InvoiceTaxLineRequest `json:"tax_lines" validate:"dive"`
}

// InvoiceLineResponse línea de detalle en respuestas.
type InvoiceLineResponse struct {
	ID          string `json:"id"`
	ProductCode string `json:"product_code,omitempty"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Amount      string `json:"amount"`
}

// InvoiceTaxLineResponse línea de impuesto en respuestas.
type InvoiceTaxLineResponse struct {
	ID       string `json:"id"`
	TaxGroup string `json:"tax_group"`
	TaxName  string `json:"tax_name"`
	Rate     string `json:"rate"`
	Base     string `json:"base"`
	Amount   string `json:"amount"`
}

// InvoiceResponse salida de una factura con su estado AFIP.
type InvoiceResponse struct {
	ID              string                   `json:"id"`
	CompanyID       string                   `json:"company_id"`
	PartyID         string                   `json:"party_id"`
	PosID           string                   `json:"pos_id"`
	Direction       string                   `json:"direction"`
	VoucherTypeCode string                   `json:"voucher_type_code,omitempty"`
	VoucherNumber   int64                    `json:"voucher_number,omitempty"`
	NumberPretty    string                   `json:"number_pretty,omitempty"`
	Concept         string                   `json:"concept"`
	InvoiceDate     string                   `json:"invoice_date"`
	ServiceFrom     string                   `json:"service_from,omitempty"`
	ServiceTo       string                   `json:"service_to,omitempty"`
	PaymentDue      string                   `json:"payment_due,omitempty"`
	CurrencyISO     string                   `json:"currency_iso"`
	CurrencyRate    string                   `json:"currency_rate"`
	UntaxedAmount   string                   `json:"untaxed_amount"`
	TaxAmount       string                   `json:"tax_amount"`
	TotalAmount     string                   `json:"total_amount"`
	Incoterms       string                   `json:"incoterms,omitempty"`
	Comment         string                   `json:"comment,omitempty"`
	AFIPStatus      string                   `json:"afip_status"`
	CAE             string                   `json:"cae,omitempty"`
	CAEDueDate      string                   `json:"cae_due_date,omitempty"`
	Barcode         string                   `json:"barcode,omitempty"`
	Lines           []InvoiceLineResponse    `json:"lines,omitempty"`
	TaxLines        []InvoiceTaxLineResponse `json:"tax_lines,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// InvoiceListResponse lista paginada de facturas (sin líneas).
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// AFIPTransactionResponse intento de autorización registrado en el log.
type AFIPTransactionResponse struct {
	ID          string    `json:"id"`
	InvoiceID   string    `json:"invoice_id"`
	Result      string    `json:"result,omitempty"`
	Message     string    `json:"message,omitempty"`
	XMLRequest  string    `json:"xml_request"`
	XMLResponse string    `json:"xml_response"`
	CreatedAt   time.Time `json:"created_at"`
}

// AFIPTransactionListResponse log de transacciones de una factura.
type AFIPTransactionListResponse struct {
	Items []AFIPTransactionResponse `json:"items"`
}
