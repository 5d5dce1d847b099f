package entity

import "time"

// Resultados AFIP de un intento de autorización.
const (
	ResultadoAprobado  = "A"
	ResultadoRechazado = "R"
	ResultadoObservado = "O"
)

// AFIPTransaction fila de auditoría de un intento de autorización. Se persiste
// exactamente una por intento, en su propio alcance transaccional, de modo que
// sobrevive al rollback de la transacción externa.
type AFIPTransaction struct {
	ID          string
	InvoiceID   string
	Result      string // "A", "R", "O" o "" (fallo sin respuesta)
	Message     string
	XMLRequest  string
	XMLResponse string
	CreatedAt   time.Time
}
