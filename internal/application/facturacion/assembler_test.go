package facturacion

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-afip/internal/domain"
	"github.com/jhoicas/facturacion-afip/internal/domain/entity"
	"github.com/jhoicas/facturacion-afip/pkg/afip"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// comprobanteLocal arma una Factura A doméstica en pesos: neto 100, IVA 21.
func comprobanteLocal() *Comprobante {
	fecha := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	return &Comprobante{
		Empresa: &entity.Company{
			CUIT:         "30712345678",
			IVACondition: afip.IVAResponsableInscripto,
			Environment:  entity.AFIPEnvHomologacion,
		},
		Pos: &entity.PointOfSale{
			ID:      "pos-1",
			Number:  4,
			Type:    entity.POSElectronico,
			Service: entity.ServicioWSFE,
		},
		Cliente: &entity.Party{
			Name:           "Cliente Local SRL",
			IVACondition:   afip.IVAResponsableInscripto,
			DocumentNumber: "20123456786",
			VatCountry:     "AR",
		},
		Factura: &entity.Invoice{
			ID:              "inv-1",
			Direction:       entity.DirOutInvoice,
			VoucherTypeCode: "1",
			VoucherNumber:   57,
			Concept:         entity.ConceptoProductos,
			InvoiceDate:     fecha,
			CurrencyISO:     "ARS",
			CurrencyRate:    decimal.NewFromInt(1),
			UntaxedAmount:   dec("100.00"),
			TaxAmount:       dec("21.00"),
			TotalAmount:     dec("121.00"),
		},
		Moneda: &entity.Currency{ISOCode: "ARS", AfipCode: "PES", Rate: decimal.NewFromInt(1)},
		Impuestos: []*entity.InvoiceTaxLine{
			{TaxGroup: "IVA", TaxName: "IVA 21%", Rate: dec("0.21"), Base: dec("100.00"), Amount: dec("21.00")},
		},
	}
}

// comprobanteExportacion arma una Factura E a Uruguay en dólares.
func comprobanteExportacion() *Comprobante {
	fecha := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	return &Comprobante{
		Empresa: &entity.Company{
			CUIT:         "30712345678",
			IVACondition: afip.IVAResponsableInscripto,
			Environment:  entity.AFIPEnvHomologacion,
		},
		Pos: &entity.PointOfSale{
			ID:      "pos-2",
			Number:  5,
			Type:    entity.POSElectronico,
			Service: entity.ServicioWSFEX,
		},
		Cliente: &entity.Party{
			Name:           "Cliente del Exterior SA",
			DocumentNumber: "RUT211234560017",
			VatCountry:     "UY",
			Street:         "Av. Siempreviva 123",
			City:           "Montevideo",
		},
		Factura: &entity.Invoice{
			ID:              "inv-2",
			Direction:       entity.DirOutInvoice,
			VoucherTypeCode: "19",
			VoucherNumber:   13,
			Concept:         entity.ConceptoExportacion,
			InvoiceDate:     fecha,
			CurrencyISO:     "USD",
			CurrencyRate:    dec("0.001"),
			TotalAmount:     dec("1000.00"),
			Incoterms:       "FOB",
		},
		Moneda: &entity.Currency{ISOCode: "USD", AfipCode: "DOL", Rate: dec("0.001")},
		Lineas: []*entity.InvoiceLine{
			{Description: "Producto exportable", Quantity: dec("10"), UnitPrice: dec("100"), Amount: dec("1000")},
		},
	}
}

// ── Resolución de tipo ────────────────────────────────────────────────────────

func TestResolverTipoComprobante(t *testing.T) {
	comp := comprobanteLocal()
	codigo, err := ResolverTipoComprobante(comp)
	require.NoError(t, err)
	assert.Equal(t, "1", codigo) // Factura A

	comp.Cliente.IVACondition = afip.IVAConsumidorFinal
	codigo, err = ResolverTipoComprobante(comp)
	require.NoError(t, err)
	assert.Equal(t, "6", codigo) // Factura B

	comp.Factura.Direction = entity.DirOutCreditNote
	codigo, err = ResolverTipoComprobante(comp)
	require.NoError(t, err)
	assert.Equal(t, "8", codigo) // NC B

	exp := comprobanteExportacion()
	exp.Cliente.IVACondition = ""
	codigo, err = ResolverTipoComprobante(exp)
	require.NoError(t, err)
	assert.Equal(t, "19", codigo) // Factura E
}

func TestResolverTipoComprobante_Preconditions(t *testing.T) {
	comp := comprobanteLocal()
	comp.Empresa.IVACondition = ""
	_, err := ResolverTipoComprobante(comp)
	assert.ErrorIs(t, err, domain.ErrCondicionIVAEmpresa)

	comp = comprobanteLocal()
	comp.Cliente.IVACondition = ""
	comp.Cliente.VatCountry = ""
	_, err = ResolverTipoComprobante(comp)
	assert.ErrorIs(t, err, domain.ErrCondicionIVACliente)

	comp = comprobanteLocal()
	comp.Factura.Direction = entity.DirInInvoice
	_, err = ResolverTipoComprobante(comp)
	assert.ErrorIs(t, err, domain.ErrTipoComprobante)
}

// ── WSFE ──────────────────────────────────────────────────────────────────────

func TestEnsamblarWSFE_FacturaA(t *testing.T) {
	req, err := EnsamblarWSFE(comprobanteLocal())
	require.NoError(t, err)

	assert.Equal(t, 4, req.PtoVta)
	assert.Equal(t, 1, req.CbteTipo)
	assert.Equal(t, 1, req.Concepto)
	assert.Equal(t, int64(57), req.CbteDesde)
	assert.Equal(t, int64(57), req.CbteHasta)
	assert.Equal(t, "20250131", req.CbteFch)

	// Receptor con CUIT de 11 dígitos.
	assert.Equal(t, 80, req.DocTipo)
	assert.Equal(t, "20123456786", req.DocNro)

	assert.Equal(t, "121.00", req.ImpTotal)
	assert.Equal(t, "100.00", req.ImpNeto)
	assert.Equal(t, "21.00", req.ImpIVA)
	assert.Equal(t, "0.00", req.ImpTotConc)
	assert.Equal(t, "0.00", req.ImpOpEx)
	assert.Equal(t, "0.00", req.ImpTrib)

	assert.Equal(t, "PES", req.MonID)
	assert.Equal(t, "1.00", req.MonCotiz)

	// Concepto productos no lleva fechas de servicio.
	assert.Empty(t, req.FchServDesde)
	assert.Empty(t, req.FchVtoPago)

	require.Len(t, req.IVA, 1)
	assert.Equal(t, 5, req.IVA[0].ID) // 21% -> código 5
	assert.Equal(t, "100.00", req.IVA[0].BaseImp)
	assert.Equal(t, "21.00", req.IVA[0].Importe)
	assert.Empty(t, req.Tributos)
}

func TestEnsamblarWSFE_NotaDeCreditoMontosAbsolutos(t *testing.T) {
	comp := comprobanteLocal()
	comp.Factura.Direction = entity.DirOutCreditNote
	comp.Factura.VoucherTypeCode = "3"
	comp.Factura.UntaxedAmount = dec("-100.00")
	comp.Factura.TaxAmount = dec("-21.00")
	comp.Factura.TotalAmount = dec("-121.00")
	comp.Impuestos[0].Base = dec("-100.00")
	comp.Impuestos[0].Amount = dec("-21.00")

	req, err := EnsamblarWSFE(comp)
	require.NoError(t, err)

	assert.Equal(t, 3, req.CbteTipo)
	assert.Equal(t, "121.00", req.ImpTotal)
	assert.Equal(t, "100.00", req.ImpNeto)
	require.Len(t, req.IVA, 1)
	assert.Equal(t, "100.00", req.IVA[0].BaseImp)
}

func TestEnsamblarWSFE_AgregacionIVAYTributos(t *testing.T) {
	comp := comprobanteLocal()
	comp.Impuestos = []*entity.InvoiceTaxLine{
		{TaxGroup: "IVA", TaxName: "IVA 21%", Rate: dec("0.21"), Base: dec("100.00"), Amount: dec("21.00")},
		{TaxGroup: "IVA", TaxName: "IVA 21%", Rate: dec("0.21"), Base: dec("50.00"), Amount: dec("10.50")},
		{TaxGroup: "IVA", TaxName: "IVA 10.5%", Rate: dec("0.105"), Base: dec("200.00"), Amount: dec("21.00")},
		{TaxGroup: "Percepciones", TaxName: "Percepción IIBB CABA", Rate: dec("0.03"), Base: dec("100.00"), Amount: dec("3.00")},
	}

	req, err := EnsamblarWSFE(comp)
	require.NoError(t, err)

	// Las líneas de IVA se agregan por código de alícuota.
	require.Len(t, req.IVA, 2)
	assert.Equal(t, 5, req.IVA[0].ID)
	assert.Equal(t, "150.00", req.IVA[0].BaseImp)
	assert.Equal(t, "31.50", req.IVA[0].Importe)
	assert.Equal(t, 4, req.IVA[1].ID)
	assert.Equal(t, "200.00", req.IVA[1].BaseImp)

	// Tributo clasificado por nombre; Alic lleva la base.
	require.Len(t, req.Tributos, 1)
	assert.Equal(t, 3, req.Tributos[0].ID) // iibb
	assert.Equal(t, "Percepción IIBB CABA", req.Tributos[0].Desc)
	assert.Equal(t, "100.00", req.Tributos[0].BaseImp)
	assert.Equal(t, "100.00", req.Tributos[0].Alic)
	assert.Equal(t, "3.00", req.Tributos[0].Importe)
}

func TestEnsamblarWSFE_Servicios(t *testing.T) {
	comp := comprobanteLocal()
	comp.Factura.Concept = entity.ConceptoServicios

	// Sin período de servicio: error de configuración.
	_, err := EnsamblarWSFE(comp)
	assert.ErrorIs(t, err, domain.ErrFechasServicioFaltantes)

	desde := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	hasta := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	vto := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	comp.Factura.ServiceFrom = &desde
	comp.Factura.ServiceTo = &hasta
	comp.Factura.PaymentDue = &vto

	req, err := EnsamblarWSFE(comp)
	require.NoError(t, err)
	assert.Equal(t, 2, req.Concepto)
	assert.Equal(t, "20250101", req.FchServDesde)
	assert.Equal(t, "20250131", req.FchServHasta)
	assert.Equal(t, "20250210", req.FchVtoPago)
}

func TestEnsamblarWSFE_ServiciosSinVencimientoUsaFechaFactura(t *testing.T) {
	comp := comprobanteLocal()
	comp.Factura.Concept = entity.ConceptoProductosServicios
	desde := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	comp.Factura.ServiceFrom = &desde
	comp.Factura.ServiceTo = &desde

	req, err := EnsamblarWSFE(comp)
	require.NoError(t, err)
	assert.Equal(t, "20250131", req.FchVtoPago)
}

func TestEnsamblarWSFE_Moneda(t *testing.T) {
	// Dólares: cotización = 1/tasa a 2 decimales.
	comp := comprobanteLocal()
	comp.Moneda = &entity.Currency{ISOCode: "USD", AfipCode: "DOL"}
	comp.Factura.CurrencyRate = dec("0.001")

	req, err := EnsamblarWSFE(comp)
	require.NoError(t, err)
	assert.Equal(t, "DOL", req.MonID)
	assert.Equal(t, "1000.00", req.MonCotiz)

	// Moneda sin código AFIP: error de configuración.
	comp.Moneda.AfipCode = ""
	_, err = EnsamblarWSFE(comp)
	assert.ErrorIs(t, err, domain.ErrCodigoAFIPVacio)

	// Tasa en cero con moneda extranjera: error.
	comp.Moneda.AfipCode = "DOL"
	comp.Factura.CurrencyRate = decimal.Zero
	_, err = EnsamblarWSFE(comp)
	assert.Error(t, err)
}

func TestEnsamblarWSFE_SinIdentificacion(t *testing.T) {
	comp := comprobanteLocal()
	comp.Cliente.IVACondition = afip.IVAConsumidorFinal
	comp.Cliente.DocumentNumber = ""
	comp.Factura.VoucherTypeCode = "6"

	req, err := EnsamblarWSFE(comp)
	require.NoError(t, err)
	assert.Equal(t, 99, req.DocTipo)
	assert.Equal(t, "0", req.DocNro)
}

// ── WSFEX ─────────────────────────────────────────────────────────────────────

func TestEnsamblarWSFEX_FacturaE(t *testing.T) {
	req, err := EnsamblarWSFEX(comprobanteExportacion())
	require.NoError(t, err)

	assert.Equal(t, 19, req.CbteTipo)
	assert.Equal(t, 5, req.PuntoVenta)
	assert.Equal(t, int64(13), req.CbteNro)
	assert.Equal(t, "20250131", req.FechaCbte)
	assert.Equal(t, int64(2025013100000013), req.ID)
	assert.Equal(t, 1, req.TipoExpo)
	assert.Equal(t, "", req.PermisoExistente)
	assert.Equal(t, 226, req.DstCmp) // Uruguay

	assert.Equal(t, "Cliente del Exterior SA", req.Cliente)
	assert.Equal(t, "Cliente del Exterior SA - Av. Siempreviva 123 - Montevideo", req.DomicilioCliente)
	// Cliente del exterior: identificación en Id_impositivo, no en Cuit_pais.
	assert.Equal(t, "RUT211234560017", req.IDImpositivo)
	assert.Empty(t, req.CuitPaisCliente)

	assert.Equal(t, "DOL", req.MonedaID)
	assert.Equal(t, "1000.00", req.MonedaCtz)
	assert.Equal(t, "1000.00", req.ImpTotal)
	assert.Equal(t, "FOB", req.Incoterms)
	assert.NotEmpty(t, req.IncotermsDs)

	require.Len(t, req.Items, 1)
	assert.Equal(t, "Producto exportable", req.Items[0].Descripcion)
	assert.Equal(t, "10.00", req.Items[0].Cantidad)
	assert.Equal(t, 7, req.Items[0].UnidadMedida)
	assert.Equal(t, "100.00", req.Items[0].PrecioUnitario)
	assert.Equal(t, "1000.00", req.Items[0].TotalItem)
}

func TestEnsamblarWSFEX_IncotermsFaltante(t *testing.T) {
	comp := comprobanteExportacion()
	comp.Factura.Incoterms = ""
	_, err := EnsamblarWSFEX(comp)
	assert.ErrorIs(t, err, domain.ErrIncotermsFaltante)

	comp.Factura.Incoterms = "ZZZ"
	_, err = EnsamblarWSFEX(comp)
	assert.ErrorIs(t, err, domain.ErrIncotermsFaltante)
}

func TestEnsamblarWSFEX_PaisDesconocido(t *testing.T) {
	comp := comprobanteExportacion()
	comp.Cliente.VatCountry = "XX"
	_, err := EnsamblarWSFEX(comp)
	assert.ErrorIs(t, err, domain.ErrTipoComprobante)
}
