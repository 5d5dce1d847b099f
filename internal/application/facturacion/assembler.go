// Ensamblado del comprobante: convierte la proyección de la factura (empresa,
// punto de venta, cliente, moneda, líneas e impuestos) en la solicitud del
// web service elegido, aplicando las reglas de AFIP.

package facturacion

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-afip/internal/domain"
	"github.com/jhoicas/facturacion-afip/internal/domain/entity"
	"github.com/jhoicas/facturacion-afip/internal/infrastructure/afip/wsfe"
	"github.com/jhoicas/facturacion-afip/internal/infrastructure/afip/wsfex"
	"github.com/jhoicas/facturacion-afip/pkg/afip"
)

const fechaAFIP = "20060102" // YYYYMMDD

// Comprobante agrupa todo el estado que alimenta una solicitud de autorización.
type Comprobante struct {
	Empresa   *entity.Company
	Pos       *entity.PointOfSale
	Cliente   *entity.Party
	Factura   *entity.Invoice
	Moneda    *entity.Currency
	Lineas    []*entity.InvoiceLine
	Impuestos []*entity.InvoiceTaxLine
}

// ResolverTipoComprobante determina el código de tipo de comprobante a partir
// de la condición IVA de la empresa, la del cliente y la dirección de la
// factura. Falla antes de tocar la red si la configuración está incompleta.
func ResolverTipoComprobante(c *Comprobante) (string, error) {
	if c.Empresa.IVACondition == "" {
		return "", domain.ErrCondicionIVAEmpresa
	}
	if c.Cliente.IVACondition == "" && c.Cliente.VatCountry == "" {
		return "", domain.ErrCondicionIVACliente
	}
	clase, err := afip.ResolverClase(c.Empresa.IVACondition, c.Cliente.IVACondition, c.Cliente.VatCountry)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTipoComprobante, err)
	}
	codigo, ok := afip.CodigoComprobante(c.Factura.Direction, clase)
	if !ok {
		return "", fmt.Errorf("%w: dirección %q clase %q", domain.ErrTipoComprobante, c.Factura.Direction, clase)
	}
	return codigo, nil
}

// monedaAFIP resuelve (código AFIP, cotización a 2 decimales) de la factura.
// ARS cotiza 1; el resto cotiza 1/tasa de la factura.
func monedaAFIP(c *Comprobante) (string, string, error) {
	if c.Moneda.AfipCode == "" {
		return "", "", fmt.Errorf("%w: %s", domain.ErrCodigoAFIPVacio, c.Moneda.ISOCode)
	}
	if c.Moneda.AfipCode == "PES" {
		return "PES", "1.00", nil
	}
	rate := c.Factura.CurrencyRate
	if rate.IsZero() {
		return "", "", fmt.Errorf("%w: la factura en %s no tiene tasa de cambio", domain.ErrCodigoAFIPVacio, c.Moneda.ISOCode)
	}
	ctz := decimal.NewFromInt(1).DivRound(rate, 8)
	return c.Moneda.AfipCode, ctz.StringFixed(2), nil
}

// monto formatea un importe como valor absoluto con 2 decimales.
func monto(d decimal.Decimal) string {
	return d.Abs().StringFixed(2)
}

// EnsamblarWSFE arma la solicitud FECAESolicitar de un comprobante interno.
// Requiere que el tipo de comprobante y el número ya estén asignados.
func EnsamblarWSFE(c *Comprobante) (*wsfe.ComprobanteRequest, error) {
	tipo, err := strconv.Atoi(c.Factura.VoucherTypeCode)
	if err != nil {
		return nil, fmt.Errorf("%w: código %q", domain.ErrTipoComprobante, c.Factura.VoucherTypeCode)
	}
	concepto, err := strconv.Atoi(c.Factura.Concept)
	if err != nil || concepto < 1 || concepto > 4 {
		return nil, fmt.Errorf("%w: concepto %q", domain.ErrTipoComprobante, c.Factura.Concept)
	}

	docTipo, docNro := afip.TipoYNumeroDocumento(c.Cliente.DocumentNumber)

	monID, monCotiz, err := monedaAFIP(c)
	if err != nil {
		return nil, err
	}

	req := &wsfe.ComprobanteRequest{
		PtoVta:     c.Pos.Number,
		CbteTipo:   tipo,
		Concepto:   concepto,
		DocTipo:    docTipo,
		DocNro:     docNro,
		CbteDesde:  c.Factura.VoucherNumber,
		CbteHasta:  c.Factura.VoucherNumber,
		CbteFch:    c.Factura.InvoiceDate.Format(fechaAFIP),
		ImpTotal:   monto(c.Factura.TotalAmount),
		ImpTotConc: "0.00",
		ImpNeto:    monto(c.Factura.UntaxedAmount),
		ImpOpEx:    "0.00",
		ImpTrib:    "0.00",
		ImpIVA:     monto(c.Factura.TaxAmount),
		MonID:      monID,
		MonCotiz:   monCotiz,
	}

	// Conceptos con servicios llevan período y vencimiento de pago.
	if concepto != 1 {
		if concepto == 2 || concepto == 3 {
			if c.Factura.ServiceFrom == nil || c.Factura.ServiceTo == nil {
				return nil, domain.ErrFechasServicioFaltantes
			}
		}
		if c.Factura.ServiceFrom != nil {
			req.FchServDesde = c.Factura.ServiceFrom.Format(fechaAFIP)
		}
		if c.Factura.ServiceTo != nil {
			req.FchServHasta = c.Factura.ServiceTo.Format(fechaAFIP)
		}
		if c.Factura.PaymentDue != nil {
			req.FchVtoPago = c.Factura.PaymentDue.Format(fechaAFIP)
		} else {
			req.FchVtoPago = c.Factura.InvoiceDate.Format(fechaAFIP)
		}
	}

	req.IVA, req.Tributos = agregarImpuestos(c.Impuestos)
	return req, nil
}

// agregarImpuestos separa las líneas de impuesto en subtotales de IVA por
// código de alícuota y tributos clasificados por nombre.
func agregarImpuestos(lineas []*entity.InvoiceTaxLine) ([]wsfe.AlicuotaIVA, []wsfe.Tributo) {
	type acumulado struct {
		base    decimal.Decimal
		importe decimal.Decimal
	}
	porCodigo := map[int]*acumulado{}
	var orden []int

	var tributos []wsfe.Tributo
	for _, linea := range lineas {
		if linea.TaxGroup == "IVA" {
			codigo := afip.CodigoIVA(linea.Rate)
			acc, ok := porCodigo[codigo]
			if !ok {
				acc = &acumulado{}
				porCodigo[codigo] = acc
				orden = append(orden, codigo)
			}
			acc.base = acc.base.Add(linea.Base.Abs())
			acc.importe = acc.importe.Add(linea.Amount.Abs())
			continue
		}
		// En tributos no-IVA el campo Alic lleva la base imponible; así lo
		// espera el validador del servicio para los códigos genéricos.
		tributos = append(tributos, wsfe.Tributo{
			ID:      afip.CodigoTributo(linea.TaxName),
			Desc:    linea.TaxName,
			BaseImp: monto(linea.Base),
			Alic:    monto(linea.Base),
			Importe: monto(linea.Amount),
		})
	}

	var alicuotas []wsfe.AlicuotaIVA
	for _, codigo := range orden {
		acc := porCodigo[codigo]
		alicuotas = append(alicuotas, wsfe.AlicuotaIVA{
			ID:      codigo,
			BaseImp: acc.base.StringFixed(2),
			Importe: acc.importe.StringFixed(2),
		})
	}
	return alicuotas, tributos
}

// EnsamblarWSFEX arma la solicitud FEXAuthorize de un comprobante de exportación.
func EnsamblarWSFEX(c *Comprobante) (*wsfex.ComprobanteRequest, error) {
	tipo, err := strconv.Atoi(c.Factura.VoucherTypeCode)
	if err != nil {
		return nil, fmt.Errorf("%w: código %q", domain.ErrTipoComprobante, c.Factura.VoucherTypeCode)
	}
	if c.Factura.Incoterms == "" {
		return nil, domain.ErrIncotermsFaltante
	}
	if !afip.IncotermValido(c.Factura.Incoterms) {
		return nil, fmt.Errorf("%w: %q no es un INCOTERM conocido", domain.ErrIncotermsFaltante, c.Factura.Incoterms)
	}

	pais, ok := afip.PaisDestino(c.Cliente.VatCountry)
	if !ok {
		return nil, fmt.Errorf("%w: país destino %q sin código AFIP", domain.ErrTipoComprobante, c.Cliente.VatCountry)
	}

	monID, monCotiz, err := monedaAFIP(c)
	if err != nil {
		return nil, err
	}

	fecha := c.Factura.InvoiceDate.Format(fechaAFIP)
	// Identificador de requerimiento único por CUIT: fecha + número interno.
	id, err := strconv.ParseInt(fmt.Sprintf("%s%08d", fecha, c.Factura.VoucherNumber), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ensamblar id de requerimiento: %w", err)
	}

	req := &wsfex.ComprobanteRequest{
		ID:               id,
		FechaCbte:        fecha,
		CbteTipo:         tipo,
		PuntoVenta:       c.Pos.Number,
		CbteNro:          c.Factura.VoucherNumber,
		TipoExpo:         wsfex.TipoExpoBienes,
		PermisoExistente: "",
		DstCmp:           pais,
		Cliente:          c.Cliente.Name,
		DomicilioCliente: domicilioCliente(c.Cliente),
		MonedaID:         monID,
		MonedaCtz:        monCotiz,
		ObsComerciales:   c.Factura.Comment,
		ImpTotal:         monto(c.Factura.TotalAmount),
		Incoterms:        c.Factura.Incoterms,
		IncotermsDs:      afip.DescripcionIncoterm(c.Factura.Incoterms),
		IdiomaCbte:       1, // español
	}

	// Clientes del exterior se identifican por su id impositivo local; los
	// residentes, por CUIT.
	if c.Cliente.VatCountry != "" && c.Cliente.VatCountry != "AR" {
		req.IDImpositivo = c.Cliente.DocumentNumber
	} else {
		req.CuitPaisCliente = c.Cliente.DocumentNumber
	}

	for _, linea := range c.Lineas {
		req.Items = append(req.Items, wsfex.Item{
			Descripcion:    linea.Description,
			Cantidad:       linea.Quantity.StringFixed(2),
			UnidadMedida:   wsfex.UnidadMedidaUnidades,
			PrecioUnitario: linea.UnitPrice.Abs().StringFixed(2),
			Bonificacion:   "0.00",
			TotalItem:      monto(linea.Amount),
		})
	}
	return req, nil
}

// domicilioCliente concatena nombre y dirección para Domicilio_cliente.
func domicilioCliente(p *entity.Party) string {
	dom := p.Domicilio()
	if dom == "" {
		return p.Name
	}
	return p.Name + " - " + dom
}
