// Package facturacion orquesta el ciclo de autorización electrónica de
// comprobantes contra AFIP: ensamblado, guardia de numeración, despacho al
// web service del punto de venta y persistencia del CAE y la auditoría.
package facturacion

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-afip/internal/domain"
	"github.com/jhoicas/facturacion-afip/internal/domain/entity"
	"github.com/jhoicas/facturacion-afip/internal/domain/repository"
	"github.com/jhoicas/facturacion-afip/internal/infrastructure/afip/wsaa"
	"github.com/jhoicas/facturacion-afip/internal/infrastructure/afip/wsfe"
	"github.com/jhoicas/facturacion-afip/internal/infrastructure/afip/wsfex"
	"github.com/jhoicas/facturacion-afip/pkg/afip"
	"github.com/jhoicas/facturacion-afip/pkg/logger"
)

// UseCase implementa el motor de autorización AFIP.
type UseCase struct {
	log *logger.Logger

	companies  repository.CompanyRepository
	pos        repository.PointOfSaleRepository
	parties    repository.PartyRepository
	currencies repository.CurrencyRepository
	invoices   repository.InvoiceRepository
	audit      repository.AFIPTransactionRepository

	wsaaAuth wsaa.Authenticator
	wsfeSvc  wsfe.Service
	wsfexSvc wsfex.Service
}

// NewUseCase construye el motor con sus puertos.
func NewUseCase(
	log *logger.Logger,
	companies repository.CompanyRepository,
	pos repository.PointOfSaleRepository,
	parties repository.PartyRepository,
	currencies repository.CurrencyRepository,
	invoices repository.InvoiceRepository,
	audit repository.AFIPTransactionRepository,
	wsaaAuth wsaa.Authenticator,
	wsfeSvc wsfe.Service,
	wsfexSvc wsfex.Service,
) *UseCase {
	return &UseCase{
		log:        log,
		companies:  companies,
		pos:        pos,
		parties:    parties,
		currencies: currencies,
		invoices:   invoices,
		audit:      audit,
		wsaaAuth:   wsaaAuth,
		wsfeSvc:    wsfeSvc,
		wsfexSvc:   wsfexSvc,
	}
}

// Autorizar ejecuta el ciclo completo para una factura contabilizada.
//
// Los errores de configuración (condición IVA, secuencias, fechas de servicio,
// INCOTERMS, moneda sin código) se levantan antes de contactar AFIP y no dejan
// auditoría. A partir del despacho, cada intento deja exactamente una fila de
// auditoría, que sobrevive al rollback de la transacción externa.
//
// Si la factura ya tiene CAE la llamada es un no-op: no hay red ni auditoría.
func (uc *UseCase) Autorizar(ctx context.Context, invoiceID string) (*entity.Invoice, error) {
	factura, err := uc.invoices.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if factura.Autorizada() {
		uc.log.Debug().Str("invoice_id", invoiceID).Str("cae", factura.CAE).
			Msg("factura ya autorizada, sin reenvío")
		return factura, nil
	}

	comp, err := uc.cargarComprobante(factura)
	if err != nil {
		return nil, err
	}

	if !comp.Pos.Electronico() {
		return nil, fmt.Errorf("%w: el punto de venta %d no es electrónico",
			domain.ErrServicioNoSoportado, comp.Pos.Number)
	}
	if comp.Pos.Service != entity.ServicioWSFE && comp.Pos.Service != entity.ServicioWSFEX {
		return nil, fmt.Errorf("%w: %q", domain.ErrServicioNoSoportado, comp.Pos.Service)
	}
	if !comp.Empresa.Electronica() {
		return nil, fmt.Errorf("%w: empresa %s sin entorno AFIP",
			domain.ErrModoAFIPIncorrecto, comp.Empresa.CUIT)
	}

	// Tipo de comprobante y numeración, si todavía no fueron asignados.
	if factura.VoucherTypeCode == "" {
		codigo, err := ResolverTipoComprobante(comp)
		if err != nil {
			return nil, err
		}
		factura.VoucherTypeCode = codigo
	}
	if _, err := uc.pos.GetSequence(comp.Pos.ID, factura.VoucherTypeCode); err != nil {
		return nil, err
	}
	if factura.VoucherNumber == 0 {
		nro, err := uc.pos.AllocateNext(ctx, comp.Pos.ID, factura.VoucherTypeCode)
		if err != nil {
			return nil, err
		}
		factura.VoucherNumber = nro
		factura.NumberPretty = entity.FormatNumberPretty(comp.Pos.Number, nro)
		// El contador ya avanzó: el número se persiste antes de cualquier paso
		// que pueda fallar (WSAA, ensamblado, guardia), así el reintento
		// reutiliza el mismo número en vez de consumir otro.
		if err := uc.invoices.Update(factura); err != nil {
			return nil, fmt.Errorf("persistir número asignado: %w", err)
		}
	}

	ticket, err := uc.wsaaAuth.Authenticate(ctx, comp.Pos.Service, wsaa.Credentials{
		CUIT:           comp.Empresa.CUIT,
		CertificatePEM: comp.Empresa.CertificatePEM,
		PrivateKeyPEM:  comp.Empresa.PrivateKeyPEM,
		Environment:    comp.Empresa.Environment,
	}, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWSAA, err)
	}

	switch comp.Pos.Service {
	case entity.ServicioWSFE:
		return uc.autorizarWSFE(ctx, comp, ticket)
	default:
		return uc.autorizarWSFEX(ctx, comp, ticket)
	}
}

// cargarComprobante junta la proyección completa de la factura.
func (uc *UseCase) cargarComprobante(factura *entity.Invoice) (*Comprobante, error) {
	empresa, err := uc.companies.GetByID(factura.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("cargar empresa: %w", err)
	}
	puntoVenta, err := uc.pos.GetByID(factura.PosID)
	if err != nil {
		return nil, fmt.Errorf("cargar punto de venta: %w", err)
	}
	cliente, err := uc.parties.GetByID(factura.PartyID)
	if err != nil {
		return nil, fmt.Errorf("cargar cliente: %w", err)
	}
	moneda, err := uc.currencies.GetByISO(factura.CurrencyISO)
	if err != nil {
		return nil, fmt.Errorf("cargar moneda %s: %w", factura.CurrencyISO, err)
	}
	lineas, err := uc.invoices.GetLines(factura.ID)
	if err != nil {
		return nil, fmt.Errorf("cargar líneas: %w", err)
	}
	impuestos, err := uc.invoices.GetTaxLines(factura.ID)
	if err != nil {
		return nil, fmt.Errorf("cargar impuestos: %w", err)
	}
	return &Comprobante{
		Empresa:   empresa,
		Pos:       puntoVenta,
		Cliente:   cliente,
		Factura:   factura,
		Moneda:    moneda,
		Lineas:    lineas,
		Impuestos: impuestos,
	}, nil
}

// guardiaNumeracion verifica que el número local sea el próximo que AFIP espera.
// Un desfasaje no muta la factura: el usuario corrige y reintenta.
func guardiaNumeracion(local, ultimoRemoto int64) error {
	esperado := ultimoRemoto + 1
	if local != esperado {
		return &domain.InvalidInvoiceNumberError{Actual: local, Esperado: esperado}
	}
	return nil
}

func (uc *UseCase) autorizarWSFE(ctx context.Context, comp *Comprobante, ticket *wsaa.Ticket) (*entity.Invoice, error) {
	factura := comp.Factura
	auth := wsfe.Auth{
		Token: ticket.Token, Sign: ticket.Sign,
		CUIT: comp.Empresa.CUIT, Environment: comp.Empresa.Environment,
	}

	// El ensamblado valida la configuración antes de cualquier efecto.
	req, err := EnsamblarWSFE(comp)
	if err != nil {
		return nil, err
	}

	tipo, _ := strconv.Atoi(factura.VoucherTypeCode)
	ultimo, err := uc.wsfeSvc.UltimoAutorizado(ctx, auth, comp.Pos.Number, tipo)
	if err != nil {
		return nil, fmt.Errorf("consultar último autorizado: %w", err)
	}
	if err := guardiaNumeracion(factura.VoucherNumber, ultimo); err != nil {
		return nil, err
	}

	uc.marcarEnviada(factura)

	res, err := uc.wsfeSvc.SolicitarCAE(ctx, auth, req)
	if err != nil {
		uc.registrarFallo(factura, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrSinCAE, err)
	}

	uc.registrarAuditoria(factura, res.Resultado, mensajeWSFE(res), res.XMLRequest, res.XMLResponse)
	return uc.persistirResultado(comp, res.Resultado, res.CAE, res.CAEFchVto)
}

func (uc *UseCase) autorizarWSFEX(ctx context.Context, comp *Comprobante, ticket *wsaa.Ticket) (*entity.Invoice, error) {
	factura := comp.Factura
	auth := wsfex.Auth{
		Token: ticket.Token, Sign: ticket.Sign,
		CUIT: comp.Empresa.CUIT, Environment: comp.Empresa.Environment,
	}

	req, err := EnsamblarWSFEX(comp)
	if err != nil {
		return nil, err
	}

	tipo, _ := strconv.Atoi(factura.VoucherTypeCode)
	ultimo, err := uc.wsfexSvc.UltimoAutorizado(ctx, auth, comp.Pos.Number, tipo)
	if err != nil {
		return nil, fmt.Errorf("consultar último autorizado: %w", err)
	}
	if err := guardiaNumeracion(factura.VoucherNumber, ultimo); err != nil {
		return nil, err
	}

	uc.marcarEnviada(factura)

	res, err := uc.wsfexSvc.Autorizar(ctx, auth, req)
	if err != nil {
		uc.registrarFallo(factura, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrSinCAE, err)
	}

	uc.registrarAuditoria(factura, res.Resultado, mensajeWSFEX(res), res.XMLRequest, res.XMLResponse)
	return uc.persistirResultado(comp, res.Resultado, res.CAE, res.CAEFchVto)
}

// marcarEnviada transiciona la factura a SUBMITTED antes del despacho.
func (uc *UseCase) marcarEnviada(factura *entity.Invoice) {
	factura.AFIPStatus = entity.AFIPStatusSubmitted
	if err := uc.invoices.Update(factura); err != nil {
		uc.log.Warn().Err(err).Str("invoice_id", factura.ID).
			Msg("no se pudo persistir el estado SUBMITTED")
	}
}

// registrarFallo deja la auditoría de un error de transporte y marca FAILED.
func (uc *UseCase) registrarFallo(factura *entity.Invoice, cause error) {
	uc.registrarAuditoria(factura, "", cause.Error(), "", "")
	factura.AFIPStatus = entity.AFIPStatusFailed
	if err := uc.invoices.Update(factura); err != nil {
		uc.log.Error().Err(err).Str("invoice_id", factura.ID).
			Msg("no se pudo persistir el estado FAILED")
	}
}

// registrarAuditoria persiste la fila de auditoría del intento. El repositorio
// comitea en su propio alcance, por eso un fallo aquí solo se loguea.
func (uc *UseCase) registrarAuditoria(factura *entity.Invoice, resultado, mensaje, xmlReq, xmlResp string) {
	err := uc.audit.Create(&entity.AFIPTransaction{
		InvoiceID:   factura.ID,
		Result:      resultado,
		Message:     mensaje,
		XMLRequest:  xmlReq,
		XMLResponse: xmlResp,
	})
	if err != nil {
		uc.log.Error().Err(err).Str("invoice_id", factura.ID).
			Msg("no se pudo persistir la transacción AFIP")
	}
}

// persistirResultado aplica la respuesta de AFIP a la factura.
func (uc *UseCase) persistirResultado(comp *Comprobante, resultado, cae, caeFchVto string) (*entity.Invoice, error) {
	factura := comp.Factura

	if cae == "" || resultado == entity.ResultadoRechazado {
		factura.AFIPStatus = entity.AFIPStatusRejected
		if err := uc.invoices.Update(factura); err != nil {
			uc.log.Error().Err(err).Str("invoice_id", factura.ID).
				Msg("no se pudo persistir el estado REJECTED")
		}
		uc.log.Warn().Str("invoice_id", factura.ID).Str("resultado", resultado).
			Msg("AFIP rechazó el comprobante")
		return nil, domain.ErrSinCAE
	}

	vencimiento, err := time.Parse(fechaAFIP, caeFchVto)
	if err != nil {
		uc.registrarFallo(factura, fmt.Errorf("vencimiento de CAE inválido %q: %w", caeFchVto, err))
		return nil, fmt.Errorf("%w: vencimiento de CAE inválido %q", domain.ErrSinCAE, caeFchVto)
	}
	barras, err := afip.CodigoBarras(comp.Empresa.CUIT, factura.VoucherTypeCode, comp.Pos.Number, cae, caeFchVto)
	if err != nil {
		uc.registrarFallo(factura, fmt.Errorf("código de barras: %w", err))
		return nil, fmt.Errorf("%w: código de barras: %v", domain.ErrSinCAE, err)
	}

	factura.CAE = cae
	factura.CAEDueDate = &vencimiento
	factura.Barcode = barras
	switch resultado {
	case entity.ResultadoAprobado:
		factura.AFIPStatus = entity.AFIPStatusAuthorized
	case entity.ResultadoObservado:
		factura.AFIPStatus = entity.AFIPStatusObserved
	default:
		// CAE presente con un resultado que no es A ni O: el CAE se conserva
		// pero el comprobante queda observado para revisión manual.
		uc.log.Warn().Str("invoice_id", factura.ID).Str("resultado", resultado).
			Msg("resultado AFIP desconocido con CAE presente")
		factura.AFIPStatus = entity.AFIPStatusObserved
	}
	if err := uc.invoices.Update(factura); err != nil {
		return nil, fmt.Errorf("persistir CAE: %w", err)
	}

	uc.log.Info().Str("invoice_id", factura.ID).Str("cae", cae).
		Str("numero", factura.NumberPretty).Str("estado", factura.AFIPStatus).
		Msg("comprobante autorizado por AFIP")
	return factura, nil
}

func mensajeWSFE(res *wsfe.Resultado) string {
	var b strings.Builder
	for _, o := range res.Observaciones {
		fmt.Fprintf(&b, "obs [%d] %s; ", o.Code, o.Msg)
	}
	for _, e := range res.Errores {
		fmt.Fprintf(&b, "err [%d] %s; ", e.Code, e.Msg)
	}
	return strings.TrimSuffix(b.String(), "; ")
}

func mensajeWSFEX(res *wsfex.Resultado) string {
	var b strings.Builder
	if res.Motivos != "" {
		fmt.Fprintf(&b, "obs %s; ", res.Motivos)
	}
	for _, e := range res.Errores {
		fmt.Fprintf(&b, "err [%d] %s; ", e.Code, e.Msg)
	}
	return strings.TrimSuffix(b.String(), "; ")
}

// ActualizarCotizacionDolar consulta la cotización oficial del dólar en WSFEv1
// y actualiza la tasa de USD contra ARS (la inversa de la cotización).
func (uc *UseCase) ActualizarCotizacionDolar(ctx context.Context, companyID string) (decimal.Decimal, error) {
	empresa, err := uc.companies.GetByID(companyID)
	if err != nil {
		return decimal.Zero, err
	}
	if !empresa.Electronica() {
		return decimal.Zero, fmt.Errorf("%w: empresa %s sin entorno AFIP",
			domain.ErrModoAFIPIncorrecto, empresa.CUIT)
	}

	ticket, err := uc.wsaaAuth.Authenticate(ctx, entity.ServicioWSFE, wsaa.Credentials{
		CUIT:           empresa.CUIT,
		CertificatePEM: empresa.CertificatePEM,
		PrivateKeyPEM:  empresa.PrivateKeyPEM,
		Environment:    empresa.Environment,
	}, false)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrWSAA, err)
	}

	auth := wsfe.Auth{
		Token: ticket.Token, Sign: ticket.Sign,
		CUIT: empresa.CUIT, Environment: empresa.Environment,
	}
	cotiz, err := uc.wsfeSvc.Cotizacion(ctx, auth, "DOL")
	if err != nil {
		return decimal.Zero, err
	}
	if cotiz.IsZero() {
		return decimal.Zero, fmt.Errorf("cotización DOL en cero")
	}

	rate := decimal.NewFromInt(1).DivRound(cotiz, 8)
	if err := uc.currencies.UpdateRate("USD", rate); err != nil {
		return decimal.Zero, fmt.Errorf("actualizar tasa USD: %w", err)
	}
	uc.log.Info().Str("cotizacion", cotiz.String()).Msg("cotización DOL actualizada desde WSFEv1")
	return cotiz, nil
}
