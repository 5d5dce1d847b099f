// Package wsfe implementa el cliente SOAP del WSFEv1 de AFIP (mercado interno):
// consulta del último comprobante autorizado, solicitud de CAE y cotización de
// moneda. El SOAP va sobre net/http; el endpoint se elige por entorno de la
// empresa emisora.
package wsfe

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-afip/internal/infrastructure/afip/wsaa"
)

// ── Constantes de entorno ─────────────────────────────────────────────────────

const (
	// Endpoints del servicio (el WSDL se publica en <url>?WSDL).
	urlHomologacion = "https://wswhomo.afip.gov.ar/wsfev1/service.asmx"
	urlProduccion   = "https://servicios1.afip.gov.ar/wsfev1/service.asmx"

	soapNS = "http://schemas.xmlsoap.org/soap/envelope/"
	feNS   = "http://ar.gov.afip.dif.FEV1/"
)

// ── Tipos de dominio del servicio ─────────────────────────────────────────────

// Auth credenciales instaladas en cada llamada (ticket WSAA + CUIT del emisor).
// Environment usa los mismos identificadores que WSAA y selecciona el endpoint
// de la llamada: el ticket y el servicio destino son siempre del mismo entorno.
type Auth struct {
	Token       string
	Sign        string
	CUIT        string // 11 dígitos
	Environment string // homologation | production
}

// AlicuotaIVA subtotal de IVA por código de alícuota (AlicIva).
type AlicuotaIVA struct {
	ID      int    // código AFIP de la alícuota (3, 4, 5, 6)
	BaseImp string // base imponible, 2 decimales
	Importe string // importe del impuesto, 2 decimales
}

// Tributo impuesto no-IVA (percepciones, IIBB, tasas).
type Tributo struct {
	ID      int
	Desc    string
	BaseImp string
	Alic    string
	Importe string
}

// ComprobanteRequest detalle del comprobante a autorizar (FECAEDetRequest).
// Todos los montos van formateados a 2 decimales en valor absoluto.
type ComprobanteRequest struct {
	PtoVta       int
	CbteTipo     int
	Concepto     int
	DocTipo      int
	DocNro       string
	CbteDesde    int64
	CbteHasta    int64
	CbteFch      string // YYYYMMDD
	ImpTotal     string
	ImpTotConc   string
	ImpNeto      string
	ImpOpEx      string
	ImpTrib      string
	ImpIVA       string
	FchServDesde string // YYYYMMDD; vacío para concepto 1
	FchServHasta string
	FchVtoPago   string
	MonID        string // "PES", "DOL", ...
	MonCotiz     string
	IVA          []AlicuotaIVA
	Tributos     []Tributo
}

// Evento observación o error devuelto por el servicio.
type Evento struct {
	Code int
	Msg  string
}

// Resultado respuesta de una solicitud de CAE.
type Resultado struct {
	Resultado     string // "A", "R", "O" o ""
	CAE           string
	CAEFchVto     string // YYYYMMDD
	Observaciones []Evento
	Errores       []Evento
	XMLRequest    string
	XMLResponse   string
}

// Service define el puerto del WSFEv1. Para tests se puede inyectar un mock.
type Service interface {
	// UltimoAutorizado devuelve el último número autorizado para (ptoVta, cbteTipo).
	UltimoAutorizado(ctx context.Context, auth Auth, ptoVta, cbteTipo int) (int64, error)
	// SolicitarCAE envía el comprobante y devuelve el resultado de AFIP.
	SolicitarCAE(ctx context.Context, auth Auth, req *ComprobanteRequest) (*Resultado, error)
	// Cotizacion devuelve la cotización AFIP de la moneda (ej. "DOL").
	Cotizacion(ctx context.Context, auth Auth, monID string) (decimal.Decimal, error)
}

// ── Implementación SOAP ───────────────────────────────────────────────────────

// Client implementa Service contra el WSFEv1. El endpoint se resuelve por
// llamada desde Auth.Environment: cada empresa opera contra su propio entorno.
type Client struct {
	httpClient *http.Client

	// EndpointOverride reemplaza la URL del servicio (solo tests).
	EndpointOverride string
}

// NewClient construye el cliente.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

func (c *Client) endpoint(environment string) string {
	if c.EndpointOverride != "" {
		return c.EndpointOverride
	}
	if environment == wsaa.EnvProduccion {
		return urlProduccion
	}
	return urlHomologacion
}

// ── Estructuras SOAP (request) ────────────────────────────────────────────────

type envelope struct {
	XMLName xml.Name `xml:"soap:Envelope"`
	XmlnsS  string   `xml:"xmlns:soap,attr"`
	XmlnsAr string   `xml:"xmlns:ar,attr"`
	Body    body     `xml:"soap:Body"`
}

type body struct {
	Content interface{}
}

func (b body) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "soap:Body"
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.Encode(b.Content); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

type authXML struct {
	Token string `xml:"ar:Token"`
	Sign  string `xml:"ar:Sign"`
	Cuit  string `xml:"ar:Cuit"`
}

type ultimoAutorizadoBody struct {
	XMLName  xml.Name `xml:"ar:FECompUltimoAutorizado"`
	Auth     authXML  `xml:"ar:Auth"`
	PtoVta   int      `xml:"ar:PtoVta"`
	CbteTipo int      `xml:"ar:CbteTipo"`
}

type caeSolicitarBody struct {
	XMLName xml.Name    `xml:"ar:FECAESolicitar"`
	Auth    authXML     `xml:"ar:Auth"`
	FeCAE   feCAEReqXML `xml:"ar:FeCAEReq"`
}

type feCAEReqXML struct {
	FeCabReq feCabReqXML `xml:"ar:FeCabReq"`
	FeDetReq feDetReqXML `xml:"ar:FeDetReq"`
}

type feCabReqXML struct {
	CantReg  int `xml:"ar:CantReg"`
	PtoVta   int `xml:"ar:PtoVta"`
	CbteTipo int `xml:"ar:CbteTipo"`
}

type feDetReqXML struct {
	Det feCAEDetXML `xml:"ar:FECAEDetRequest"`
}

type feCAEDetXML struct {
	Concepto     int           `xml:"ar:Concepto"`
	DocTipo      int           `xml:"ar:DocTipo"`
	DocNro       string        `xml:"ar:DocNro"`
	CbteDesde    int64         `xml:"ar:CbteDesde"`
	CbteHasta    int64         `xml:"ar:CbteHasta"`
	CbteFch      string        `xml:"ar:CbteFch"`
	ImpTotal     string        `xml:"ar:ImpTotal"`
	ImpTotConc   string        `xml:"ar:ImpTotConc"`
	ImpNeto      string        `xml:"ar:ImpNeto"`
	ImpOpEx      string        `xml:"ar:ImpOpEx"`
	ImpTrib      string        `xml:"ar:ImpTrib"`
	ImpIVA       string        `xml:"ar:ImpIVA"`
	FchServDesde string        `xml:"ar:FchServDesde,omitempty"`
	FchServHasta string        `xml:"ar:FchServHasta,omitempty"`
	FchVtoPago   string        `xml:"ar:FchVtoPago,omitempty"`
	MonID        string        `xml:"ar:MonId"`
	MonCotiz     string        `xml:"ar:MonCotiz"`
	IVA          []alicIvaXML  `xml:"ar:Iva>ar:AlicIva,omitempty"`
	Tributos     []tributoXML  `xml:"ar:Tributos>ar:Tributo,omitempty"`
}

type alicIvaXML struct {
	ID      int    `xml:"ar:Id"`
	BaseImp string `xml:"ar:BaseImp"`
	Importe string `xml:"ar:Importe"`
}

type tributoXML struct {
	ID      int    `xml:"ar:Id"`
	Desc    string `xml:"ar:Desc"`
	BaseImp string `xml:"ar:BaseImp"`
	Alic    string `xml:"ar:Alic"`
	Importe string `xml:"ar:Importe"`
}

type cotizacionBody struct {
	XMLName xml.Name `xml:"ar:FEParamGetCotizacion"`
	Auth    authXML  `xml:"ar:Auth"`
	MonID   string   `xml:"ar:MonId"`
}

// ── Estructuras SOAP (response) ───────────────────────────────────────────────

type responseEnvelope struct {
	Body struct {
		UltimoResp *struct {
			Result ultimoAutorizadoResult `xml:"FECompUltimoAutorizadoResult"`
		} `xml:"FECompUltimoAutorizadoResponse"`
		CAEResp *struct {
			Result caeSolicitarResult `xml:"FECAESolicitarResult"`
		} `xml:"FECAESolicitarResponse"`
		CotizResp *struct {
			Result cotizacionResult `xml:"FEParamGetCotizacionResult"`
		} `xml:"FEParamGetCotizacionResponse"`
		Fault *soapFault `xml:"Fault"`
	} `xml:"Body"`
}

type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}

type eventoXML struct {
	Code int    `xml:"Code"`
	Msg  string `xml:"Msg"`
}

type ultimoAutorizadoResult struct {
	PtoVta   int         `xml:"PtoVta"`
	CbteTipo int         `xml:"CbteTipo"`
	CbteNro  int64       `xml:"CbteNro"`
	Errors   []eventoXML `xml:"Errors>Err"`
}

type caeSolicitarResult struct {
	FeCabResp struct {
		Resultado string `xml:"Resultado"`
	} `xml:"FeCabResp"`
	FeDetResp struct {
		Det struct {
			Resultado     string      `xml:"Resultado"`
			CAE           string      `xml:"CAE"`
			CAEFchVto     string      `xml:"CAEFchVto"`
			Observaciones []eventoXML `xml:"Observaciones>Obs"`
		} `xml:"FECAEDetResponse"`
	} `xml:"FeDetResp"`
	Errors []eventoXML `xml:"Errors>Err"`
}

type cotizacionResult struct {
	ResultGet struct {
		MonID    string `xml:"MonId"`
		MonCotiz string `xml:"MonCotiz"`
	} `xml:"ResultGet"`
	Errors []eventoXML `xml:"Errors>Err"`
}

// ── Operaciones ───────────────────────────────────────────────────────────────

// UltimoAutorizado implementa la consulta FECompUltimoAutorizado.
func (c *Client) UltimoAutorizado(ctx context.Context, auth Auth, ptoVta, cbteTipo int) (int64, error) {
	reqBody := &ultimoAutorizadoBody{
		Auth:     authXML{Token: auth.Token, Sign: auth.Sign, Cuit: auth.CUIT},
		PtoVta:   ptoVta,
		CbteTipo: cbteTipo,
	}
	resp, _, _, err := c.call(ctx, auth.Environment, "FECompUltimoAutorizado", reqBody)
	if err != nil {
		return 0, err
	}
	if resp.Body.UltimoResp == nil {
		return 0, fmt.Errorf("wsfe: respuesta vacía de FECompUltimoAutorizado")
	}
	result := resp.Body.UltimoResp.Result
	if len(result.Errors) > 0 {
		return 0, fmt.Errorf("wsfe: FECompUltimoAutorizado [%d]: %s", result.Errors[0].Code, result.Errors[0].Msg)
	}
	return result.CbteNro, nil
}

// SolicitarCAE implementa FECAESolicitar para un único comprobante.
func (c *Client) SolicitarCAE(ctx context.Context, auth Auth, req *ComprobanteRequest) (*Resultado, error) {
	det := feCAEDetXML{
		Concepto:     req.Concepto,
		DocTipo:      req.DocTipo,
		DocNro:       req.DocNro,
		CbteDesde:    req.CbteDesde,
		CbteHasta:    req.CbteHasta,
		CbteFch:      req.CbteFch,
		ImpTotal:     req.ImpTotal,
		ImpTotConc:   req.ImpTotConc,
		ImpNeto:      req.ImpNeto,
		ImpOpEx:      req.ImpOpEx,
		ImpTrib:      req.ImpTrib,
		ImpIVA:       req.ImpIVA,
		FchServDesde: req.FchServDesde,
		FchServHasta: req.FchServHasta,
		FchVtoPago:   req.FchVtoPago,
		MonID:        req.MonID,
		MonCotiz:     req.MonCotiz,
	}
	for _, iva := range req.IVA {
		det.IVA = append(det.IVA, alicIvaXML{ID: iva.ID, BaseImp: iva.BaseImp, Importe: iva.Importe})
	}
	for _, t := range req.Tributos {
		det.Tributos = append(det.Tributos, tributoXML{ID: t.ID, Desc: t.Desc, BaseImp: t.BaseImp, Alic: t.Alic, Importe: t.Importe})
	}

	reqBody := &caeSolicitarBody{
		Auth: authXML{Token: auth.Token, Sign: auth.Sign, Cuit: auth.CUIT},
		FeCAE: feCAEReqXML{
			FeCabReq: feCabReqXML{CantReg: 1, PtoVta: req.PtoVta, CbteTipo: req.CbteTipo},
			FeDetReq: feDetReqXML{Det: det},
		},
	}
	resp, rawReq, rawResp, err := c.call(ctx, auth.Environment, "FECAESolicitar", reqBody)
	if err != nil {
		return nil, err
	}
	if resp.Body.CAEResp == nil {
		return nil, fmt.Errorf("wsfe: respuesta vacía de FECAESolicitar: %s", rawResp)
	}

	result := resp.Body.CAEResp.Result
	out := &Resultado{
		Resultado:   result.FeCabResp.Resultado,
		CAE:         result.FeDetResp.Det.CAE,
		CAEFchVto:   result.FeDetResp.Det.CAEFchVto,
		XMLRequest:  rawReq,
		XMLResponse: rawResp,
	}
	if out.Resultado == "" {
		out.Resultado = result.FeDetResp.Det.Resultado
	}
	for _, o := range result.FeDetResp.Det.Observaciones {
		out.Observaciones = append(out.Observaciones, Evento{Code: o.Code, Msg: o.Msg})
	}
	for _, e := range result.Errors {
		out.Errores = append(out.Errores, Evento{Code: e.Code, Msg: e.Msg})
	}
	return out, nil
}

// Cotizacion implementa FEParamGetCotizacion (ej. MonId "DOL").
func (c *Client) Cotizacion(ctx context.Context, auth Auth, monID string) (decimal.Decimal, error) {
	reqBody := &cotizacionBody{
		Auth:  authXML{Token: auth.Token, Sign: auth.Sign, Cuit: auth.CUIT},
		MonID: monID,
	}
	resp, _, _, err := c.call(ctx, auth.Environment, "FEParamGetCotizacion", reqBody)
	if err != nil {
		return decimal.Zero, err
	}
	if resp.Body.CotizResp == nil {
		return decimal.Zero, fmt.Errorf("wsfe: respuesta vacía de FEParamGetCotizacion")
	}
	result := resp.Body.CotizResp.Result
	if len(result.Errors) > 0 {
		return decimal.Zero, fmt.Errorf("wsfe: FEParamGetCotizacion [%d]: %s", result.Errors[0].Code, result.Errors[0].Msg)
	}
	cotiz, err := decimal.NewFromString(result.ResultGet.MonCotiz)
	if err != nil {
		return decimal.Zero, fmt.Errorf("wsfe: cotización inválida %q: %w", result.ResultGet.MonCotiz, err)
	}
	return cotiz, nil
}

// call serializa el body, ejecuta el POST SOAP y parsea la respuesta.
// Devuelve además el request y la respuesta crudos para el log de transacciones.
func (c *Client) call(ctx context.Context, environment, action string, content interface{}) (*responseEnvelope, string, string, error) {
	env := envelope{
		XmlnsS:  soapNS,
		XmlnsAr: feNS,
		Body:    body{Content: content},
	}
	payload, err := xml.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, "", "", fmt.Errorf("wsfe: serializar envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(environment), bytes.NewReader(payload))
	if err != nil {
		return nil, "", "", fmt.Errorf("wsfe: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", feNS+action)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, string(payload), "", fmt.Errorf("wsfe: timeout o cancelación: %w", ctx.Err())
		}
		return nil, string(payload), "", fmt.Errorf("wsfe: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return nil, string(payload), "", fmt.Errorf("wsfe: leer respuesta: %w", err)
	}

	var envResp responseEnvelope
	if err := xml.Unmarshal(rawBody, &envResp); err != nil {
		return nil, string(payload), string(rawBody), fmt.Errorf("wsfe: parsear respuesta SOAP: %w", err)
	}
	if envResp.Body.Fault != nil {
		return nil, string(payload), string(rawBody),
			fmt.Errorf("wsfe: SOAP Fault [%s]: %s", envResp.Body.Fault.FaultCode, envResp.Body.Fault.FaultString)
	}
	return &envResp, string(payload), string(rawBody), nil
}
