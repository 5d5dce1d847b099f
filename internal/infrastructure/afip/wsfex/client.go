// Package wsfex implementa el cliente SOAP del WSFEXv1 de AFIP (comprobantes
// de exportación): último comprobante autorizado y autorización de facturas E.
package wsfex

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/facturacion-afip/internal/infrastructure/afip/wsaa"
)

// ── Constantes de entorno ─────────────────────────────────────────────────────

const (
	urlHomologacion = "https://wswhomo.afip.gov.ar/wsfexv1/service.asmx"
	urlProduccion   = "https://servicios1.afip.gov.ar/wsfexv1/service.asmx"

	soapNS = "http://schemas.xmlsoap.org/soap/envelope/"
	fexNS  = "http://ar.gov.afip.dif.fexv1/"

	// Tipo de exportación: bienes. El resto de los tipos (servicios, otros)
	// se agrega cuando haya un caso de uso que los necesite.
	TipoExpoBienes = 1

	// Unidad de medida por defecto para los ítems ("unidades").
	UnidadMedidaUnidades = 7
)

// ── Tipos de dominio del servicio ─────────────────────────────────────────────

// Auth credenciales del ticket WSAA para el servicio wsfex. Environment usa
// los identificadores de WSAA y selecciona el endpoint de la llamada.
type Auth struct {
	Token       string
	Sign        string
	CUIT        string
	Environment string // homologation | production
}

// Item renglón del comprobante de exportación.
type Item struct {
	Descripcion    string
	Cantidad       string
	UnidadMedida   int
	PrecioUnitario string
	Bonificacion   string
	TotalItem      string
}

// ComprobanteRequest comprobante de exportación a autorizar (ClsFEXRequest).
type ComprobanteRequest struct {
	ID               int64  // identificador de requerimiento, único por CUIT
	FechaCbte        string // YYYYMMDD
	CbteTipo         int
	PuntoVenta       int
	CbteNro          int64
	TipoExpo         int
	PermisoExistente string // "S", "N" o "" cuando no aplica
	DstCmp           int    // código de país destino
	Cliente          string
	CuitPaisCliente  string
	DomicilioCliente string
	IDImpositivo     string
	MonedaID         string
	MonedaCtz        string
	ObsComerciales   string
	ImpTotal         string
	Obs              string
	FormaPago        string
	Incoterms        string
	IncotermsDs      string
	IdiomaCbte       int
	Items            []Item
}

// Evento observación o error del servicio.
type Evento struct {
	Code int
	Msg  string
}

// Resultado respuesta de una autorización.
type Resultado struct {
	Resultado   string // "A" o "R"
	CAE         string
	CAEFchVto   string // YYYYMMDD
	Motivos     string
	Errores     []Evento
	XMLRequest  string
	XMLResponse string
}

// Service define el puerto del WSFEXv1.
type Service interface {
	// UltimoAutorizado devuelve el último número autorizado para (ptoVta, cbteTipo).
	UltimoAutorizado(ctx context.Context, auth Auth, ptoVta, cbteTipo int) (int64, error)
	// Autorizar envía el comprobante de exportación y devuelve el resultado.
	Autorizar(ctx context.Context, auth Auth, req *ComprobanteRequest) (*Resultado, error)
}

// ── Implementación SOAP ───────────────────────────────────────────────────────

// Client implementa Service contra el WSFEXv1. El endpoint se resuelve por
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
	XMLName  xml.Name `xml:"soap:Envelope"`
	XmlnsS   string   `xml:"xmlns:soap,attr"`
	XmlnsFex string   `xml:"xmlns:fex,attr"`
	Body     soapBody `xml:"soap:Body"`
}

type soapBody struct {
	Content interface{}
}

func (b soapBody) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
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
	Token string `xml:"fex:Token"`
	Sign  string `xml:"fex:Sign"`
	Cuit  string `xml:"fex:Cuit"`
}

type lastCMPBody struct {
	XMLName xml.Name    `xml:"fex:FEXGetLast_CMP"`
	Auth    lastCMPAuth `xml:"fex:Auth"`
}

// lastCMPAuth es el ClsFEX_AuthRequest: a diferencia del resto de las
// operaciones, lleva punto de venta y tipo de comprobante adentro del Auth.
type lastCMPAuth struct {
	Token    string `xml:"fex:Token"`
	Sign     string `xml:"fex:Sign"`
	Cuit     string `xml:"fex:Cuit"`
	PtoVenta int    `xml:"fex:Pto_venta"`
	CbteTipo int    `xml:"fex:Cbte_Tipo"`
}

type authorizeBody struct {
	XMLName xml.Name `xml:"fex:FEXAuthorize"`
	Auth    authXML  `xml:"fex:Auth"`
	Cmp     cmpXML   `xml:"fex:Cmp"`
}

type cmpXML struct {
	ID               int64     `xml:"fex:Id"`
	FechaCbte        string    `xml:"fex:Fecha_cbte"`
	CbteTipo         int       `xml:"fex:Cbte_Tipo"`
	PuntoVenta       int       `xml:"fex:Punto_vta"`
	CbteNro          int64     `xml:"fex:Cbte_nro"`
	TipoExpo         int       `xml:"fex:Tipo_expo"`
	PermisoExistente string    `xml:"fex:Permiso_existente"`
	DstCmp           int       `xml:"fex:Dst_cmp"`
	Cliente          string    `xml:"fex:Cliente"`
	CuitPaisCliente  string    `xml:"fex:Cuit_pais_cliente"`
	DomicilioCliente string    `xml:"fex:Domicilio_cliente"`
	IDImpositivo     string    `xml:"fex:Id_impositivo"`
	MonedaID         string    `xml:"fex:Moneda_Id"`
	MonedaCtz        string    `xml:"fex:Moneda_ctz"`
	ObsComerciales   string    `xml:"fex:Obs_comerciales,omitempty"`
	ImpTotal         string    `xml:"fex:Imp_total"`
	Obs              string    `xml:"fex:Obs,omitempty"`
	FormaPago        string    `xml:"fex:Forma_pago,omitempty"`
	Incoterms        string    `xml:"fex:Incoterms"`
	IncotermsDs      string    `xml:"fex:Incoterms_Ds,omitempty"`
	IdiomaCbte       int       `xml:"fex:Idioma_cbte"`
	Items            []itemXML `xml:"fex:Items>fex:Item"`
}

type itemXML struct {
	ProDs           string `xml:"fex:Pro_ds"`
	ProQty          string `xml:"fex:Pro_qty"`
	ProUmed         int    `xml:"fex:Pro_umed"`
	ProPrecioUni    string `xml:"fex:Pro_precio_uni"`
	ProBonificacion string `xml:"fex:Pro_bonificacion"`
	ProTotalItem    string `xml:"fex:Pro_total_item"`
}

// ── Estructuras SOAP (response) ───────────────────────────────────────────────

type responseEnvelope struct {
	Body struct {
		LastCMPResp *struct {
			Result lastCMPResult `xml:"FEXGetLast_CMPResult"`
		} `xml:"FEXGetLast_CMPResponse"`
		AuthorizeResp *struct {
			Result authorizeResult `xml:"FEXAuthorizeResult"`
		} `xml:"FEXAuthorizeResponse"`
		Fault *soapFault `xml:"Fault"`
	} `xml:"Body"`
}

type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}

type fexErrXML struct {
	ErrCode int    `xml:"ErrCode"`
	ErrMsg  string `xml:"ErrMsg"`
}

type lastCMPResult struct {
	LastCMP struct {
		CbteNro int64 `xml:"Cbte_nro"`
	} `xml:"FEXResult_LastCMP"`
	Err *fexErrXML `xml:"FEXErr"`
}

type authorizeResult struct {
	ResultAuth struct {
		ID         int64  `xml:"Id"`
		CbteNro    int64  `xml:"Cbte_nro"`
		CAE        string `xml:"Cae"`
		FchVencCAE string `xml:"Fch_venc_Cae"`
		FchCbte    string `xml:"Fch_cbte"`
		Resultado  string `xml:"Resultado"`
		MotivosObs string `xml:"Motivos_Obs"`
	} `xml:"FEXResultAuth"`
	Err *fexErrXML `xml:"FEXErr"`
}

// ── Operaciones ───────────────────────────────────────────────────────────────

// UltimoAutorizado implementa FEXGetLast_CMP.
func (c *Client) UltimoAutorizado(ctx context.Context, auth Auth, ptoVta, cbteTipo int) (int64, error) {
	reqBody := &lastCMPBody{
		Auth: lastCMPAuth{
			Token:    auth.Token,
			Sign:     auth.Sign,
			Cuit:     auth.CUIT,
			PtoVenta: ptoVta,
			CbteTipo: cbteTipo,
		},
	}
	resp, _, _, err := c.call(ctx, auth.Environment, "FEXGetLast_CMP", reqBody)
	if err != nil {
		return 0, err
	}
	if resp.Body.LastCMPResp == nil {
		return 0, fmt.Errorf("wsfex: respuesta vacía de FEXGetLast_CMP")
	}
	result := resp.Body.LastCMPResp.Result
	// ErrCode 0 es "OK" en el protocolo del WSFEX.
	if result.Err != nil && result.Err.ErrCode != 0 {
		return 0, fmt.Errorf("wsfex: FEXGetLast_CMP [%d]: %s", result.Err.ErrCode, result.Err.ErrMsg)
	}
	return result.LastCMP.CbteNro, nil
}

// Autorizar implementa FEXAuthorize para un comprobante de exportación.
func (c *Client) Autorizar(ctx context.Context, auth Auth, req *ComprobanteRequest) (*Resultado, error) {
	cmp := cmpXML{
		ID:               req.ID,
		FechaCbte:        req.FechaCbte,
		CbteTipo:         req.CbteTipo,
		PuntoVenta:       req.PuntoVenta,
		CbteNro:          req.CbteNro,
		TipoExpo:         req.TipoExpo,
		PermisoExistente: req.PermisoExistente,
		DstCmp:           req.DstCmp,
		Cliente:          req.Cliente,
		CuitPaisCliente:  req.CuitPaisCliente,
		DomicilioCliente: req.DomicilioCliente,
		IDImpositivo:     req.IDImpositivo,
		MonedaID:         req.MonedaID,
		MonedaCtz:        req.MonedaCtz,
		ObsComerciales:   req.ObsComerciales,
		ImpTotal:         req.ImpTotal,
		Obs:              req.Obs,
		FormaPago:        req.FormaPago,
		Incoterms:        req.Incoterms,
		IncotermsDs:      req.IncotermsDs,
		IdiomaCbte:       req.IdiomaCbte,
	}
	for _, it := range req.Items {
		cmp.Items = append(cmp.Items, itemXML{
			ProDs:           it.Descripcion,
			ProQty:          it.Cantidad,
			ProUmed:         it.UnidadMedida,
			ProPrecioUni:    it.PrecioUnitario,
			ProBonificacion: it.Bonificacion,
			ProTotalItem:    it.TotalItem,
		})
	}

	reqBody := &authorizeBody{
		Auth: authXML{Token: auth.Token, Sign: auth.Sign, Cuit: auth.CUIT},
		Cmp:  cmp,
	}
	resp, rawReq, rawResp, err := c.call(ctx, auth.Environment, "FEXAuthorize", reqBody)
	if err != nil {
		return nil, err
	}
	if resp.Body.AuthorizeResp == nil {
		return nil, fmt.Errorf("wsfex: respuesta vacía de FEXAuthorize: %s", rawResp)
	}

	result := resp.Body.AuthorizeResp.Result
	out := &Resultado{
		Resultado:   result.ResultAuth.Resultado,
		CAE:         result.ResultAuth.CAE,
		CAEFchVto:   result.ResultAuth.FchVencCAE,
		Motivos:     result.ResultAuth.MotivosObs,
		XMLRequest:  rawReq,
		XMLResponse: rawResp,
	}
	if result.Err != nil && result.Err.ErrCode != 0 {
		out.Errores = append(out.Errores, Evento{Code: result.Err.ErrCode, Msg: result.Err.ErrMsg})
	}
	return out, nil
}

// call serializa el body, ejecuta el POST SOAP y parsea la respuesta.
func (c *Client) call(ctx context.Context, environment, action string, content interface{}) (*responseEnvelope, string, string, error) {
	env := envelope{
		XmlnsS:   soapNS,
		XmlnsFex: fexNS,
		Body:     soapBody{Content: content},
	}
	payload, err := xml.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, "", "", fmt.Errorf("wsfex: serializar envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(environment), bytes.NewReader(payload))
	if err != nil {
		return nil, "", "", fmt.Errorf("wsfex: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", fexNS+action)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, string(payload), "", fmt.Errorf("wsfex: timeout o cancelación: %w", ctx.Err())
		}
		return nil, string(payload), "", fmt.Errorf("wsfex: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return nil, string(payload), "", fmt.Errorf("wsfex: leer respuesta: %w", err)
	}

	var envResp responseEnvelope
	if err := xml.Unmarshal(rawBody, &envResp); err != nil {
		return nil, string(payload), string(rawBody), fmt.Errorf("wsfex: parsear respuesta SOAP: %w", err)
	}
	if envResp.Body.Fault != nil {
		return nil, string(payload), string(rawBody),
			fmt.Errorf("wsfex: SOAP Fault [%s]: %s", envResp.Body.Fault.FaultCode, envResp.Body.Fault.FaultString)
	}
	return &envResp, string(payload), string(rawBody), nil
}
