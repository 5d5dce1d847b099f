// Package wsaa implementa la autenticación contra el WSAA de AFIP: construye el
// TRA, lo firma como CMS, lo envía a loginCms y cachea el ticket de acceso
// (token + sign, vigencia ≈12 h) por (servicio, CUIT).
package wsaa

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ── Constantes de entorno ─────────────────────────────────────────────────────

const (
	// EnvHomologacion identificador del ambiente de pruebas AFIP.
	EnvHomologacion = "homologation"
	// EnvProduccion identificador del ambiente de producción AFIP.
	EnvProduccion = "production"

	urlHomologacion = "https://wsaahomo.afip.gov.ar/ws/services/LoginCms?wsdl"
	urlProduccion   = "https://wsaa.afip.gov.ar/ws/services/LoginCms?wsdl"

	soapNS = "http://schemas.xmlsoap.org/soap/envelope/"
	wsaaNS = "https://wsaa.afip.gov.ar/ws/services/LoginCms"
)

// ── Tipos ─────────────────────────────────────────────────────────────────────

// Ticket es el ticket de acceso emitido por WSAA.
type Ticket struct {
	Token       string
	Sign        string
	GeneratedAt time.Time
	ExpiresAt   time.Time
	SourceXML   string // loginTicketResponse completo (artefacto de caché)
}

// Vigente indica si el ticket sigue siendo utilizable (con margen de seguridad).
func (t *Ticket) Vigente(now time.Time) bool {
	return t != nil && t.Token != "" && now.Before(t.ExpiresAt.Add(-expiryMargin))
}

// Credentials credenciales WSAA de una empresa.
type Credentials struct {
	CUIT           string // 11 dígitos
	CertificatePEM string
	PrivateKeyPEM  string
	Environment    string // homologation | production
}

// Authenticator define el puerto de autenticación WSAA.
// Para tests se puede inyectar un mock.
type Authenticator interface {
	// Authenticate devuelve un ticket vigente para (service, credenciales),
	// reutilizando la caché salvo que force sea true.
	Authenticate(ctx context.Context, service string, creds Credentials, force bool) (*Ticket, error)
}

// ── Implementación ────────────────────────────────────────────────────────────

// Client implementa Authenticator contra WSAA usando net/http de la stdlib.
type Client struct {
	httpClient *http.Client
	cache      *ticketCache
	mu         sync.Mutex // serializa la reautenticación (double-checked con la caché)

	// EndpointOverride reemplaza la URL de WSAA (solo tests).
	EndpointOverride string
}

// NewClient construye el autenticador con el directorio de caché de tickets y
// un timeout de red (WSAA puede tardar varios segundos).
func NewClient(cacheDir string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cache:      newTicketCache(cacheDir),
	}
}

// endpoint devuelve la URL de WSAA para el entorno.
func (c *Client) endpoint(environment string) (string, error) {
	if c.EndpointOverride != "" {
		return c.EndpointOverride, nil
	}
	switch environment {
	case EnvHomologacion:
		return urlHomologacion, nil
	case EnvProduccion:
		return urlProduccion, nil
	default:
		return "", fmt.Errorf("wsaa: entorno desconocido %q (usar %q o %q)", environment, EnvHomologacion, EnvProduccion)
	}
}

// Authenticate implementa Authenticator. Flujo: caché → TRA → CMS → loginCms →
// parseo → publicación atómica en caché.
func (c *Client) Authenticate(ctx context.Context, service string, creds Credentials, force bool) (*Ticket, error) {
	now := time.Now()
	if !force {
		if t := c.cache.get(service, creds.CUIT, now); t != nil {
			return t, nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check: otro goroutine pudo autenticar mientras esperábamos el lock.
	if !force {
		if t := c.cache.get(service, creds.CUIT, now); t != nil {
			return t, nil
		}
	} else {
		c.cache.invalidate(service, creds.CUIT)
	}

	tra, err := BuildTRA(service, now)
	if err != nil {
		return nil, err
	}
	cms, err := SignTRA(tra, creds.CertificatePEM, creds.PrivateKeyPEM)
	if err != nil {
		return nil, err
	}

	ticketXML, err := c.loginCms(ctx, creds.Environment, cms)
	if err != nil {
		return nil, err
	}
	ticket, err := ParseTicketResponse(ticketXML)
	if err != nil {
		return nil, err
	}

	if err := c.cache.put(service, creds.CUIT, ticket); err != nil {
		// El ticket es válido aunque no se pudo cachear; se loguea arriba.
		return ticket, nil
	}
	return ticket, nil
}

// ── SOAP loginCms ─────────────────────────────────────────────────────────────

type loginCmsEnvelope struct {
	XMLName xml.Name     `xml:"soapenv:Envelope"`
	XmlnsS  string       `xml:"xmlns:soapenv,attr"`
	XmlnsW  string       `xml:"xmlns:wsaa,attr"`
	Body    loginCmsBody `xml:"soapenv:Body"`
}

type loginCmsBody struct {
	LoginCms loginCmsCall `xml:"wsaa:loginCms"`
}

type loginCmsCall struct {
	In0 string `xml:"wsaa:in0"`
}

type loginCmsResponseEnvelope struct {
	Body struct {
		Response struct {
			Return string `xml:"loginCmsReturn"`
		} `xml:"loginCmsResponse"`
		Fault *soapFault `xml:"Fault"`
	} `xml:"Body"`
}

type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}

// loginCms envía el CMS en Base64 y devuelve el loginTicketResponse (XML crudo).
func (c *Client) loginCms(ctx context.Context, environment, cmsB64 string) ([]byte, error) {
	soapURL, err := c.endpoint(environment)
	if err != nil {
		return nil, err
	}

	envelope := loginCmsEnvelope{
		XmlnsS: soapNS,
		XmlnsW: wsaaNS,
		Body:   loginCmsBody{LoginCms: loginCmsCall{In0: cmsB64}},
	}
	payload, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("wsaa: serializar envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, soapURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("wsaa: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("wsaa: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("wsaa: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return nil, fmt.Errorf("wsaa: leer respuesta: %w", err)
	}

	var envResp loginCmsResponseEnvelope
	if err := xml.Unmarshal(rawBody, &envResp); err != nil {
		return nil, fmt.Errorf("wsaa: parsear respuesta SOAP: %w", err)
	}
	if envResp.Body.Fault != nil {
		return nil, fmt.Errorf("wsaa: SOAP Fault [%s]: %s", envResp.Body.Fault.FaultCode, envResp.Body.Fault.FaultString)
	}
	if envResp.Body.Response.Return == "" {
		return nil, fmt.Errorf("wsaa: respuesta vacía o inesperada: %s", string(rawBody))
	}
	// loginCmsReturn llega como XML escapado; Unmarshal ya lo des-escapa.
	return []byte(envResp.Body.Response.Return), nil
}
