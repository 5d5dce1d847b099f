// Package padron consulta la constancia de inscripción pública de AFIP
// (sr-padron v2) para precargar datos de clientes a partir del CUIT.
package padron

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/facturacion-afip/internal/domain"
	"github.com/jhoicas/facturacion-afip/pkg/afip"
)

const defaultBaseURL = "https://soa.afip.gob.ar/sr-padron/v2"

// Persona datos públicos de un contribuyente.
type Persona struct {
	CUIT        string `json:"cuit"`
	Nombre      string `json:"nombre"`
	TipoPersona string `json:"tipo_persona"` // FISICA | JURIDICA
	Direccion   string `json:"direccion"`
	Localidad   string `json:"localidad"`
	CodPostal   string `json:"cod_postal"`
	EstadoClave string `json:"estado_clave"`
}

// Lookup define el puerto de consulta del padrón.
type Lookup interface {
	Consultar(ctx context.Context, cuit string) (*Persona, error)
}

// Client implementa Lookup sobre HTTP/JSON.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient construye el cliente. baseURL vacío usa el endpoint público.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type personaResponse struct {
	Success bool `json:"success"`
	Error   *struct {
		Mensaje string `json:"mensaje"`
	} `json:"error"`
	Data struct {
		IDPersona       int64  `json:"idPersona"`
		TipoPersona     string `json:"tipoPersona"`
		Nombre          string `json:"nombre"`
		Apellido        string `json:"apellido"`
		RazonSocial     string `json:"razonSocial"`
		EstadoClave     string `json:"estadoClave"`
		DomicilioFiscal struct {
			Direccion string `json:"direccion"`
			Localidad string `json:"localidad"`
			CodPostal string `json:"codPostal"`
		} `json:"domicilioFiscal"`
	} `json:"data"`
}

// Consultar busca el CUIT en el padrón público. Devuelve domain.ErrNotFound
// si el contribuyente no existe.
func (c *Client) Consultar(ctx context.Context, cuit string) (*Persona, error) {
	normalizado, err := afip.NormalizarCUIT(cuit)
	if err != nil {
		return nil, fmt.Errorf("padron: CUIT inválido %q: %w", cuit, domain.ErrInvalidInput)
	}

	url := fmt.Sprintf("%s/persona/%s", c.baseURL, normalizado)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("padron: crear request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("padron: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("padron: status inesperado %d", resp.StatusCode)
	}

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("padron: leer respuesta: %w", err)
	}

	var parsed personaResponse
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		return nil, fmt.Errorf("padron: parsear respuesta: %w", err)
	}
	if !parsed.Success {
		if parsed.Error != nil && strings.Contains(strings.ToLower(parsed.Error.Mensaje), "no existe") {
			return nil, domain.ErrNotFound
		}
		msg := "error desconocido"
		if parsed.Error != nil {
			msg = parsed.Error.Mensaje
		}
		return nil, fmt.Errorf("padron: %s", msg)
	}

	nombre := parsed.Data.RazonSocial
	if nombre == "" {
		nombre = strings.TrimSpace(parsed.Data.Apellido + " " + parsed.Data.Nombre)
	}
	return &Persona{
		CUIT:        normalizado,
		Nombre:      nombre,
		TipoPersona: parsed.Data.TipoPersona,
		Direccion:   parsed.Data.DomicilioFiscal.Direccion,
		Localidad:   parsed.Data.DomicilioFiscal.Localidad,
		CodPostal:   parsed.Data.DomicilioFiscal.CodPostal,
		EstadoClave: parsed.Data.EstadoClave,
	}, nil
}
