package padron

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-afip/internal/domain"
)

func TestConsultar_PersonaJuridica(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/persona/30712345678", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"success": true,
			"data": {
				"idPersona": 30712345678,
				"tipoPersona": "JURIDICA",
				"razonSocial": "ACME SA",
				"estadoClave": "ACTIVO",
				"domicilioFiscal": {
					"direccion": "AV CORRIENTES 1234",
					"localidad": "CIUDAD AUTONOMA BUENOS AIRES",
					"codPostal": "1043"
				}
			}
		}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	persona, err := client.Consultar(context.Background(), "30-71234567-8")
	require.NoError(t, err)

	assert.Equal(t, "30712345678", persona.CUIT)
	assert.Equal(t, "ACME SA", persona.Nombre)
	assert.Equal(t, "JURIDICA", persona.TipoPersona)
	assert.Equal(t, "AV CORRIENTES 1234", persona.Direccion)
	assert.Equal(t, "1043", persona.CodPostal)
}

func TestConsultar_PersonaFisica(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"success": true,
			"data": {
				"tipoPersona": "FISICA",
				"nombre": "JUAN",
				"apellido": "PEREZ",
				"domicilioFiscal": {}
			}
		}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	persona, err := client.Consultar(context.Background(), "20123456786")
	require.NoError(t, err)

	assert.Equal(t, "PEREZ JUAN", persona.Nombre)
}

func TestConsultar_NoExiste(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success": false, "error": {"mensaje": "No existe persona con ese Id"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.Consultar(context.Background(), "20123456786")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConsultar_CUITInvalido(t *testing.T) {
	client := NewClient("http://localhost:0", 5*time.Second)
	_, err := client.Consultar(context.Background(), "123")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
