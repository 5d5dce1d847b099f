package wsfex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-afip/internal/infrastructure/afip/wsaa"
)

func testAuth() Auth {
	return Auth{Token: "tok", Sign: "sig", CUIT: "30712345678"}
}

func soapServer(t *testing.T, innerBody string, capture *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if capture != nil {
			*capture = string(raw)
		}
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		fmt.Fprintf(w, `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>%s</soap:Body>
</soap:Envelope>`, innerBody)
	}))
}

func TestUltimoAutorizado(t *testing.T) {
	var captured string
	server := soapServer(t, `
    <FEXGetLast_CMPResponse xmlns="http://ar.gov.afip.dif.fexv1/">
      <FEXGetLast_CMPResult>
        <FEXResult_LastCMP><Cbte_nro>12</Cbte_nro></FEXResult_LastCMP>
        <FEXErr><ErrCode>0</ErrCode><ErrMsg>OK</ErrMsg></FEXErr>
      </FEXGetLast_CMPResult>
    </FEXGetLast_CMPResponse>`, &captured)
	defer server.Close()

	client := NewClient(5 * time.Second)
	client.EndpointOverride = server.URL

	ultimo, err := client.UltimoAutorizado(context.Background(), testAuth(), 4, 19)
	require.NoError(t, err)
	assert.Equal(t, int64(12), ultimo)

	// En WSFEX el punto de venta y el tipo viajan adentro del Auth.
	assert.Contains(t, captured, "<fex:Pto_venta>4</fex:Pto_venta>")
	assert.Contains(t, captured, "<fex:Cbte_Tipo>19</fex:Cbte_Tipo>")
}

func TestUltimoAutorizado_Error(t *testing.T) {
	server := soapServer(t, `
    <FEXGetLast_CMPResponse xmlns="http://ar.gov.afip.dif.fexv1/">
      <FEXGetLast_CMPResult>
        <FEXErr><ErrCode>1000</ErrCode><ErrMsg>Token invalido</ErrMsg></FEXErr>
      </FEXGetLast_CMPResult>
    </FEXGetLast_CMPResponse>`, nil)
	defer server.Close()

	client := NewClient(5 * time.Second)
	client.EndpointOverride = server.URL

	_, err := client.UltimoAutorizado(context.Background(), testAuth(), 4, 19)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1000")
}

func TestAutorizar_Aprobado(t *testing.T) {
	var captured string
	server := soapServer(t, `
    <FEXAuthorizeResponse xmlns="http://ar.gov.afip.dif.fexv1/">
      <FEXAuthorizeResult>
        <FEXResultAuth>
          <Id>250131000001</Id>
          <Cbte_nro>13</Cbte_nro>
          <Cae>71234567890123</Cae>
          <Fch_venc_Cae>20250210</Fch_venc_Cae>
          <Resultado>A</Resultado>
        </FEXResultAuth>
        <FEXErr><ErrCode>0</ErrCode><ErrMsg>OK</ErrMsg></FEXErr>
      </FEXAuthorizeResult>
    </FEXAuthorizeResponse>`, &captured)
	defer server.Close()

	client := NewClient(5 * time.Second)
	client.EndpointOverride = server.URL

	req := &ComprobanteRequest{
		ID:               250131000001,
		FechaCbte:        "20250131",
		CbteTipo:         19,
		PuntoVenta:       4,
		CbteNro:          13,
		TipoExpo:         TipoExpoBienes,
		PermisoExistente: "",
		DstCmp:           226, // Uruguay
		Cliente:          "Cliente del Exterior SA",
		CuitPaisCliente:  "50000000016",
		DomicilioCliente: "Av. Siempreviva 123 - Montevideo",
		IDImpositivo:     "RUT 211234560017",
		MonedaID:         "DOL",
		MonedaCtz:        "1043.50",
		ImpTotal:         "1500.00",
		Incoterms:        "FOB",
		IdiomaCbte:       1,
		Items: []Item{{
			Descripcion:    "Producto exportable",
			Cantidad:       "10.00",
			UnidadMedida:   UnidadMedidaUnidades,
			PrecioUnitario: "150.00",
			Bonificacion:   "0.00",
			TotalItem:      "1500.00",
		}},
	}
	res, err := client.Autorizar(context.Background(), testAuth(), req)
	require.NoError(t, err)

	assert.Equal(t, "A", res.Resultado)
	assert.Equal(t, "71234567890123", res.CAE)
	assert.Equal(t, "20250210", res.CAEFchVto)
	assert.Empty(t, res.Errores)
	assert.Contains(t, res.XMLRequest, "<fex:FEXAuthorize>")

	assert.Contains(t, captured, "<fex:Dst_cmp>226</fex:Dst_cmp>")
	assert.Contains(t, captured, "<fex:Incoterms>FOB</fex:Incoterms>")
	assert.Contains(t, captured, "<fex:Pro_umed>7</fex:Pro_umed>")
	// Permiso_existente viaja siempre, aun vacío.
	assert.Contains(t, captured, "Permiso_existente")
}

func TestAutorizar_Rechazado(t *testing.T) {
	server := soapServer(t, `
    <FEXAuthorizeResponse xmlns="http://ar.gov.afip.dif.fexv1/">
      <FEXAuthorizeResult>
        <FEXResultAuth><Resultado>R</Resultado><Motivos_Obs>Moneda sin cotizacion</Motivos_Obs></FEXResultAuth>
        <FEXErr><ErrCode>1640</ErrCode><ErrMsg>Moneda sin cotizacion</ErrMsg></FEXErr>
      </FEXAuthorizeResult>
    </FEXAuthorizeResponse>`, nil)
	defer server.Close()

	client := NewClient(5 * time.Second)
	client.EndpointOverride = server.URL

	res, err := client.Autorizar(context.Background(), testAuth(), &ComprobanteRequest{CbteTipo: 19})
	require.NoError(t, err)

	assert.Equal(t, "R", res.Resultado)
	assert.Empty(t, res.CAE)
	assert.Equal(t, "Moneda sin cotizacion", res.Motivos)
	require.Len(t, res.Errores, 1)
	assert.Equal(t, 1640, res.Errores[0].Code)
}

func TestEndpoint_PorEntorno(t *testing.T) {
	client := NewClient(5 * time.Second)

	assert.Equal(t, urlHomologacion, client.endpoint(wsaa.EnvHomologacion))
	assert.Equal(t, urlProduccion, client.endpoint(wsaa.EnvProduccion))
	// Entorno vacío o desconocido nunca apunta a producción.
	assert.Equal(t, urlHomologacion, client.endpoint(""))

	client.EndpointOverride = "http://127.0.0.1:9999"
	assert.Equal(t, "http://127.0.0.1:9999", client.endpoint(wsaa.EnvProduccion))
}
