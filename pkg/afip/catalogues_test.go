package afip_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-afip/pkg/afip"
)

func TestCatalogos_Tamanios(t *testing.T) {
	assert.Len(t, afip.TiposComprobante, 81)
	assert.Len(t, afip.TiposDocumento, 39)
	assert.Len(t, afip.Incoterms, 16)
}

func TestDescripcionComprobante(t *testing.T) {
	assert.Equal(t, "Factura A", afip.DescripcionComprobante("1"))
	assert.Equal(t, "Factura E", afip.DescripcionComprobante("19"))
	assert.Equal(t, "Tique Nota de Débito M", afip.DescripcionComprobante("120"))
	assert.Equal(t, "", afip.DescripcionComprobante("777"))
}

// TestResolverClase_TablaExhaustiva cubre todas las combinaciones de condición
// de empresa, condición de cliente y país que definen la clase del comprobante.
func TestResolverClase_TablaExhaustiva(t *testing.T) {
	casos := []struct {
		nombre   string
		empresa  string
		cliente  string
		pais     string
		esperado string
	}{
		{"RI a RI", afip.IVAResponsableInscripto, afip.IVAResponsableInscripto, "AR", "A"},
		{"RI a consumidor final", afip.IVAResponsableInscripto, afip.IVAConsumidorFinal, "AR", "B"},
		{"RI a monotributo", afip.IVAResponsableInscripto, afip.IVAMonotributo, "AR", "B"},
		{"RI a exento", afip.IVAResponsableInscripto, afip.IVAExento, "AR", "B"},
		{"RI a no alcanzado", afip.IVAResponsableInscripto, afip.IVANoAlcanzado, "AR", "B"},
		{"RI a local sin condición", afip.IVAResponsableInscripto, "", "AR", "B"},
		{"RI a exterior", afip.IVAResponsableInscripto, "", "UY", "E"},
		{"RI a exterior EEUU", afip.IVAResponsableInscripto, "", "US", "E"},
		{"monotributo emite C", afip.IVAMonotributo, afip.IVAResponsableInscripto, "AR", "C"},
		{"exento emite C", afip.IVAExento, afip.IVAConsumidorFinal, "AR", "C"},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			clase, err := afip.ResolverClase(c.empresa, c.cliente, c.pais)
			require.NoError(t, err)
			assert.Equal(t, c.esperado, clase)
		})
	}
}

func TestResolverClase_Errores(t *testing.T) {
	_, err := afip.ResolverClase("", afip.IVAResponsableInscripto, "AR")
	assert.Error(t, err, "empresa sin condición frente al IVA")

	_, err = afip.ResolverClase(afip.IVAResponsableInscripto, "", "")
	assert.Error(t, err, "cliente sin condición ni país")
}

// TestCodigoComprobante_TablaCompleta verifica el mapeo (dirección, clase) -> tipo.
func TestCodigoComprobante_TablaCompleta(t *testing.T) {
	casos := []struct {
		direccion string
		clase     string
		codigo    string
	}{
		{afip.DireccionFactura, "A", "1"},
		{afip.DireccionFactura, "B", "6"},
		{afip.DireccionFactura, "C", "11"},
		{afip.DireccionFactura, "E", "19"},
		{afip.DireccionNotaCredito, "A", "3"},
		{afip.DireccionNotaCredito, "B", "8"},
		{afip.DireccionNotaCredito, "C", "13"},
		{afip.DireccionNotaCredito, "E", "21"},
	}
	for _, c := range casos {
		codigo, ok := afip.CodigoComprobante(c.direccion, c.clase)
		require.True(t, ok, "(%s, %s)", c.direccion, c.clase)
		assert.Equal(t, c.codigo, codigo)
	}

	_, ok := afip.CodigoComprobante("in_invoice", "A")
	assert.False(t, ok, "las facturas de proveedor no se autorizan")
}

func TestCodigoIVA(t *testing.T) {
	assert.Equal(t, 3, afip.CodigoIVA(decimal.Zero))
	assert.Equal(t, 4, afip.CodigoIVA(decimal.RequireFromString("0.105")))
	assert.Equal(t, 5, afip.CodigoIVA(decimal.RequireFromString("0.21")))
	assert.Equal(t, 6, afip.CodigoIVA(decimal.RequireFromString("0.27")))
	assert.Equal(t, 0, afip.CodigoIVA(decimal.RequireFromString("0.15")), "tasa desconocida")
}

func TestCodigoTributo_Heuristica(t *testing.T) {
	assert.Equal(t, afip.TributoImpuestoNacional, afip.CodigoTributo("Impuesto Interno"))
	assert.Equal(t, afip.TributoIIBB, afip.CodigoTributo("IIBB CABA"))
	assert.Equal(t, afip.TributoTasaMunicipal, afip.CodigoTributo("Tasa de Higiene"))
	assert.Equal(t, afip.TributoOtro, afip.CodigoTributo("Percepción SUSS"))
}

func TestCodigoTributo_Override(t *testing.T) {
	afip.TributoOverrides["Percepción SUSS"] = afip.TributoImpuestoNacional
	defer delete(afip.TributoOverrides, "Percepción SUSS")

	assert.Equal(t, afip.TributoImpuestoNacional, afip.CodigoTributo("Percepción SUSS"))
}

func TestPaisDestino(t *testing.T) {
	code, ok := afip.PaisDestino("uy")
	require.True(t, ok)
	assert.Equal(t, 226, code)

	code, ok = afip.PaisDestino("US")
	require.True(t, ok)
	assert.Equal(t, 212, code)

	_, ok = afip.PaisDestino("XX")
	assert.False(t, ok)
}

func TestTipoYNumeroDocumento(t *testing.T) {
	tipo, nro := afip.TipoYNumeroDocumento("30-71234567-8")
	assert.Equal(t, afip.DocTipoCUIT, tipo)
	assert.Equal(t, "30712345678", nro)

	tipo, nro = afip.TipoYNumeroDocumento("32456789")
	assert.Equal(t, afip.DocTipoDNI, tipo)
	assert.Equal(t, "32456789", nro)

	tipo, nro = afip.TipoYNumeroDocumento("")
	assert.Equal(t, afip.DocTipoSinIdentificar, tipo)
	assert.Equal(t, "0", nro)
}

func TestIncotermValido(t *testing.T) {
	for _, it := range []string{"EXW", "FOB", "CIF", "DDP", "DAP"} {
		assert.True(t, afip.IncotermValido(it), it)
	}
	assert.False(t, afip.IncotermValido(""))
	assert.False(t, afip.IncotermValido("XYZ"))
}
