package afip_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-afip/pkg/afip"
)

// TestDigitoVerificador_VectorExacto valida el vector de referencia del
// algoritmo módulo 10: "123456789" -> s1=25, s2=75, s3=20, s4=95, d=5.
func TestDigitoVerificador_VectorExacto(t *testing.T) {
	dv, err := afip.DigitoVerificador("123456789")
	require.NoError(t, err)
	assert.Equal(t, 5, dv, "el dígito verificador de 123456789 debe ser 5")
}

func TestDigitoVerificador_RangoValido(t *testing.T) {
	codigos := []string{"0", "00000000", "99999999", "3071234567890123", "20250131"}
	for _, c := range codigos {
		dv, err := afip.DigitoVerificador(c)
		require.NoError(t, err, "código %s", c)
		assert.GreaterOrEqual(t, dv, 0)
		assert.LessOrEqual(t, dv, 9)
	}
}

// TestDigitoVerificador_Propiedad el código con su dígito apendizado produce el
// mismo verificador que el código con '0' apendizado (s4 múltiplo de 10).
func TestDigitoVerificador_Propiedad(t *testing.T) {
	casos := []string{"123456789", "30712345678", "012025", "71234567890123"}
	for _, c := range casos {
		dv, err := afip.DigitoVerificador(c)
		require.NoError(t, err)

		conDigito, err := afip.DigitoVerificador(c + strconv.Itoa(dv))
		require.NoError(t, err)
		conCero, err := afip.DigitoVerificador(c + "0")
		require.NoError(t, err)
		assert.Equal(t, conCero, conDigito, "código %s", c)
	}
}

func TestDigitoVerificador_RechazaNoNumerico(t *testing.T) {
	_, err := afip.DigitoVerificador("12a45")
	assert.Error(t, err)

	_, err = afip.DigitoVerificador("")
	assert.Error(t, err)
}

// TestCodigoBarras_FacturaA arma el código completo para una Factura A
// autorizada: CUIT + "01" + punto de venta 0004 + CAE + vencimiento + DV.
func TestCodigoBarras_FacturaA(t *testing.T) {
	codigo, err := afip.CodigoBarras("30-71234567-8", "1", 4, "71234567890123", "20250131")
	require.NoError(t, err)

	const sinDV = "30712345678" + "01" + "0004" + "71234567890123" + "20250131"
	require.Len(t, codigo, len(sinDV)+1)
	assert.Equal(t, sinDV, codigo[:len(sinDV)])

	dv, err := afip.DigitoVerificador(sinDV)
	require.NoError(t, err)
	assert.Equal(t, sinDV+strconv.Itoa(dv), codigo)
}

func TestCodigoBarras_Errores(t *testing.T) {
	// CUIT corto
	_, err := afip.CodigoBarras("123", "1", 4, "71234567890123", "20250131")
	assert.Error(t, err)

	// CAE vacío
	_, err = afip.CodigoBarras("30712345678", "1", 4, "", "20250131")
	assert.Error(t, err)

	// Vencimiento con formato incorrecto
	_, err = afip.CodigoBarras("30712345678", "1", 4, "71234567890123", "202501")
	assert.Error(t, err)

	// Tipo de comprobante no numérico
	_, err = afip.CodigoBarras("30712345678", "fca", 4, "71234567890123", "20250131")
	assert.Error(t, err)
}
