package afip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-afip/pkg/afip"
)

func TestValidarCUIT_Validos(t *testing.T) {
	validos := []string{
		"20123456786",
		"20-12345678-6",
		"30.12345678.9",
	}
	for _, c := range validos {
		assert.NoError(t, afip.ValidarCUIT(c), "CUIT %s", c)
	}
}

func TestValidarCUIT_DigitoIncorrecto(t *testing.T) {
	err := afip.ValidarCUIT("20123456780")
	assert.Error(t, err)
}

func TestValidarCUIT_Longitud(t *testing.T) {
	assert.Error(t, afip.ValidarCUIT("123"))
	assert.Error(t, afip.ValidarCUIT(""))
	assert.Error(t, afip.ValidarCUIT("201234567861"))
}

func TestNormalizarCUIT(t *testing.T) {
	normalizado, err := afip.NormalizarCUIT("20-12345678-6")
	require.NoError(t, err)
	assert.Equal(t, "20123456786", normalizado)

	_, err = afip.NormalizarCUIT("20-12345678-0")
	assert.Error(t, err)
}
