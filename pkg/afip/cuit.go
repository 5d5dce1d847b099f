package afip

import "fmt"

// pesos para el cálculo del dígito verificador del CUIT/CUIL (módulo 11, AFIP).
// Se aplican a los 10 primeros dígitos, de izquierda a derecha.
var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// ValidarCUIT valida que el CUIT (con o sin guiones) tenga 11 dígitos y un
// dígito verificador correcto. cuit puede ser "30-12345678-6" o "30123456786".
func ValidarCUIT(cuit string) error {
	digits := soloDigitos(cuit)
	if len(digits) != 11 {
		return fmt.Errorf("afip: CUIT debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	expected := digitoCUIT(digits)
	if digits[10] != expected {
		return fmt.Errorf("afip: dígito verificador del CUIT inválido: esperado %c, recibido %c", expected, digits[10])
	}
	return nil
}

// NormalizarCUIT devuelve el CUIT como 11 dígitos sin separadores, validándolo.
func NormalizarCUIT(cuit string) (string, error) {
	if err := ValidarCUIT(cuit); err != nil {
		return "", err
	}
	return soloDigitos(cuit), nil
}

func digitoCUIT(digits string) byte {
	var sum int
	for i := 0; i < 10; i++ {
		sum += int(digits[i]-'0') * cuitWeights[i]
	}
	switch mod := 11 - sum%11; mod {
	case 11:
		return '0'
	case 10:
		return '9'
	default:
		return byte('0' + mod)
	}
}
