// Package afip: código de barras fiscal (Interleaved 2 of 5) de la factura
// electrónica: CUIT + tipo de comprobante + punto de venta + CAE + vencimiento,
// con dígito verificador módulo 10 según especificación AFIP.
package afip

import (
	"fmt"
	"strconv"
	"strings"
)

// DigitoVerificador calcula el dígito módulo 10 de una cadena de dígitos ASCII:
//
//	s1 = suma de dígitos en posiciones pares (base 0)
//	s2 = s1 × 3
//	s3 = suma de dígitos en posiciones impares
//	d  = (10 − ((s2 + s3) mod 10)) mod 10
func DigitoVerificador(codigo string) (int, error) {
	if codigo == "" {
		return 0, fmt.Errorf("afip: código vacío")
	}
	var s1, s3 int
	for i, r := range codigo {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("afip: el código debe ser numérico, carácter %q en posición %d", r, i)
		}
		d := int(r - '0')
		if i%2 == 0 {
			s1 += d
		} else {
			s3 += d
		}
	}
	s4 := s1*3 + s3
	return (10 - s4%10) % 10, nil
}

// CodigoBarras arma el código de barras fiscal completo con dígito verificador:
// cuit (11) + tipo de comprobante (2) + punto de venta (4) + cae + vencimiento YYYYMMDD.
func CodigoBarras(cuit string, tipoComprobante string, puntoVenta int, cae, vencimiento string) (string, error) {
	cuitDigits := soloDigitos(cuit)
	if len(cuitDigits) != 11 {
		return "", fmt.Errorf("afip: CUIT inválido para código de barras: %q", cuit)
	}
	tipo, err := strconv.Atoi(tipoComprobante)
	if err != nil {
		return "", fmt.Errorf("afip: tipo de comprobante no numérico: %q", tipoComprobante)
	}
	if cae == "" {
		return "", fmt.Errorf("afip: CAE vacío")
	}
	venc := soloDigitos(vencimiento)
	if len(venc) != 8 {
		return "", fmt.Errorf("afip: vencimiento de CAE inválido: %q (se espera YYYYMMDD)", vencimiento)
	}

	var b strings.Builder
	b.WriteString(cuitDigits)
	fmt.Fprintf(&b, "%02d", tipo)
	fmt.Fprintf(&b, "%04d", puntoVenta)
	b.WriteString(cae)
	b.WriteString(venc)

	codigo := b.String()
	dv, err := DigitoVerificador(codigo)
	if err != nil {
		return "", err
	}
	return codigo + strconv.Itoa(dv), nil
}
