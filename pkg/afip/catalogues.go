// Package afip contiene catálogos y algoritmos alineados a las tablas oficiales
// de AFIP (Argentina) para factura electrónica: tipos de comprobante, tipos de
// documento, alícuotas de IVA, países de destino (WSFEXv1) e INCOTERMS.
package afip

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CodigoDescripcion par código/descripción de un catálogo AFIP.
type CodigoDescripcion struct {
	Codigo      string `json:"codigo"`
	Descripcion string `json:"descripcion"`
}

// =============================================================================
// Condición frente al IVA (empresa y cliente)
// =============================================================================

const (
	IVAResponsableInscripto = "responsable_inscripto"
	IVAExento               = "exento"
	IVAConsumidorFinal      = "consumidor_final"
	IVAMonotributo          = "monotributo"
	IVANoAlcanzado          = "no_alcanzado"
)

// CondicionesIVA condiciones válidas frente al IVA.
var CondicionesIVA = map[string]bool{
	IVAResponsableInscripto: true,
	IVAExento:               true,
	IVAConsumidorFinal:      true,
	IVAMonotributo:          true,
	IVANoAlcanzado:          true,
}

// =============================================================================
// Tipos de Comprobante — tabla oficial AFIP (códigos 1–120).
// El primer elemento vacío corresponde a "sin comprobante" en selecciones.
// =============================================================================

// TiposComprobante catálogo completo de tipos de comprobante (81 entradas).
var TiposComprobante = []CodigoDescripcion{
	{"", ""},
	{"1", "Factura A"},
	{"2", "Nota de Débito A"},
	{"3", "Nota de Crédito A"},
	{"4", "Recibos A"},
	{"5", "Nota de Venta al Contado A"},
	{"6", "Factura B"},
	{"7", "Nota de Débito B"},
	{"8", "Nota de Crédito B"},
	{"9", "Recibos B"},
	{"10", "Notas de Venta al Contado B"},
	{"11", "Factura C"},
	{"12", "Nota de Débito C"},
	{"13", "Nota de Crédito C"},
	{"15", "Recibo C"},
	{"19", "Factura E"},
	{"20", "Nota de Débito E"},
	{"21", "Nota de Crédito E"},
	{"22", "Factura - Permiso Exportación Simplificado - Dto. 855/97"},
	{"23", "Comprobante A de Compra Primaria para el Sector Pesquero Marítimo"},
	{"24", "Comprobante A de Consignación Primaria para el Sector Pesquero Marítimo"},
	{"25", "Comprobante B de Compra Primaria para el Sector Pesquero Marítimo"},
	{"26", "Comprobante B de Consignación Primaria para el Sector Pesquero Marítimo"},
	{"27", "Liquidación Única Comercial Impositiva Clase A"},
	{"28", "Liquidación Única Comercial Impositiva Clase B"},
	{"29", "Liquidación Única Comercial Impositiva Clase C"},
	{"30", "Comprobante de Compra de Bienes Usados"},
	{"31", "Mandato - Consignación"},
	{"32", "Comprobante de Compra de Materiales a Reciclar"},
	{"34", "Comprobante A del Apartado A, inciso f), R.G. N° 1415"},
	{"35", "Comprobante B del Apartado A, inciso f), R.G. N° 1415"},
	{"36", "Comprobante C del Apartado A, inciso f), R.G. N° 1415"},
	{"37", "Nota de Débito o Documento Equivalente que cumplan con la R.G. N° 1415"},
	{"38", "Nota de Crédito o Documento Equivalente que cumplan con la R.G. N° 1415"},
	{"39", "Otros comprobantes A que cumplan con la R.G. N° 1415"},
	{"40", "Otros comprobantes B que cumplan con la R.G. N° 1415"},
	{"41", "Otros comprobantes C que cumplan con la R.G. N° 1415"},
	{"43", "Nota de Crédito Liquidación Única Comercial Impositiva Clase B"},
	{"44", "Nota de Crédito Liquidación Única Comercial Impositiva Clase C"},
	{"45", "Nota de Débito Liquidación Única Comercial Impositiva Clase A"},
	{"46", "Nota de Débito Liquidación Única Comercial Impositiva Clase B"},
	{"47", "Nota de Débito Liquidación Única Comercial Impositiva Clase C"},
	{"48", "Nota de Crédito Liquidación Única Comercial Impositiva Clase A"},
	{"49", "Comprobante de Compra de Bienes No Registrables a Consumidores Finales"},
	{"50", "Recibo Factura a Crédito"},
	{"51", "Factura M"},
	{"52", "Nota de Débito M"},
	{"53", "Nota de Crédito M"},
	{"54", "Recibo M"},
	{"55", "Nota de Venta al Contado M"},
	{"56", "Comprobante M del Apartado A, inciso f), R.G. N° 1415"},
	{"57", "Otros comprobantes M que cumplan con la R.G. N° 1415"},
	{"58", "Cuenta de Venta y Líquido Producto M"},
	{"59", "Liquidación M"},
	{"60", "Cuenta de Venta y Líquido Producto A"},
	{"61", "Cuenta de Venta y Líquido Producto B"},
	{"63", "Liquidación A"},
	{"64", "Liquidación B"},
	{"66", "Despacho de Importación"},
	{"68", "Liquidación C"},
	{"70", "Recibos Factura de Crédito"},
	{"80", "Informe Diario de Cierre (ZETA) - Controladores Fiscales"},
	{"81", "Tique Factura A - Controlador Fiscal"},
	{"82", "Tique Factura B - Controlador Fiscal"},
	{"83", "Tique"},
	{"88", "Remito Electrónico"},
	{"89", "Resumen de Datos"},
	{"90", "Otros comprobantes - Documentos Exceptuados - Notas de Crédito"},
	{"91", "Remito R"},
	{"99", "Otros comprobantes que no cumplen o están exceptuados de la R.G. 1415"},
	{"110", "Tique Nota de Crédito"},
	{"111", "Tique Factura C"},
	{"112", "Tique Nota de Crédito A"},
	{"113", "Tique Nota de Crédito B"},
	{"114", "Tique Nota de Crédito C"},
	{"115", "Tique Nota de Débito A"},
	{"116", "Tique Nota de Débito B"},
	{"117", "Tique Nota de Débito C"},
	{"118", "Tique Factura M"},
	{"119", "Tique Nota de Crédito M"},
	{"120", "Tique Nota de Débito M"},
}

// DescripcionComprobante devuelve la descripción del tipo de comprobante, o "" si no existe.
func DescripcionComprobante(codigo string) string {
	for _, tc := range TiposComprobante {
		if tc.Codigo == codigo {
			return tc.Descripcion
		}
	}
	return ""
}

// =============================================================================
// Tipos de Documento — tabla oficial AFIP (incluye cédulas provinciales).
// =============================================================================

// TiposDocumento catálogo completo de tipos de documento (39 entradas).
var TiposDocumento = []CodigoDescripcion{
	{"", ""},
	{"0", "CI Policía Federal"},
	{"1", "CI Buenos Aires"},
	{"2", "CI Catamarca"},
	{"3", "CI Córdoba"},
	{"4", "CI Corrientes"},
	{"5", "CI Entre Ríos"},
	{"6", "CI Jujuy"},
	{"7", "CI Mendoza"},
	{"8", "CI La Rioja"},
	{"9", "CI Salta"},
	{"10", "CI San Juan"},
	{"11", "CI San Luis"},
	{"12", "CI Santa Fe"},
	{"13", "CI Santiago del Estero"},
	{"14", "CI Tucumán"},
	{"16", "CI Chaco"},
	{"17", "CI Chubut"},
	{"18", "CI Formosa"},
	{"19", "CI Misiones"},
	{"20", "CI Neuquén"},
	{"21", "CI La Pampa"},
	{"22", "CI Río Negro"},
	{"23", "CI Santa Cruz"},
	{"24", "CI Tierra del Fuego"},
	{"30", "Certificado de Migración"},
	{"80", "CUIT"},
	{"86", "CUIL"},
	{"87", "CDI"},
	{"88", "Usado por Anses para Padrón"},
	{"89", "LE"},
	{"90", "LC"},
	{"91", "CI Extranjera"},
	{"92", "En trámite"},
	{"93", "Acta de Nacimiento"},
	{"94", "Pasaporte"},
	{"95", "CI Bs. As. RNP"},
	{"96", "DNI"},
	{"99", "Sin identificar / venta global diaria"},
}

// Códigos de documento de uso directo en el ensamblado.
const (
	DocTipoCUIT           = 80
	DocTipoDNI            = 96
	DocTipoSinIdentificar = 99
)

// =============================================================================
// Alícuotas de IVA — código AFIP por tasa (WSFEv1, AlicIva.Id).
// =============================================================================

// codigosIVA tasa (como string canónico) -> código AFIP.
var codigosIVA = map[string]int{
	"0":     3,
	"0.105": 4,
	"0.21":  5,
	"0.27":  6,
}

// CodigoIVA devuelve el código AFIP de la alícuota (3, 4, 5 o 6).
// Tasas desconocidas devuelven 0, que el WS rechaza con mensaje explícito.
func CodigoIVA(tasa decimal.Decimal) int {
	if code, ok := codigosIVA[tasa.String()]; ok {
		return code
	}
	return 0
}

// =============================================================================
// Tributos (no IVA) — clasificación por nombre del impuesto.
// La heurística reproduce el comportamiento observado; puede pisarse con
// TributoOverrides cuando la definición del impuesto trae código explícito.
// =============================================================================

const (
	TributoImpuestoNacional = 1
	TributoIIBB             = 3
	TributoTasaMunicipal    = 4
	TributoOtro             = 99
)

// TributoOverrides clasificación explícita por nombre exacto de impuesto.
// Tiene prioridad sobre la heurística de CodigoTributo.
var TributoOverrides = map[string]int{}

// CodigoTributo clasifica un tributo no-IVA por substring del nombre.
func CodigoTributo(nombre string) int {
	if code, ok := TributoOverrides[nombre]; ok {
		return code
	}
	lower := strings.ToLower(nombre)
	switch {
	case strings.Contains(lower, "impuesto"):
		return TributoImpuestoNacional
	case strings.Contains(lower, "iibb"), strings.Contains(lower, "iibbb"):
		return TributoIIBB
	case strings.Contains(lower, "tasa"):
		return TributoTasaMunicipal
	default:
		return TributoOtro
	}
}

// =============================================================================
// Países de destino — código AFIP por código ISO 3166-1 alfa-2 (WSFEXv1, Dst_cmp).
// =============================================================================

// paisesAFIP ISO alfa-2 -> código de país destino AFIP.
var paisesAFIP = map[string]int{
	"AR": 200, // Argentina
	"BB": 201, // Barbados
	"BO": 202, // Bolivia
	"BR": 203, // Brasil
	"CA": 204, // Canadá
	"CO": 205, // Colombia
	"CR": 206, // Costa Rica
	"CU": 207, // Cuba
	"CL": 208, // Chile
	"DO": 209, // República Dominicana
	"EC": 210, // Ecuador
	"SV": 211, // El Salvador
	"US": 212, // Estados Unidos
	"GT": 213, // Guatemala
	"GY": 214, // Guyana
	"HT": 215, // Haití
	"HN": 216, // Honduras
	"JM": 217, // Jamaica
	"MX": 218, // México
	"NI": 219, // Nicaragua
	"PA": 220, // Panamá
	"PY": 221, // Paraguay
	"PE": 222, // Perú
	"PR": 223, // Puerto Rico
	"SR": 224, // Surinam
	"TT": 225, // Trinidad y Tobago
	"UY": 226, // Uruguay
	"VE": 227, // Venezuela
	"CN": 310, // China
	"IN": 315, // India
	"IL": 319, // Israel
	"JP": 320, // Japón
	"KR": 324, // Corea del Sur
	"AT": 403, // Austria
	"BE": 404, // Bélgica
	"DK": 407, // Dinamarca
	"ES": 408, // España
	"FI": 409, // Finlandia
	"FR": 410, // Francia
	"GR": 411, // Grecia
	"IE": 413, // Irlanda
	"IT": 415, // Italia
	"NO": 420, // Noruega
	"NL": 421, // Países Bajos
	"PL": 422, // Polonia
	"PT": 423, // Portugal
	"GB": 424, // Reino Unido
	"SE": 427, // Suecia
	"CH": 428, // Suiza
	"DE": 438, // Alemania
	"AU": 601, // Australia
	"NZ": 607, // Nueva Zelanda
	"ZA": 501, // Sudáfrica
}

// PaisDestino devuelve el código AFIP de país destino para un ISO alfa-2.
func PaisDestino(iso string) (int, bool) {
	code, ok := paisesAFIP[strings.ToUpper(iso)]
	return code, ok
}

// =============================================================================
// INCOTERMS — obligatorios en Factura E (tipo 19).
// =============================================================================

// Incoterms catálogo de términos de comercio internacional (16 entradas).
var Incoterms = []CodigoDescripcion{
	{"", ""},
	{"EXW", "Ex Works"},
	{"FCA", "Free Carrier"},
	{"FAS", "Free Alongside Ship"},
	{"FOB", "Free On Board"},
	{"CFR", "Cost and Freight"},
	{"CIF", "Cost, Insurance and Freight"},
	{"CPT", "Carriage Paid To"},
	{"CIP", "Carriage and Insurance Paid to"},
	{"DAF", "Delivered At Frontier"},
	{"DES", "Delivered Ex Ship"},
	{"DEQ", "Delivered Ex Quay"},
	{"DDU", "Delivered Duty Unpaid"},
	{"DAT", "Delivered At Terminal"},
	{"DAP", "Delivered At Place"},
	{"DDP", "Delivered Duty Paid"},
}

// IncotermValido verifica que el código INCOTERM exista en el catálogo.
func IncotermValido(codigo string) bool {
	for _, it := range Incoterms {
		if it.Codigo != "" && it.Codigo == codigo {
			return true
		}
	}
	return false
}

// DescripcionIncoterm devuelve la descripción del INCOTERM, o "" si no existe.
func DescripcionIncoterm(codigo string) string {
	for _, it := range Incoterms {
		if it.Codigo == codigo {
			return it.Descripcion
		}
	}
	return ""
}

// =============================================================================
// Resolución de clase de comprobante (A/B/C/E) y tipo por (dirección, clase).
// =============================================================================

// Direcciones de factura soportadas por la resolución de clase.
const (
	DireccionFactura     = "out_invoice"
	DireccionNotaCredito = "out_credit_note"
)

// ResolverClase determina la clase de comprobante (A, B, C o E) según la
// condición frente al IVA de la empresa, la del cliente y su país.
func ResolverClase(condicionEmpresa, condicionCliente, paisCliente string) (string, error) {
	if condicionEmpresa == "" {
		return "", fmt.Errorf("afip: la empresa no tiene condición frente al IVA")
	}
	if condicionEmpresa != IVAResponsableInscripto {
		return "C", nil
	}
	switch {
	case condicionCliente == IVAResponsableInscripto:
		return "A", nil
	case condicionCliente == IVAConsumidorFinal:
		return "B", nil
	case condicionCliente != "":
		// Monotributo, exento y no alcanzado reciben comprobante B.
		return "B", nil
	case strings.ToUpper(paisCliente) == "AR":
		return "B", nil
	case paisCliente != "":
		return "E", nil
	default:
		return "", fmt.Errorf("afip: el cliente no tiene condición frente al IVA ni país")
	}
}

// tiposPorDireccion (dirección, clase) -> código de tipo de comprobante.
var tiposPorDireccion = map[[2]string]string{
	{DireccionFactura, "A"}:     "1",
	{DireccionFactura, "B"}:     "6",
	{DireccionFactura, "C"}:     "11",
	{DireccionFactura, "E"}:     "19",
	{DireccionNotaCredito, "A"}: "3",
	{DireccionNotaCredito, "B"}: "8",
	{DireccionNotaCredito, "C"}: "13",
	{DireccionNotaCredito, "E"}: "21",
}

// CodigoComprobante devuelve el tipo de comprobante para (dirección, clase).
func CodigoComprobante(direccion, clase string) (string, bool) {
	code, ok := tiposPorDireccion[[2]string{direccion, clase}]
	return code, ok
}

// TipoYNumeroDocumento resuelve tipo y número de documento del receptor a partir
// de su identificación fiscal: 11 dígitos = CUIT (80), menos = DNI (96),
// sin identificación = 99 con número "0".
func TipoYNumeroDocumento(identificacion string) (int, string) {
	digits := soloDigitos(identificacion)
	switch {
	case digits == "":
		return DocTipoSinIdentificar, "0"
	case len(digits) == 11:
		return DocTipoCUIT, digits
	default:
		return DocTipoDNI, digits
	}
}

func soloDigitos(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
