package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-afip/internal/application/dto"
	"github.com/jhoicas/facturacion-afip/internal/application/facturacion"
	"github.com/jhoicas/facturacion-afip/internal/application/usecase"
)

// CurrencyHandler maneja las peticiones HTTP para monedas, incluida la
// actualización de la cotización del dólar desde WSFEv1.
type CurrencyHandler struct {
	uc     *usecase.CurrencyUseCase
	engine *facturacion.UseCase
}

func NewCurrencyHandler(uc *usecase.CurrencyUseCase, engine *facturacion.UseCase) *CurrencyHandler {
	return &CurrencyHandler{uc: uc, engine: engine}
}

// Create godoc
// @Summary      Registrar moneda con su código AFIP
// @Tags         currencies
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCurrencyRequest  true  "Datos de la moneda"
// @Success      201   {object}  dto.CurrencyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/currencies [post]
func (h *CurrencyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCurrencyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.ISOCode == "" || in.AfipCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "iso_code y afip_code son requeridos"})
	}
	out, err := h.uc.Create(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar monedas
// @Tags         currencies
// @Produce      json
// @Success      200  {object}  dto.CurrencyListResponse
// @Router       /api/currencies [get]
func (h *CurrencyHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DolRate godoc
// @Summary      Cotización oficial del dólar según WSFEv1
// @Description  Consulta FEParamGetCotizacion("DOL") con las credenciales de la
// @Description  empresa autenticada y actualiza la tasa almacenada de USD.
// @Tags         currencies
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/currencies/dol-rate [get]
func (h *CurrencyHandler) DolRate(c *fiber.Ctx) error {
	cotiz, err := h.engine.ActualizarCotizacionDolar(c.Context(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"moneda": "DOL", "cotizacion": cotiz.String()})
}

// RefreshDolar godoc
// @Summary      Actualizar la tasa del USD con la cotización oficial de WSFEv1
// @Tags         currencies
// @Produce      json
// @Success      200  {object}  dto.CurrencyResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/currencies/dolar/refresh [post]
func (h *CurrencyHandler) RefreshDolar(c *fiber.Ctx) error {
	if _, err := h.engine.ActualizarCotizacionDolar(c.Context(), GetCompanyID(c)); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.GetByISO("USD")
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
