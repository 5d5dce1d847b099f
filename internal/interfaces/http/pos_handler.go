package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-afip/internal/application/dto"
	"github.com/jhoicas/facturacion-afip/internal/application/usecase"
)

// PosHandler maneja las peticiones HTTP para puntos de venta.
type PosHandler struct {
	uc *usecase.PosUseCase
}

func NewPosHandler(uc *usecase.PosUseCase) *PosHandler {
	return &PosHandler{uc: uc}
}

// Create godoc
// @Summary      Dar de alta un punto de venta (con secuencias para electrónicos)
// @Tags         pos
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePosRequest  true  "Datos del punto de venta"
// @Success      201   {object}  dto.PosResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/pos [post]
func (h *PosHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePosRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener punto de venta por ID
// @Tags         pos
// @Produce      json
// @Param        id   path  string  true  "ID del punto de venta"
// @Success      200  {object}  dto.PosResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pos/{id} [get]
func (h *PosHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar puntos de venta de la empresa
// @Tags         pos
// @Produce      json
// @Success      200  {object}  dto.PosListResponse
// @Router       /api/pos [get]
func (h *PosHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListByCompany(GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetSequence godoc
// @Summary      Consultar la secuencia de un tipo de comprobante
// @Tags         pos
// @Produce      json
// @Param        id    path   string  true  "ID del punto de venta"
// @Param        type  query  string  true  "Código del tipo de comprobante"
// @Success      200   {object}  dto.SequenceResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/pos/{id}/sequence [get]
func (h *PosHandler) GetSequence(c *fiber.Ctx) error {
	voucherType := c.Query("type")
	if voucherType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "type es requerido"})
	}
	out, err := h.uc.GetSequence(GetCompanyID(c), c.Params("id"), voucherType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
