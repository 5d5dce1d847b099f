package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-afip/internal/application/dto"
	"github.com/jhoicas/facturacion-afip/internal/application/usecase"
	"github.com/jhoicas/facturacion-afip/internal/infrastructure/afip/padron"
)

// PartyHandler maneja las peticiones HTTP para terceros/clientes, incluida la
// consulta del padrón de AFIP para precargar datos fiscales.
type PartyHandler struct {
	uc     *usecase.PartyUseCase
	padron padron.Lookup
}

func NewPartyHandler(uc *usecase.PartyUseCase, padronClient padron.Lookup) *PartyHandler {
	return &PartyHandler{uc: uc, padron: padronClient}
}

// Create godoc
// @Summary      Crear tercero
// @Tags         parties
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePartyRequest  true  "Datos del tercero"
// @Success      201   {object}  dto.PartyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/parties [post]
func (h *PartyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePartyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name es requerido"})
	}
	out, err := h.uc.Create(GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener tercero por ID
// @Tags         parties
// @Produce      json
// @Param        id   path  string  true  "ID del tercero"
// @Success      200  {object}  dto.PartyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/parties/{id} [get]
func (h *PartyHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar tercero
// @Tags         parties
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del tercero"
// @Param        body  body  dto.UpdatePartyRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.PartyResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/parties/{id} [put]
func (h *PartyHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdatePartyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar terceros de la empresa
// @Tags         parties
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.PartyListResponse
// @Router       /api/parties [get]
func (h *PartyHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	out, err := h.uc.ListByCompany(GetCompanyID(c), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ConsultarPadron godoc
// @Summary      Consultar un CUIT en el padrón de AFIP
// @Tags         parties
// @Produce      json
// @Param        cuit  path  string  true  "CUIT (con o sin guiones)"
// @Success      200   {object}  dto.PadronResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/parties/padron/{cuit} [get]
func (h *PartyHandler) ConsultarPadron(c *fiber.Ctx) error {
	persona, err := h.padron.Consultar(c.Context(), c.Params("cuit"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.PadronResponse{
		CUIT:        persona.CUIT,
		Nombre:      persona.Nombre,
		TipoPersona: persona.TipoPersona,
		Direccion:   persona.Direccion,
		Localidad:   persona.Localidad,
		CodPostal:   persona.CodPostal,
		EstadoClave: persona.EstadoClave,
	})
}
