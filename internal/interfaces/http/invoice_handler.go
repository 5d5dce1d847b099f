package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-afip/internal/application/dto"
	"github.com/jhoicas/facturacion-afip/internal/application/facturacion"
	"github.com/jhoicas/facturacion-afip/internal/application/usecase"
)

// InvoiceHandler maneja las peticiones HTTP para facturas: contabilización,
// consulta, autorización ante AFIP y log de transacciones.
type InvoiceHandler struct {
	uc     *usecase.InvoiceUseCase
	engine *facturacion.UseCase
}

func NewInvoiceHandler(uc *usecase.InvoiceUseCase, engine *facturacion.UseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, engine: engine}
}

// Create godoc
// @Summary      Contabilizar factura (queda UNSENT hasta autorizar)
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "Factura con líneas e impuestos"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Lines) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "la factura requiere al menos una línea"})
	}
	out, err := h.uc.Create(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener factura con líneas
// @Tags         invoices
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar facturas de la empresa
// @Tags         invoices
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.InvoiceListResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
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

// Authorize godoc
// @Summary      Solicitar el CAE de la factura ante AFIP
// @Description  Ejecuta el ciclo completo: WSAA, guardia de numeración,
// @Description  FECAESolicitar/FEXAuthorize y persistencia del resultado.
// @Description  Idempotente: una factura ya autorizada devuelve su CAE sin
// @Description  contactar a AFIP.
// @Tags         invoices
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/authorize [post]
func (h *InvoiceHandler) Authorize(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	id := c.Params("id")
	// El chequeo de pertenencia va antes de tocar el motor.
	if _, err := h.uc.GetByID(companyID, id); err != nil {
		return respondError(c, err)
	}
	if _, err := h.engine.Autorizar(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.GetByID(companyID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListTransactions godoc
// @Summary      Log de intentos de autorización AFIP de la factura
// @Tags         invoices
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.AFIPTransactionListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/transactions [get]
func (h *InvoiceHandler) ListTransactions(c *fiber.Ctx) error {
	out, err := h.uc.ListTransactions(GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
