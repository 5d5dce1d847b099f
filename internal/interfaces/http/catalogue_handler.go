package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-afip/pkg/afip"
)

// CatalogueHandler expone las tablas estáticas AFIP (solo lectura).
type CatalogueHandler struct{}

func NewCatalogueHandler() *CatalogueHandler {
	return &CatalogueHandler{}
}

// VoucherTypes godoc
// @Summary      Tabla de tipos de comprobante AFIP
// @Tags         catalogues
// @Produce      json
// @Success      200  {array}  afip.CodigoDescripcion
// @Router       /api/catalogues/voucher-types [get]
func (h *CatalogueHandler) VoucherTypes(c *fiber.Ctx) error {
	return c.JSON(afip.TiposComprobante)
}

// DocumentTypes godoc
// @Summary      Tabla de tipos de documento AFIP
// @Tags         catalogues
// @Produce      json
// @Success      200  {array}  afip.CodigoDescripcion
// @Router       /api/catalogues/document-types [get]
func (h *CatalogueHandler) DocumentTypes(c *fiber.Ctx) error {
	return c.JSON(afip.TiposDocumento)
}

// Incoterms godoc
// @Summary      Tabla de INCOTERMS aceptados por el WSFEXv1
// @Tags         catalogues
// @Produce      json
// @Success      200  {array}  afip.CodigoDescripcion
// @Router       /api/catalogues/incoterms [get]
func (h *CatalogueHandler) Incoterms(c *fiber.Ctx) error {
	return c.JSON(afip.Incoterms)
}
