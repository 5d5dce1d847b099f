package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-afip/internal/application/dto"
	"github.com/jhoicas/facturacion-afip/internal/domain"
)

// respondError mapea errores de dominio a códigos HTTP. Los errores de
// configuración del ciclo AFIP salen como 422 (la petición es válida pero el
// comprobante no se puede autorizar tal como está).
func respondError(c *fiber.Ctx, err error) error {
	var numErr *domain.InvalidInvoiceNumberError
	var seqErr *domain.SequenceError
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	case errors.As(err, &numErr):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_NUMBER", Message: numErr.Error()})
	case errors.As(err, &seqErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "SEQUENCE", Message: seqErr.Error()})
	case errors.Is(err, domain.ErrModoAFIPIncorrecto),
		errors.Is(err, domain.ErrServicioNoSoportado),
		errors.Is(err, domain.ErrCodigoAFIPVacio),
		errors.Is(err, domain.ErrFechasServicioFaltantes),
		errors.Is(err, domain.ErrIncotermsFaltante),
		errors.Is(err, domain.ErrCondicionIVAEmpresa),
		errors.Is(err, domain.ErrCondicionIVACliente),
		errors.Is(err, domain.ErrTipoComprobante):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "AFIP_CONFIG", Message: err.Error()})
	case errors.Is(err, domain.ErrSinCAE):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "AFIP_REJECTED", Message: err.Error()})
	case errors.Is(err, domain.ErrWSAA):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "WSAA", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
