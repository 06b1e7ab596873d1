package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/domain"
)

// writeError traduce un error de dominio a status HTTP + ErrorResponse.
// Lo que no es de dominio se registra y responde 500 sin exponer el detalle.
func writeError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// errInvalidBody cuerpo que no es JSON o no encaja en el DTO.
var errInvalidBody = errors.New("cuerpo inválido")

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errInvalidBody):
		return fiber.StatusBadRequest, "INVALID_BODY"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrReferenced):
		return fiber.StatusConflict, "REFERENCED"
	case errors.Is(err, domain.ErrImmutable):
		return fiber.StatusConflict, "IMMUTABLE"
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusUnprocessableEntity, "INVALID_TRANSITION"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

