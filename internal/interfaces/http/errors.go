package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/domain"
)

// retryAfterSeconds sugerencia de reintento tras un conflicto de concurrencia.
const retryAfterSeconds = "1"

// statusFor código HTTP por tipo de error de dominio.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrItemNotFound), errors.Is(err, domain.ErrLotNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateSKU),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrLotInsufficientQuantity),
		errors.Is(err, domain.ErrConcurrentModification),
		errors.Is(err, domain.ErrInvalidStateTransition):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// writeError traduce un error de la capa de aplicación a dto.ErrorResponse.
// Los errores internos no exponen su texto al cliente.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	status := statusFor(err)
	resp := dto.ErrorResponse{Code: domain.Code(err), Message: err.Error()}

	var de *domain.Error
	if errors.As(err, &de) {
		resp.Message = de.Kind.Error()
		resp.Details = map[string]string{}
		if de.Op != "" {
			resp.Details["operation"] = de.Op
		}
		if de.ItemID != "" {
			resp.Details["item_id"] = de.ItemID
		}
		if de.Detail != "" {
			resp.Details["detail"] = de.Detail
		}
	}
	if errors.Is(err, domain.ErrConcurrentModification) {
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
	}
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
		if !errors.Is(err, domain.ErrLedgerInconsistency) {
			resp = dto.ErrorResponse{Code: "INTERNAL_ERROR", Message: "error interno"}
		}
	}
	return c.Status(status).JSON(resp)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
