package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cardionote-be/internal/apperror"
)

// ErrorHandlerMiddleware maps domain errors to HTTP statuses.
// Propagation policy: every error is surfaced to the caller with a
// readable message; nothing here is fatal to the process.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		var ve *apperror.ValidationError
		if errors.As(err, &ve) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, ve.Error()))
		}

		var se *apperror.SubmissionError
		if errors.As(err, &se) {
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(fiber.StatusBadGateway, se.Error()))
		}

		if errors.Is(err, apperror.ErrAuthRequired) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, err.Error()))
		}

		var pe *apperror.PersistenceError
		if errors.As(err, &pe) {
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, pe.Error()))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, err.Error()))
	}
}
