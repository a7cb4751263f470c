package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/amaumene/watchweek/internal/catalog"
	"github.com/amaumene/watchweek/internal/controllers"
	"github.com/amaumene/watchweek/internal/models"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`

	// Set for decision_required
	Decision   string `json:"decision,omitempty"`
	ScheduleID uint64 `json:"schedule_id,omitempty"`
	TitleID    uint64 `json:"title_id,omitempty"`
}

// ErrorHandler maps controller errors to status codes
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			fe       *fiber.Error
			verr     *controllers.ValidationError
			decision *controllers.DecisionRequiredError
		)

		switch {
		case errors.As(err, &fe):
			return c.Status(fe.Code).JSON(ErrorResponse{Error: fe.Message})
		case errors.As(err, &verr):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
				Error:  "validation_failed",
				Field:  verr.Field,
				Reason: verr.Reason,
			})
		case errors.As(err, &decision):
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
				Error:      "decision_required",
				Decision:   "finale",
				ScheduleID: decision.ScheduleID,
				TitleID:    decision.TitleID,
			})
		case errors.Is(err, catalog.ErrInvalidTitle):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: "validation_failed", Reason: err.Error()})
		case errors.Is(err, controllers.ErrNotFound), errors.Is(err, models.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "not_found"})
		}

		logger.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("Request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal_error"})
	}
}

func badRequest(msg string) error {
	return fiber.NewError(fiber.StatusBadRequest, msg)
}

func paramID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid " + name)
	}
	return id, nil
}

func ownerParam(c *fiber.Ctx) (string, error) {
	owner := c.Params("owner")
	if owner == "" {
		return "", badRequest("missing owner")
	}
	return owner, nil
}
