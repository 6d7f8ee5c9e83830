package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func invalidBody(c *fiber.Ctx) error {
	return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
}

// serviceError maps service errors onto HTTP statuses. Anything unknown is
// logged and reported as a generic 500.
func serviceError(c *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrNoUsersGiven),
		errors.Is(err, services.ErrInvalidResetToken):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrInvalidApiKey):
		return errorJSON(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrDeactivatedAccount),
		errors.Is(err, services.ErrSelfDemotion):
		return errorJSON(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrChannelNotFound),
		errors.Is(err, services.ErrAlertNotFound),
		errors.Is(err, services.ErrLabNotFound),
		errors.Is(err, services.ErrApiKeyNotFound),
		errors.Is(err, services.ErrAccessNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrUsersNotFound):
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrAlreadyGranted),
		errors.Is(err, services.ErrChannelExists):
		return errorJSON(c, fiber.StatusConflict, err.Error())
	}

	slog.Error(action+" failed",
		"request_id", fmt.Sprint(c.Locals("requestid")),
		"method", c.Method(),
		"path", c.Path(),
		"error", err.Error(),
	)
	return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
}

// parseID reads a positive integer path parameter.
func parseID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
