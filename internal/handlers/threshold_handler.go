package handlers

import (
	"math"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ThresholdHandler struct {
	thresholdService *services.ThresholdService
}

func NewThresholdHandler(thresholdService *services.ThresholdService) *ThresholdHandler {
	return &ThresholdHandler{thresholdService: thresholdService}
}

func (h *ThresholdHandler) List(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Query("channelId"), 10, 32)
	if err != nil || id == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "channelId must be a positive integer")
	}

	rows, err := h.thresholdService.List(c.UserContext(), uint(id))
	if err != nil {
		return serviceError(c, err, "list thresholds")
	}
	return c.JSON(dto.ThresholdsResponse{Thresholds: services.ToThresholdResponses(rows)})
}

func (h *ThresholdHandler) Save(c *fiber.Ctx) error {
	var req dto.SaveThresholdsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	id := req.ChannelID.Value
	if !req.ChannelID.Valid || id <= 0 || id != math.Trunc(id) || id > math.MaxUint32 {
		return errorJSON(c, fiber.StatusBadRequest, "channelId must be a positive integer")
	}
	if req.Thresholds == nil {
		return errorJSON(c, fiber.StatusBadRequest, "thresholds must be an array")
	}

	rows, err := h.thresholdService.Save(c.UserContext(), uint(id), *req.Thresholds)
	if err != nil {
		return serviceError(c, err, "save thresholds")
	}
	return c.JSON(fiber.Map{
		"message":    "Thresholds saved",
		"thresholds": services.ToThresholdResponses(rows),
	})
}

func (h *ThresholdHandler) ListDefaults(c *fiber.Ctx) error {
	rows, err := h.thresholdService.ListDefaults(c.UserContext())
	if err != nil {
		return serviceError(c, err, "list default thresholds")
	}
	return c.JSON(dto.DefaultsResponse{Fields: services.ToDefaultResponses(rows)})
}

func (h *ThresholdHandler) SaveDefaults(c *fiber.Ctx) error {
	var req dto.SaveDefaultsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if req.Fields == nil {
		return errorJSON(c, fiber.StatusBadRequest, "fields must be an array")
	}

	rows, err := h.thresholdService.SaveDefaults(c.UserContext(), *req.Fields)
	if err != nil {
		return serviceError(c, err, "save default thresholds")
	}
	return c.JSON(fiber.Map{
		"message": "Default thresholds saved",
		"fields":  services.ToDefaultResponses(rows),
	})
}
