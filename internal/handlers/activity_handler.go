package handlers

import (
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ActivityHandler struct {
	activityService *services.ActivityService
}

func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateActivityLogRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	entry, err := h.activityService.Create(c.UserContext(), auth.GetPrincipal(c).Email, &req)
	if err != nil {
		return serviceError(c, err, "create activity log")
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *ActivityHandler) List(c *fiber.Ctx) error {
	logs, err := h.activityService.List(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return serviceError(c, err, "list activity logs")
	}
	return c.JSON(fiber.Map{"activityLogs": logs})
}

func (h *ActivityHandler) UsageHistory(c *fiber.Ctx) error {
	rows, err := h.activityService.UsageHistory(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return serviceError(c, err, "list usage history")
	}
	return c.JSON(fiber.Map{"usageHistory": rows})
}
