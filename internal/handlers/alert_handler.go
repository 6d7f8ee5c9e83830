package handlers

import (
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AlertHandler struct {
	alertService   *services.AlertService
	channelService *services.ChannelService
}

func NewAlertHandler(alertService *services.AlertService, channelService *services.ChannelService) *AlertHandler {
	return &AlertHandler{alertService: alertService, channelService: channelService}
}

func (h *AlertHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	res, err := h.alertService.Ingest(c.UserContext(), &req)
	if err != nil {
		return serviceError(c, err, "ingest alert")
	}

	if !res.Created {
		return c.Status(fiber.StatusOK).JSON(dto.AlertsExistResponse{
			Message: "Unresolved alerts already cover these fields",
			Alerts:  res.Existing,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AlertCreatedResponse{
		Message: "Alert created",
		Feed:    res.Feed,
		Alert:   res.Alert,
	})
}

func (h *AlertHandler) List(c *fiber.Ctx) error {
	filter, err := h.filter(c)
	if err != nil {
		return serviceError(c, err, "list alerts")
	}
	filter.Page = c.QueryInt("page", 1)
	filter.Limit = c.QueryInt("limit", 0)

	resp, err := h.alertService.List(c.UserContext(), filter)
	if err != nil {
		return serviceError(c, err, "list alerts")
	}
	return c.JSON(resp)
}

func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid alert id")
	}

	visible, err := h.channelService.VisibleIDs(c.UserContext(), auth.GetPrincipal(c))
	if err != nil {
		return serviceError(c, err, "resolve alert")
	}
	alert, err := h.alertService.Resolve(c.UserContext(), id, visible)
	if err != nil {
		return serviceError(c, err, "resolve alert")
	}
	return c.JSON(fiber.Map{"message": "Alert resolved", "alert": alert})
}

func (h *AlertHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid alert id")
	}

	if err := h.alertService.Delete(c.UserContext(), id); err != nil {
		return serviceError(c, err, "delete alert")
	}
	return c.JSON(dto.MessageResponse{Message: "Alert deleted"})
}

func (h *AlertHandler) ExportCSV(c *fiber.Ctx) error {
	items, err := h.exportItems(c)
	if err != nil {
		return serviceError(c, err, "export alerts")
	}
	body, err := services.AlertsCSV(items)
	if err != nil {
		return serviceError(c, err, "export alerts")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment("alerts.csv")
	return c.Send(body)
}

func (h *AlertHandler) ExportXLSX(c *fiber.Ctx) error {
	items, err := h.exportItems(c)
	if err != nil {
		return serviceError(c, err, "export alerts")
	}
	body, err := services.AlertsXLSX(items)
	if err != nil {
		return serviceError(c, err, "export alerts")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Attachment("alerts.xlsx")
	return c.Send(body)
}

func (h *AlertHandler) exportItems(c *fiber.Ctx) ([]dto.AlertListItem, error) {
	filter, err := h.filter(c)
	if err != nil {
		return nil, err
	}
	return h.alertService.All(c.UserContext(), filter)
}

// filter reads status and channelId and scopes the result to the channels
// the caller can see.
func (h *AlertHandler) filter(c *fiber.Ctx) (services.AlertFilter, error) {
	var f services.AlertFilter
	if s := c.Query("status"); s != "" {
		f.Status = models.AlertStatus(strings.ToUpper(s))
		if !f.Status.Valid() {
			return f, services.ErrValidation
		}
	}
	if raw := c.Query("channelId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return f, services.ErrValidation
		}
		f.ChannelID = uint(id)
	}

	ids, err := h.channelService.VisibleIDs(c.UserContext(), auth.GetPrincipal(c))
	if err != nil {
		return f, err
	}
	f.ChannelIDs = ids
	return f, nil
}
