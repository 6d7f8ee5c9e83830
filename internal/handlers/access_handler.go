package handlers

import (
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AccessHandler struct {
	accessService *services.AccessService
}

func NewAccessHandler(accessService *services.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

func (h *AccessHandler) Grant(c *fiber.Ctx) error {
	var req dto.GrantAccessRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	resp, err := h.accessService.Grant(c.UserContext(), auth.GetPrincipal(c).ID, &req)
	if err != nil {
		return serviceError(c, err, "grant access")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List returns the grants of ?userId=, defaulting to the caller. Only
// channel-wide roles may look at other users.
func (h *AccessHandler) List(c *fiber.Ctx) error {
	p := auth.GetPrincipal(c)
	userID := p.ID
	if raw := c.Query("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid user id")
		}
		if id != p.ID && !services.SeesAllChannels(p.Role) {
			return errorJSON(c, fiber.StatusForbidden, "Forbidden: insufficient role")
		}
		userID = id
	}

	grants, err := h.accessService.ListForUser(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, err, "list access")
	}
	return c.JSON(fiber.Map{"access": grants})
}

func (h *AccessHandler) Remove(c *fiber.Ctx) error {
	var req dto.RemoveAccessRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if req.UserID == uuid.Nil || req.ChannelID == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "userId and channelId are required")
	}

	if err := h.accessService.Remove(c.UserContext(), req.UserID, req.ChannelID); err != nil {
		return serviceError(c, err, "remove access")
	}
	return c.JSON(dto.MessageResponse{Message: "Access removed"})
}
