package handlers

import (
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type LabHandler struct {
	labService    *services.LabService
	apiKeyService *services.ApiKeyService
}

func NewLabHandler(labService *services.LabService, apiKeyService *services.ApiKeyService) *LabHandler {
	return &LabHandler{labService: labService, apiKeyService: apiKeyService}
}

func (h *LabHandler) List(c *fiber.Ctx) error {
	labs, err := h.labService.List(c.UserContext())
	if err != nil {
		return serviceError(c, err, "list labs")
	}
	return c.JSON(fiber.Map{"labs": labs})
}

func (h *LabHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateLabRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	lab, err := h.labService.Create(c.UserContext(), req.ManagerID, req.LabLocation)
	if err != nil {
		return serviceError(c, err, "create lab")
	}
	return c.Status(fiber.StatusCreated).JSON(lab)
}

// CreateKey returns the raw key; it cannot be retrieved again.
func (h *LabHandler) CreateKey(c *fiber.Ctx) error {
	var req dto.CreateApiKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	key, raw, err := h.apiKeyService.Create(c.UserContext(), req.LabID, req.Name)
	if err != nil {
		return serviceError(c, err, "create api key")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ApiKeyCreatedResponse{ApiKey: *key, Key: raw})
}

func (h *LabHandler) ListKeys(c *fiber.Ctx) error {
	labID, ok := parseID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid lab id")
	}

	keys, err := h.apiKeyService.List(c.UserContext(), labID)
	if err != nil {
		return serviceError(c, err, "list api keys")
	}
	return c.JSON(fiber.Map{"apiKeys": keys})
}

func (h *LabHandler) RevokeKey(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid api key id")
	}

	if err := h.apiKeyService.Revoke(c.UserContext(), id); err != nil {
		return serviceError(c, err, "revoke api key")
	}
	return c.JSON(dto.MessageResponse{Message: "API key revoked"})
}
