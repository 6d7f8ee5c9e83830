package handlers

import (
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/ingest"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

const apiKeyHeader = "X-API-Key"

// IngestHandler accepts device readings authenticated by a lab API key.
type IngestHandler struct {
	apiKeyService *services.ApiKeyService
	processor     ingest.Processor
}

func NewIngestHandler(apiKeyService *services.ApiKeyService, processor ingest.Processor) *IngestHandler {
	return &IngestHandler{apiKeyService: apiKeyService, processor: processor}
}

func (h *IngestHandler) Reading(c *fiber.Ctx) error {
	channelID, ok := parseID(c, "channelId")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid channel id")
	}

	key := c.Get(apiKeyHeader)
	if key == "" {
		return errorJSON(c, fiber.StatusUnauthorized, "Missing API key")
	}
	if err := h.apiKeyService.AuthorizeChannel(c.UserContext(), key, channelID); err != nil {
		return serviceError(c, err, "authorize api key")
	}

	var data dto.FeedData
	if err := c.BodyParser(&data); err != nil {
		return invalidBody(c)
	}

	out, err := h.processor.Process(c.UserContext(), channelID, data.Reading(), ingest.SourceAPI)
	if err != nil {
		return serviceError(c, err, "ingest reading")
	}

	resp := dto.IngestResponse{
		Feed:            out.Feed,
		Alert:           out.Alert,
		FieldViolations: services.FieldNames(out.Violations),
	}
	switch {
	case out.Deduplicated:
		resp.Message = "Reading recorded, violations already have open alerts"
	case out.Alert != nil:
		resp.Message = "Reading recorded, alert raised"
	default:
		resp.Message = "Reading recorded"
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}
