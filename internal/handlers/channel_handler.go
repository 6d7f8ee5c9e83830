package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ChannelHandler struct {
	channelService *services.ChannelService
	feedService    *services.FeedService
}

func NewChannelHandler(channelService *services.ChannelService, feedService *services.FeedService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService, feedService: feedService}
}

func (h *ChannelHandler) List(c *fiber.Ctx) error {
	channels, err := h.channelService.List(c.UserContext(), auth.GetPrincipal(c))
	if err != nil {
		return serviceError(c, err, "list channels")
	}
	return c.JSON(fiber.Map{"channels": channels})
}

func (h *ChannelHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid channel id")
	}

	ch, err := h.channelService.Get(c.UserContext(), auth.GetPrincipal(c), id)
	if err != nil {
		return serviceError(c, err, "get channel")
	}
	return c.JSON(ch)
}

func (h *ChannelHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateChannelRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	ch, err := h.channelService.Create(c.UserContext(), &req)
	if err != nil {
		return serviceError(c, err, "create channel")
	}
	return c.Status(fiber.StatusCreated).JSON(ch)
}

func (h *ChannelHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid channel id")
	}

	if err := h.channelService.Delete(c.UserContext(), id); err != nil {
		return serviceError(c, err, "delete channel")
	}
	return c.JSON(dto.MessageResponse{Message: "Channel deleted"})
}

// Feeds lists a channel's readings; from and to are RFC 3339 timestamps.
func (h *ChannelHandler) Feeds(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid channel id")
	}
	if _, err := h.channelService.Get(c.UserContext(), auth.GetPrincipal(c), id); err != nil {
		return serviceError(c, err, "list feeds")
	}

	q := services.FeedQuery{Limit: c.QueryInt("limit", 0)}
	for name, dst := range map[string]*time.Time{"from": &q.From, "to": &q.To} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, name+" must be an RFC 3339 timestamp")
		}
		*dst = t
	}

	feeds, err := h.feedService.List(c.UserContext(), id, q)
	if err != nil {
		return serviceError(c, err, "list feeds")
	}
	return c.JSON(dto.FeedsResponse{Feeds: feeds, Count: len(feeds)})
}
