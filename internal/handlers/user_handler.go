package handlers

import (
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.userService.List(c.UserContext())
	if err != nil {
		return serviceError(c, err, "list users")
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"users": out})
}

func (h *UserHandler) SetRole(c *fiber.Ctx) error {
	target, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid user id")
	}

	var req dto.SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := h.userService.SetRole(c.UserContext(), auth.GetPrincipal(c).ID, target, req.UserRole)
	if err != nil {
		return serviceError(c, err, "set role")
	}
	return c.JSON(dto.NewUserResponse(user))
}

func (h *UserHandler) Activate(c *fiber.Ctx) error {
	return h.setStatus(c, models.StatusActive)
}

func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	return h.setStatus(c, models.StatusInactive)
}

func (h *UserHandler) setStatus(c *fiber.Ctx, status models.UserStatus) error {
	var req dto.UserIDsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	n, err := h.userService.SetStatus(c.UserContext(), auth.GetPrincipal(c).ID, req.UserIDs, status)
	if err != nil {
		return serviceError(c, err, "set status")
	}
	return c.JSON(fiber.Map{"message": "Users updated", "updated": n, "status": status})
}
