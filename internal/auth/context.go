package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const principalKey = "principal"

// SetPrincipal stores the resolved principal on the request.
func SetPrincipal(c *fiber.Ctx, p *Principal) {
	c.Locals(principalKey, p)
}

// GetPrincipal returns the request's principal or nil.
func GetPrincipal(c *fiber.Ctx) *Principal {
	if p, ok := c.Locals(principalKey).(*Principal); ok {
		return p
	}
	return nil
}

// GetUserID extracts the authenticated user's id.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	p := GetPrincipal(c)
	if p == nil {
		return uuid.Nil, errors.New("no principal in context")
	}
	return p.ID, nil
}
