package middleware

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWTProtected accepts a bearer token or the session cookie, rebuilds the
// principal from its claims and rejects tokens revoked in the session store.
func JWTProtected(cfg *config.Config, sessions *services.SessionStore) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		TokenLookup: "header:Authorization,cookie:" + cfg.SessionCookie,
		AuthScheme:  "Bearer",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c, "Unauthorized: invalid or expired token")
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return unauthorized(c, "Unauthorized: invalid or expired token")
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(c, "Unauthorized: invalid claims")
			}
			p, err := auth.PrincipalFromClaims(claims)
			if err != nil {
				return unauthorized(c, "Unauthorized: invalid claims")
			}
			if p.Status != models.StatusActive {
				return unauthorized(c, "Unauthorized: account is deactivated")
			}

			revoked, err := sessions.IsRevoked(c.UserContext(), p)
			if err != nil {
				slog.Error("session revocation check failed", "user_id", p.ID.String(), "error", err.Error())
				return unauthorized(c, "Unauthorized: session could not be verified")
			}
			if revoked {
				return unauthorized(c, "Unauthorized: session has been revoked")
			}

			auth.SetPrincipal(c, p)
			return c.Next()
		},
	})
}

// RequireRoles gates an API route on the principal set by JWTProtected.
func RequireRoles(roles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch auth.Authorize(auth.GetPrincipal(c), roles...) {
		case auth.DecisionAllow:
			return c.Next()
		case auth.DecisionForbidden:
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Forbidden: insufficient role",
			})
		default:
			return unauthorized(c, "Unauthorized")
		}
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
