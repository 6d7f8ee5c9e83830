package middleware

import (
	"net/url"
	"path"
	"strings"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// PageGuard enforces the dashboard policy on page navigations. Denials are
// redirects, never error bodies. Any failure to resolve the session counts
// as no session.
func PageGuard(policy *auth.Policy, cfg *config.Config, sessions *services.SessionStore) fiber.Handler {
	secret := []byte(cfg.JWTSecret)

	return func(c *fiber.Ctx) error {
		target := guardPath(c)
		if !policy.Guarded(target) {
			return c.Next()
		}

		p := sessionPrincipal(c, secret, cfg.SessionCookie, sessions)
		decision := policy.Evaluate(target, p)
		metrics.GuardDecisionsTotal.WithLabelValues(decision.String()).Inc()

		switch decision {
		case auth.DecisionAllow:
			auth.SetPrincipal(c, p)
			return c.Next()
		case auth.DecisionNoSession:
			return c.Redirect(auth.SignInPath+"?callbackUrl="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
		default:
			return c.Redirect(auth.Redirect(decision), fiber.StatusFound)
		}
	}
}

// guardPath is the path the static file server will actually resolve:
// decoded, with duplicate slashes and dot segments removed. Routing is
// case-insensitive, so matching is too.
func guardPath(c *fiber.Ctx) string {
	p := string(c.Context().URI().Path())
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	return strings.ToLower(path.Clean("/" + p))
}

func sessionPrincipal(c *fiber.Ctx, secret []byte, cookie string, sessions *services.SessionStore) *auth.Principal {
	raw := c.Cookies(cookie)
	if raw == "" {
		if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
			raw = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
	}

	p, err := auth.ParseToken(secret, raw)
	if err != nil {
		return nil
	}
	revoked, err := sessions.IsRevoked(c.UserContext(), p)
	if err != nil || revoked {
		return nil
	}
	return p
}
