package handlers

import (
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

const resetRequestedMessage = "If an account exists for that email, a reset link has been sent"

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := h.authService.SignUp(c.UserContext(), &req)
	if err != nil {
		return serviceError(c, err, "sign up")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created",
		"user":    dto.NewUserResponse(user),
	})
}

func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if req.Email == "" || req.Password == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Email and password are required")
	}

	resp, err := h.authService.SignIn(c.UserContext(), &req)
	if err != nil {
		return serviceError(c, err, "sign in")
	}

	h.setSessionCookie(c, resp.AccessToken)
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		return serviceError(c, err, "refresh")
	}

	h.setSessionCookie(c, resp.AccessToken)
	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.LogoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
	}

	if err := h.authService.Logout(c.UserContext(), userID, &req); err != nil {
		return serviceError(c, err, "logout")
	}

	c.ClearCookie(h.cfg.SessionCookie)
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

// ForgotPassword answers the same way whether or not the email is known.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if strings.TrimSpace(req.Email) == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Email is required")
	}

	if err := h.authService.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		slog.Error("password reset request failed", "error", err.Error())
	}
	return c.JSON(dto.MessageResponse{Message: resetRequestedMessage})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.authService.ResetPassword(c.UserContext(), &req); err != nil {
		return serviceError(c, err, "reset password")
	}
	return c.JSON(dto.MessageResponse{Message: "Password has been reset"})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.authService.ChangePassword(c.UserContext(), userID, &req); err != nil {
		return serviceError(c, err, "change password")
	}

	c.ClearCookie(h.cfg.SessionCookie)
	return c.JSON(dto.MessageResponse{Message: "Password changed, please sign in again"})
}

func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	user, err := h.authService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, err, "get profile")
	}
	return c.JSON(dto.NewProfileResponse(user))
}

// UpdateProfile saves profile fields and refreshes the session cookie so the
// embedded claims match.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := h.authService.UpdateProfile(c.UserContext(), userID, &req)
	if err != nil {
		return serviceError(c, err, "update profile")
	}

	if token, err := h.authService.IssueAccessToken(user); err == nil {
		h.setSessionCookie(c, token)
	}
	return c.JSON(dto.NewProfileResponse(user))
}

func (h *AuthHandler) GetOrganisation(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	user, err := h.authService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, err, "get organisation")
	}
	return c.JSON(dto.NewOrganisationResponse(user))
}

// UpdateOrganisation saves organisation details. The organisation name is a
// session claim, so the cookie is refreshed like on UpdateProfile.
func (h *AuthHandler) UpdateOrganisation(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.UpdateOrganisationRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := h.authService.UpdateOrganisation(c.UserContext(), userID, &req)
	if err != nil {
		return serviceError(c, err, "update organisation")
	}

	if token, err := h.authService.IssueAccessToken(user); err == nil {
		h.setSessionCookie(c, token)
	}
	return c.JSON(dto.NewOrganisationResponse(user))
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.JWTAccessExpiry),
		HTTPOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
