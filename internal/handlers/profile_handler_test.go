package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func profileApp(t *testing.T) (*fiber.App, *gorm.DB, *models.User) {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 24 * time.Hour,
		SessionCookie:    "session",
	}
	h := NewAuthHandler(services.NewAuthService(db, cfg, nil, services.LogResetNotifier{}), cfg)
	user := testutil.CreateUser(t, db, "ana@example.com", "correct-horse", models.RoleStandardUser, models.StatusActive)

	app := fiber.New()
	app.Use(asPrincipal(auth.PrincipalFromUser(user)))
	app.Get("/api/profile", h.GetProfile)
	app.Put("/api/profile", h.UpdateProfile)
	app.Get("/api/profile/organisation", h.GetOrganisation)
	app.Put("/api/profile/organisation", h.UpdateOrganisation)
	return app, db, user
}

func TestProfileHandler_PersonalDetails(t *testing.T) {
	app, db, _ := profileApp(t)
	testutil.CreateUser(t, db, "taken@example.com", "correct-horse", models.RoleStandardUser, models.StatusActive)

	resp, body := doJSON(t, app, http.MethodPut, "/api/profile", map[string]string{
		"phoneNumber":    "+44 20 7946 0000",
		"addressLine1":   "1 Sensor Way",
		"addressLine2":   "Flat 2",
		"city":           "Leeds",
		"county":         "West Yorkshire",
		"postcode":       "LS1 1AA",
		"specialisation": "Soil moisture",
		"description":    "Runs the greenhouse array.",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Leeds", body["city"])
	assert.Equal(t, "ana@example.com", body["email"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "+44 20 7946 0000", body["phoneNumber"])
	assert.Equal(t, "1 Sensor Way", body["addressLine1"])
	assert.Equal(t, "Flat 2", body["addressLine2"])
	assert.Equal(t, "West Yorkshire", body["county"])
	assert.Equal(t, "LS1 1AA", body["postcode"])
	assert.Equal(t, "Soil moisture", body["specialisation"])
	assert.Equal(t, "Runs the greenhouse array.", body["description"])
	assert.Equal(t, "STANDARD_USER", body["userRole"])

	resp, body = doJSON(t, app, http.MethodPut, "/api/profile", map[string]string{"email": "taken@example.com"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "email already registered", body["message"])

	resp, _ = doJSON(t, app, http.MethodPut, "/api/profile", `{"city": `)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProfileHandler_Organisation(t *testing.T) {
	app, _, _ := profileApp(t)

	resp, body := doJSON(t, app, http.MethodPut, "/api/profile/organisation", map[string]string{
		"organisation":             "Field Lab",
		"organisationRole":         "Lab manager",
		"organisationEmail":        "office@fieldlab.example",
		"organisationPhoneNumber":  "0113 496 0000",
		"organisationAddressLine1": "Unit 4",
		"organisationCity":         "Leeds",
		"organisationPostcode":     "LS2 9JT",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Field Lab", body["organisation"])

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			session = c
		}
	}
	require.NotNil(t, session)
	p, err := auth.ParseToken([]byte("test-secret"), session.Value)
	require.NoError(t, err)
	assert.Equal(t, "Field Lab", p.Organisation)

	resp, body = doJSON(t, app, http.MethodGet, "/api/profile/organisation", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lab manager", body["organisationRole"])
	assert.Equal(t, "office@fieldlab.example", body["organisationEmail"])
	assert.Equal(t, "0113 496 0000", body["organisationPhoneNumber"])
	assert.Equal(t, "Unit 4", body["organisationAddressLine1"])
	assert.Equal(t, "", body["organisationAddressLine2"])
	assert.Equal(t, "Leeds", body["organisationCity"])
	assert.Equal(t, "LS2 9JT", body["organisationPostcode"])
	assert.NotContains(t, body, "email", "personal fields stay on /api/profile")
}

func TestProfileHandler_NoPrincipal(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{JWTSecret: "test-secret", SessionCookie: "session"}
	h := NewAuthHandler(services.NewAuthService(db, cfg, nil, services.LogResetNotifier{}), cfg)
	app := fiber.New()
	app.Get("/api/profile/organisation", h.GetOrganisation)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/profile/organisation", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
