package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func alertApp(t *testing.T, p *auth.Principal) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	h := NewAlertHandler(services.NewAlertService(db), services.NewChannelService(db))

	app := fiber.New()
	app.Use(asPrincipal(p))
	app.Post("/api/alerts", h.Create)
	app.Get("/api/alerts", h.List)
	app.Get("/api/alerts/export.csv", h.ExportCSV)
	app.Patch("/api/alerts/:id/resolve", h.Resolve)
	app.Delete("/api/alerts/:id", h.Delete)
	return app, db
}

func alertBody(channelID uint, fields ...string) map[string]interface{} {
	return map[string]interface{}{
		"channelId":        channelID,
		"fieldViolations":  fields,
		"alertDescription": "Temperature above threshold",
		"feedData":         map[string]interface{}{"field1": 45.2, "field2": nil},
	}
}

func TestAlertCreate(t *testing.T) {
	app, db := alertApp(t, &auth.Principal{Role: models.RoleAdmin, Status: models.StatusActive})
	testutil.CreateChannel(t, db, 1001, 0)

	resp, body := doJSON(t, app, http.MethodPost, "/api/alerts", alertBody(1001, "field1"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Alert created", body["message"])
	feed := body["feed"].(map[string]interface{})
	alert := body["alert"].(map[string]interface{})
	assert.Equal(t, float64(1), feed["entryId"])
	assert.Equal(t, []interface{}{"field1"}, alert["fieldViolations"])
	assert.Equal(t, "UNRESOLVED", alert["alertStatus"])

	resp, body = doJSON(t, app, http.MethodPost, "/api/alerts", alertBody(1001, "field1"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Unresolved alerts already cover these fields", body["message"])
	assert.Len(t, body["alerts"], 1)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/alerts", alertBody(404, "field1"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, "/api/alerts", alertBody(1001))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, true, body["error"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/alerts", `{"channelId": "abc"`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAlertList_ScopedToGrants(t *testing.T) {
	p := &auth.Principal{Role: models.RoleStandardUser, Status: models.StatusActive}
	app, db := alertApp(t, p)

	user := testutil.CreateUser(t, db, "viewer@example.com", "correct-horse", models.RoleStandardUser, models.StatusActive)
	p.ID = user.ID
	testutil.CreateChannel(t, db, 1001, 0)
	testutil.CreateChannel(t, db, 2002, 0)
	require.NoError(t, db.Create(&models.Access{UserID: user.ID, ChannelID: 2002}).Error)

	for _, id := range []uint{1001, 2002} {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/alerts", alertBody(id, "field1"))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := doJSON(t, app, http.MethodGet, "/api/alerts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	alerts := body["alerts"].([]interface{})
	require.Len(t, alerts, 1)
	assert.Equal(t, float64(2002), alerts[0].(map[string]interface{})["channelId"])
	assert.Equal(t, float64(1), body["total"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/alerts?status=open", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAlertResolve_ScopedToGrants(t *testing.T) {
	p := &auth.Principal{Role: models.RoleStandardUser, Status: models.StatusActive}
	app, db := alertApp(t, p)

	user := testutil.CreateUser(t, db, "viewer@example.com", "correct-horse", models.RoleStandardUser, models.StatusActive)
	p.ID = user.ID
	testutil.CreateChannel(t, db, 1001, 0)
	testutil.CreateChannel(t, db, 2002, 0)
	require.NoError(t, db.Create(&models.Access{UserID: user.ID, ChannelID: 2002}).Error)

	ids := map[uint]string{}
	for _, channelID := range []uint{1001, 2002} {
		resp, body := doJSON(t, app, http.MethodPost, "/api/alerts", alertBody(channelID, "field1"))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		ids[channelID] = strconv.Itoa(int(body["alert"].(map[string]interface{})["id"].(float64)))
	}

	resp, _ := doJSON(t, app, http.MethodPatch, "/api/alerts/"+ids[1001]+"/resolve", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var hidden models.Alert
	require.NoError(t, db.Where("channel_id = ?", 1001).First(&hidden).Error)
	assert.Equal(t, models.AlertUnresolved, hidden.AlertStatus)

	resp, body := doJSON(t, app, http.MethodPatch, "/api/alerts/"+ids[2002]+"/resolve", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "RESOLVED", body["alert"].(map[string]interface{})["alertStatus"])
}

func TestAlertResolveDeleteAndExport(t *testing.T) {
	app, db := alertApp(t, &auth.Principal{Role: models.RoleAdmin, Status: models.StatusActive})
	testutil.CreateChannel(t, db, 1001, 0)

	_, body := doJSON(t, app, http.MethodPost, "/api/alerts", alertBody(1001, "field1"))
	id := int(body["alert"].(map[string]interface{})["id"].(float64))
	target := "/api/alerts/" + strconv.Itoa(id)

	resp, body := doJSON(t, app, http.MethodPatch, target+"/resolve", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "RESOLVED", body["alert"].(map[string]interface{})["alertStatus"])

	resp, _ = doJSON(t, app, http.MethodPatch, "/api/alerts/abc/resolve", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/alerts/export.csv", nil)
	csvResp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, csvResp.StatusCode)
	assert.Contains(t, csvResp.Header.Get("Content-Disposition"), "alerts.csv")
	raw, err := io.ReadAll(csvResp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], strconv.Itoa(id)+",1001,Channel 1001,"))

	resp, _ = doJSON(t, app, http.MethodDelete, target, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodDelete, target, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
