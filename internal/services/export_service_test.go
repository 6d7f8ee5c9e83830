package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func exportFixture() []dto.AlertListItem {
	return []dto.AlertListItem{
		{
			AlertID:          1,
			ChannelID:        1001,
			ChannelName:      "Greenhouse",
			Location:         [2]float64{51.5, -0.12},
			EntryID:          8,
			Priority:         models.PriorityHigh,
			AlertDescription: "field1 reading 45 is above maximum 40; Humidity, low",
			FieldViolations:  []string{"field1", "field2"},
			Status:           models.AlertUnresolved,
			Date:             time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			AlertID:          2,
			ChannelID:        2002,
			ChannelName:      `Lab "B"`,
			EntryID:          3,
			Priority:         models.PriorityLow,
			AlertDescription: "Cold",
			FieldViolations:  []string{"Temperature"},
			Status:           models.AlertResolved,
			Date:             time.Date(2026, 3, 2, 8, 30, 0, 0, time.FixedZone("EET", 2*60*60)),
		},
	}
}

func TestAlertsCSV(t *testing.T) {
	out, err := AlertsCSV(exportFixture())
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "alerts_csv", out)
}

func TestAlertsCSV_Empty(t *testing.T) {
	out, err := AlertsCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "Alert ID,Channel ID,Channel,Latitude,Longitude,Entry ID,Priority,Status,Violated Fields,Description,Date\n", string(out))
}

func TestAlertsXLSX(t *testing.T) {
	out, err := AlertsXLSX(exportFixture())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Alerts"}, f.GetSheetList())
	rows, err := f.GetRows("Alerts")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, alertExportHeader, rows[0])
	assert.Equal(t, "1001", rows[1][1])
	assert.Equal(t, "Greenhouse", rows[1][2])
	assert.Equal(t, "field1, field2", rows[1][8])
	assert.Equal(t, "2026-03-02T06:30:00Z", rows[2][10])
}
