package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func alertRequest(channelID uint, fields ...string) *dto.CreateAlertRequest {
	temp := 41.5
	hum := 12.0
	return &dto.CreateAlertRequest{
		ChannelID:        channelID,
		FieldViolations:  fields,
		AlertDescription: "Reading outside configured bounds",
		FeedData:         &dto.FeedData{Field1: &temp, Field2: &hum},
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func lastEntryID(t *testing.T, db *gorm.DB, channelID uint) int64 {
	t.Helper()
	var ch models.Channel
	require.NoError(t, db.First(&ch, "id = ?", channelID).Error)
	return ch.LastEntryID
}

func TestIngest_NoOpenAlerts_CreatesFeedAndAlert(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateChannel(t, db, 1001, 7, "Temperature", "Humidity")
	svc := NewAlertService(db)

	res, err := svc.Ingest(context.Background(), alertRequest(1001, "field1", "field2"))
	require.NoError(t, err)

	require.True(t, res.Created)
	require.NotNil(t, res.Feed)
	require.NotNil(t, res.Alert)
	assert.Equal(t, int64(1), countRows(t, db, &models.Feed{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Alert{}))
	assert.Equal(t, int64(8), lastEntryID(t, db, 1001))

	assert.Equal(t, int64(8), res.Feed.EntryID)
	assert.Equal(t, res.Feed.ID, res.Alert.FeedID)
	assert.Equal(t, int64(8), res.Alert.EntryID)
	assert.Equal(t, []string{"field1", "field2"}, res.Alert.Violations())
	assert.Equal(t, models.PriorityHigh, res.Alert.Priority)
	assert.Equal(t, models.AlertUnresolved, res.Alert.AlertStatus)
	require.NotNil(t, res.Feed.Field1)
	assert.Equal(t, 41.5, *res.Feed.Field1)
	assert.Nil(t, res.Feed.Field3)
}

func TestIngest_CoveredFields_ReturnsExistingAndWritesNothing(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateChannel(t, db, 1001, 0)
	svc := NewAlertService(db)
	ctx := context.Background()

	first, err := svc.Ingest(ctx, alertRequest(1001, "field1", "field2"))
	require.NoError(t, err)
	require.True(t, first.Created)

	for _, fields := range [][]string{{"field1"}, {"field2"}, {"field2", "field1"}} {
		res, err := svc.Ingest(ctx, alertRequest(1001, fields...))
		require.NoError(t, err)
		assert.False(t, res.Created, "fields %v", fields)
		require.Len(t, res.Existing, 1)
		assert.Equal(t, first.Alert.ID, res.Existing[0].ID)
		assert.Equal(t, first.Alert.AlertDate.Unix(), res.Existing[0].AlertDate.Unix())
	}

	assert.Equal(t, int64(1), countRows(t, db, &models.Feed{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Alert{}))
	assert.Equal(t, int64(1), lastEntryID(t, db, 1001))
}

func TestIngest_NewFieldAlongsideCovered_StoresFullList(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateChannel(t, db, 1001, 0)
	svc := NewAlertService(db)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, alertRequest(1001, "field1"))
	require.NoError(t, err)

	res, err := svc.Ingest(ctx, alertRequest(1001, "field1", "field2"))
	require.NoError(t, err)

	require.True(t, res.Created)
	assert.ElementsMatch(t, []string{"field1", "field2"}, res.Alert.Violations())
	assert.Equal(t, int64(2), countRows(t, db, &models.Feed{}))
	assert.Equal(t, int64(2), countRows(t, db, &models.Alert{}))
	assert.Equal(t, int64(2), lastEntryID(t, db, 1001))
	assert.Equal(t, int64(2), res.Feed.EntryID)
}

func TestIngest_ResolvedAlertsDoNotSuppress(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateChannel(t, db, 1001, 0)
	svc := NewAlertService(db)
	ctx := context.Background()

	first, err := svc.Ingest(ctx, alertRequest(1001, "field1"))
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, first.Alert.ID, nil)
	require.NoError(t, err)

	res, err := svc.Ingest(ctx, alertRequest(1001, "field1"))
	require.NoError(t, err)
	assert.True(t, res.Created)
}

func TestIngest_UnknownChannel(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAlertService(db)

	_, err := svc.Ingest(context.Background(), alertRequest(404, "field1"))
	assert.ErrorIs(t, err, ErrChannelNotFound)
	assert.Equal(t, int64(0), countRows(t, db, &models.Feed{}))
	assert.Equal(t, int64(0), countRows(t, db, &models.Alert{}))
}

func TestIngest_Validation(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateChannel(t, db, 1001, 0)
	svc := NewAlertService(db)

	tests := []struct {
		name   string
		mutate func(r *dto.CreateAlertRequest)
	}{
		{"missing channel", func(r *dto.CreateAlertRequest) { r.ChannelID = 0 }},
		{"no violations", func(r *dto.CreateAlertRequest) { r.FieldViolations = nil }},
		{"blank violation", func(r *dto.CreateAlertRequest) { r.FieldViolations = []string{"field1", " "} }},
		{"missing description", func(r *dto.CreateAlertRequest) { r.AlertDescription = "  " }},
		{"missing feed data", func(r *dto.CreateAlertRequest) { r.FeedData = nil }},
		{"unknown priority", func(r *dto.CreateAlertRequest) { r.Priority = "URGENT" }},
		{"unknown status", func(r *dto.CreateAlertRequest) { r.AlertStatus = "OPEN" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := alertRequest(1001, "field1")
			tt.mutate(req)
			_, err := svc.Ingest(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Equal(t, int64(0), countRows(t, db, &models.Feed{}))
	assert.Equal(t, int64(0), lastEntryID(t, db, 1001))
}

func TestIngest_ExplicitPriorityAndStatus(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateChannel(t, db, 1001, 0)
	svc := NewAlertService(db)

	req := alertRequest(1001, "field1")
	req.Priority = "low"
	req.AlertStatus = "RESOLVED"
	res, err := svc.Ingest(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, models.PriorityLow, res.Alert.Priority)
	assert.Equal(t, models.AlertResolved, res.Alert.AlertStatus)
	assert.NotNil(t, res.Alert.ResolvedAt)
}

func TestIngest_ConcurrentDuplicatesCreateOneAlert(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateChannel(t, db, 1001, 0)
	svc := NewAlertService(db)

	const workers = 8
	var wg sync.WaitGroup
	created := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Ingest(context.Background(), alertRequest(1001, "field1"))
			if assert.NoError(t, err) {
				created <- res.Created
			}
		}()
	}
	wg.Wait()
	close(created)

	n := 0
	for c := range created {
		if c {
			n++
		}
	}
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(1), countRows(t, db, &models.Alert{}))
	assert.Equal(t, int64(1), lastEntryID(t, db, 1001))
}

func TestAlertList_JoinsChannelAndFilters(t *testing.T) {
	db := testutil.NewDB(t)
	ch := testutil.CreateChannel(t, db, 1001, 0)
	require.NoError(t, db.Model(ch).Updates(map[string]interface{}{"latitude": 51.5, "longitude": -0.12}).Error)
	testutil.CreateChannel(t, db, 2002, 0)
	svc := NewAlertService(db)
	ctx := context.Background()

	a, err := svc.Ingest(ctx, alertRequest(1001, "field1"))
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, alertRequest(2002, "field3"))
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, a.Alert.ID, nil)
	require.NoError(t, err)

	all, err := svc.List(ctx, AlertFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	require.Len(t, all.Alerts, 2)

	resolved, err := svc.List(ctx, AlertFilter{Status: models.AlertResolved})
	require.NoError(t, err)
	require.Len(t, resolved.Alerts, 1)
	item := resolved.Alerts[0]
	assert.Equal(t, "Channel 1001", item.ChannelName)
	assert.Equal(t, [2]float64{51.5, -0.12}, item.Location)
	assert.Equal(t, []string{"field1"}, item.FieldViolations)

	scoped, err := svc.List(ctx, AlertFilter{ChannelIDs: []uint{2002}})
	require.NoError(t, err)
	require.Len(t, scoped.Alerts, 1)
	assert.Equal(t, uint(2002), scoped.Alerts[0].ChannelID)

	none, err := svc.List(ctx, AlertFilter{ChannelIDs: []uint{}})
	require.NoError(t, err)
	assert.Empty(t, none.Alerts)
	assert.Equal(t, int64(0), none.Total)
}

func TestAlertResolveAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateChannel(t, db, 1001, 0)
	svc := NewAlertService(db)
	ctx := context.Background()

	res, err := svc.Ingest(ctx, alertRequest(1001, "field1"))
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, res.Alert.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.AlertResolved, resolved.AlertStatus)
	assert.NotNil(t, resolved.ResolvedAt)

	_, err = svc.Resolve(ctx, 999, nil)
	assert.ErrorIs(t, err, ErrAlertNotFound)

	require.NoError(t, svc.Delete(ctx, res.Alert.ID))
	assert.ErrorIs(t, svc.Delete(ctx, res.Alert.ID), ErrAlertNotFound)
	assert.Equal(t, int64(1), countRows(t, db, &models.Feed{}))
}

func TestIngest_FailedAlertInsertRollsBackFeedAndCounter(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateChannel(t, db, 1001, 5)
	boom := errors.New("boom")
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_alert_insert", func(tx *gorm.DB) {
		if tx.Statement.Table == "alerts" {
			_ = tx.AddError(boom)
		}
	}))

	_, err := NewAlertService(db).Ingest(context.Background(), alertRequest(1001, "field1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, int64(5), lastEntryID(t, db, 1001))
	assert.Equal(t, int64(0), countRows(t, db, &models.Feed{}))
	assert.Equal(t, int64(0), countRows(t, db, &models.Alert{}))
}

func TestResolve_OutsideVisibleChannels(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateChannel(t, db, 1001, 0)
	svc := NewAlertService(db)
	ctx := context.Background()

	res, err := svc.Ingest(ctx, alertRequest(1001, "field1"))
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, res.Alert.ID, []uint{2002})
	assert.ErrorIs(t, err, ErrAlertNotFound)
	_, err = svc.Resolve(ctx, res.Alert.ID, []uint{})
	assert.ErrorIs(t, err, ErrAlertNotFound)

	var stored models.Alert
	require.NoError(t, db.First(&stored, res.Alert.ID).Error)
	assert.Equal(t, models.AlertUnresolved, stored.AlertStatus)

	resolved, err := svc.Resolve(ctx, res.Alert.ID, []uint{2002, 1001})
	require.NoError(t, err)
	assert.Equal(t, models.AlertResolved, resolved.AlertStatus)
}
