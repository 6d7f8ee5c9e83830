package ingest

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func f64(v float64) *float64 { return &v }

func newPipeline(t *testing.T) (*Pipeline, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.CreateChannel(t, db, 1001, 0, "Temperature", "Humidity")

	thresholds := services.NewThresholdService(db)
	_, err := thresholds.Save(context.Background(), 1001, []dto.ThresholdInput{
		{FieldName: "Temperature", MinValue: dto.NewNumber(0), MaxValue: dto.NewNumber(40)},
		{FieldName: "field2", MinValue: dto.NewNumber(20), MaxValue: dto.NewNumber(80)},
	})
	require.NoError(t, err)

	return NewPipeline(
		services.NewChannelService(db),
		thresholds,
		services.NewAlertService(db),
		services.NewFeedService(db),
	), db
}

func TestPipeline_CleanReadingStoresFeed(t *testing.T) {
	p, db := newPipeline(t)

	out, err := p.Process(context.Background(), 1001, models.Reading{f64(21), f64(50)}, SourceAPI)
	require.NoError(t, err)

	require.NotNil(t, out.Feed)
	assert.Nil(t, out.Alert)
	assert.Empty(t, out.Violations)
	assert.Equal(t, int64(1), out.Feed.EntryID)

	var alerts int64
	require.NoError(t, db.Model(&models.Alert{}).Count(&alerts).Error)
	assert.Equal(t, int64(0), alerts)
}

func TestPipeline_ViolationRaisesAlertOnce(t *testing.T) {
	p, db := newPipeline(t)
	ctx := context.Background()

	out, err := p.Process(ctx, 1001, models.Reading{f64(45), f64(50)}, SourceAPI)
	require.NoError(t, err)
	require.NotNil(t, out.Alert)
	assert.Equal(t, []string{"Temperature"}, out.Alert.Violations())
	assert.Equal(t, models.PriorityMedium, out.Alert.Priority)
	assert.Equal(t, "Temperature reading 45 is above maximum 40", out.Alert.AlertDescription)

	out, err = p.Process(ctx, 1001, models.Reading{f64(46), f64(50)}, SourceMQTT)
	require.NoError(t, err)
	assert.True(t, out.Deduplicated)
	assert.Nil(t, out.Alert)
	require.NotNil(t, out.Feed)
	assert.Equal(t, int64(2), out.Feed.EntryID)

	out, err = p.Process(ctx, 1001, models.Reading{f64(47), f64(5)}, SourceMQTT)
	require.NoError(t, err)
	require.NotNil(t, out.Alert)
	assert.Equal(t, []string{"Temperature", "field2"}, out.Alert.Violations())
	assert.Equal(t, models.PriorityHigh, out.Alert.Priority)

	var alerts int64
	require.NoError(t, db.Model(&models.Alert{}).Count(&alerts).Error)
	assert.Equal(t, int64(2), alerts)
}

func TestPipeline_ContinuousViolationKeepsEveryReading(t *testing.T) {
	p, db := newPipeline(t)
	ctx := context.Background()

	for _, v := range []float64{45, 46, 47} {
		_, err := p.Process(ctx, 1001, models.Reading{f64(v), f64(50)}, SourceMQTT)
		require.NoError(t, err)
	}

	var feeds []models.Feed
	require.NoError(t, db.Order("entry_id").Find(&feeds).Error)
	require.Len(t, feeds, 3)
	for i, v := range []float64{45, 46, 47} {
		assert.Equal(t, int64(i+1), feeds[i].EntryID)
		require.NotNil(t, feeds[i].Field1)
		assert.Equal(t, v, *feeds[i].Field1)
	}

	var alerts int64
	require.NoError(t, db.Model(&models.Alert{}).Count(&alerts).Error)
	assert.Equal(t, int64(1), alerts)

	var ch models.Channel
	require.NoError(t, db.First(&ch, 1001).Error)
	assert.Equal(t, int64(3), ch.LastEntryID)
}

func TestPipeline_DefaultsApply(t *testing.T) {
	p, db := newPipeline(t)
	ctx := context.Background()

	_, err := services.NewThresholdService(db).SaveDefaults(ctx, []dto.ThresholdInput{
		{FieldName: "field3", MinValue: dto.NewNumber(0), MaxValue: dto.NewNumber(1)},
	})
	require.NoError(t, err)

	out, err := p.Process(ctx, 1001, models.Reading{nil, nil, f64(3)}, SourceAPI)
	require.NoError(t, err)
	require.NotNil(t, out.Alert)
	assert.Equal(t, []string{"field3"}, out.Alert.Violations())
}

func TestPipeline_UnknownChannel(t *testing.T) {
	p, _ := newPipeline(t)

	_, err := p.Process(context.Background(), 404, models.Reading{}, SourceAPI)
	assert.ErrorIs(t, err, services.ErrChannelNotFound)
}
