// Package ingest turns raw channel readings into feeds and alerts. HTTP,
// MQTT and the ThingSpeak importer all go through Pipeline.
package ingest

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
)

const (
	SourceAPI        = "api"
	SourceMQTT       = "mqtt"
	SourceThingSpeak = "thingspeak"
)

// Outcome describes what a processed reading produced. Every reading stores
// a Feed; Alert is nil when it was clean or only repeated violations that
// already have open alerts.
type Outcome struct {
	Feed         *models.Feed
	Alert        *models.Alert
	Violations   []services.Violation
	Deduplicated bool
}

// Processor handles one reading of a channel.
type Processor interface {
	Process(ctx context.Context, channelID uint, reading models.Reading, source string) (*Outcome, error)
}

type Pipeline struct {
	channels   *services.ChannelService
	thresholds *services.ThresholdService
	alerts     *services.AlertService
	feeds      *services.FeedService
}

func NewPipeline(channels *services.ChannelService, thresholds *services.ThresholdService, alerts *services.AlertService, feeds *services.FeedService) *Pipeline {
	return &Pipeline{
		channels:   channels,
		thresholds: thresholds,
		alerts:     alerts,
		feeds:      feeds,
	}
}

// Process evaluates the reading against the channel's effective thresholds.
// Violating readings go through alert ingestion; clean ones, and violating
// ones already covered by open alerts, are stored as a plain feed.
func (p *Pipeline) Process(ctx context.Context, channelID uint, reading models.Reading, source string) (*Outcome, error) {
	return p.process(ctx, channelID, reading, source, nil)
}

// ProcessImported is Process for an upstream entry. The entry id is stored
// on the feed so a later import can skip it.
func (p *Pipeline) ProcessImported(ctx context.Context, channelID uint, entryID int64, reading models.Reading) (*Outcome, error) {
	return p.process(ctx, channelID, reading, SourceThingSpeak, &entryID)
}

func (p *Pipeline) process(ctx context.Context, channelID uint, reading models.Reading, source string, sourceEntry *int64) (*Outcome, error) {
	ch, err := p.channels.Get(ctx, nil, channelID)
	if err != nil {
		return nil, err
	}
	thresholds, err := p.thresholds.Effective(ctx, channelID)
	if err != nil {
		return nil, err
	}

	violations := services.Evaluate(ch, thresholds, reading)
	if len(violations) == 0 {
		feed, err := p.feeds.RecordSourced(ctx, channelID, sourceEntry, reading)
		if err != nil {
			return nil, err
		}
		metrics.ReadingsTotal.WithLabelValues(source).Inc()
		return &Outcome{Feed: feed}, nil
	}

	priority := models.PriorityMedium
	if len(violations) > 1 {
		priority = models.PriorityHigh
	}
	res, err := p.alerts.Ingest(ctx, &dto.CreateAlertRequest{
		ChannelID:        channelID,
		FieldViolations:  services.FieldNames(violations),
		AlertDescription: services.Describe(violations),
		Priority:         string(priority),
		FeedData:         dto.NewFeedData(reading),
		SourceEntryID:    sourceEntry,
	})
	if err != nil {
		return nil, err
	}
	if res.Created {
		metrics.ReadingsTotal.WithLabelValues(source).Inc()
		return &Outcome{Feed: res.Feed, Alert: res.Alert, Violations: violations}, nil
	}

	// Open alerts already cover these fields; the reading is still history.
	feed, err := p.feeds.RecordSourced(ctx, channelID, sourceEntry, reading)
	if err != nil {
		return nil, err
	}
	metrics.ReadingsTotal.WithLabelValues(source).Inc()
	slog.Info("reading repeats open alert", "channel_id", channelID, "source", source, "fields", services.FieldNames(violations))
	return &Outcome{Feed: feed, Violations: violations, Deduplicated: true}, nil
}
