package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
)

// FeedSource lists recent upstream feeds of a channel, oldest first.
type FeedSource interface {
	Feeds(ctx context.Context, channelID uint, results int) ([]services.ThingSpeakFeed, error)
}

// ImportProcessor handles one upstream entry of a channel.
type ImportProcessor interface {
	ProcessImported(ctx context.Context, channelID uint, entryID int64, reading models.Reading) (*Outcome, error)
}

type Importer struct {
	source    FeedSource
	channels  *services.ChannelService
	feeds     *services.FeedService
	processor ImportProcessor
}

func NewImporter(source FeedSource, channels *services.ChannelService, feeds *services.FeedService, processor ImportProcessor) *Importer {
	return &Importer{source: source, channels: channels, feeds: feeds, processor: processor}
}

// ImportStats counts the entries an import run handled.
type ImportStats struct {
	Imported int
	Skipped  int
	Alerts   int
}

// Import replays upstream entries that have no stored feed yet through the
// pipeline, so running it again imports nothing new.
func (im *Importer) Import(ctx context.Context, channelID uint, results int) (*ImportStats, error) {
	if _, err := im.channels.Get(ctx, nil, channelID); err != nil {
		return nil, err
	}
	feeds, err := im.source.Feeds(ctx, channelID, results)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(feeds))
	for i := range feeds {
		ids[i] = feeds[i].EntryID
	}
	stored, err := im.feeds.StoredSourceEntries(ctx, channelID, ids)
	if err != nil {
		return nil, err
	}

	stats := &ImportStats{}
	for i := range feeds {
		if stored[feeds[i].EntryID] {
			stats.Skipped++
			continue
		}
		out, err := im.processor.ProcessImported(ctx, channelID, feeds[i].EntryID, feeds[i].Reading())
		if err != nil {
			return stats, fmt.Errorf("import entry %d: %w", feeds[i].EntryID, err)
		}
		stored[feeds[i].EntryID] = true
		stats.Imported++
		if out.Alert != nil {
			stats.Alerts++
		}
	}

	slog.Info("thingspeak import finished", "channel_id", channelID, "imported", stats.Imported, "skipped", stats.Skipped, "alerts", stats.Alerts)
	return stats, nil
}
