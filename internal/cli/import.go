package cli

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/ingest"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/spf13/cobra"
)

func NewImportCommand(opts *RootOptions) *cobra.Command {
	var (
		channelID uint
		results   int
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Pull recent ThingSpeak feeds of a channel through the ingestion pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if channelID == 0 {
				return fmt.Errorf("--channel is required")
			}
			db, err := opts.db()
			if err != nil {
				return err
			}

			channels := services.NewChannelService(db)
			feeds := services.NewFeedService(db)
			pipeline := ingest.NewPipeline(
				channels,
				services.NewThresholdService(db),
				services.NewAlertService(db),
				feeds,
			)
			client := services.NewThingSpeakClient(opts.Config.ThingSpeakURL, opts.Config.ThingSpeakAPIKey)

			stats, err := ingest.NewImporter(client, channels, feeds, pipeline).Import(cmd.Context(), channelID, results)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d, alerts %d\n", stats.Imported, stats.Skipped, stats.Alerts)
			return nil
		},
	}

	cmd.Flags().UintVar(&channelID, "channel", 0, "ThingSpeak channel id")
	cmd.Flags().IntVar(&results, "results", 100, "number of recent entries to fetch")
	return cmd
}
