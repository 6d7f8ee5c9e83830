// Package cli implements sensorctl, the operator command line.
package cli

import (
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RootOptions is shared by every subcommand.
type RootOptions struct {
	Config *config.Config
	// Open connects to the database; tests swap it for SQLite.
	Open func(*config.Config) (*gorm.DB, error)
}

// NewRootCommand builds sensorctl against the environment configuration.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(&RootOptions{
		Config: config.Load(),
		Open:   database.Open,
	})
}

func NewRootCommandWith(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sensorctl",
		Short:         "Operate the SensorWatch backend",
		Long:          "Database migrations, seeding, admin bootstrap and ThingSpeak imports for SensorWatch.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewCreateAdminCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))

	return cmd
}

func (o *RootOptions) db() (*gorm.DB, error) {
	return o.Open(o.Config)
}
