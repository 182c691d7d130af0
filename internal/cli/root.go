// Package cli wires the trackdeck commands.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/petems/trackdeck/internal/app"
	"github.com/petems/trackdeck/internal/config"
	"github.com/petems/trackdeck/internal/store"
	"github.com/petems/trackdeck/internal/version"
)

type Dependencies struct {
	App    *app.App
	Config *config.Config
	Store  *store.Store
	Logger zerolog.Logger
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trackdeck",
		Short: "Multi-track recorder with dead-air cleanup and mixdown",
		Long: "Records one audio track per participant, detects silence that spans " +
			"every track at once, cuts it out, and mixes the result down to a single file.",
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewCleanupCmd(deps))
	rootCmd.AddCommand(NewExportCmd(deps))
	rootCmd.AddCommand(NewDevicesCmd(deps))

	return rootCmd
}
