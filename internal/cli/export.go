package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petems/trackdeck/internal/export"
)

func NewExportCmd(deps *Dependencies) *cobra.Command {
	var (
		output     string
		formatName string
	)

	cmd := &cobra.Command{
		Use:   "export <track-files...>",
		Short: "Mix tracks down to a single delivery file",
		Long: "Merges every input track into one audio stream (amplitude merge, " +
			"not concatenation) and encodes it to the target format via ffmpeg.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			if output == "" {
				output = "mixdown." + string(format)
			}

			exporter := export.New(deps.Logger)
			if err := exporter.CheckFFmpeg(); err != nil {
				return err
			}

			path, err := exporter.Export(export.Job{
				Inputs:     args,
				OutputPath: output,
				Format:     format,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Exported %d tracks to %s\n", len(args), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default mixdown.<format>)")
	cmd.Flags().StringVarP(&formatName, "format", "f", deps.Config.Export.Format, "delivery format: mp3, m4a or wav")

	return cmd
}
