package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petems/trackdeck/internal/cleanup"
	"github.com/petems/trackdeck/internal/silence"
)

func NewCleanupCmd(deps *Dependencies) *cobra.Command {
	var (
		threshold   float64
		minDuration float64
		padding     float64
	)

	cmd := &cobra.Command{
		Use:   "cleanup <session-folder>",
		Short: "Remove cross-track dead air from a recorded session",
		Long: "Analyzes every track WAV in the folder, finds the ranges where all " +
			"tracks are silent at once, and rewrites each track with those ranges cut out. " +
			"Originals are kept; edited files get an _edited suffix.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := args[0]
			paths, err := deps.Store.List(folder, "", []string{".wav"})
			if err != nil {
				return err
			}
			// Skip the output of a previous run.
			paths = filterEdited(paths)
			if len(paths) == 0 {
				return fmt.Errorf("no track files in %s", folder)
			}

			cfg := silence.Config{
				Threshold:   threshold,
				MinDuration: minDuration,
				Padding:     padding,
			}
			pipeline := cleanup.New(cfg, deps.Store, deps.Logger)
			result, err := pipeline.Run(paths)
			if err != nil {
				return err
			}

			for path, warnErr := range result.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s skipped: %v\n", path, warnErr)
			}
			if result.Plan.Empty() {
				fmt.Println("No dead air found.")
				return nil
			}

			fmt.Printf("Removed %.1fs of dead air across %d cuts:\n", result.RemovedSeconds, len(result.Plan.Cuts))
			for _, cut := range result.Plan.Cuts {
				fmt.Printf("  %.2fs - %.2fs\n", cut.Start, cut.End)
			}
			for _, edited := range result.Edited {
				fmt.Printf("  wrote %s\n", edited)
			}
			return nil
		},
	}

	// Flag defaults come from the saved config so tuning persists
	// between runs; flags still override per invocation.
	defaults := deps.Config.Silence
	cmd.Flags().Float64Var(&threshold, "threshold", defaults.Threshold, "RMS level below which a window counts as quiet")
	cmd.Flags().Float64Var(&minDuration, "min-duration", defaults.MinSilenceDuration, "shortest silence reported, in seconds")
	cmd.Flags().Float64Var(&padding, "padding", defaults.Padding, "silence kept on each side of a cut, in seconds")

	return cmd
}

func filterEdited(paths []string) []string {
	var out []string
	for _, p := range paths {
		if !isEdited(p) {
			out = append(out, p)
		}
	}
	return out
}

func isEdited(path string) bool {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.HasSuffix(base, cleanup.EditedSuffix)
}
