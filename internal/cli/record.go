package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/petems/trackdeck/internal/audio"
)

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record [session-name]",
		Short: "Record a session until interrupted",
		Long: "Starts a session with the host microphone as the first track. " +
			"Remote participants join through the configured transport. " +
			"Ctrl-C stops every track, waits for the flushes, and writes one WAV per participant.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := time.Now().Format("2006-01-02_150405")
			if len(args) == 1 {
				name = args[0]
			}

			mic, err := audio.NewMicSource(deps.Config.Audio.DeviceID)
			if err != nil {
				return fmt.Errorf("opening microphone: %w", err)
			}
			defer mic.Close()

			if err := deps.App.StartSession(name, mic); err != nil {
				return err
			}
			fmt.Printf("Recording session %q. Press Ctrl-C to stop.\n", name)

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			<-sigChan

			fmt.Println("Stopping, waiting for tracks to flush...")
			result, err := deps.App.StopSession()
			if err != nil {
				return err
			}

			for _, p := range result.Paths {
				fmt.Printf("  wrote %s\n", p)
			}
			for id, trackErr := range result.Failed {
				fmt.Fprintf(os.Stderr, "  track %s failed: %v\n", id, trackErr)
			}
			fmt.Printf("Session folder: %s\n", deps.App.SessionFolder(name))
			return nil
		},
	}

	return cmd
}
