package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petems/trackdeck/internal/audio"
)

func NewDevicesCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List audio input devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			mic, err := audio.NewMicSource("")
			if err != nil {
				return err
			}
			defer mic.Close()

			devices, err := audio.ListInputDevices()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Println("No input devices found.")
				return nil
			}
			for _, d := range devices {
				marker := " "
				if d.Default {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, d.Name)
			}
			return nil
		},
	}

	return cmd
}
