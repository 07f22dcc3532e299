package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	timerCmd := &cobra.Command{Use: "timer", Short: "Timer lifecycle operations"}

	var phase, presetName string
	var minutes, position int
	startCmd := &cobra.Command{
		Use:   "start USER_ID",
		Short: "Start a timer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{}
			if phase != "" {
				payload["phase"] = phase
			}
			if minutes > 0 {
				payload["durationMinutes"] = minutes
			}
			if presetName != "" {
				payload["preset"] = presetName
			}
			if position > 0 {
				payload["cyclePosition"] = position
			}
			resp, err := client().R().
				SetBody(payload).
				Post(fmt.Sprintf("/api/users/%s/timer/start", args[0]))
			return printResult(resp, err)
		},
	}
	startCmd.Flags().StringVarP(&phase, "phase", "p", "", "Phase type (focus, short_break, long_break, custom)")
	startCmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "Duration override in minutes")
	startCmd.Flags().StringVar(&presetName, "preset", "", "Preset name")
	startCmd.Flags().IntVar(&position, "position", 0, "Cycle position within the set")
	timerCmd.AddCommand(startCmd)

	for _, op := range []string{"pause", "resume", "stop"} {
		op := op
		timerCmd.AddCommand(&cobra.Command{
			Use:   fmt.Sprintf("%s USER_ID", op),
			Short: fmt.Sprintf("%s the user's timer", op),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				resp, err := client().R().
					Post(fmt.Sprintf("/api/users/%s/timer/%s", args[0], op))
				return printResult(resp, err)
			},
		})
	}

	timerCmd.AddCommand(&cobra.Command{
		Use:   "status USER_ID",
		Short: "Show the live timer snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().R().
				Get(fmt.Sprintf("/api/users/%s/timer", args[0]))
			return printResult(resp, err)
		},
	})

	rootCmd.AddCommand(timerCmd)
}
