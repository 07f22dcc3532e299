package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	statsCmd := &cobra.Command{Use: "stats", Short: "Statistics and history"}

	statsCmd.AddCommand(&cobra.Command{
		Use:   "today USER_ID",
		Short: "Show today's counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().R().
				Get(fmt.Sprintf("/api/users/%s/stats/today", args[0]))
			return printResult(resp, err)
		},
	})

	var from, to string
	periodCmd := &cobra.Command{
		Use:   "period USER_ID",
		Short: "Show a period summary (defaults to the last 7 days)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client().R()
			if from != "" {
				req.SetQueryParam("from", from)
			}
			if to != "" {
				req.SetQueryParam("to", to)
			}
			resp, err := req.Get(fmt.Sprintf("/api/users/%s/stats/period", args[0]))
			return printResult(resp, err)
		},
	}
	periodCmd.Flags().StringVar(&from, "from", "", "Range start (YYYY-MM-DD)")
	periodCmd.Flags().StringVar(&to, "to", "", "Range end (YYYY-MM-DD)")
	statsCmd.AddCommand(periodCmd)

	var limit int
	sessionsCmd := &cobra.Command{
		Use:   "sessions USER_ID",
		Short: "List recent sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().R().
				SetQueryParam("limit", fmt.Sprintf("%d", limit)).
				Get(fmt.Sprintf("/api/users/%s/sessions", args[0]))
			return printResult(resp, err)
		},
	}
	sessionsCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of sessions to list")
	statsCmd.AddCommand(sessionsCmd)

	rootCmd.AddCommand(statsCmd)
}
