package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/muse/internal/cli/formatter"
)

func newStatsCmd(a *App) *cobra.Command {
	var (
		since time.Duration
		limit int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recorded speed samples and trigger activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.Store == nil {
				return fmt.Errorf("no database available")
			}

			summary, err := a.Store.Summarize(cmd.Context(), time.Now().Add(-since))
			if err != nil {
				return fmt.Errorf("summarizing: %w", err)
			}
			events, err := a.Store.RecentEvents(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("loading events: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.FormatSummary(summary))
			fmt.Fprintln(out)
			fmt.Fprintln(out, formatter.FormatEvents(events))
			return nil
		},
	}

	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "summary window")
	cmd.Flags().IntVar(&limit, "limit", 20, "max events to list")

	return cmd
}
