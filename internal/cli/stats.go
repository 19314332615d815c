package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdfcmd/internal/common"
)

func (a *app) newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show totals over the job history",
		Args:  a.noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history := a.container.GetHistoryService()
			if history == nil {
				return errNoDatabase
			}

			stats, err := history.Stats()
			if err != nil {
				return fmt.Errorf("failed to compute statistics: %w", err)
			}

			fmt.Fprintf(a.stdout, "Jobs:          %d (%d failed)\n", stats.TotalJobs, stats.FailedJobs)
			fmt.Fprintf(a.stdout, "Files merged:  %d\n", stats.TotalFilesMerged)
			fmt.Fprintf(a.stdout, "Pages written: %d\n", stats.TotalPagesWritten)
			fmt.Fprintf(a.stdout, "Compressed:    %d jobs, %s saved\n", stats.CompressedJobs, common.HumanSize(stats.TotalDataSaved))
			return nil
		},
	}
}
