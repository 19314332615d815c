package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"pdfcmd/internal/common"
	"pdfcmd/internal/models"
)

var errNoDatabase = errors.New("history database is unavailable")

func (a *app) newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent merge jobs, newest first",
		Args:  a.noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history := a.container.GetHistoryService()
			if history == nil {
				return errNoDatabase
			}

			if !cmd.Flags().Changed("limit") {
				limit = common.DefaultHistoryLimit
				if prefs := a.container.GetPreferencesService(); prefs != nil {
					if data, err := prefs.GetPreferences(); err == nil && data.HistoryLimit > 0 {
						limit = data.HistoryLimit
					}
				}
			}
			if limit <= 0 {
				return a.usageError(cmd, fmt.Sprintf("--limit must be positive, got %d", limit))
			}

			jobs, err := history.Recent(limit)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}
			if len(jobs) == 0 {
				fmt.Fprintln(a.stdout, "No jobs recorded")
				return nil
			}
			return a.printJobs(jobs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", common.DefaultHistoryLimit, "number of jobs to show")
	return cmd
}

func (a *app) printJobs(jobs []models.MergeJob) error {
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tSTATUS\tPAGES\tSIZE\tSAVED\tOUTPUT\tINPUTS")
	for _, job := range jobs {
		pages, size, saved := "-", "-", "-"
		if job.Status == models.JobStatusCompleted {
			pages = strconv.Itoa(job.PageCount)
			size = common.HumanSize(job.OutputSize)
			if job.Compressed {
				saved = common.HumanSize(job.DataSaved())
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(job.ID),
			job.CreatedAt.Local().Format(time.DateTime),
			job.Status,
			pages,
			size,
			saved,
			job.OutputPath,
			strings.Join(job.Inputs(), " "))
	}
	return tw.Flush()
}

func (a *app) noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return a.usageError(cmd, fmt.Sprintf("unexpected argument %q", args[0]))
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
