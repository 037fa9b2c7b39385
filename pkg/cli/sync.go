package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskhub/pkg/google"
	"github.com/harrisonrobin/taskhub/pkg/ingest"
	"github.com/harrisonrobin/taskhub/pkg/model"
)

// taskSource lists tasks from an external system in a time range.
type taskSource interface {
	Tasks(ctx context.Context, timeMin, timeMax time.Time) ([]model.Task, error)
}

func newSyncCmd(a *app) *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull tasks from connected services",
	}

	var (
		calendarName string
		days         int
	)
	calendarCmd := &cobra.Command{
		Use:   "calendar",
		Short: "Import Google Calendar events as tasks",
		Long: `Imports the events of the configured calendar from --days ago to --days ahead.
Events that were imported before are skipped and counted as prevented duplicates.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := a.cfg.Calendar
			if calendarName != "" {
				name = calendarName
			}
			if days <= 0 {
				days = a.cfg.SyncDays
			}

			client, err := google.NewClient(cmd.Context(), name, a.logger)
			if err != nil {
				return err
			}
			pipeline, err := a.pipeline()
			if err != nil {
				return err
			}
			return syncSource(cmd.Context(), cmd.OutOrStdout(), pipeline, client, a.cfg.User, days, time.Now())
		},
	}
	calendarCmd.Flags().StringVarP(&calendarName, "calendar", "c", "", "calendar name (overrides config)")
	calendarCmd.Flags().IntVar(&days, "days", 0, "days to look back and ahead (default from config)")

	syncCmd.AddCommand(calendarCmd)
	return syncCmd
}

func syncSource(ctx context.Context, out io.Writer, pipeline *ingest.Pipeline, src taskSource, userID string, days int, now time.Time) error {
	span := time.Duration(days) * 24 * time.Hour
	tasks, err := src.Tasks(ctx, now.Add(-span), now.Add(span))
	if err != nil {
		return err
	}
	sum, err := pipeline.IngestAll(ctx, userID, tasks)
	if err != nil {
		return err
	}
	printSummary(out, sum)
	return nil
}

func printSummary(out io.Writer, sum ingest.Summary) {
	fmt.Fprintf(out, "Imported %d task(s), skipped %d already known.\n", sum.Created, sum.Skipped)
}
