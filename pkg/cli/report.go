package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/harrisonrobin/taskhub/pkg/dedupe"
)

func newReportCmd(a *app) *cobra.Command {
	var timeframe string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show duplicate groups and deduplication stats together",
		RunE: func(cmd *cobra.Command, args []string) error {
			if timeframe == "" {
				timeframe = a.cfg.Timeframe
			}
			w, err := dedupe.TimeframeWindow(timeframe, time.Now())
			if err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return err
			}

			var (
				groups []dedupe.DuplicateGroup
				stat   *dedupe.DeduplicationStat
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				tasks, err := a.listTasks(ctx, false)
				if err != nil {
					return err
				}
				groups = engine.Analyze(tasks)
				return nil
			})
			g.Go(func() error {
				stat = engine.GetStats(ctx, a.cfg.User, w)
				return nil
			})
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if stat != nil {
				if err := renderStats(out, formatText, timeframeLabel(timeframe), *stat); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, "Deduplication stats are unavailable.")
			}
			fmt.Fprintln(out)
			return renderGroups(out, formatText, groups)
		},
	}

	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", "", "day, week, month or all (default from config)")
	return cmd
}
