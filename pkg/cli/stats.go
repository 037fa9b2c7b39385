package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskhub/pkg/dedupe"
)

func newStatsCmd(a *app) *cobra.Command {
	var (
		timeframe string
		since     string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show how many duplicates ingestion prevented",
		Long: `Aggregates the prevention log over a window. --timeframe is one of day, week,
month or all; --since accepts natural language such as "last monday" or "3 days ago".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			if timeframe == "" {
				timeframe = a.cfg.Timeframe
			}
			w, label, err := statsWindow(timeframe, since, time.Now())
			if err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			stat, err := dedupe.NewStatsAggregator(store, a.logger).Stats(cmd.Context(), a.cfg.User, w)
			if err != nil {
				return err
			}
			return renderStats(cmd.OutOrStdout(), format, label, stat)
		},
	}

	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", "", "day, week, month or all (default from config)")
	cmd.Flags().StringVar(&since, "since", "", `natural-language start of the window, e.g. "last friday"`)
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json or yaml")
	return cmd
}

// statsWindow resolves --since, falling back to the named timeframe.
func statsWindow(timeframe, since string, now time.Time) (dedupe.Window, string, error) {
	if since == "" {
		w, err := dedupe.TimeframeWindow(timeframe, now)
		if err != nil {
			return dedupe.Window{}, "", err
		}
		return w, timeframeLabel(timeframe), nil
	}

	start, err := parseSince(since, now)
	if err != nil {
		return dedupe.Window{}, "", err
	}
	return dedupe.Window{Since: start}, "since " + start.Format("2006-01-02 15:04"), nil
}

func timeframeLabel(timeframe string) string {
	switch tf := strings.ToLower(strings.TrimSpace(timeframe)); tf {
	case dedupe.TimeframeAll:
		return "all time"
	case "":
		return "last " + dedupe.TimeframeWeek
	default:
		return "last " + tf
	}
}

func parseSince(text string, now time.Time) (time.Time, error) {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(text, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse --since %q: %w", text, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not understand --since %q", text)
	}
	if r.Time.After(now) {
		return time.Time{}, fmt.Errorf("--since %q is in the future", text)
	}
	return r.Time, nil
}
