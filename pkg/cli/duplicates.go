package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskhub/pkg/dedupe"
	"github.com/harrisonrobin/taskhub/pkg/model"
	"github.com/harrisonrobin/taskhub/pkg/store/sqlite"
)

// openStatuses are the statuses analysis looks at unless --all is given.
var openStatuses = []model.Status{model.StatusPending, model.StatusWaiting}

func newDuplicatesCmd(a *app) *cobra.Command {
	var (
		format string
		all    bool
	)

	cmd := &cobra.Command{
		Use:     "duplicates",
		Aliases: []string{"dups"},
		Short:   "List groups of tasks that look like the same to-do",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			_, groups, err := a.analyze(cmd.Context(), all)
			if err != nil {
				return err
			}
			return renderGroups(cmd.OutOrStdout(), format, groups)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json or yaml")
	cmd.Flags().BoolVar(&all, "all", false, "include completed and deleted tasks")
	return cmd
}

// analyze loads the user's tasks and groups them.
func (a *app) analyze(ctx context.Context, all bool) (*dedupe.Engine, []dedupe.DuplicateGroup, error) {
	engine, err := a.engine()
	if err != nil {
		return nil, nil, err
	}
	tasks, err := a.listTasks(ctx, all)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug("analyzing tasks", "user", a.cfg.User, "count", len(tasks))
	return engine, engine.Analyze(tasks), nil
}

func (a *app) listTasks(ctx context.Context, all bool) ([]model.Task, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	filter := sqlite.Filter{UserID: a.cfg.User}
	if !all {
		filter.Statuses = openStatuses
	}
	return store.List(ctx, filter)
}
