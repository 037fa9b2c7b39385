package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskhub/pkg/dedupe"
)

func newMergeCmd(a *app) *cobra.Command {
	var (
		keep   string
		newest bool
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "merge <group-id>",
		Short: "Resolve a duplicate group, keeping one task",
		Long: `Deletes every task of the group except the one kept. Pass --keep with a task id
from the group, or --newest to keep the most recently created task.
Group ids are shown by 'taskhub duplicates'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (keep != "") == newest {
				return errors.New("exactly one of --keep or --newest is required")
			}

			engine, _, err := a.analyze(cmd.Context(), all)
			if err != nil {
				return err
			}
			group, ok := engine.Group(args[0])
			if !ok {
				return fmt.Errorf("no duplicate group %s (run 'taskhub duplicates' to list them)", args[0])
			}
			if newest {
				keep = dedupe.Newest(group).ID
			}

			if err := engine.Merge(cmd.Context(), a.cfg.User, group.ID, keep); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Kept %s, removed %d duplicate(s).\n", keep, group.TotalCount-1)
			return nil
		},
	}

	cmd.Flags().StringVarP(&keep, "keep", "k", "", "id of the task to keep")
	cmd.Flags().BoolVar(&newest, "newest", false, "keep the most recently created task")
	cmd.Flags().BoolVar(&all, "all", false, "analyze completed and deleted tasks too")
	return cmd
}
