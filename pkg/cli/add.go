package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		description string
		priority    string
	)

	cmd := &cobra.Command{
		Use:   "add <title>...",
		Short: "Add a task by hand",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := model.Priority(strings.ToLower(priority))
			if !p.Valid() {
				return fmt.Errorf("unknown priority %q", priority)
			}
			pipeline, err := a.pipeline()
			if err != nil {
				return err
			}

			res, err := pipeline.Ingest(cmd.Context(), a.cfg.User, model.Task{
				Title:       strings.Join(args, " "),
				Description: description,
				Priority:    p,
				Source:      model.SourceManual,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", res.Task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "priority: low, medium, high or urgent")
	return cmd
}
