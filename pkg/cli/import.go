package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskhub/pkg/orgmode"
	"github.com/harrisonrobin/taskhub/pkg/taskwarrior"
)

func newImportCmd(a *app) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import tasks from local task managers",
	}

	var filter []string
	twCmd := &cobra.Command{
		Use:   "taskwarrior [file|-]",
		Short: "Import Taskwarrior tasks",
		Long: `Imports tasks from a 'task export' JSON file, from stdin with "-", or by running
'task export' when no file is given. Tasks are identified by their UUID.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := taskwarrior.NewClient()

			var (
				tws []taskwarrior.Task
				err error
			)
			switch {
			case len(args) == 0:
				tws, err = client.GetTasks(cmd.Context(), filter)
			case args[0] == "-":
				tws, err = client.ParseTasks(cmd.InOrStdin())
			default:
				tws, err = parseTaskwarriorFile(client, args[0])
			}
			if err != nil {
				return err
			}

			pipeline, err := a.pipeline()
			if err != nil {
				return err
			}
			sum, err := pipeline.IngestAll(cmd.Context(), a.cfg.User, taskwarrior.ToTasks(tws))
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
	twCmd.Flags().StringSliceVar(&filter, "filter", nil, "taskwarrior filter terms when running 'task export'")

	var tag string
	orgCmd := &cobra.Command{
		Use:   "org <file>...",
		Short: "Import TODO headings from Org-mode files",
		Long:  `Imports TODO and DONE headings that carry an :ID: property.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := orgmode.NewParser(a.logger).ParseFiles(args, tag)
			if err != nil {
				return err
			}
			pipeline, err := a.pipeline()
			if err != nil {
				return err
			}
			sum, err := pipeline.IngestAll(cmd.Context(), a.cfg.User, tasks)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
	orgCmd.Flags().StringVar(&tag, "tag", "", "only import headings with this tag")

	importCmd.AddCommand(twCmd, orgCmd)
	return importCmd
}

func parseTaskwarriorFile(client *taskwarrior.Client, path string) ([]taskwarrior.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return client.ParseTasks(f)
}
