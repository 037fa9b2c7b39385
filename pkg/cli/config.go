package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskhub/pkg/config"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:         "config",
		Short:       "Show or change settings",
		Annotations: map[string]string{skipValidation: "true"},
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == formatText {
				format = formatYAML
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", a.cfgFile)
			if err := encode(out, format, configView(a.cfg)); err != nil {
				return err
			}
			if err := a.cfg.Validate(); err != nil {
				fmt.Fprintf(out, "\nProblems:\n%v\n", err)
			}
			return nil
		},
	}
	showCmd.Flags().StringVarP(&format, "format", "f", formatYAML, "output format: json or yaml")

	setCalendarCmd := &cobra.Command{
		Use:   "set-calendar <name>",
		Short: "Set the Google Calendar to sync from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.saveConfig(cmd, func(c *config.Config) { c.Calendar = args[0] },
				"Default calendar set to: "+args[0])
		},
	}

	setUserCmd := &cobra.Command{
		Use:   "set-user <id>",
		Short: "Set the default user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.saveConfig(cmd, func(c *config.Config) { c.User = args[0] },
				"Default user set to: "+args[0])
		},
	}

	configCmd.AddCommand(showCmd, setCalendarCmd, setUserCmd)
	return configCmd
}

// saveConfig applies set to the file's own settings, leaving command line
// overrides out of it.
func (a *app) saveConfig(cmd *cobra.Command, set func(*config.Config), msg string) error {
	cfg, err := config.LoadFrom(a.cfgFile)
	if err != nil {
		return err
	}
	set(cfg)
	if err := config.SaveTo(a.cfgFile, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

// configView is the serialized form of the config.
func configView(c *config.Config) map[string]any {
	return map[string]any{
		"calendar":             c.Calendar,
		"user":                 c.User,
		"database":             c.Database,
		"index":                c.Index,
		"similarity_threshold": c.SimilarityThreshold,
		"timeframe":            c.Timeframe,
		"sync_days":            c.SyncDays,
	}
}
