// Package cli implements the taskhub command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskhub/pkg/config"
	"github.com/harrisonrobin/taskhub/pkg/dedupe"
	"github.com/harrisonrobin/taskhub/pkg/index"
	"github.com/harrisonrobin/taskhub/pkg/ingest"
	"github.com/harrisonrobin/taskhub/pkg/store/sqlite"
)

// skipValidation marks commands that must run with an incomplete config.
const skipValidation = "skip-validation"

// app carries the state shared by every command of one invocation.
type app struct {
	cfgFile   string
	user      string
	db        string
	indexPath string
	verbose   bool

	cfg    *config.Config
	logger *slog.Logger
	store  *sqlite.Store
	index  *index.SourceIndex
	errOut io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "taskhub",
		Short:         "taskhub - one task list for the whole family",
		Long:          "Collects tasks from the calendar, Taskwarrior and Org files, finds duplicates and helps resolve them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default ~/.config/taskhub/config.yaml)")
	flags.StringVarP(&a.user, "user", "u", "", "user whose tasks to work on (overrides config)")
	flags.StringVar(&a.db, "db", "", "task database path (overrides config)")
	flags.StringVar(&a.indexPath, "index", "", "source index path (overrides config)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newAddCmd(a),
		newSyncCmd(a),
		newImportCmd(a),
		newDuplicatesCmd(a),
		newReviewCmd(a),
		newMergeCmd(a),
		newStatsCmd(a),
		newReportCmd(a),
		newConfigCmd(a),
		newAuthCmd(a),
	)
	return rootCmd
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

// run builds a fresh command tree, executes args and releases every resource
// the command opened.
func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	a := &app{errOut: errOut}
	defer a.close()

	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	return rootCmd.ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))

	path := a.cfgFile
	if path == "" {
		var err error
		if path, err = config.GetConfigPath(); err != nil {
			return err
		}
		a.cfgFile = path
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	if a.user != "" {
		cfg.User = a.user
	}
	if a.db != "" {
		cfg.Database = a.db
	}
	if a.indexPath != "" {
		cfg.Index = a.indexPath
	}
	a.cfg = cfg
	a.logger.Debug("loaded config", "path", path, "user", cfg.User, "database", cfg.Database)

	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipValidation] == "true" {
			return nil
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	return nil
}

func (a *app) openStore() (*sqlite.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := sqlite.New(a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open task database: %w", err)
	}
	a.store = store
	return store, nil
}

func (a *app) openIndex() (*index.SourceIndex, error) {
	if a.index != nil {
		return a.index, nil
	}
	idx, err := index.NewSourceIndex(a.cfg.Index)
	if err != nil {
		return nil, fmt.Errorf("failed to open source index: %w", err)
	}
	a.index = idx
	return idx, nil
}

func (a *app) pipeline() (*ingest.Pipeline, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	idx, err := a.openIndex()
	if err != nil {
		return nil, err
	}
	return ingest.NewPipeline(store, idx, sqlite.ErrNotFound, a.logger), nil
}

func (a *app) engine() (*dedupe.Engine, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	return dedupe.NewEngine(store, a.cfg.Dedupe(), a.logger)
}

func (a *app) close() error {
	var errs []error
	if a.index != nil {
		errs = append(errs, a.index.Close())
		a.index = nil
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	return errors.Join(errs...)
}
