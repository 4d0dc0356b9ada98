package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tablekit/pkg/logger"
	"github.com/oakwood-commons/tablekit/pkg/settings"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	logFile    string
	debug      bool
	noColor    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           settings.CliBinaryName,
		Short:         "A selectable, sortable table for the terminal",
		Long:          getCLILongHelp(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Map the debug flag to a zap level: debug => -1, else info (0).
			var level int8
			if opts.debug {
				level = -1
			}
			lgr, err := initLogger(level, opts.logFile)
			if err != nil {
				return err
			}
			lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

			run := settings.NewCliParams()
			run.MinLogLevel = level
			run.ConfigFile = opts.configFile
			run.NoColor = opts.noColor || os.Getenv("NO_COLOR") != ""

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = logger.WithLogger(ctx, lgr)
			cmd.SetContext(settings.IntoContext(ctx, run))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config-file", "", "path to a YAML or TOML config file (default $XDG_CONFIG_HOME/tablekit/config.yaml)")
	pf.StringVar(&opts.logFile, "log-file", "", "write JSON logs to this file instead of stderr")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable color output")

	cmd.AddCommand(newDemoCmd(), newRenderCmd(), newConfigCmd(), newVersionCmd())
	return cmd
}

// initLogger builds the global logger, writing to path when set.
func initLogger(level int8, path string) (*logr.Logger, error) {
	if path == "" {
		return logger.Get(level), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return logger.Init(logger.Options{Level: level, Output: f}), nil
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}
