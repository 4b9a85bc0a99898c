package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kwsearch/internal/config"
	logpkg "github.com/kailas-cloud/kwsearch/internal/logger"
	"github.com/kailas-cloud/kwsearch/internal/version"
)

// options holds the persistent flags and what PersistentPreRunE builds from them.
type options struct {
	env        string
	configPath string
	dbPath     string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "kwsearch",
		Short:         "Keyword search over a user directory",
		Long:          `Parses keyword queries such as "username:doe -last_name:smith", applies them to a SQLite user table and returns ordered, paginated results.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return opts.load(cmd.Name() == "serve")
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "environment: local, dev, prod")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default config/<env>.yaml)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database path, overriding the config file")

	root.AddCommand(
		newServeCmd(opts),
		newSeedCmd(opts),
		newSearchCmd(opts),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration and builds the logger. Servers log in the
// configured environment's format; other commands only report warnings.
func (o *options) load(server bool) error {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load(o.env)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	o.cfg = cfg

	env := "cli"
	level := ""
	if server {
		env, level = o.env, cfg.Logging.Level
	}
	o.logger, err = logpkg.NewLogger(env, level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "kwsearch", version.String())
		},
	}
}
