// Package main is the entry point for the calculator shell.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/calcshell/internal/app"
	"github.com/dshills/calcshell/internal/config"
	"github.com/dshills/calcshell/internal/history"
	"github.com/dshills/calcshell/internal/logging"
	"github.com/dshills/calcshell/internal/plugin"
	"github.com/dshills/calcshell/internal/plugin/builtin"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// flags holds command-line overrides. Only flags the user set are applied.
type flags struct {
	configPath  string
	envFile     string
	historyFile string
	pluginsDir  string
	logLevel    string
	logFile     string
	prompt      string
	journal     bool
	autoload    []string
}

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:           "calc",
		Short:         "An interactive calculator with plugins and a persistent history",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runShell(cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "path to configuration file (TOML or YAML)")
	pf.StringVar(&f.envFile, "env-file", "", "path to .env file (default ./.env)")
	pf.StringVar(&f.historyFile, "history-file", "", "calculation history CSV file")
	pf.StringVar(&f.pluginsDir, "plugins-dir", "", "directory searched for script plugins")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&f.logFile, "log-file", "", "write logs to this file instead of stderr")

	rf := root.Flags()
	rf.StringVar(&f.prompt, "prompt", "", "input prompt")
	rf.BoolVar(&f.journal, "journal", false, "record entered lines in the journal")
	rf.StringSliceVar(&f.autoload, "load", nil, "plugins to load at startup")

	root.AddCommand(
		newVersionCmd(),
		newHistoryCmd(&f),
		newPluginsCmd(&f),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "calc %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func newHistoryCmd(f *flags) *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the calculation history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, *f)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			store := history.Open(cfg.History.File, history.WithLogger(logger))
			if clearAll {
				store.Clear()
				if store.Degraded() {
					return store.LastError()
				}
				fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.Format())
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "remove all records")
	return cmd
}

func newPluginsCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List plugins available to load_plugin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, *f)
			if err != nil {
				return err
			}

			catalog := plugin.NewCatalog()
			if err := builtin.Register(catalog); err != nil {
				return err
			}
			loader := plugin.NewLoader(plugin.WithCatalog(catalog), plugin.WithDir(cfg.Plugins.Dir))
			defer loader.Close()

			names, err := loader.Discover()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
			return nil
		},
	}
}

// loadConfig layers flags over the file and environment settings.
func loadConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		Path:    f.configPath,
		EnvFile: f.envFile,
	})
	if err != nil {
		return cfg, err
	}

	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("history-file") {
		cfg.History.File = f.historyFile
	}
	if changed("plugins-dir") {
		cfg.Plugins.Dir = f.pluginsDir
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if changed("log-file") {
		cfg.Logging.File = f.logFile
	}
	if changed("prompt") {
		cfg.REPL.Prompt = f.prompt
	}
	if changed("journal") {
		cfg.Journal.Enabled = f.journal
	}
	if changed("load") {
		cfg.Plugins.Autoload = f.autoload
	}

	return cfg, cfg.Validate()
}

// newLogger builds the process logger. The returned func closes the log
// file, if one was opened.
func newLogger(cfg config.Config) (*logging.Logger, func(), error) {
	lc := logging.DefaultLoggerConfig()
	lc.Level = cfg.LogLevel()

	closeLog := func() {}
	if cfg.Logging.File != "" {
		file, err := logging.OpenFile(cfg.Logging.File)
		if err != nil {
			return nil, nil, err
		}
		lc.Output = file
		closeLog = func() { _ = file.Close() }
	}
	logger := logging.NewLogger(lc)
	for _, w := range cfg.Warnings {
		logger.Warn("config: %s", w)
	}
	return logger, closeLog, nil
}

func runShell(cfg config.Config, in io.Reader, out io.Writer) error {
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	application, err := app.New(app.Options{
		Config: cfg,
		Logger: logger,
		In:     in,
		Out:    out,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer application.Shutdown()

	return application.Run()
}
