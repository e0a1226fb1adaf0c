// Command tareas is the interactive console task manager.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/tareas/app"
	"github.com/GoCodeAlone/tareas/comms"
	"github.com/GoCodeAlone/tareas/config"
	"github.com/GoCodeAlone/tareas/console"
	"github.com/GoCodeAlone/tareas/internal/version"
	"github.com/GoCodeAlone/tareas/query"
	"github.com/GoCodeAlone/tareas/store"
)

type options struct {
	configPath string
	dataFile   string
	backend    string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	root := &cobra.Command{
		Use:           "tareas",
		Short:         "Manage a personal task list from the console",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runSession(cmd, cfg)
		},
	}

	f := root.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to YAML config file (default "+config.DefaultPath+" if present)")
	f.StringVar(&opts.dataFile, "data-file", "", "task data file")
	f.StringVar(&opts.backend, "backend", "", "storage backend: json or sqlite")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tareas %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.BuildDate)
		},
	}
}

// resolveConfig loads the config file and applies the flags the user set.
func resolveConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("data-file") {
		cfg.DataFile = opts.dataFile
	}
	if flags.Changed("backend") {
		cfg.Storage.Backend = opts.backend
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runSession(cmd *cobra.Command, cfg *config.Config) error {
	logger := newLogger(cmd.ErrOrStderr(), cfg)
	logger.Info("starting tareas",
		"version", version.Version,
		"commit", version.Commit,
		"backend", cfg.Storage.Backend,
		"data_file", cfg.DataFile,
	)

	st, err := store.Open(store.Backend(cfg.Storage.Backend), cfg.DataFile)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("close store", "error", err)
		}
	}()

	ui := console.NewStdio()
	if cmd.InOrStdin() != os.Stdin || cmd.OutOrStdout() != os.Stdout {
		ui = console.New(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	a := app.New(st, ui, comms.NewInMemoryBus(), logger, query.NewSorter(cfg.Language()))
	return a.Run(cmd.Context())
}
