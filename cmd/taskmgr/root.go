package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ShayCichocki/taskmgr/internal/config"
	"github.com/ShayCichocki/taskmgr/internal/host"
	"github.com/ShayCichocki/taskmgr/internal/logging"
	"github.com/ShayCichocki/taskmgr/internal/state"
)

var (
	dbPathFlag   string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "taskmgr",
	Short: "Task-driven conversation orchestrator",
	Long: `taskmgr runs task orchestrators on a local actor host.

An orchestrator owns one conversation-state worker. It derives the worker's
configuration from a task profile (commit, review, rebase, analyze, cleanup
or a generic assistant), forwards messages to it, and reacts when the
worker exits, stops or fails.

State lives in a SQLite store: .taskmgr/state.db when the current project
has a .taskmgr directory, else the global store under $XDG_DATA_HOME.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "Path to the actor store (overrides store.path)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error (overrides logging.level)")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(deriveCmd)
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(childCmd)
	rootCmd.AddCommand(channelCmd)
	rootCmd.AddCommand(outboxCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// app bundles what commands need to drive the local host.
type app struct {
	cfg     *config.Config
	db      *state.DB
	rt      *host.Runtime
	logger  *zap.Logger
	signals string
}

// openApp loads configuration, opens and migrates the store and builds the
// runtime.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := cfg.LogConfig()
	if logLevelFlag != "" {
		logCfg.Level = logLevelFlag
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, err
	}
	db, err := state.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	deriver, err := cfg.Deriver()
	if err != nil {
		db.Close()
		return nil, err
	}

	signals := cfg.Signals.Dir
	if signals == "" {
		signals = filepath.Join(filepath.Dir(dbPath), "signals")
	}

	rt := host.New(host.Config{
		Store:             db,
		ChatStateManifest: cfg.Manifests.ChatState,
		Deriver:           deriver,
		Logger:            logger,
	})
	return &app{cfg: cfg, db: db, rt: rt, logger: logger, signals: signals}, nil
}

func (a *app) Close() {
	_ = a.logger.Sync()
	a.db.Close()
}

func resolveDBPath(cfg *config.Config) (string, error) {
	if dbPathFlag != "" {
		return dbPathFlag, nil
	}
	if cfg.Store.Path != "" {
		return cfg.Store.Path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return state.ResolveDBPath(cwd), nil
}
