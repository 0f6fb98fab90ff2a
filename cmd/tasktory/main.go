package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rpggio/tasktory/internal/config"
	"github.com/rpggio/tasktory/internal/domain/activity"
	"github.com/rpggio/tasktory/internal/domain/workspace"
	"github.com/rpggio/tasktory/internal/journal"
	"github.com/rpggio/tasktory/internal/sqlite"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions carries the configuration shared by every subcommand.
type rootOptions struct {
	cfg    config.Config
	dbPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "tasktory",
		Short:         "Tasktory - task tree with deadlines, time tracking and daily journals",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if opts.dbPath != "" {
				cfg.DB.Path = opts.dbPath
			}
			opts.cfg = cfg
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Database path (overrides TASKTORY_DB_PATH)")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(showCmd(opts))
	rootCmd.AddCommand(addCmd(opts))
	rootCmd.AddCommand(logCmd(opts))
	rootCmd.AddCommand(statusCmd(opts))
	rootCmd.AddCommand(commitCmd(opts))
	rootCmd.AddCommand(journalCmd(opts))
	rootCmd.AddCommand(reportCmd(opts))
	rootCmd.AddCommand(findCmd(opts))
	rootCmd.AddCommand(activityCmd(opts))
	rootCmd.AddCommand(exportCmd(opts))
	rootCmd.AddCommand(mergeCmd(opts))

	return rootCmd
}

// app holds the services opened for one command run.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sqlite.DB
	workspace *workspace.Service
	activity  *activity.Service
	logFile   io.Closer
}

func openApp(opts *rootOptions, logWriter io.Writer) (*app, error) {
	cfg := opts.cfg
	a := &app{cfg: cfg}

	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			logWriter = fileWriter
			a.logFile = fileWriter
		}
	}
	a.logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		a.Close()
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.db = db
	if err := db.RunMigrations(); err != nil {
		a.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	activityRepo := sqlite.NewActivityRepository(db)
	a.activity = activity.NewService(activityRepo, a.logger)
	a.workspace = workspace.NewService(sqlite.NewTreeRepository(db), activityRepo, journal.Options{
		TimesDelimiter: cfg.Journal.TimesDelimiter,
		Horizon:        cfg.Journal.Horizon,
	}, a.logger)
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", "error", err)
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// formatSeconds renders a duration in seconds as H:MM.
func formatSeconds(sec int64) string {
	d := time.Duration(sec) * time.Second
	return fmt.Sprintf("%d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
