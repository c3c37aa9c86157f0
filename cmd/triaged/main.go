package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fieldcrm/triaged/internal/config"
	"github.com/fieldcrm/triaged/internal/engine"
	"github.com/fieldcrm/triaged/internal/session"
	"github.com/fieldcrm/triaged/internal/storage"
	"github.com/fieldcrm/triaged/internal/tasks"
	"github.com/fieldcrm/triaged/internal/update"
	"github.com/fieldcrm/triaged/internal/watch"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "triaged failed: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		dbPath     string
		userID     string
		userName   string
		seed       bool
		noWatch    bool
	)

	root := &cobra.Command{
		Use:           "triaged",
		Short:         "Batch task triage for manual and cadence CRM tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if dbPath != "" {
				cfg.Database.Path = dbPath
			}
			if userID != "" {
				cfg.User.ID = userID
			}
			if userName != "" {
				cfg.User.Name = userName
			}
			if seed {
				cfg.Database.Seed = true
			}
			if noWatch {
				cfg.Watch.Enabled = false
			}
			return runApp(cfg)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "path to the sqlite database")
	root.Flags().StringVar(&userID, "user", "", "acting user id for completion stamps")
	root.Flags().StringVar(&userName, "user-name", "", "acting user display name")
	root.Flags().BoolVar(&seed, "seed", false, "seed demo tasks into an empty database")
	root.Flags().BoolVar(&noWatch, "no-watch", false, "disable database file watching")

	root.AddCommand(newMigrateCmd(&configPath, &dbPath))
	return root
}

func newMigrateCmd(configPath, dbPath *string) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	openDB := func() (*storage.SQLiteRepository, error) {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return nil, err
		}
		path := cfg.Database.Path
		if *dbPath != "" {
			path = *dbPath
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
		return storage.OpenSQLite(path)
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openDB()
			if err != nil {
				return err
			}
			defer repo.Close()
			return storage.MigrateUp(repo.DB())
		},
	})
	migrate.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openDB()
			if err != nil {
				return err
			}
			defer repo.Close()
			return storage.MigrateDown(repo.DB())
		},
	})
	return migrate
}

func loadConfig(configPath string) (config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

func runApp(cfg config.Config) error {
	logger, err := buildLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("creating database dir: %w", err)
	}
	repo, err := storage.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := storage.MigrateUp(repo.DB()); err != nil {
		return err
	}
	if cfg.Database.Seed {
		if err := storage.SeedFixtures(context.Background(), repo, cfg.User.ID, time.Now().UTC()); err != nil {
			return fmt.Errorf("seeding fixtures: %w", err)
		}
	}

	users := session.StaticProvider{User: session.User{ID: cfg.User.ID, Name: cfg.User.Name}}
	eng := engine.New(repo, users, logger)
	svc := tasks.NewService(repo, logger)

	var invalidations <-chan struct{}
	if cfg.Watch.Enabled {
		inv := watch.NewInvalidator(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond, logger)
		inv.Start()
		defer inv.Stop()
		watcher, err := watch.NewFileWatcher(cfg.Database.Path, inv, logger)
		if err != nil {
			logger.Warn("file watching disabled", zap.Error(err))
		} else {
			defer watcher.Close()
			invalidations = inv.C()
		}
	}

	m := update.NewModel(update.Deps{
		Fetcher:       svc,
		Engine:        eng,
		UserID:        cfg.User.ID,
		Invalidations: invalidations,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func buildLogger(cfg config.LogConfig) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	zapCfg := zap.NewProductionConfig()
	if cfg.Debug {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	// Stdout belongs to the TUI, so logs go to the file only.
	zapCfg.OutputPaths = []string{cfg.Path}
	zapCfg.ErrorOutputPaths = []string{cfg.Path}
	return zapCfg.Build()
}
