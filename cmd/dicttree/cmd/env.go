package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gookit/color"

	"github.com/dbsmedya/dicttree/internal/config"
	"github.com/dbsmedya/dicttree/internal/console"
	"github.com/dbsmedya/dicttree/internal/database"
	"github.com/dbsmedya/dicttree/internal/logger"
	"github.com/dbsmedya/dicttree/internal/store"
)

// loadConfig reads the config file and applies CLI overrides. A missing config
// file is tolerated when --file names a records file, since nothing else is
// required in that mode.
func loadConfig() (*config.Config, error) {
	configFile := GetConfigFile()
	overrides := GetCLIOverrides()

	var cfg *config.Config
	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) && overrides.RecordsFile != "" {
		cfg = config.DefaultConfig()
	} else {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat, overrides.RecordsFile, overrides.NoColor)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// environment bundles what every command needs: config, logger, an open store
// and a loaded session.
type environment struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.Manager
	session *console.Session
}

// openEnvironment connects the store and reloads the session. recorder may be nil.
func openEnvironment(ctx context.Context, recorder console.Recorder) (*environment, error) {
	env, err := connectEnvironment(ctx, recorder)
	if err != nil {
		return nil, err
	}
	if err := env.session.Reload(ctx); err != nil {
		env.Close()
		return nil, err
	}
	return env, nil
}

// connectEnvironment loads config and connects the store without reading any
// records.
func connectEnvironment(ctx context.Context, recorder console.Recorder) (*environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	color.Enable = cfg.Display.Color

	env := &environment{cfg: cfg, log: log}

	if cfg.UsesDatabase() {
		env.db = database.NewManager(&cfg.Database)
		if err := env.db.Connect(ctx); err != nil {
			return nil, err
		}
	}

	var st store.Store
	if env.db != nil {
		st, err = store.New(cfg.Store, env.db.DB, log)
	} else {
		st, err = store.New(cfg.Store, nil, log)
	}
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	env.session = console.NewSession(st, console.Options{
		Indent:   cfg.Display.Indent,
		Logger:   log,
		Recorder: recorder,
	})
	return env, nil
}

// Close releases the database pool and flushes the logger.
func (e *environment) Close() {
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.log.Warnw("Failed to close database", "error", err)
		}
	}
	_ = e.log.Sync()
}
