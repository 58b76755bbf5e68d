package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/keycamp/internal/config"
	"github.com/verte-zerg/keycamp/internal/curriculum"
	"github.com/verte-zerg/keycamp/internal/generator"
	"github.com/verte-zerg/keycamp/internal/logging"
	"github.com/verte-zerg/keycamp/internal/progress"
	"github.com/verte-zerg/keycamp/internal/store"
	"github.com/verte-zerg/keycamp/internal/trainer"
)

var errNoHistory = errors.New("attempt history needs the sqlite database; the memory backend keeps none")

// app holds the wired dependencies for one command invocation.
type app struct {
	cfg     config.FileConfig
	logger  *slog.Logger
	catalog *curriculum.Catalog
	repo    *progress.Repository
	history *store.Store
	trainer *trainer.Trainer
	closers []io.Closer
}

type appOptions struct {
	// tui routes logs to a file so they do not corrupt the screen.
	tui   bool
	words int
	seed  int64
}

func openApp(ctx context.Context, cmd *cobra.Command, opts appOptions) (*app, error) {
	fileCfg, err := config.LoadConfig(configPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	a := &app{cfg: fileCfg}

	dbPath := config.DefaultDBPath()
	logLevel, logFormat, logFile := defaultLogLevel, defaultLogFormat, ""
	if opts.tui {
		logFile = config.DefaultLogPath()
	}
	backend := globalBackend
	key := progress.DefaultKey
	redisURL := ""
	catalogPath := ""

	applyStringConfig(cmd, "db", &dbPath, fileCfg.Store.Path)
	applyStringConfig(cmd, "backend", &backend, fileCfg.Store.Backend)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	applyStringConfig(cmd, "catalog", &catalogPath, fileCfg.Catalog.Path)
	if fileCfg.Log.Format != nil {
		logFormat = *fileCfg.Log.Format
	}
	if fileCfg.Store.Key != nil {
		key = *fileCfg.Store.Key
	}
	if fileCfg.Store.RedisURL != nil {
		redisURL = *fileCfg.Store.RedisURL
	}
	overrideChanged(cmd, "db", &dbPath, globalDB)
	overrideChanged(cmd, "log-level", &logLevel, globalLogLevel)
	overrideChanged(cmd, "log-file", &logFile, globalLogFile)
	overrideChanged(cmd, "catalog", &catalogPath, globalCatalog)

	if err := a.setupLogger(logLevel, logFormat, logFile); err != nil {
		return nil, err
	}

	catalog, err := curriculum.Load(catalogPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	a.catalog = catalog

	kv, err := a.openBackend(ctx, backend, dbPath, redisURL)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.repo = progress.NewRepository(kv, key)

	trOpts := []trainer.Option{
		trainer.WithLogger(a.logger),
		trainer.WithWordCount(opts.words),
	}
	if opts.seed != 0 {
		trOpts = append(trOpts, trainer.WithGenerator(generator.NewWithSeed(opts.seed)))
	}
	if a.history != nil {
		trOpts = append(trOpts, trainer.WithHistory(a.history))
	}
	a.trainer = trainer.New(catalog, a.repo, trOpts...)
	return a, nil
}

func (a *app) setupLogger(level, format, file string) error {
	var w io.Writer = os.Stderr
	if file != "" {
		f, err := logging.OpenFile(file)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.closers = append(a.closers, f)
		w = f
	}
	logger, err := logging.New(w, level, format)
	if err != nil {
		a.Close()
		return err
	}
	a.logger = logger
	slog.SetDefault(logger)
	return nil
}

// openBackend returns the progress store. SQLite also serves as attempt
// history for the redis backend.
func (a *app) openBackend(ctx context.Context, backend, dbPath, redisURL string) (progress.KV, error) {
	switch backend {
	case config.BackendMemory:
		return store.NewMemory(), nil
	case config.BackendSQLite, config.BackendRedis:
	default:
		return nil, fmt.Errorf("unknown backend %q (want sqlite, redis or memory)", backend)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	a.history = st
	a.closers = append(a.closers, st)
	if backend == config.BackendSQLite {
		return st, nil
	}

	rdb, err := store.NewRedis(ctx, redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.closers = append(a.closers, rdb)
	a.logger.Debug("using redis progress backend")
	return rdb, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logErrf("failed to close: %v\n", err)
		}
	}
	a.closers = nil
}

func (a *app) requireHistory() (*store.Store, error) {
	if a.history == nil {
		return nil, errNoHistory
	}
	return a.history, nil
}

func overrideChanged(cmd *cobra.Command, name string, target *string, value string) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}
