// Package app implements the application layer for bake.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/bake/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

// DefaultHistoryLimit is the number of runs listed when no limit is given.
const DefaultHistoryLimit = 10

// Runner executes cache runs.
type Runner interface {
	Run(ctx context.Context, opts domain.CacheOptions) (*pipeline.Report, error)
	Layout() domain.Layout
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	runner       Runner
	history      ports.HistoryStore
	fs           ports.FileSystem
	logger       ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	runner Runner,
	history ports.HistoryStore,
	fs ports.FileSystem,
	logger ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		runner:       runner,
		history:      history,
		fs:           fs,
		logger:       logger,
	}
}

// CleanOptions controls which artifacts are removed.
type CleanOptions struct {
	// Logs also removes the toolchain logs and their archive.
	Logs bool
	// History also removes the run history.
	History bool
}

// SetLogLevel changes the verbosity of the application logger.
func (a *App) SetLogLevel(level domain.LogLevel) {
	a.logger.SetLevel(level)
}

// LoadOptions returns the cache options of the config file at path, or of
// the .bake.yaml found in path when it is a directory.
func (a *App) LoadOptions(path string) (domain.CacheOptions, error) {
	if path == "" {
		path = "."
	}
	opts, err := a.configLoader.Load(path)
	if err != nil {
		return domain.CacheOptions{}, zerr.Wrap(err, "failed to load configuration")
	}
	return opts, nil
}

// Cache runs the cache pipeline with the given options.
func (a *App) Cache(ctx context.Context, opts domain.CacheOptions) (*pipeline.Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	report, err := a.runner.Run(ctx, opts)
	if err != nil {
		return report, err
	}

	a.logger.Debug(fmt.Sprintf("run %s finished in %s", report.RunID, report.Duration))
	return report, nil
}

// Clean removes the build outputs, the bundles and the cache file.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	layout := a.runner.Layout()
	var errs error

	remove := func(path, name string) {
		if !a.fs.Exists(path) {
			return
		}
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := a.fs.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, "failed to remove "+name))
			return
		}
		a.logger.Info("removed " + name)
	}

	remove(layout.BuildDir(), "build products")
	remove(layout.DerivedDataRoot(), "derived data")
	remove(layout.BundleDir(), "xcframeworks")
	remove(layout.CacheFile(), "cache file")

	if opts.Logs {
		remove(layout.LogsDir(), "logs")
	}
	if opts.History {
		remove(layout.HistoryFile(), "run history")
	}

	return errs
}

// History returns up to limit recent runs, newest first.
func (a *App) History(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	runs, err := a.history.Recent(ctx, limit)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read run history")
	}
	return runs, nil
}
