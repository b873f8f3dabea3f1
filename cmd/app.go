// Package cmd implements the folio command-line application.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/config"
	"github.com/etnz/folio/metrics"
	"github.com/etnz/folio/store"
	"github.com/google/subcommands"
	"github.com/phuslu/log"
)

// group is a set of subcommands listed together in the help.
type group struct {
	name     string
	commands []subcommands.Command
}

func groups() []group {
	return []group{
		{"ledger", []subcommands.Command{&execCmd{}, &quoteCmd{}, &showCmd{}}},
		{"storage", []subcommands.Command{&backupCmd{}, &restoreCmd{}, &pruneCmd{}}},
		{"help", []subcommands.Command{&topicCmd{}}},
	}
}

// Register the subcommands.
func Register(c *subcommands.Commander) {
	for _, g := range groups() {
		for _, cmd := range g.commands {
			c.Register(cmd, g.name)
		}
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "folio.toml", "Path to the configuration file")

// app is what every subcommand needs: the configuration, the opened store
// and the ledger loaded from it.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	store   store.Store
	metrics *metrics.Metrics
	ledger  *folio.Ledger
}

// openApp loads the configuration and the ledger.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:     cfg,
		logger:  cfg.Logging.Logger(os.Stderr),
		metrics: metrics.New(),
		ledger:  folio.NewLedger(cfg.HomeCurrency),
	}
	a.ledger.SetLogger(a.logger)

	a.store, err = store.Open(ctx, cfg.Store.URL)
	if err != nil {
		return nil, err
	}
	data, err := a.store.Get(ctx, cfg.Store.Ledger)
	if errors.Is(err, store.ErrNotFound) {
		a.logger.Info().Str("ledger", cfg.Store.Ledger).Msg("ledger does not exist, starting an empty one")
		a.ledger.OnDataInit()
		return a, nil
	}
	if err != nil {
		a.store.Close()
		return nil, fmt.Errorf("cannot read ledger %q: %w", cfg.Store.Ledger, err)
	}
	// a ledger that cannot be loaded must not be overwritten by an empty one.
	if err := a.ledger.OnDataLoadStorage(data); err != nil {
		a.store.Close()
		return nil, fmt.Errorf("cannot load ledger %q: %w", cfg.Store.Ledger, err)
	}
	a.logger.Debug().Str("ledger", cfg.Store.Ledger).Int("portfolios", len(a.ledger.Portfolios())).Msg("ledger loaded")
	return a, nil
}

// save writes the ledger to the store when it changed, then exports the metrics.
func (a *app) save(ctx context.Context) error {
	if a.ledger.Unsaved() {
		start := time.Now()
		data, err := a.ledger.OnDataSaveStorage()
		if err != nil {
			return fmt.Errorf("cannot encode ledger: %w", err)
		}
		if err := a.store.Put(ctx, a.cfg.Store.Ledger, data); err != nil {
			return fmt.Errorf("cannot save ledger %q: %w", a.cfg.Store.Ledger, err)
		}
		a.metrics.ObserveSave(start)
		a.logger.Info().Str("ledger", a.cfg.Store.Ledger).Int("bytes", len(data)).Msg("ledger saved")
	}
	a.metrics.ObserveLedger(a.ledger)
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		a.logger.Warn().Err(err).Str("file", a.cfg.Metrics.Textfile).Msg("cannot write metrics")
	}
	return nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("cannot close store")
	}
}

// run opens the app, calls f, and closes the app. Errors are printed and
// turned into a failure status.
func run(ctx context.Context, f func(a *app) subcommands.ExitStatus) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.close()
	return f(a)
}
