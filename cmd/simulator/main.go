package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/emberdeck/duelist/internal/config"
	"github.com/emberdeck/duelist/internal/game"
	"github.com/emberdeck/duelist/internal/logging"
	"github.com/emberdeck/duelist/internal/sim"
	"github.com/emberdeck/duelist/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	configPath = flag.String("config", "", "path to configuration file")
	baseSeed   = flag.Int64("seed", 1, "seed of the first match; match i uses seed+i")
	matches    = flag.Int("matches", 0, "number of matches (overrides simulation.matches)")
	replayDir  = flag.String("replays", "", "directory to write match replays to")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *matches > 0 {
		cfg.Simulation.Matches = *matches
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	catalog, err := sim.LoadCatalog(cfg.Simulation.CatalogPath)
	if err != nil {
		return err
	}

	registry := telemetry.NewRegistry()
	outcomes := telemetry.NewMatchWatcher()
	registry.Add(outcomes)
	for _, side := range []game.Side{game.SideA, game.SideB} {
		registry.Add(telemetry.NewDecisionWatcher(side.String()))
	}
	sink := telemetry.NewAsyncSink(registry, telemetry.DefaultBufferSize, logger)

	logger.Info("starting simulation",
		zap.String("version", version),
		zap.Int("matches", cfg.Simulation.Matches),
		zap.Int("parallelism", cfg.Simulation.Parallelism),
		zap.Int("catalog", len(catalog.Cards)))
	started := time.Now()

	var results []sim.Result
	if cfg.Simulation.ScenarioPath != "" {
		results, err = runScenario(ctx, cfg, catalog, sink, logger)
	} else {
		results, err = runBatch(ctx, cfg, catalog, sink, logger)
	}
	sink.Close()
	if err != nil {
		return err
	}

	logger.Info("simulation finished",
		zap.Int("matches", len(results)),
		zap.Duration("elapsed", time.Since(started)),
		zap.Int64("dropped_events", sink.Dropped()))
	report(os.Stdout, registry, outcomes, len(results))
	return nil
}

func runScenario(ctx context.Context, cfg *config.Config, catalog *sim.Catalog, sink telemetry.Sink, logger *zap.Logger) ([]sim.Result, error) {
	sc, err := sim.LoadScenario(cfg.Simulation.ScenarioPath)
	if err != nil {
		return nil, err
	}
	m, err := sim.NewScenarioMatch(cfg, catalog, sc, sim.WithSink(sink), sim.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	res, err := m.Run(ctx)
	if err != nil {
		return nil, err
	}
	if err := saveReplay(m, logger); err != nil {
		return nil, err
	}
	return []sim.Result{res}, nil
}

func runBatch(ctx context.Context, cfg *config.Config, catalog *sim.Catalog, sink telemetry.Sink, logger *zap.Logger) ([]sim.Result, error) {
	results := make([]sim.Result, cfg.Simulation.Matches)
	g, gctx := errgroup.WithContext(ctx)
	parallelism := cfg.Simulation.Parallelism
	if parallelism < 1 {
		parallelism = runtime.NumCPU()
	}
	g.SetLimit(parallelism)

	for i := range results {
		i := i
		seed := *baseSeed + int64(i)
		g.Go(func() error {
			m, err := sim.NewMatch(cfg, catalog, seed, sim.WithSink(sink), sim.WithLogger(logger))
			if err != nil {
				return err
			}
			res, err := m.Run(gctx)
			if err != nil {
				return fmt.Errorf("match %d (seed %d): %w", i, seed, err)
			}
			results[i] = res
			return saveReplay(m, logger)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func saveReplay(m *sim.Match, logger *zap.Logger) error {
	if *replayDir == "" {
		return nil
	}
	path, err := m.Replay().SaveToFile(*replayDir)
	if err != nil {
		return fmt.Errorf("failed to save replay of %s: %w", m.ID(), err)
	}
	logger.Debug("replay saved", zap.String("path", path))
	return nil
}
