package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emberdeck/duelist/internal/config"
	"github.com/emberdeck/duelist/internal/logging"
	"github.com/emberdeck/duelist/internal/sim"
	"github.com/emberdeck/duelist/internal/spectator"
	"github.com/emberdeck/duelist/internal/telemetry"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "path to configuration file")
	baseSeed   = flag.Int64("seed", time.Now().UnixNano(), "seed of the first match")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting spectator",
		zap.String("version", version),
		zap.String("address", cfg.Spectator.Address),
		zap.Duration("action_gap", cfg.Spectator.ActionGap))

	catalog, err := sim.LoadCatalog(cfg.Simulation.CatalogPath)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := spectator.NewHub(cfg.Spectator.SendBuffer, logger)
	go hub.Run(ctx)

	bus := telemetry.NewEventBus()
	bus.Subscribe(hub.Notify)
	bus.SubscribeTyped(telemetry.EventMatchEnded, func(evt telemetry.Event) {
		logger.Info("match ended",
			zap.String("match_id", evt.MatchID),
			zap.String("winner", evt.Data),
			zap.Int("rounds", evt.Turn))
	})

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %d\n", hub.Clients())
	})
	srv := &http.Server{Addr: cfg.Spectator.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	go broadcastMatches(ctx, cfg, catalog, hub, bus, logger)

	<-ctx.Done()
	logger.Info("shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	logger.Info("spectator stopped")
}

// broadcastMatches plays paced matches back to back until ctx is done.
func broadcastMatches(ctx context.Context, cfg *config.Config, catalog *sim.Catalog, hub *spectator.Hub, bus *telemetry.EventBus, logger *zap.Logger) {
	matchCfg := *cfg
	matchCfg.AI.Pacing = cfg.Spectator.ActionGap

	for seed := *baseSeed; ctx.Err() == nil; seed++ {
		var id string
		m, err := sim.NewMatch(&matchCfg, catalog, seed,
			sim.WithSink(bus),
			sim.WithLogger(logger),
			sim.WithObserver(func(s sim.Snapshot) {
				hub.Publish(spectator.Message{Type: spectator.MessageSnapshot, MatchID: id, Data: s})
			}))
		if err != nil {
			logger.Error("failed to create match", zap.Error(err))
			return
		}
		id = m.ID()

		res, err := m.Run(ctx)
		if err != nil {
			return
		}
		hub.Publish(spectator.Message{Type: spectator.MessageResult, MatchID: res.MatchID, Data: res})

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * cfg.Spectator.ActionGap):
		}
	}
}
