// Command server is the gateway's composition root: load config, build
// every collaborator, start the HTTP server and the background health
// prober, then shut down gracefully on SIGINT/SIGTERM. Grounded on the
// teacher's cmd/server/main.go wiring order and signal handling.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/S-Corkum/search-gateway/internal/api"
	"github.com/S-Corkum/search-gateway/internal/cache"
	"github.com/S-Corkum/search-gateway/internal/config"
	"github.com/S-Corkum/search-gateway/internal/dispatch"
	"github.com/S-Corkum/search-gateway/internal/engine"
	"github.com/S-Corkum/search-gateway/internal/health"
	"github.com/S-Corkum/search-gateway/internal/model"
	"github.com/S-Corkum/search-gateway/internal/observability"
	"github.com/S-Corkum/search-gateway/internal/tenant"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Best-effort: a .env file is a local-dev convenience, never present
	// (or needed) in a deployed environment where real env vars are set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := observability.NewLogger("search-gateway")
	metrics := observability.NewPrometheusMetrics("search_gateway")

	l1 := cache.NewL1(cfg.Cache.L1MaxEntries, cfg.Cache.L1DefaultTTL)

	var redisClient *redis.Client
	if cfg.Cache.L2Enabled {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Cache.L2Endpoint})
	}
	l2 := cache.NewL2(redisClient, cfg.Cache.L2Enabled)
	twoLevel := cache.NewTwoLevel(l1, l2, logger, metrics)

	simpleAdapter := engine.NewSimpleAdapter(cfg.Engine.Simple, logger, metrics)
	complexAdapter := engine.NewComplexAdapter(cfg.Engine.Complex, logger, metrics)

	dispatcher := dispatch.New(simpleAdapter, complexAdapter, twoLevel, cfg.Dispatch, logger, metrics)

	resolver := tenant.NewResolver(tenant.NewStaticLookup(dedicatedStrategies(cfg.Tenant)))

	checks := []health.Check{
		health.NewCheck("simple_engine", func(ctx context.Context) error {
			if simpleAdapter.Health(ctx) {
				return nil
			}
			return errUnhealthy
		}),
		health.NewCheck("complex_engine", func(ctx context.Context) error {
			if complexAdapter.Health(ctx) {
				return nil
			}
			return errUnhealthy
		}),
	}
	if cfg.Cache.L2Enabled {
		checks = append(checks, health.NewCheck("cache_l2", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}))
	}
	prober := health.New(cfg.Health.ProbeInterval, checks, logger, metrics)

	go prober.Run(ctx)

	server := api.NewServer(api.Deps{
		Cache:          twoLevel,
		ClassifierCfg:  cfg.Classifier,
		Dispatcher:     dispatcher,
		SimpleAdapter:  simpleAdapter,
		TenantResolver: resolver,
		Prober:         prober,
		Logger:         logger,
		Metrics:        metrics,
		SmallTTL:       cfg.Cache.SmallTTL,
		LongTTL:        cfg.Cache.LongTTL,
		ShortTTL:       cfg.Cache.ShortTTL,
		SuggestTTL:     cfg.Cache.ShortTTL,
	})

	httpServer := &http.Server{
		Addr:         cfg.API.ListenAddress,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
		IdleTimeout:  cfg.API.IdleTimeout,
	}

	go func() {
		logger.Info("starting server", map[string]any{"address": cfg.API.ListenAddress})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("received shutdown signal", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", map[string]any{"error": err.Error()})
	}
	cancel()
	logger.Info("server stopped gracefully", nil)
}

var errUnhealthy = errors.New("health probe reported unhealthy")

// dedicatedStrategies turns the configured tenant.overrides section into
// the map tenant.StaticLookup seeds dedicated-index tenants from; any
// tenant absent from it keeps the shared-index default (§4.4).
func dedicatedStrategies(cfg config.TenantConfig) map[string]model.RoutingStrategy {
	strategies := make(map[string]model.RoutingStrategy, len(cfg.Overrides))
	for tenantID, override := range cfg.Overrides {
		strategy := model.RoutingShared
		if override.Dedicated {
			strategy = model.RoutingDedicated
		}
		indexName := override.IndexName
		if indexName == "" {
			indexName = tenantID + "-index"
		}
		shardCount := override.ShardCount
		if shardCount == 0 {
			shardCount = 3
		}
		replicaCount := override.ReplicaCount
		if replicaCount == 0 {
			replicaCount = 1
		}
		strategies[tenantID] = model.RoutingStrategy{
			IndexName:    indexName,
			ShardCount:   shardCount,
			ReplicaCount: replicaCount,
			Strategy:     strategy,
		}
	}
	return strategies
}
