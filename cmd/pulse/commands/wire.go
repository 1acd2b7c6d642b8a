package commands

import (
	"fmt"

	"tokenpulse/internal/aggregator"
	"tokenpulse/internal/contracts"
	"tokenpulse/internal/emit"
	"tokenpulse/internal/enrich"
	"tokenpulse/internal/external/birdeye"
	"tokenpulse/internal/external/dexscreener"
	"tokenpulse/internal/external/helius"
	"tokenpulse/internal/gate"
	"tokenpulse/internal/metrics"
	"tokenpulse/internal/notify"
	"tokenpulse/internal/pipeline"
	"tokenpulse/internal/scoring"
	"tokenpulse/internal/store"
	"tokenpulse/pkg/config"
	"tokenpulse/pkg/database"
	"tokenpulse/pkg/httputil"
	"tokenpulse/pkg/logger"
	"tokenpulse/pkg/redis"
)

// app bundles the wired components a command needs.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *database.DB
	rdb    *redis.Client
	cache  *redis.Cache
	runner *pipeline.Runner

	signalRepo *store.SignalRepository
	cycleRepo  *store.MetricsRepository
	collectors *metrics.Collectors
	emitter    *emit.Controller
}

// close releases shared resources in reverse wiring order.
func (a *app) close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// buildApp wires the full pipeline from configuration. Every command
// that runs cycles goes through here so wiring differences between
// run, scan and api cannot drift apart.
func buildApp(withCollectors bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(rdb, "tokenpulse")
	limiter := redis.NewRateLimiter(rdb, "tokenpulse")

	// One HTTP client per provider so rate limits stay independent. The
	// local limiter covers the Redis-disabled case.
	dexHTTP := httputil.New(cfg, log).
		WithRateLimiter(limiter, redis.DexScreenerRateLimit).
		WithLocalLimiter(4, 4)
	birdeyeHTTP := httputil.New(cfg, log).
		WithRateLimiter(limiter, redis.BirdeyeRateLimit).
		WithLocalLimiter(1, 1)
	heliusHTTP := httputil.New(cfg, log).
		WithRateLimiter(limiter, redis.HeliusRateLimit).
		WithLocalLimiter(10, 10)

	dexClient := dexscreener.NewClient(dexHTTP, cfg.DexScreener, log)
	strategies := []contracts.StrategyFetcher{
		dexscreener.NewProfilesStrategy(dexClient),
		dexscreener.NewBoostsStrategy(dexClient),
		dexscreener.NewSearchStrategy(dexClient, ""),
	}
	sweep := birdeye.NewClient(birdeyeHTTP, cfg.Birdeye, cfg.Pipeline.SweepPageSize, log)
	activity := helius.NewClient(heliusHTTP, cfg.Helius, log)

	signalRepo := store.NewSignalRepository(db.Pool)
	cycleRepo := store.NewMetricsRepository(db.Pool)

	var notifier contracts.Notifier
	if cfg.Telegram.Enabled {
		notifier = notify.NewTelegramNotifier(httputil.New(cfg, log), cfg.Telegram, log)
	}

	var collectors *metrics.Collectors
	if withCollectors && cfg.MetricsEnabled {
		collectors = metrics.NewCollectors("tokenpulse")
	}

	agg := aggregator.New(strategies, sweep, cfg.Pipeline, log)
	enricher := enrich.New(activity, cache, cfg.Pipeline, log)
	scorer := scoring.NewEngine(cfg.Scoring, cfg.Gate)
	gateEngine := gate.NewEngine(cfg.Gate)
	emitter := emit.NewController(signalRepo, notifier, cfg.Emission, log)
	recorder := metrics.NewRecorder(cycleRepo, cache, collectors, log)

	runner := pipeline.NewRunner(agg, enricher, scorer, gateEngine, emitter, recorder, cfg.Pipeline, log)

	return &app{
		cfg:        cfg,
		log:        log,
		db:         db,
		rdb:        rdb,
		cache:      cache,
		runner:     runner,
		signalRepo: signalRepo,
		cycleRepo:  cycleRepo,
		collectors: collectors,
		emitter:    emitter,
	}, nil
}
