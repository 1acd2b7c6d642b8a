package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Upstream providers
	DexScreener DexScreenerConfig
	Birdeye     BirdeyeConfig
	Helius      HeliusConfig

	// Notification
	Telegram TelegramConfig

	// Pipeline tuning
	Pipeline PipelineConfig
	Scoring  ScoringWeights
	Gate     GateConfig
	Emission EmissionConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DexScreenerConfig holds DexScreener API configuration (discovery strategies).
type DexScreenerConfig struct {
	BaseURL string
	Chain   string // chain slug used by profile/search endpoints
}

// BirdeyeConfig holds Birdeye API configuration (sweep fetcher).
type BirdeyeConfig struct {
	BaseURL string
	APIKey  string
}

// HeliusConfig holds Helius API configuration (activity enrichment).
type HeliusConfig struct {
	BaseURL string
	APIKey  string
}

// TelegramConfig holds the notification sink configuration.
type TelegramConfig struct {
	BotToken string
	ChatID   string
	Enabled  bool
}

// PipelineConfig holds cycle-level tuning: candidate caps, the sweep
// contract and per-provider fan-out bounds.
type PipelineConfig struct {
	ScanInterval          time.Duration // cycle cadence
	MaxCandidatesPerCycle int
	MinCandidateTarget    int // sweep triggers below this post-dedup count
	PerStrategyCap        int
	StrategyTimeout       time.Duration

	// Sweep (overflow discovery)
	SweepMaxPages      int
	SweepPageSize      int
	SweepPageTimeout   time.Duration
	SweepPageWarnAfter time.Duration

	// Enrichment
	EnrichConcurrency int
	EnrichTimeout     time.Duration
	ActivityMaxAge    time.Duration // older secondary data counts as stale

	// Gating
	GateConcurrency int
}

// ScoringWeights holds the momentum sub-factor weights.
// Exposed by name so scoring behavior is reproducible and tunable.
type ScoringWeights struct {
	VolumeToMcap float64 // volume/marketcap ratio
	PriceChange  float64 // short-window price change
	Liquidity    float64 // liquidity depth
	Holders      float64 // holder distribution
	TxCount      float64 // transaction count
}

// Sum returns the total weight, expected to be 1.0.
func (w ScoringWeights) Sum() float64 {
	return w.VolumeToMcap + w.PriceChange + w.Liquidity + w.Holders + w.TxCount
}

// GateConfig holds every guard threshold and the relaxed-path floors.
type GateConfig struct {
	// Hard guards
	ScamKeywords         []string
	MajorTokenSymbols    []string
	MajorTokenMarketCap  float64 // USD; above this a token is out of small-cap scope
	MinHolderCount       int
	MinBuyerDominance    float64 // fires together with MinBuysWithDominance
	MinBuysWithDominance int
	MinBuysFloor         int           // absolute buy-count floor
	MaxTradeAge          time.Duration // last trade older than this is stale
	HeliusVolumeFloor    float64       // USD; checked only on fresh activity data

	// Acceptance thresholds
	StrictMomentumThreshold float64
	StrictQualityThreshold  float64

	// Relaxed path (stale secondary data only)
	RelaxedMomentumThreshold float64
	RelaxedMinPriceChange1h  float64 // percent
	RelaxedMinVolumeRatio    float64
	RelaxedMinDominance      float64
	RelaxedMinBuys           int
}

// EmissionConfig holds the emission cap and the dedup window.
type EmissionConfig struct {
	MaxPerCycle int
	DedupWindow time.Duration
	RecentLimit int // default query-surface page size
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		DexScreener: DexScreenerConfig{
			BaseURL: getEnv("DEXSCREENER_BASE_URL", "https://api.dexscreener.com"),
			Chain:   getEnv("DEXSCREENER_CHAIN", "solana"),
		},

		Birdeye: BirdeyeConfig{
			BaseURL: getEnv("BIRDEYE_BASE_URL", "https://public-api.birdeye.so"),
			APIKey:  getEnv("BIRDEYE_API_KEY", ""),
		},

		Helius: HeliusConfig{
			BaseURL: getEnv("HELIUS_BASE_URL", "https://api.helius.xyz"),
			APIKey:  getEnv("HELIUS_API_KEY", ""),
		},

		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
			Enabled:  getEnvAsBool("TELEGRAM_ENABLED", false),
		},

		Pipeline: PipelineConfig{
			ScanInterval:          getEnvAsDuration("SCAN_INTERVAL", "90s"),
			MaxCandidatesPerCycle: getEnvAsInt("MAX_CANDIDATES_PER_CYCLE", 120),
			MinCandidateTarget:    getEnvAsInt("MIN_CANDIDATE_TARGET", 40),
			PerStrategyCap:        getEnvAsInt("PER_STRATEGY_CAP", 30),
			StrategyTimeout:       getEnvAsDuration("STRATEGY_TIMEOUT", "10s"),
			SweepMaxPages:         getEnvAsInt("SWEEP_MAX_PAGES", 10),
			SweepPageSize:         getEnvAsInt("SWEEP_PAGE_SIZE", 50),
			SweepPageTimeout:      getEnvAsDuration("SWEEP_PAGE_TIMEOUT", "8s"),
			SweepPageWarnAfter:    getEnvAsDuration("SWEEP_PAGE_WARN_AFTER", "3s"),
			EnrichConcurrency:     getEnvAsInt("ENRICH_CONCURRENCY", 8),
			EnrichTimeout:         getEnvAsDuration("ENRICH_TIMEOUT", "6s"),
			ActivityMaxAge:        getEnvAsDuration("ACTIVITY_MAX_AGE", "10m"),
			GateConcurrency:       getEnvAsInt("GATE_CONCURRENCY", 8),
		},

		Scoring: ScoringWeights{
			VolumeToMcap: getEnvAsFloat("WEIGHT_VOLUME_MCAP", 0.30),
			PriceChange:  getEnvAsFloat("WEIGHT_PRICE_CHANGE", 0.25),
			Liquidity:    getEnvAsFloat("WEIGHT_LIQUIDITY", 0.20),
			Holders:      getEnvAsFloat("WEIGHT_HOLDERS", 0.15),
			TxCount:      getEnvAsFloat("WEIGHT_TX_COUNT", 0.10),
		},

		Gate: GateConfig{
			ScamKeywords:         getEnvAsList("GATE_SCAM_KEYWORDS", defaultScamKeywords),
			MajorTokenSymbols:    getEnvAsList("GATE_MAJOR_TOKEN_SYMBOLS", defaultMajorTokens),
			MajorTokenMarketCap:  getEnvAsFloat("GATE_MAJOR_TOKEN_MCAP", 500_000_000),
			MinHolderCount:       getEnvAsInt("GATE_MIN_HOLDER_COUNT", 50),
			MinBuyerDominance:    getEnvAsFloat("GATE_MIN_BUYER_DOMINANCE", 0.30),
			MinBuysWithDominance: getEnvAsInt("GATE_MIN_BUYS_WITH_DOMINANCE", 8),
			MinBuysFloor:         getEnvAsInt("GATE_MIN_BUYS_FLOOR", 3),
			MaxTradeAge:          getEnvAsDuration("GATE_MAX_TRADE_AGE", "30m"),
			HeliusVolumeFloor:    getEnvAsFloat("GATE_HELIUS_VOLUME_FLOOR", 1_000),

			StrictMomentumThreshold: getEnvAsFloat("GATE_STRICT_MOMENTUM", 50),
			StrictQualityThreshold:  getEnvAsFloat("GATE_STRICT_QUALITY", 6.0),

			RelaxedMomentumThreshold: getEnvAsFloat("GATE_RELAXED_MOMENTUM", 55),
			RelaxedMinPriceChange1h:  getEnvAsFloat("GATE_RELAXED_MIN_CHANGE_1H", 8.0),
			RelaxedMinVolumeRatio:    getEnvAsFloat("GATE_RELAXED_MIN_VOLUME_RATIO", 0.35),
			RelaxedMinDominance:      getEnvAsFloat("GATE_RELAXED_MIN_DOMINANCE", 0.35),
			RelaxedMinBuys:           getEnvAsInt("GATE_RELAXED_MIN_BUYS", 4),
		},

		Emission: EmissionConfig{
			MaxPerCycle: getEnvAsInt("MAX_EMISSIONS_PER_CYCLE", 5),
			DedupWindow: getEnvAsDuration("EMISSION_DEDUP_WINDOW", "6h"),
			RecentLimit: getEnvAsInt("EMISSION_RECENT_LIMIT", 20),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

var defaultScamKeywords = []string{
	"rug", "scam", "honeypot", "airdrop", "claim", "free", "giveaway", "test",
}

var defaultMajorTokens = []string{
	"SOL", "WSOL", "USDC", "USDT", "BTC", "WBTC", "ETH", "WETH", "JUP", "RAY",
}

// validate refuses to run with an incomplete or inconsistent configuration.
// A threshold error is fatal at startup, never guessed at per cycle.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	p := c.Pipeline
	if p.MaxCandidatesPerCycle <= 0 {
		return fmt.Errorf("MAX_CANDIDATES_PER_CYCLE must be positive")
	}
	if p.MinCandidateTarget <= 0 || p.MinCandidateTarget > p.MaxCandidatesPerCycle {
		return fmt.Errorf("MIN_CANDIDATE_TARGET must be in 1..MAX_CANDIDATES_PER_CYCLE")
	}
	if p.PerStrategyCap <= 0 {
		return fmt.Errorf("PER_STRATEGY_CAP must be positive")
	}
	if p.SweepMaxPages <= 0 || p.SweepPageSize <= 0 {
		return fmt.Errorf("sweep page bounds must be positive")
	}
	if p.EnrichConcurrency <= 0 || p.GateConcurrency <= 0 {
		return fmt.Errorf("concurrency bounds must be positive")
	}
	if p.ScanInterval <= 0 {
		return fmt.Errorf("SCAN_INTERVAL must be positive")
	}

	if math.Abs(c.Scoring.Sum()-1.0) > 0.001 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.3f", c.Scoring.Sum())
	}

	g := c.Gate
	if g.MinHolderCount < 0 || g.MinBuysFloor < 0 {
		return fmt.Errorf("guard floors must not be negative")
	}
	if g.MinBuyerDominance < 0 || g.MinBuyerDominance > 1 ||
		g.RelaxedMinDominance < 0 || g.RelaxedMinDominance > 1 {
		return fmt.Errorf("dominance thresholds must be within 0..1")
	}
	if g.RelaxedMomentumThreshold < g.StrictMomentumThreshold {
		return fmt.Errorf("GATE_RELAXED_MOMENTUM must not be below GATE_STRICT_MOMENTUM")
	}
	if g.MaxTradeAge <= 0 {
		return fmt.Errorf("GATE_MAX_TRADE_AGE must be positive")
	}

	if c.Emission.MaxPerCycle <= 0 {
		return fmt.Errorf("MAX_EMISSIONS_PER_CYCLE must be positive")
	}
	if c.Emission.DedupWindow <= 0 {
		return fmt.Errorf("EMISSION_DEDUP_WINDOW must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
