/**
 * @description
 * Configuration loader for the indexer.
 * Responsible for reading environment variables, setting defaults, and performing strict validation.
 *
 * @dependencies
 * - github.com/joho/godotenv: For loading .env files
 * - standard "os": For reading env vars
 * - standard "fmt": For error reporting
 *
 * @notes
 * - Fails fast if critical variables (database URL) are missing.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	Polymarket PolymarketConfig
	Sync       SyncConfig
}

// ServerConfig holds status-surface HTTP settings.
type ServerConfig struct {
	Port string
	Env  string // "development" or "production"
}

// DBConfig holds PostgreSQL settings.
type DBConfig struct {
	URL            string
	PoolMax        int
	QueryTimeoutMs int
}

// RedisConfig holds Redis settings.
type RedisConfig struct {
	URL string
}

// PolymarketConfig holds upstream Polymarket endpoints and optional L2 signing credentials.
type PolymarketConfig struct {
	CatalogBaseURL string
	ClobBaseURL    string
	DataBaseURL    string

	// Credentials are optional; when Address is empty, clients sign no requests.
	Address    string
	APIKey     string
	Secret     string
	Passphrase string

	// HTTPTimeout bounds every request issued by the catalog/CLOB/trades/
	// price-history clients (§4.3, default 30s).
	HTTPTimeout time.Duration
}

// SyncConfig holds every tunable governing the batch sync, realtime, backfill,
// and retention tasks.
type SyncConfig struct {
	MarketsInterval time.Duration
	TradesInterval  time.Duration
	EnableTrades    bool

	PriceFlushInterval time.Duration

	WSURL                 string
	WSReconnectInterval   time.Duration
	WSMaxReconnectAttempt int
	WSConnections         int

	MarketsBatchSize      int
	TradesBatchSize       int
	TradesSyncMarketLimit int

	ClobAuditInterval    time.Duration
	ClobAuditBatchSize   int
	ClobAuditConcurrency int

	PriceHistoryRetentionDays int
	TradesRetentionDays       int

	SyncStaleThreshold time.Duration
}

// Load reads .env (if present) and populates the Config struct.
func Load() (*Config, error) {
	// Attempt to load .env, but don't crash if it fails (k8s/prod might inject env vars directly).
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("GO_ENV", "development"),
		},
		DB: DBConfig{
			URL:            getEnv("DATABASE_URL", ""),
			PoolMax:        getEnvAsInt("DB_POOL_MAX", 20),
			QueryTimeoutMs: getEnvAsInt("QUERY_TIMEOUT_MS", 30_000),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Polymarket: PolymarketConfig{
			CatalogBaseURL: getEnv("POLYMARKET_CATALOG_URL", "https://gamma-api.polymarket.com"),
			ClobBaseURL:    getEnv("POLYMARKET_CLOB_URL", "https://clob.polymarket.com"),
			DataBaseURL:    getEnv("POLYMARKET_DATA_URL", "https://data-api.polymarket.com"),
			Address:        sanitizeCredential(getEnv("POLY_ADDRESS", "")),
			APIKey:         sanitizeCredential(getEnv("POLY_API_KEY", "")),
			Secret:         sanitizeCredential(getEnv("POLY_SECRET", "")),
			Passphrase:     sanitizeCredential(getEnv("POLY_PASSPHRASE", "")),
			HTTPTimeout:    time.Duration(getEnvAsInt("POLYMARKET_HTTP_TIMEOUT_MS", 30_000)) * time.Millisecond,
		},
		Sync: SyncConfig{
			MarketsInterval: time.Duration(getEnvAsInt("MARKETS_INTERVAL_MS", 5*60_000)) * time.Millisecond,
			TradesInterval:  time.Duration(getEnvAsInt("TRADES_INTERVAL_MS", 60_000)) * time.Millisecond,
			EnableTrades:    getEnvAsBool("ENABLE_TRADES_SYNC", true),

			PriceFlushInterval: time.Duration(getEnvAsInt("PRICE_FLUSH_INTERVAL_MS", 1_000)) * time.Millisecond,

			WSURL:                 getEnv("WS_URL", "wss://ws-subscriptions-clob.polymarket.com/ws/market"),
			WSReconnectInterval:   time.Duration(getEnvAsInt("WS_RECONNECT_INTERVAL_MS", 3_000)) * time.Millisecond,
			WSMaxReconnectAttempt: getEnvAsInt("WS_MAX_RECONNECT_ATTEMPTS", 10),
			WSConnections:         getEnvAsInt("WS_CONNECTIONS", 4),

			MarketsBatchSize:      getEnvAsInt("MARKETS_BATCH_SIZE", 500),
			TradesBatchSize:       getEnvAsInt("TRADES_BATCH_SIZE", 500),
			TradesSyncMarketLimit: getEnvAsInt("TRADES_SYNC_MARKET_LIMIT", 100),

			ClobAuditInterval:    time.Duration(getEnvAsInt("CLOB_AUDIT_INTERVAL_MS", 10*60_000)) * time.Millisecond,
			ClobAuditBatchSize:   getEnvAsInt("CLOB_AUDIT_BATCH_SIZE", 200),
			ClobAuditConcurrency: getEnvAsInt("CLOB_AUDIT_CONCURRENCY", 6),

			PriceHistoryRetentionDays: getEnvAsInt("PRICE_HISTORY_RETENTION_DAYS", 30),
			TradesRetentionDays:       getEnvAsInt("TRADES_RETENTION_DAYS", 30),

			SyncStaleThreshold: time.Duration(getEnvAsInt("SYNC_STALE_THRESHOLD_MS", 15*60_000)) * time.Millisecond,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks for required variables.
func validate(cfg *Config) error {
	if cfg.DB.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Sync.WSConnections < 1 {
		return fmt.Errorf("WS_CONNECTIONS must be >= 1")
	}
	return nil
}

// Helper to get env var with default.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func sanitizeCredential(value string) string {
	trimmed := strings.TrimSpace(value)
	return strings.Trim(trimmed, "\"")
}

// Helper to get env var as int.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// Helper to get env var as bool.
func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
