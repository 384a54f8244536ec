package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"aShareScanner/internal/adapters/logger" // Import the logger package for LogLevel
)

// Supported market data providers.
const (
	ProviderEastmoney = "eastmoney"
	ProviderBinance   = "binance"
)

// Config holds all application configuration.
type Config struct {
	// Market data
	Provider            string
	EastmoneyBaseURL    string
	EastmoneyHistoryURL string
	RequestsPerSecond   float64
	HTTPTimeout         time.Duration
	HistoryDays         int // Daily bars requested per instrument

	// Binance API (only when Provider is binance)
	APIKey         string
	SecretKey      string
	IsTestnet      bool
	BinanceSymbols []string

	// Cache
	DBPath          string
	QuoteCacheTTL   time.Duration
	HistoryCacheTTL time.Duration

	// Retry policy for provider calls
	MaxRetries    int
	RetryMinDelay time.Duration
	RetryMaxDelay time.Duration

	// Screening
	SectorsFile     string // Optional YAML theme file; built-in themes when empty
	DefaultSector   string
	TopN            int
	ScanConcurrency int

	// Scheduling and output
	WatchCron  string
	ExportPath string

	// Logging
	LogLevel  logger.LogLevel
	LogFormat string // json or console
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Market data
	cfg.Provider = strings.ToLower(getEnv("PROVIDER", ProviderEastmoney))
	if cfg.Provider != ProviderEastmoney && cfg.Provider != ProviderBinance {
		errs = append(errs, fmt.Sprintf("PROVIDER must be %s or %s", ProviderEastmoney, ProviderBinance))
	}
	cfg.EastmoneyBaseURL = getEnv("EASTMONEY_BASE_URL", "https://82.push2.eastmoney.com")
	cfg.EastmoneyHistoryURL = getEnv("EASTMONEY_HISTORY_URL", "https://push2his.eastmoney.com")

	cfg.RequestsPerSecond, err = getEnvAsFloatRequired("REQUESTS_PER_SECOND", 5)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid REQUESTS_PER_SECOND: %v", err))
	} else if cfg.RequestsPerSecond <= 0 {
		errs = append(errs, "REQUESTS_PER_SECOND must be positive")
	}

	timeoutSeconds, err := getEnvAsIntRequired("HTTP_TIMEOUT_SECONDS", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid HTTP_TIMEOUT_SECONDS: %v", err))
	} else if timeoutSeconds <= 0 {
		errs = append(errs, "HTTP_TIMEOUT_SECONDS must be positive")
	}
	cfg.HTTPTimeout = time.Duration(timeoutSeconds) * time.Second

	cfg.HistoryDays, err = getEnvAsIntRequired("HISTORY_DAYS", 180)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid HISTORY_DAYS: %v", err))
	} else if cfg.HistoryDays < 30 {
		errs = append(errs, "HISTORY_DAYS must be at least 30")
	}

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)
	cfg.BinanceSymbols = getEnvAsList("BINANCE_SYMBOLS", []string{"BTCUSDT", "ETHUSDT", "BNBUSDT"})
	if cfg.Provider == ProviderBinance && len(cfg.BinanceSymbols) == 0 {
		errs = append(errs, "BINANCE_SYMBOLS must be set when PROVIDER is binance")
	}

	// Cache
	cfg.DBPath = getEnv("DB_PATH", "./data/market_cache.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	quoteTTL, err := getEnvAsIntRequired("QUOTE_CACHE_TTL_SECONDS", 300)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid QUOTE_CACHE_TTL_SECONDS: %v", err))
	} else if quoteTTL < 0 {
		errs = append(errs, "QUOTE_CACHE_TTL_SECONDS cannot be negative")
	}
	cfg.QuoteCacheTTL = time.Duration(quoteTTL) * time.Second

	historyTTL, err := getEnvAsIntRequired("HISTORY_CACHE_TTL_SECONDS", 600)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid HISTORY_CACHE_TTL_SECONDS: %v", err))
	} else if historyTTL < 0 {
		errs = append(errs, "HISTORY_CACHE_TTL_SECONDS cannot be negative")
	}
	cfg.HistoryCacheTTL = time.Duration(historyTTL) * time.Second

	// Retry policy
	cfg.MaxRetries = getEnvAsInt("MAX_RETRIES", 3)
	if cfg.MaxRetries < 0 {
		errs = append(errs, "MAX_RETRIES cannot be negative")
	}
	minDelayMs := getEnvAsInt("RETRY_MIN_DELAY_MS", 500)
	maxDelayMs := getEnvAsInt("RETRY_MAX_DELAY_MS", 5000)
	if minDelayMs <= 0 || maxDelayMs <= 0 {
		errs = append(errs, "RETRY_MIN_DELAY_MS and RETRY_MAX_DELAY_MS must be positive")
	} else if minDelayMs > maxDelayMs {
		errs = append(errs, "RETRY_MIN_DELAY_MS must not exceed RETRY_MAX_DELAY_MS")
	}
	cfg.RetryMinDelay = time.Duration(minDelayMs) * time.Millisecond
	cfg.RetryMaxDelay = time.Duration(maxDelayMs) * time.Millisecond

	// Screening
	cfg.SectorsFile = getEnv("SECTORS_FILE", "")
	cfg.DefaultSector = getEnv("DEFAULT_SECTOR", "新能源")

	cfg.TopN, err = getEnvAsIntRequired("TOP_N", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TOP_N: %v", err))
	} else if cfg.TopN <= 0 {
		errs = append(errs, "TOP_N must be positive")
	}

	cfg.ScanConcurrency, err = getEnvAsIntRequired("SCAN_CONCURRENCY", 4)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SCAN_CONCURRENCY: %v", err))
	} else if cfg.ScanConcurrency <= 0 {
		errs = append(errs, "SCAN_CONCURRENCY must be positive")
	}

	// Scheduling and output
	cfg.WatchCron = getEnv("WATCH_CRON", "*/5 9-15 * * 1-5")
	cfg.ExportPath = getEnv("EXPORT_PATH", "")

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "console"))
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		errs = append(errs, "LOG_FORMAT must be json or console")
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Log warning? For non-required fields, default is often acceptable.
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
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

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
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

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToUpper(part))
		}
	}
	return out
}
