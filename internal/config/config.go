// Package config loads agent service configuration from environment variables.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	AgentID           string
	MarketplaceURL    string
	MarketplaceAPIKey string
	PollInterval      time.Duration
	FetchLimit        int
	HTTPAddr          string
	LogLevel          string
	LogFormat         string
	ShutdownTimeout   time.Duration

	// Gemini report generation configuration.
	GeminiAPIKey string
	GeminiModel  string
	WebSearch    bool

	// Amadeus flight search configuration.
	AmadeusClientID     string
	AmadeusClientSecret string
	AmadeusBaseURL      string
	AmadeusTimeout      time.Duration
	FlightsEnabled      bool

	// On-chain payment verification configuration.
	EVMRPCURL        string
	EVMTokenContract string
	EVMRecipient     string
	SolanaRPCURL     string
	SolanaUSDCMint   string
	SolanaRecipient  string

	// CatalogPath selects a JSON catalog file; empty uses the embedded one.
	CatalogPath  string
	UsageLogPath string
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is layered in first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	pollInterval, err := durationEnv("POLL_INTERVAL", "15s")
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := durationEnv("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	amadeusTimeout, err := durationEnv("AMADEUS_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	fetchLimit, err := parseFetchLimit()
	if err != nil {
		return nil, err
	}

	amadeusID := os.Getenv("AMADEUS_CLIENT_ID")
	amadeusSecret := os.Getenv("AMADEUS_CLIENT_SECRET")
	flightsEnabled := amadeusID != "" && amadeusSecret != ""
	if v := os.Getenv("FLIGHTS_ENABLED"); v != "" {
		flightsEnabled = v == "true"
	}

	cfg := &Config{
		AgentID:           envOrDefault("AGENT_ID", "conference-travel-agent"),
		MarketplaceURL:    envOrDefault("MARKETPLACE_URL", "http://localhost:8081"),
		MarketplaceAPIKey: os.Getenv("MARKETPLACE_API_KEY"),
		PollInterval:      pollInterval,
		FetchLimit:        fetchLimit,
		HTTPAddr:          envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		LogFormat:         envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		WebSearch:    envOrDefault("WEB_SEARCH", "true") == "true",

		AmadeusClientID:     amadeusID,
		AmadeusClientSecret: amadeusSecret,
		AmadeusBaseURL:      envOrDefault("AMADEUS_BASE_URL", "https://test.api.amadeus.com"),
		AmadeusTimeout:      amadeusTimeout,
		FlightsEnabled:      flightsEnabled,

		EVMRPCURL:        os.Getenv("EVM_RPC_URL"),
		EVMTokenContract: envOrDefault("EVM_TOKEN_CONTRACT", "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
		EVMRecipient:     os.Getenv("EVM_RECIPIENT"),
		SolanaRPCURL:     os.Getenv("SOLANA_RPC_URL"),
		SolanaUSDCMint:   envOrDefault("SOLANA_USDC_MINT", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"),
		SolanaRecipient:  os.Getenv("SOLANA_RECIPIENT"),

		CatalogPath:  os.Getenv("CATALOG_PATH"),
		UsageLogPath: envOrDefault("USAGE_LOG_PATH", "usage.jsonl"),
	}

	if cfg.MarketplaceAPIKey == "" {
		return nil, errors.New("MARKETPLACE_API_KEY is required")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	if (amadeusID == "") != (amadeusSecret == "") {
		return nil, errors.New("AMADEUS_CLIENT_ID and AMADEUS_CLIENT_SECRET must be set together")
	}
	if cfg.FlightsEnabled && cfg.AmadeusClientID == "" {
		return nil, errors.New("FLIGHTS_ENABLED is true but Amadeus credentials are not set")
	}
	if cfg.EVMRPCURL != "" && cfg.EVMRecipient == "" {
		return nil, errors.New("EVM_RPC_URL is set but EVM_RECIPIENT is not")
	}
	if cfg.SolanaRPCURL != "" && cfg.SolanaRecipient == "" {
		return nil, errors.New("SOLANA_RPC_URL is set but SOLANA_RECIPIENT is not")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseFetchLimit() (int, error) {
	s := envOrDefault("FETCH_LIMIT", "10")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 100 {
		return 0, errors.New("FETCH_LIMIT must be between 1 and 100")
	}
	return n, nil
}
