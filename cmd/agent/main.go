package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/conference-travel-agent/internal/adapter/amadeus"
	"github.com/couchcryptid/conference-travel-agent/internal/adapter/evm"
	"github.com/couchcryptid/conference-travel-agent/internal/adapter/gemini"
	httpadapter "github.com/couchcryptid/conference-travel-agent/internal/adapter/http"
	"github.com/couchcryptid/conference-travel-agent/internal/adapter/marketplace"
	"github.com/couchcryptid/conference-travel-agent/internal/adapter/solana"
	"github.com/couchcryptid/conference-travel-agent/internal/catalog"
	"github.com/couchcryptid/conference-travel-agent/internal/config"
	"github.com/couchcryptid/conference-travel-agent/internal/domain"
	"github.com/couchcryptid/conference-travel-agent/internal/observability"
	"github.com/couchcryptid/conference-travel-agent/internal/offering"
	"github.com/couchcryptid/conference-travel-agent/internal/pipeline"
	"github.com/couchcryptid/conference-travel-agent/internal/usagelog"
)

const (
	// marketplaceTimeout bounds one marketplace call, including the POST of a
	// full report.
	marketplaceTimeout = 30 * time.Second
	// solanaRPCTimeout bounds one getTransaction call.
	solanaRPCTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	cat, err := catalog.NewLoader(cfg.CatalogPath).Load()
	if err != nil {
		logger.Error("failed to load conference catalog", "error", err)
		os.Exit(1)
	}
	metrics.CatalogEntries.Set(float64(cat.Len()))
	logger.Info("conference catalog loaded", "entries", cat.Len())

	generator, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		logger.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}

	// Flight pricing is feature-flagged via FLIGHTS_ENABLED / Amadeus creds.
	var flights domain.FlightSearcher
	if cfg.FlightsEnabled {
		flights = amadeus.NewClient(cfg.AmadeusClientID, cfg.AmadeusClientSecret, cfg.AmadeusBaseURL, cfg.AmadeusTimeout, logger)
		logger.Info("amadeus flight pricing enabled", "base_url", cfg.AmadeusBaseURL, "timeout", cfg.AmadeusTimeout)
	} else {
		logger.Info("flight pricing disabled")
	}

	// Each payment rail is enabled by the presence of its RPC endpoint.
	verifiers := make(map[string]domain.PaymentVerifier)
	if cfg.EVMRPCURL != "" {
		verifier, err := evm.NewVerifier(context.Background(), cfg.EVMRPCURL, cfg.EVMTokenContract, cfg.EVMRecipient, logger)
		if err != nil {
			logger.Error("failed to create evm payment verifier", "error", err)
			os.Exit(1)
		}
		verifiers["evm"] = verifier
		logger.Info("evm payment rail enabled", "recipient", cfg.EVMRecipient)
	}
	if cfg.SolanaRPCURL != "" {
		verifiers["solana"] = solana.NewVerifier(cfg.SolanaRPCURL, cfg.SolanaUSDCMint, cfg.SolanaRecipient, solanaRPCTimeout, logger)
		logger.Info("solana payment rail enabled", "recipient", cfg.SolanaRecipient)
	}
	if len(verifiers) == 0 {
		logger.Warn("no payment rails configured, priced offerings will reject all jobs")
	}

	usage, err := usagelog.NewRecorder(cfg.UsageLogPath, logger)
	if err != nil {
		logger.Error("failed to create usage log", "error", err)
		os.Exit(1)
	}

	offerings := offering.Defaults()
	if !cfg.WebSearch {
		for i := range offerings {
			offerings[i].WebSearch = false
		}
		logger.Info("web search grounding disabled")
	}
	registry, err := offering.NewRegistry(offerings)
	if err != nil {
		logger.Error("failed to build offering registry", "error", err)
		os.Exit(1)
	}

	engine := offering.NewEngine(cat, registry, generator, flights, verifiers, usage, logger, metrics)
	market := marketplace.NewClient(cfg.MarketplaceURL, cfg.AgentID, cfg.MarketplaceAPIKey, marketplaceTimeout, logger)

	p := pipeline.New(market, engine, market, logger, metrics, cfg.PollInterval, cfg.FetchLimit)

	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.AgentID, cat, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Keep the marketplace listing current. Not fatal: the listing from a
	// previous run keeps working while the marketplace recovers.
	if err := market.RegisterOfferings(ctx, registry.All()); err != nil {
		logger.Warn("offering registration failed", "error", err)
	}

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start job pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
