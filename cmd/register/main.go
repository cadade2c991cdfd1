// Command register publishes the agent's offerings to the marketplace
// configured in the environment, or prints the registration payload with
// -dry-run without sending anything.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/couchcryptid/conference-travel-agent/internal/adapter/marketplace"
	"github.com/couchcryptid/conference-travel-agent/internal/config"
	"github.com/couchcryptid/conference-travel-agent/internal/observability"
	"github.com/couchcryptid/conference-travel-agent/internal/offering"
)

const registerTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dryRun := flag.Bool("dry-run", false, "print the registration payload instead of sending it")
	flag.Parse()

	registry, err := offering.NewRegistry(offering.Defaults())
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}

	if *dryRun {
		data, err := json.MarshalIndent(registry.All(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	client := marketplace.NewClient(cfg.MarketplaceURL, cfg.AgentID, cfg.MarketplaceAPIKey, registerTimeout, logger)

	ctx, cancel := context.WithTimeout(context.Background(), registerTimeout)
	defer cancel()
	if err := client.RegisterOfferings(ctx, registry.All()); err != nil {
		return fmt.Errorf("register offerings: %w", err)
	}

	log.Printf("registered %d offerings with %s as %s", len(registry.All()), cfg.MarketplaceURL, cfg.AgentID)
	return nil
}
