// Command genjobs generates marketplace job fixtures and the prompts the
// agent would build for them. It uses the actual offering and domain packages
// so the fixtures track real matching and prompt behavior.
//
// Usage:
//
//	go run ./cmd/genjobs \
//	  -jobs-out data/mock/jobs.json \
//	  -prompts-out data/mock/prompts.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/conference-travel-agent/internal/catalog"
	"github.com/couchcryptid/conference-travel-agent/internal/domain"
	"github.com/couchcryptid/conference-travel-agent/internal/offering"
	"github.com/jonboulle/clockwork"
)

// baseDate pins prompt date math so regenerated fixtures stay byte-identical.
var baseDate = time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

// jobFixture matches the marketplace job payload shape.
type jobFixture struct {
	ID       string               `json:"id"`
	Offering string               `json:"offering"`
	Params   map[string]string    `json:"params,omitempty"`
	Payment  *domain.PaymentClaim `json:"payment,omitempty"`
}

// promptFixture pairs a job with the prompt the engine would send for it.
type promptFixture struct {
	JobID    string   `json:"job_id"`
	Offering string   `json:"offering"`
	Prompt   string   `json:"prompt"`
	Warnings []string `json:"warnings,omitempty"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	jobsOut := flag.String("jobs-out", "", "output path for the marketplace jobs fixture")
	promptsOut := flag.String("prompts-out", "", "output path for the generated prompts fixture")
	flag.Parse()

	if *jobsOut == "" || *promptsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -jobs-out, -prompts-out")
	}

	// Set a fixed clock for reproducible date windows and temporal statuses.
	domain.SetClock(clockwork.NewFakeClockAt(baseDate))
	defer domain.SetClock(nil)

	cat, err := catalog.NewLoader("").Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	registry, err := offering.NewRegistry(offering.Defaults())
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}

	jobs := fixtureJobs()

	var prompts []promptFixture
	unmatched := 0
	for _, j := range jobs {
		off, ok := registry.Match(j.Offering)
		if !ok {
			unmatched++
			log.Printf("%s: offering %q does not match, no prompt generated", j.ID, j.Offering)
			continue
		}
		conf := cat.Lookup(j.Params["conference"])
		prompt, warnings := offering.BuildPrompt(off, domain.Job{
			ID:       j.ID,
			Offering: j.Offering,
			Params:   j.Params,
		}, conf, nil)
		prompts = append(prompts, promptFixture{
			JobID:    j.ID,
			Offering: off.Slug,
			Prompt:   prompt,
			Warnings: warnings,
		})
	}

	if err := writeJSON(*jobsOut, jobs); err != nil {
		return fmt.Errorf("writing jobs fixture: %w", err)
	}
	log.Printf("wrote jobs fixture: %s", *jobsOut)

	if err := writeJSON(*promptsOut, prompts); err != nil {
		return fmt.Errorf("writing prompts fixture: %w", err)
	}
	log.Printf("wrote prompts fixture: %s", *promptsOut)

	printStats(jobs, prompts, unmatched)
	return nil
}

// fixtureJobs covers each offering plus the rejection paths the pipeline has
// to handle: a loose conference name, an unknown conference, an unknown
// offering, and a job with no payment claim.
func fixtureJobs() []jobFixture {
	return []jobFixture{
		{
			ID:       "job-0001",
			Offering: "conference-travel-planner",
			Params:   map[string]string{"conference": "ethdenver", "origin": "LHR"},
			Payment: &domain.PaymentClaim{
				Rail: "evm",
				TxID: "0x3f2a9c41d88e5b06c7a1f0d92e4b8a35761c0de2ab94f8d13c5e67b20a9f4d18",
			},
		},
		{
			ID:       "job-0002",
			Offering: "conference travel plan",
			Params:   map[string]string{"conference": "Token 2049 in Singapore", "origin": "JFK"},
			Payment: &domain.PaymentClaim{
				Rail: "evm",
				TxID: "0x91b4e7f2c05a838dd16f94ae02c7b5e4983d1a60fc2e49b7815d30c6a2ef7b53",
			},
		},
		{
			ID:       "job-0003",
			Offering: "conference-brief",
			Params:   map[string]string{"conference": "devcon"},
			Payment: &domain.PaymentClaim{
				Rail: "solana",
				TxID: "5VERYrl3yTkQ8fHh9nWmdZxjCu4bGaeJ2sDpM6K1vRtX7cq3oPiLwAfUzB9gNsE2hYxT4mJbKdQ8uZvC6wSaRnF1",
			},
		},
		{
			ID:       "job-0004",
			Offering: "flight-price-brief",
			Params:   map[string]string{"origin": "SIN", "destination": "NRT", "depart_date": "2026-04-02"},
			Payment: &domain.PaymentClaim{
				Rail: "evm",
				TxID: "0x0c8d5e21fa74b9362e80cd17a5f3b6d490e2c81fb3a57d04961e2afc8b30d7e6",
			},
		},
		{
			ID:       "job-0005",
			Offering: "conference-brief",
			Params:   map[string]string{"conference": "mystery blockchain expo"},
			Payment: &domain.PaymentClaim{
				Rail: "evm",
				TxID: "0x6a1f3db8c92e704516bd0ae8f7c24b93d05e1fa2c86b47e09315fd8ca2e60b74",
			},
		},
		{
			ID:       "job-0006",
			Offering: "yacht-charter-concierge",
			Params:   map[string]string{"destination": "Monaco"},
			Payment: &domain.PaymentClaim{
				Rail: "evm",
				TxID: "0xe4b92c05d7a8f1362091cd84ae5f7b2d63801ce9fa24b57d13860e2afcd9b415",
			},
		},
		{
			ID:       "job-0007",
			Offering: "conference-travel-planner",
			Params:   map[string]string{"conference": "ethcc", "origin": "BOS"},
		},
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(jobs []jobFixture, prompts []promptFixture, unmatched int) {
	perOffering := map[string]int{}
	for _, p := range prompts {
		perOffering[p.Offering]++
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Jobs: %d (%d without a matching offering)\n", len(jobs), unmatched)
	fmt.Printf("Prompts by offering:")
	for _, off := range offering.Defaults() {
		fmt.Printf(" %s=%d", off.Slug, perOffering[off.Slug])
	}
	fmt.Println()
	for _, p := range prompts {
		fmt.Printf("  %s: %d bytes, %d warnings\n", p.JobID, len(p.Prompt), len(p.Warnings))
	}
}
