package offering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/conference-travel-agent/internal/domain"
	"github.com/couchcryptid/conference-travel-agent/internal/observability"
)

// flightOfferLimit caps how many live offers are fetched per job. Five is
// enough for a cheapest/fastest comparison without bloating the prompt.
const flightOfferLimit = 5

// Engine turns marketplace jobs into results: it resolves the offering and
// conference, verifies payment, gathers flight offers, and drives report
// generation.
type Engine struct {
	catalog   *domain.Catalog
	registry  *Registry
	generator domain.ReportGenerator
	flights   domain.FlightSearcher
	verifiers map[string]domain.PaymentVerifier
	usage     domain.UsageRecorder
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewEngine creates an Engine. flights may be nil when live pricing is
// disabled, usage may be nil to skip usage logging, and verifiers holds one
// domain.PaymentVerifier per supported payment rail.
func NewEngine(
	catalog *domain.Catalog,
	registry *Registry,
	generator domain.ReportGenerator,
	flights domain.FlightSearcher,
	verifiers map[string]domain.PaymentVerifier,
	usage domain.UsageRecorder,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Engine {
	return &Engine{
		catalog:   catalog,
		registry:  registry,
		generator: generator,
		flights:   flights,
		verifiers: verifiers,
		usage:     usage,
		logger:    logger,
		metrics:   metrics,
	}
}

// Process turns one job into a result. The returned result is always valid
// to deliver, including rejections and failures; the error is non-nil only
// for faults worth operator attention (payment backend down, generation
// failed), never for rejections.
func (e *Engine) Process(ctx context.Context, job domain.Job) (domain.Result, error) {
	start := time.Now()

	off, ok := e.registry.Match(job.Offering)
	if !ok {
		// The requested name only survives in the error text: result.Offering
		// feeds a metric label and must stay bounded.
		result := rejected(job.ID, "unknown", fmt.Sprintf("unknown offering %q", job.Offering))
		return e.finish(job, result, start, 0), nil
	}

	var amountUSD float64
	if off.PriceUSD > 0 {
		verification, reject, err := e.checkPayment(ctx, job, off)
		if err != nil {
			result := failed(job.ID, off.Slug, "verify payment: "+err.Error())
			return e.finish(job, result, start, 0), fmt.Errorf("verify payment: %w", err)
		}
		if reject != "" {
			return e.finish(job, rejected(job.ID, off.Slug, reject), start, 0), nil
		}
		amountUSD = verification.AmountUSD
	}

	conf := e.catalog.Lookup(job.Params["conference"])

	var offers []domain.FlightOffer
	var flightWarnings []string
	if off.NeedsFlights {
		offers, flightWarnings = e.lookupFlights(ctx, job, conf)
	}

	prompt, warnings := BuildPrompt(off, job, conf, offers)
	warnings = append(warnings, flightWarnings...)

	genStart := time.Now()
	report, err := e.generator.GenerateReport(ctx, prompt, off.WebSearch)
	e.metrics.GenerateDuration.Observe(time.Since(genStart).Seconds())
	if err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrEmptyReport) {
			outcome = "empty"
		}
		e.metrics.GenerateRequests.WithLabelValues(outcome).Inc()
		result := failed(job.ID, off.Slug, "generate report: "+err.Error())
		result.Warnings = warnings
		return e.finish(job, result, start, amountUSD), fmt.Errorf("generate report: %w", err)
	}
	e.metrics.GenerateRequests.WithLabelValues("success").Inc()

	fields := ExtractFields(report)
	if conf != nil {
		fields["conference"] = conf.Slug
		fields["status"] = string(domain.Classify(conf))
		if conf.VisaNote != "" {
			fields["visa_note"] = conf.VisaNote
		}
	}
	if cheapest, ok := cheapestOfferUSD(offers); ok {
		fields["cheapest_flight_usd"] = cheapest
	}

	result := domain.Result{
		JobID:    job.ID,
		Offering: off.Slug,
		Status:   domain.JobCompleted,
		Report:   report,
		Fields:   fields,
		Warnings: warnings,
	}
	return e.finish(job, result, start, amountUSD), nil
}

// checkPayment verifies the job's payment claim against the offering price.
// A non-empty reject reason means the job should be rejected; an error means
// verification itself failed.
func (e *Engine) checkPayment(ctx context.Context, job domain.Job, off domain.Offering) (domain.PaymentVerification, string, error) {
	if job.Payment == nil {
		return domain.PaymentVerification{}, "payment required: job carries no payment claim", nil
	}

	verifier, ok := e.verifiers[job.Payment.Rail]
	if !ok {
		return domain.PaymentVerification{}, fmt.Sprintf("unsupported payment rail %q", job.Payment.Rail), nil
	}

	verification, err := verifier.VerifyPayment(ctx, job.Payment.TxID)
	if err != nil {
		e.metrics.PaymentChecks.WithLabelValues(job.Payment.Rail, "error").Inc()
		return domain.PaymentVerification{}, "", err
	}
	if !verification.Valid {
		e.metrics.PaymentChecks.WithLabelValues(job.Payment.Rail, "invalid").Inc()
		return domain.PaymentVerification{}, "payment invalid: " + verification.Reason, nil
	}
	if verification.AmountUSD < off.PriceUSD {
		e.metrics.PaymentChecks.WithLabelValues(job.Payment.Rail, "invalid").Inc()
		reason := fmt.Sprintf("payment of %.2f USD is below the %.2f USD price", verification.AmountUSD, off.PriceUSD)
		return domain.PaymentVerification{}, reason, nil
	}

	e.metrics.PaymentChecks.WithLabelValues(job.Payment.Rail, "valid").Inc()
	return verification, "", nil
}

// lookupFlights fetches live offers for the job's route. Every miss degrades
// to an empty offer list; the returned warnings explain misses the requester
// can act on.
func (e *Engine) lookupFlights(ctx context.Context, job domain.Job, conf *domain.Conference) ([]domain.FlightOffer, []string) {
	if e.flights == nil {
		return nil, nil
	}

	origin := strings.ToUpper(strings.TrimSpace(job.Params["origin"]))
	destination := strings.ToUpper(strings.TrimSpace(job.Params["destination"]))
	if destination == "" && conf != nil {
		destination = conf.Location.Airport
	}
	if origin == "" || destination == "" {
		return nil, []string{"the request names no origin airport, so flight prices were not looked up"}
	}

	departDate := departureDate(job, conf)
	if departDate == "" {
		return nil, []string{"no departure date could be determined, so flight prices were not looked up"}
	}

	offers, err := e.flights.SearchOffers(ctx, origin, destination, departDate, flightOfferLimit)
	if err != nil {
		e.metrics.FlightLookups.WithLabelValues("error").Inc()
		e.logger.Warn("flight lookup failed", "error", err, "origin", origin, "destination", destination)
		return nil, []string{"live flight lookup failed; fares in the report are estimates"}
	}
	if len(offers) == 0 {
		e.metrics.FlightLookups.WithLabelValues("empty").Inc()
		return nil, nil
	}

	e.metrics.FlightLookups.WithLabelValues("success").Inc()
	return offers, nil
}

// departureDate picks the outbound date for flight search: an explicit
// request parameter wins, then the conference's arrive-by date, then the
// parsed window start.
func departureDate(job domain.Job, conf *domain.Conference) string {
	if d := job.Params["depart_date"]; d != "" {
		return d
	}
	if conf == nil {
		return ""
	}
	if conf.ArriveBy != "" {
		return conf.ArriveBy
	}
	if window, ok := domain.ParseDateRange(conf.DateRange, domain.Now()); ok {
		return window.Start.Format("2006-01-02")
	}
	return ""
}

// finish records usage for the job and logs the outcome.
func (e *Engine) finish(job domain.Job, result domain.Result, start time.Time, amountUSD float64) domain.Result {
	elapsed := time.Since(start)

	entry := domain.UsageEntry{
		JobID:       job.ID,
		Offering:    result.Offering,
		Status:      result.Status,
		DurationMS:  elapsed.Milliseconds(),
		ReportBytes: len(result.Report),
		AmountUSD:   amountUSD,
	}
	if job.Payment != nil {
		entry.PaymentRail = job.Payment.Rail
	}
	if e.usage != nil {
		if err := e.usage.Record(entry); err != nil {
			e.logger.Warn("usage record failed", "error", err, "job_id", job.ID)
		}
	}

	e.logger.Info("job processed",
		"job_id", job.ID,
		"offering", result.Offering,
		"status", result.Status,
		"duration_ms", elapsed.Milliseconds(),
	)
	return result
}

func rejected(jobID, offering, reason string) domain.Result {
	return domain.Result{JobID: jobID, Offering: offering, Status: domain.JobRejected, Error: reason}
}

func failed(jobID, offering, reason string) domain.Result {
	return domain.Result{JobID: jobID, Offering: offering, Status: domain.JobFailed, Error: reason}
}
