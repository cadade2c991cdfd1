// Package pipeline runs the agent's poll-process-deliver loop against the
// marketplace.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/conference-travel-agent/internal/domain"
	"github.com/couchcryptid/conference-travel-agent/internal/observability"
)

// JobSource fetches up to limit pending jobs from the marketplace.
type JobSource interface {
	FetchJobs(ctx context.Context, limit int) ([]domain.Job, error)
}

// Processor turns one job into a deliverable result. The result must be
// valid to deliver even when the error is non-nil.
type Processor interface {
	Process(ctx context.Context, job domain.Job) (domain.Result, error)
}

// ResultSink delivers a finished result back to the marketplace.
type ResultSink interface {
	Deliver(ctx context.Context, result domain.Result) error
}

// Pipeline orchestrates the poll-process-deliver loop.
type Pipeline struct {
	source       JobSource
	processor    Processor
	sink         ResultSink
	logger       *slog.Logger
	metrics      *observability.Metrics
	ready        atomic.Bool
	pollInterval time.Duration
	fetchLimit   int
}

// New creates a Pipeline with the given stages and observability.
func New(source JobSource, processor Processor, sink ResultSink, logger *slog.Logger, metrics *observability.Metrics, pollInterval time.Duration, fetchLimit int) *Pipeline {
	return &Pipeline{
		source:       source,
		processor:    processor,
		sink:         sink,
		logger:       logger,
		metrics:      metrics,
		pollInterval: pollInterval,
		fetchLimit:   fetchLimit,
	}
}

// CheckReadiness returns nil once the pipeline has completed at least one
// marketplace poll, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a marketplace poll yet")
	}
	return nil
}

// Run executes the polling loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "poll_interval", p.pollInterval, "fetch_limit", p.fetchLimit)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during marketplace
	// outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.poll(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// poll runs one fetch-process-deliver cycle. Returns false if the pipeline
// should stop.
func (p *Pipeline) poll(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	jobs, err := p.source.FetchJobs(ctx, p.fetchLimit)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("fetch jobs failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	*backoff = 200 * time.Millisecond
	p.ready.Store(true)

	if len(jobs) == 0 {
		return sleepWithContext(ctx, p.pollInterval)
	}

	p.metrics.JobsFetched.Add(float64(len(jobs)))
	p.logger.Info("jobs fetched", "count", len(jobs))

	for _, job := range jobs {
		if ctx.Err() != nil {
			return false
		}
		p.processJob(ctx, job)
	}
	return true
}

// processJob processes and delivers a single job. Processing failures still
// produce a deliverable result, so the marketplace learns the job's fate
// either way.
func (p *Pipeline) processJob(ctx context.Context, job domain.Job) {
	start := time.Now()

	result, err := p.processor.Process(ctx, job)
	if err != nil {
		p.logger.Error("job processing failed", "error", err, "job_id", job.ID)
	}

	p.metrics.JobDuration.Observe(time.Since(start).Seconds())
	p.metrics.JobsProcessed.WithLabelValues(result.Offering, result.Status).Inc()

	if err := p.sink.Deliver(ctx, result); err != nil {
		p.metrics.Deliveries.WithLabelValues("error").Inc()
		p.logger.Error("result delivery failed", "error", err, "job_id", job.ID)
		return
	}
	p.metrics.Deliveries.WithLabelValues("success").Inc()
}

// backoffOrStop checks for context cancellation, sleeps with the current
// backoff, and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
