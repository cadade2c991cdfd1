package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/conference-travel-agent/internal/domain"
	"github.com/couchcryptid/conference-travel-agent/internal/observability"
	"github.com/couchcryptid/conference-travel-agent/internal/pipeline"
)

// --- mocks ---

type mockSource struct {
	batches   [][]domain.Job
	errs      []error
	index     atomic.Int64
	lastLimit atomic.Int64
}

func (m *mockSource) FetchJobs(_ context.Context, limit int) ([]domain.Job, error) {
	m.lastLimit.Store(int64(limit))
	i := int(m.index.Add(1) - 1)
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i < len(m.batches) {
		return m.batches[i], nil
	}
	return nil, nil
}

type mockProcessor struct {
	err       error
	processed []domain.Job
}

func (m *mockProcessor) Process(_ context.Context, job domain.Job) (domain.Result, error) {
	m.processed = append(m.processed, job)
	if m.err != nil {
		return domain.Result{JobID: job.ID, Offering: job.Offering, Status: domain.JobFailed, Error: m.err.Error()}, m.err
	}
	return domain.Result{JobID: job.ID, Offering: job.Offering, Status: domain.JobCompleted, Report: "report"}, nil
}

type mockSink struct {
	delivered []domain.Result
	failFirst bool
	calls     int
}

func (m *mockSink) Deliver(_ context.Context, result domain.Result) error {
	m.calls++
	if m.failFirst && m.calls == 1 {
		return errors.New("marketplace unavailable")
	}
	m.delivered = append(m.delivered, result)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func testJob(id string) domain.Job {
	return domain.Job{ID: id, Offering: "conference-brief", Params: map[string]string{"conference": "ethdenver"}}
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	src := &mockSource{batches: [][]domain.Job{{testJob("job-1"), testJob("job-2")}}}
	proc := &mockProcessor{}
	sink := &mockSink{}

	p := pipeline.New(src, proc, sink, slog.Default(), newTestMetrics(), 10*time.Millisecond, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)

	require.Len(t, sink.delivered, 2)
	assert.Equal(t, "job-1", sink.delivered[0].JobID)
	assert.Equal(t, domain.JobCompleted, sink.delivered[0].Status)
	assert.Equal(t, "job-2", sink.delivered[1].JobID)
	assert.NoError(t, p.CheckReadiness(ctx))
	assert.Equal(t, int64(10), src.lastLimit.Load())
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	src := &mockSource{}
	proc := &mockProcessor{}
	sink := &mockSink{}

	p := pipeline.New(src, proc, sink, slog.Default(), newTestMetrics(), 10*time.Millisecond, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, sink.delivered)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_FetchErrorRetriesWithBackoff(t *testing.T) {
	src := &mockSource{
		errs:    []error{errors.New("temporarily unavailable")},
		batches: [][]domain.Job{nil, {testJob("job-1")}},
	}
	proc := &mockProcessor{}
	sink := &mockSink{}

	p := pipeline.New(src, proc, sink, slog.Default(), newTestMetrics(), 10*time.Millisecond, 10)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)

	require.Len(t, sink.delivered, 1)
	assert.Equal(t, "job-1", sink.delivered[0].JobID)
}

func TestPipeline_Run_ProcessFailureStillDelivers(t *testing.T) {
	src := &mockSource{batches: [][]domain.Job{{testJob("job-1")}}}
	proc := &mockProcessor{err: errors.New("generation failed")}
	sink := &mockSink{}

	p := pipeline.New(src, proc, sink, slog.Default(), newTestMetrics(), 10*time.Millisecond, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)

	require.Len(t, sink.delivered, 1)
	assert.Equal(t, domain.JobFailed, sink.delivered[0].Status)
	assert.Contains(t, sink.delivered[0].Error, "generation failed")
}

func TestPipeline_Run_DeliveryFailureDoesNotStopBatch(t *testing.T) {
	src := &mockSource{batches: [][]domain.Job{{testJob("job-1"), testJob("job-2")}}}
	proc := &mockProcessor{}
	sink := &mockSink{failFirst: true}

	p := pipeline.New(src, proc, sink, slog.Default(), newTestMetrics(), 10*time.Millisecond, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, sink.calls)
	require.Len(t, sink.delivered, 1)
	assert.Equal(t, "job-2", sink.delivered[0].JobID)
	assert.Len(t, proc.processed, 2)
}

func TestPipeline_ReadyAfterEmptyPoll(t *testing.T) {
	src := &mockSource{} // nothing queued, polls succeed
	proc := &mockProcessor{}
	sink := &mockSink{}

	p := pipeline.New(src, proc, sink, slog.Default(), newTestMetrics(), 10*time.Millisecond, 10)

	require.Error(t, p.CheckReadiness(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)

	// An empty queue still proves the marketplace is reachable.
	assert.NoError(t, p.CheckReadiness(context.Background()))
	assert.Empty(t, sink.delivered)
}
