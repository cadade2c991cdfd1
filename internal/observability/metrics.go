package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the agent.
type Metrics struct {
	JobsFetched     prometheus.Counter
	JobsProcessed   *prometheus.CounterVec // labels: offering, status={completed,rejected,failed}
	JobDuration     prometheus.Histogram
	PipelineRunning prometheus.Gauge
	CatalogEntries  prometheus.Gauge

	// Report generation metrics.
	GenerateRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	GenerateDuration prometheus.Histogram

	// Outbound adapter metrics.
	FlightLookups *prometheus.CounterVec // labels: outcome={success,error,empty}
	PaymentChecks *prometheus.CounterVec // labels: rail={evm,solana}, outcome={valid,invalid,error}
	Deliveries    *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all agent metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		JobsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "travel_agent",
			Name:      "jobs_fetched_total",
			Help:      "Total jobs fetched from the marketplace.",
		}),
		JobsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travel_agent",
			Name:      "jobs_processed_total",
			Help:      "Processed jobs by offering and terminal status.",
		}, []string{"offering", "status"}),
		JobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "travel_agent",
			Name:      "job_duration_seconds",
			Help:      "Duration of a complete fetch-generate-deliver cycle for one job.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "travel_agent",
			Name:      "pipeline_running",
			Help:      "1 when the job pipeline is active, 0 when shut down.",
		}),
		CatalogEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "travel_agent",
			Name:      "catalog_entries",
			Help:      "Number of conferences in the loaded catalog.",
		}),
		GenerateRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travel_agent",
			Name:      "generate_requests_total",
			Help:      "Report generation requests by outcome.",
		}, []string{"outcome"}),
		GenerateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "travel_agent",
			Name:      "generate_duration_seconds",
			Help:      "Gemini report generation duration in seconds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		FlightLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travel_agent",
			Name:      "flight_lookups_total",
			Help:      "Flight offer searches by outcome.",
		}, []string{"outcome"}),
		PaymentChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travel_agent",
			Name:      "payment_checks_total",
			Help:      "On-chain payment verifications by rail and outcome.",
		}, []string{"rail", "outcome"}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travel_agent",
			Name:      "deliveries_total",
			Help:      "Result deliveries to the marketplace by outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.JobsFetched,
		m.JobsProcessed,
		m.JobDuration,
		m.PipelineRunning,
		m.CatalogEntries,
		m.GenerateRequests,
		m.GenerateDuration,
		m.FlightLookups,
		m.PaymentChecks,
		m.Deliveries,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		JobsFetched:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "travel_agent", Name: "jobs_fetched_total"}),
		JobsProcessed:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "travel_agent", Name: "jobs_processed_total"}, []string{"offering", "status"}),
		JobDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "travel_agent", Name: "job_duration_seconds"}),
		PipelineRunning:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "travel_agent", Name: "pipeline_running"}),
		CatalogEntries:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "travel_agent", Name: "catalog_entries"}),
		GenerateRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "travel_agent", Name: "generate_requests_total"}, []string{"outcome"}),
		GenerateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "travel_agent", Name: "generate_duration_seconds"}),
		FlightLookups:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "travel_agent", Name: "flight_lookups_total"}, []string{"outcome"}),
		PaymentChecks:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "travel_agent", Name: "payment_checks_total"}, []string{"rail", "outcome"}),
		Deliveries:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "travel_agent", Name: "deliveries_total"}, []string{"outcome"}),
	}
}
