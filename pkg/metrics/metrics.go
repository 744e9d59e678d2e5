package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the app's collectors. A nil *Metrics is valid and records
// nothing, which keeps services usable in tests without a registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	expensesCreated  *prometheus.CounterVec
	receiptScans     *prometheus.CounterVec
	habitToggles     *prometheus.CounterVec
	llmCallDuration  *prometheus.HistogramVec
	coachReplies     *prometheus.CounterVec
	reportsGenerated *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		expensesCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expenses_created_total",
				Help: "Total number of expense and income records created",
			},
			[]string{"source"},
		),
		receiptScans: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "receipt_scans_total",
				Help: "Total number of receipt scans by outcome",
			},
			[]string{"provider", "outcome"},
		),
		habitToggles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "habit_toggles_total",
				Help: "Total number of habit toggles by resulting state",
			},
			[]string{"state"},
		),
		llmCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_call_duration_seconds",
				Help:    "LLM and vision call latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
			},
			[]string{"provider", "operation"},
		),
		coachReplies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_replies_total",
				Help: "Total number of coach chat replies by intent",
			},
			[]string{"intent"},
		),
		reportsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reports_generated_total",
				Help: "Total number of monthly reports by format",
			},
			[]string{"format"},
		),
	}
}

// Registry is what the /metrics handler gathers from.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ExpenseCreated(source string) {
	if m == nil {
		return
	}
	m.expensesCreated.WithLabelValues(source).Inc()
}

func (m *Metrics) ReceiptScan(provider, outcome string) {
	if m == nil {
		return
	}
	m.receiptScans.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) HabitToggle(completed bool) {
	if m == nil {
		return
	}
	state := "unchecked"
	if completed {
		state = "completed"
	}
	m.habitToggles.WithLabelValues(state).Inc()
}

func (m *Metrics) ObserveLLM(provider, operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.llmCallDuration.WithLabelValues(provider, operation).Observe(d.Seconds())
}

func (m *Metrics) CoachReply(intent string) {
	if m == nil {
		return
	}
	m.coachReplies.WithLabelValues(intent).Inc()
}

func (m *Metrics) ReportGenerated(format string) {
	if m == nil {
		return
	}
	m.reportsGenerated.WithLabelValues(format).Inc()
}
