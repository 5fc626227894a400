package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/news2"
)

// Namespace prefixes every metric name.
const Namespace = "carepath"

// Metrics holds the carepath collectors.
type Metrics struct {
	NodeVisits   *prometheus.CounterVec
	Outcomes     *prometheus.CounterVec
	Assessments  *prometheus.CounterVec
	RedFlags     prometheus.Counter
	Scores       prometheus.Histogram
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "node_visits_total",
			Help:      "Total number of pathway node visits",
		}, []string{"pathway", "node_id"}),
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "outcomes_total",
			Help:      "Consultations that reached a terminal node",
		}, []string{"pathway", "node_id", "kind"}),
		Assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "news2_assessments_total",
			Help:      "NEWS2 calculations by clinical risk",
		}, []string{"risk"}),
		RedFlags: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "news2_red_flags_total",
			Help:      "NEWS2 calculations with a single parameter scoring 3",
		}),
		Scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "news2_total_score",
			Help:      "Distribution of aggregate NEWS2 scores",
			Buckets:   prometheus.LinearBuckets(0, 1, 21),
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(m.NodeVisits, m.Outcomes, m.Assessments, m.RedFlags, m.Scores, m.HTTPRequests, m.HTTPDuration)
	}
	return m
}

// Hooks returns lifecycle hooks that record node visits and outcomes.
// Existing hooks in next still run after the metrics are recorded.
func (m *Metrics) Hooks(next domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.PathwayID, e.NodeID).Inc()
			if next.OnNodeEnter != nil {
				next.OnNodeEnter(ctx, e)
			}
		},
		OnTerminal: func(ctx context.Context, e *domain.NodeEvent) {
			m.Outcomes.WithLabelValues(e.PathwayID, e.NodeID, string(e.Kind)).Inc()
			if next.OnTerminal != nil {
				next.OnTerminal(ctx, e)
			}
		},
	}
}

// ObserveNEWS2 records one scoring result.
func (m *Metrics) ObserveNEWS2(r news2.Result) {
	m.Assessments.WithLabelValues(string(r.ClinicalRisk)).Inc()
	m.Scores.Observe(float64(r.TotalScore))
	if r.RedFlag {
		m.RedFlags.Inc()
	}
}

// ObserveHTTP records one request. route should be a pattern, not a raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Middleware records every request passing through next. route names the request,
// typically from the router's matched pattern.
func (m *Metrics) Middleware(route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			m.ObserveHTTP(r.Method, route(r), rec.status, time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
