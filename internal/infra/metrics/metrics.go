// Package metrics exposes security counters in the Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"warden/config"
	"warden/internal/domain/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

const namespace = "warden"

// Recorder implements service.MetricsRecorder on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	AccessDecisionsTotal *prometheus.CounterVec
	LoginsTotal          *prometheus.CounterVec
	RegistrationsTotal   *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// NewRecorder creates and registers all collectors on registry.
func NewRecorder(registry *prometheus.Registry) *Recorder {
	r := &Recorder{
		registry: registry,
		AccessDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "access_decisions_total",
				Help:      "Access guard decisions by policy and outcome",
			},
			[]string{"policy", "outcome"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Login attempts by result",
			},
			[]string{"result"},
		),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Registration attempts by result",
			},
			[]string{"result"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	registry.MustRegister(
		r.AccessDecisionsTotal,
		r.LoginsTotal,
		r.RegistrationsTotal,
		r.HTTPRequestDuration,
	)

	return r
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}

	return "failure"
}

func (r *Recorder) RecordAccessDecision(policy, outcome string) {
	r.AccessDecisionsTotal.WithLabelValues(policy, outcome).Inc()
}

func (r *Recorder) RecordLogin(success bool) {
	r.LoginsTotal.WithLabelValues(resultLabel(success)).Inc()
}

func (r *Recorder) RecordRegistration(success bool) {
	r.RegistrationsTotal.WithLabelValues(resultLabel(success)).Inc()
}

// ObserveHTTPRequest records a request under its route template so ids do not explode cardinality.
func (r *Recorder) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry contents.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Result carries both views of the recorder into the fx graph.
type Result struct {
	fx.Out

	Recorder *Recorder
	Metrics  service.MetricsRecorder
}

// New builds the recorder when metrics are enabled; otherwise measurements are discarded
// and Recorder is nil.
func New(cfg *config.Config) Result {
	if !cfg.Metrics.Enabled {
		return Result{Metrics: service.NopMetrics{}}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := NewRecorder(registry)

	return Result{Recorder: recorder, Metrics: recorder}
}

// Module provides the metrics FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(New),
)
