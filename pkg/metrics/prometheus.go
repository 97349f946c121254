// Package metrics provides a Prometheus-backed Observer for the flow
// engine. Pair it with promhttp in the host process to expose /metrics.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rpatil/bankflow/pkg/api"
)

// PrometheusObserver implements api.Observer by recording counters and an
// operation-duration histogram.
type PrometheusObserver struct {
	api.NoopObserver

	sessionsStarted prometheus.Counter
	sessionsLocked  prometheus.Counter
	sessionsReset   prometheus.Counter
	stepsEntered    *prometheus.CounterVec
	validationFails *prometheus.CounterVec
	operations      *prometheus.CounterVec
	opDuration      *prometheus.HistogramVec
}

// NewPrometheusObserver registers the bankflow collectors on reg and
// returns the observer. A nil registerer uses the default registry.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &PrometheusObserver{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bankflow_sessions_started_total",
			Help: "Total number of sessions started",
		}),
		sessionsLocked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bankflow_sessions_locked_total",
			Help: "Total number of sessions that hit the PIN lockout",
		}),
		sessionsReset: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bankflow_sessions_reset_total",
			Help: "Total number of session resets",
		}),
		stepsEntered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bankflow_steps_entered_total",
			Help: "Total number of step transitions, by target step",
		}, []string{"step"}),
		validationFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bankflow_validation_failures_total",
			Help: "Total number of rejected submits, by step and field",
		}, []string{"step", "field"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bankflow_operations_total",
			Help: "Total number of simulated operations, by kind and result",
		}, []string{"kind", "result"}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bankflow_operation_duration_seconds",
			Help:    "Duration of simulated operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}

	reg.MustRegister(
		o.sessionsStarted,
		o.sessionsLocked,
		o.sessionsReset,
		o.stepsEntered,
		o.validationFails,
		o.operations,
		o.opDuration,
	)
	return o
}

var _ api.Observer = (*PrometheusObserver)(nil)

func (o *PrometheusObserver) OnSessionStart(ctx context.Context, sess *api.Session) {
	o.sessionsStarted.Inc()
}

func (o *PrometheusObserver) OnStepEnter(ctx context.Context, sess *api.Session, from, to api.StepID) {
	o.stepsEntered.WithLabelValues(string(to)).Inc()
}

func (o *PrometheusObserver) OnValidationFailed(ctx context.Context, sess *api.Session, verr *api.ValidationError) {
	o.validationFails.WithLabelValues(string(sess.Step), verr.Field).Inc()
}

func (o *PrometheusObserver) OnOperationCompleted(ctx context.Context, sess *api.Session, kind api.OpKind, out api.Outcome, d time.Duration) {
	result := "success"
	if !out.OK() {
		result = "failure"
	}
	o.operations.WithLabelValues(string(kind), result).Inc()
	o.opDuration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

func (o *PrometheusObserver) OnSessionLocked(ctx context.Context, sess *api.Session) {
	o.sessionsLocked.Inc()
}

func (o *PrometheusObserver) OnSessionReset(ctx context.Context, sess *api.Session) {
	o.sessionsReset.Inc()
}
