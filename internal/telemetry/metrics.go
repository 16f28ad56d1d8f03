package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/frahmantamala/beacon"

// Metrics holds the instruments shared by the onboarding workflows.
type Metrics struct {
	SagaRunsTotal          metric.Int64Counter
	SagaFailuresTotal      metric.Int64Counter
	SagaCompensationsTotal metric.Int64Counter
	SagaSkippedStepsTotal  metric.Int64Counter
	SagaStepDuration       metric.Float64Histogram

	InvitationsReconciledTotal metric.Int64Counter
	EmailsSentTotal            metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the process-wide instruments, creating them against the
// current global meter provider on first use.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// Tracer returns the tracer used for workflow spans.
func Tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(instrumentationName)
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(instrumentationName)

	m := &Metrics{}

	m.SagaRunsTotal, _ = meter.Int64Counter(
		"beacon.saga.runs.total",
		metric.WithDescription("Total number of saga runs"),
		metric.WithUnit("{run}"),
	)

	m.SagaFailuresTotal, _ = meter.Int64Counter(
		"beacon.saga.failures.total",
		metric.WithDescription("Total number of sagas aborted by a critical step"),
		metric.WithUnit("{run}"),
	)

	m.SagaCompensationsTotal, _ = meter.Int64Counter(
		"beacon.saga.compensations.total",
		metric.WithDescription("Total number of compensation actions executed"),
		metric.WithUnit("{step}"),
	)

	m.SagaSkippedStepsTotal, _ = meter.Int64Counter(
		"beacon.saga.skipped_steps.total",
		metric.WithDescription("Total number of failed best-effort steps"),
		metric.WithUnit("{step}"),
	)

	m.SagaStepDuration, _ = meter.Float64Histogram(
		"beacon.saga.step.duration",
		metric.WithDescription("Duration of saga step actions"),
		metric.WithUnit("ms"),
	)

	m.InvitationsReconciledTotal, _ = meter.Int64Counter(
		"beacon.invitations.reconciled.total",
		metric.WithDescription("Total number of stuck invitations repaired by the reconciler"),
		metric.WithUnit("{invitation}"),
	)

	m.EmailsSentTotal, _ = meter.Int64Counter(
		"beacon.emails.sent.total",
		metric.WithDescription("Total number of invitation e-mails handed to the mail provider"),
		metric.WithUnit("{email}"),
	)

	return m
}
