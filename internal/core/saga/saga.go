// Package saga runs an ordered list of steps and undoes the committed ones,
// newest first, when a critical step fails.
package saga

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/frahmantamala/beacon/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type Criticality int

const (
	// Critical steps abort the saga and trigger compensation on failure.
	Critical Criticality = iota
	// BestEffort steps are logged and skipped on failure.
	BestEffort
)

func (c Criticality) String() string {
	if c == BestEffort {
		return "best_effort"
	}
	return "critical"
}

type Outcome string

const (
	OutcomeCommitted          Outcome = "committed"
	OutcomeFailed             Outcome = "failed"
	OutcomeSkipped            Outcome = "skipped"
	OutcomeCompensated        Outcome = "compensated"
	OutcomeCompensationFailed Outcome = "compensation_failed"
)

type Step struct {
	Name        string
	Criticality Criticality
	Action      func(ctx context.Context) error
	// Compensate undoes Action. Nil means there is nothing to undo.
	Compensate func(ctx context.Context) error
}

type Entry struct {
	Step     string
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// Log is the ordered record of what happened to every step of one run.
type Log struct {
	Saga    string
	Entries []Entry
}

func (l *Log) record(step string, outcome Outcome, err error, d time.Duration) {
	l.Entries = append(l.Entries, Entry{Step: step, Outcome: outcome, Err: err, Duration: d})
}

// Outcomes returns the entries as "step:outcome" strings, in order.
func (l *Log) Outcomes() []string {
	out := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		out = append(out, e.Step+":"+string(e.Outcome))
	}
	return out
}

// Last returns the most recent outcome recorded for step.
func (l *Log) Last(step string) (Outcome, bool) {
	for i := len(l.Entries) - 1; i >= 0; i-- {
		if l.Entries[i].Step == step {
			return l.Entries[i].Outcome, true
		}
	}
	return "", false
}

// StepError is returned when a critical step fails. It wraps the step's own
// error so callers can still match it with errors.Is and errors.As.
type StepError struct {
	Saga string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("saga %s: step %s: %v", e.Saga, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type Runner struct {
	logger  zerolog.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer

	compensateTries   uint
	compensateBackOff func() backoff.BackOff
}

type Option func(*Runner)

// WithCompensationRetry retries a failing compensation up to tries times
// with exponential backoff starting at initial.
func WithCompensationRetry(tries uint, initial time.Duration) Option {
	return func(r *Runner) {
		if tries == 0 {
			tries = 1
		}
		r.compensateTries = tries
		r.compensateBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initial
			b.MaxInterval = 20 * initial
			return b
		}
	}
}

func NewRunner(logger zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		logger:            logger.With().Str("component", "saga").Logger(),
		metrics:           telemetry.GetMetrics(),
		tracer:            telemetry.Tracer(),
		compensateTries:   1,
		compensateBackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes steps in order. Compensation runs on a context that ignores
// the caller's cancellation so a dropped request cannot leave orphans behind.
func (r *Runner) Run(ctx context.Context, name string, steps []Step) (*Log, error) {
	sagaLog := &Log{Saga: name}
	sagaAttr := metric.WithAttributes(attribute.String("saga", name))
	r.metrics.SagaRunsTotal.Add(ctx, 1, sagaAttr)

	ctx, span := r.tracer.Start(ctx, "saga."+name)
	defer span.End()

	var committed []Step
	for _, step := range steps {
		elapsed, err := r.runStep(ctx, name, step)
		if err == nil {
			sagaLog.record(step.Name, OutcomeCommitted, nil, elapsed)
			committed = append(committed, step)
			continue
		}

		if step.Criticality == BestEffort {
			r.logger.Warn().Err(err).
				Str("saga", name).
				Str("step", step.Name).
				Msg("best-effort step failed, continuing")
			sagaLog.record(step.Name, OutcomeSkipped, err, elapsed)
			r.metrics.SagaSkippedStepsTotal.Add(ctx, 1, metric.WithAttributes(
				attribute.String("saga", name),
				attribute.String("step", step.Name),
			))
			continue
		}

		r.logger.Error().Err(err).
			Str("saga", name).
			Str("step", step.Name).
			Int("committed_steps", len(committed)).
			Msg("critical step failed, compensating")
		sagaLog.record(step.Name, OutcomeFailed, err, elapsed)
		r.metrics.SagaFailuresTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("saga", name),
			attribute.String("step", step.Name),
		))
		span.SetStatus(codes.Error, step.Name)

		r.compensate(context.WithoutCancel(ctx), name, committed, sagaLog)

		return sagaLog, &StepError{Saga: name, Step: step.Name, Err: err}
	}

	return sagaLog, nil
}

func (r *Runner) runStep(ctx context.Context, name string, step Step) (time.Duration, error) {
	ctx, span := r.tracer.Start(ctx, "saga."+name+"."+step.Name, trace.WithAttributes(
		attribute.String("saga.step", step.Name),
		attribute.String("saga.criticality", step.Criticality.String()),
	))
	defer span.End()

	start := time.Now()
	err := step.Action(ctx)
	elapsed := time.Since(start)
	r.metrics.SagaStepDuration.Record(ctx, float64(elapsed.Milliseconds()), metric.WithAttributes(
		attribute.String("saga", name),
		attribute.String("step", step.Name),
	))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return elapsed, err
}

func (r *Runner) compensate(ctx context.Context, name string, committed []Step, sagaLog *Log) {
	for i := len(committed) - 1; i >= 0; i-- {
		step := committed[i]
		if step.Compensate == nil {
			continue
		}

		r.metrics.SagaCompensationsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("saga", name),
			attribute.String("step", step.Name),
		))

		if err := r.undo(ctx, step); err != nil {
			// Nothing left to roll back to; the orphan is reported for manual cleanup.
			r.logger.Error().Err(err).
				Str("saga", name).
				Str("step", step.Name).
				Msg("compensation failed")
			sagaLog.record(step.Name, OutcomeCompensationFailed, err, 0)
			continue
		}
		sagaLog.record(step.Name, OutcomeCompensated, nil, 0)
	}
}

func (r *Runner) undo(ctx context.Context, step Step) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, step.Compensate(ctx)
	}, backoff.WithBackOff(r.compensateBackOff()), backoff.WithMaxTries(r.compensateTries))
	return err
}
