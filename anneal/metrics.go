package anneal

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/n0madic/go-ising-anneal/anneal"

// samplerMetrics holds the instruments of one Sampler.
type samplerMetrics struct {
	runs             metric.Int64Counter
	sweeps           metric.Int64Counter
	accepted         metric.Int64Counter
	rejected         metric.Int64Counter
	driftCorrections metric.Int64Counter
	duration         metric.Float64Histogram
}

// newSamplerMetrics creates the instruments on mp, or on the global
// provider when mp is nil.
func newSamplerMetrics(mp metric.MeterProvider) (*samplerMetrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	var m samplerMetrics
	var err, errs error

	m.runs, err = meter.Int64Counter(
		"anneal_runs_total",
		metric.WithDescription("Number of completed annealing runs (one per sample)"),
	)
	errs = errors.Join(errs, err)

	m.sweeps, err = meter.Int64Counter(
		"anneal_sweeps_total",
		metric.WithDescription("Number of executed sweeps"),
	)
	errs = errors.Join(errs, err)

	m.accepted, err = meter.Int64Counter(
		"anneal_flips_accepted_total",
		metric.WithDescription("Number of accepted single-spin flips"),
	)
	errs = errors.Join(errs, err)

	m.rejected, err = meter.Int64Counter(
		"anneal_flips_rejected_total",
		metric.WithDescription("Number of rejected single-spin flips"),
	)
	errs = errors.Join(errs, err)

	m.driftCorrections, err = meter.Int64Counter(
		"anneal_drift_corrections_total",
		metric.WithDescription("Number of resyncs that removed energy drift above tolerance"),
	)
	errs = errors.Join(errs, err)

	m.duration, err = meter.Float64Histogram(
		"anneal_sample_duration_seconds",
		metric.WithDescription("Wall time of one annealing run"),
		metric.WithUnit("s"),
	)
	errs = errors.Join(errs, err)

	if errs != nil {
		return nil, errs
	}
	return &m, nil
}

// noopMetrics is used when instrument creation fails.
func noopMetrics() *samplerMetrics {
	m, _ := newSamplerMetrics(noop.NewMeterProvider())
	return m
}

// recordRun records one completed run.
func (m *samplerMetrics) recordRun(ctx context.Context, sweeps int, r *runResult, d time.Duration) {
	m.runs.Add(ctx, 1)
	m.sweeps.Add(ctx, int64(sweeps))
	m.accepted.Add(ctx, int64(r.accepted))
	m.rejected.Add(ctx, int64(r.rejected))
	if r.driftCorrections > 0 {
		m.driftCorrections.Add(ctx, int64(r.driftCorrections))
	}
	m.duration.Record(ctx, d.Seconds())
}
