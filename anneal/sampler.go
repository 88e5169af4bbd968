// Package anneal implements a classical simulated-annealing sampler for
// Ising problems built with package ising.
//
// Each requested sample is an independent Metropolis chain: it starts from
// a uniformly random assignment, performs one sweep per beta in the
// schedule, and reports its final spins and energy. Samples run in parallel
// on a bounded worker pool; they share only the read-only problem and each
// owns its spin state and random stream, so the sweep loop takes no locks.
//
// Reproducibility contract: for a fixed problem, schedule and seed the
// output is bit-identical regardless of worker count. Sample i draws from
// the stream rng.ForSample(seed, i), variables are visited in index order
// every sweep, and a uniform draw is consumed only for energy-increasing
// proposals.
package anneal

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/n0madic/go-ising-anneal/ising"
	"github.com/n0madic/go-ising-anneal/rng"
)

// Request describes one sampling call.
type Request struct {
	// Seed keys every random stream of the call. Any value is valid.
	Seed int64
	// NumSamples is the number of independent runs (>= 1).
	NumSamples int
	// NumSweeps must equal the schedule length.
	NumSweeps int
	// IntermediateStates is the number of snapshots per sample, in
	// [0, NumSweeps].
	IntermediateStates int
}

// Sampler runs simulated annealing. A Sampler is safe for concurrent use.
type Sampler struct {
	workers       int
	checkInterval int
	logger        *slog.Logger
	meterProvider metric.MeterProvider
	metrics       *samplerMetrics
}

// NewSampler creates a Sampler.
func NewSampler(options ...Option) *Sampler {
	s := &Sampler{
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.New(slog.DiscardHandler),
	}

	for _, opt := range options {
		opt(s)
	}

	m, err := newSamplerMetrics(s.meterProvider)
	if err != nil {
		s.logger.Warn("sampler metrics disabled", "error", err)
		m = noopMetrics()
	}
	s.metrics = m

	return s
}

// Workers returns the configured concurrency.
func (s *Sampler) Workers() int { return s.workers }

// validate checks the request against the schedule before any work starts.
func (req Request) validate(schedule []float64) error {
	if req.NumSamples < 1 {
		return fmt.Errorf("num_samples=%d < 1: %w", req.NumSamples, ErrInvalidRequest)
	}
	if req.NumSweeps != len(schedule) {
		return fmt.Errorf("num_sweeps=%d but schedule has %d entries: %w",
			req.NumSweeps, len(schedule), ErrInvalidSchedule)
	}
	if req.IntermediateStates < 0 || req.IntermediateStates > req.NumSweeps {
		return fmt.Errorf("intermediate_states=%d not in [0,%d]: %w",
			req.IntermediateStates, req.NumSweeps, ErrInvalidRequest)
	}
	return validateSchedule(schedule)
}

// Run draws req.NumSamples samples from p following schedule.
//
// All validation happens before any sweep. Cancellation is observed between
// runs: a run that has started always completes, and when ctx is cancelled
// Run returns ctx's error and no Result.
func (s *Sampler) Run(ctx context.Context, p *ising.Problem, schedule []float64, req Request) (*Result, error) {
	if p == nil {
		return nil, fmt.Errorf("nil problem: %w", ErrInvalidProblem)
	}
	if err := req.validate(schedule); err != nil {
		return nil, err
	}

	cfg := &runConfig{
		schedule:      append([]float64(nil), schedule...),
		snapshotAt:    SnapshotSweeps(req.NumSweeps, req.IntermediateStates),
		checkInterval: s.checkInterval,
		logger:        s.logger,
	}
	seed := uint64(req.Seed)

	s.logger.Debug("sampling started",
		"variables", p.NumVariables(),
		"couplings", p.NumCouplings(),
		"samples", req.NumSamples,
		"sweeps", req.NumSweeps,
		"intermediate_states", req.IntermediateStates,
		"workers", s.workers)
	start := time.Now()

	// one slot per sample, written by index
	runs := make([]runResult, req.NumSamples)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range runs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t0 := time.Now()
			r := annealRun(p, rng.ForSample(seed, i), cfg)
			r.index = i
			runs[i] = r
			s.metrics.recordRun(gctx, req.NumSweeps, &r, time.Since(t0))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Debug("sampling abandoned", "error", err)
		return nil, err
	}

	res, err := aggregate(p.NumVariables(), runs)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("sampling finished",
		"samples", req.NumSamples,
		"duration", time.Since(start),
		"accepted", res.Accepted,
		"rejected", res.Rejected)
	return res, nil
}

// SimulatedAnnealing builds the problem from raw arrays and samples it.
// The number of sweeps is len(betaSchedule). Intermediate snapshots are
// requested with WithIntermediateStates.
func SimulatedAnnealing(
	ctx context.Context,
	numSamples int,
	h []float64,
	couplerStarts, couplerEnds []int,
	couplerWeights []float64,
	betaSchedule []float64,
	seed int64,
	opts ...CallOption,
) (*Result, error) {
	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	p, err := ising.Build(h, couplerStarts, couplerEnds, couplerWeights, cfg.problemOpts...)
	if err != nil {
		return nil, err
	}

	s := cfg.sampler
	if s == nil {
		s = NewSampler()
	}
	return s.Run(ctx, p, betaSchedule, Request{
		Seed:               seed,
		NumSamples:         numSamples,
		NumSweeps:          len(betaSchedule),
		IntermediateStates: cfg.intermediateStates,
	})
}
