package anneal

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"github.com/n0madic/go-ising-anneal/ising"
)

// Option defines a functional option for configuring a Sampler
type Option func(*Sampler)

// WithWorkers sets the number of runs executed concurrently.
// Values <= 0 keep the default of runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(s *Sampler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the structured logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sampler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCheckInterval enables recomputing every run's energy and local fields
// from scratch every n sweeps, removing accumulated floating-point drift.
// n <= 0 disables the check.
func WithCheckInterval(n int) Option {
	return func(s *Sampler) {
		s.checkInterval = n
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider used for sampler
// metrics. The global provider is used by default.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Sampler) {
		s.meterProvider = mp
	}
}

// CallOption configures a SimulatedAnnealing call.
type CallOption func(*callConfig)

type callConfig struct {
	intermediateStates int
	sampler            *Sampler
	problemOpts        []ising.Option
}

// WithIntermediateStates requests k snapshots per sample.
func WithIntermediateStates(k int) CallOption {
	return func(c *callConfig) {
		c.intermediateStates = k
	}
}

// WithSampler runs the call on s instead of a default Sampler.
func WithSampler(s *Sampler) CallOption {
	return func(c *callConfig) {
		c.sampler = s
	}
}

// WithProblemOptions forwards options to ising.Build.
func WithProblemOptions(opts ...ising.Option) CallOption {
	return func(c *callConfig) {
		c.problemOpts = append(c.problemOpts, opts...)
	}
}
