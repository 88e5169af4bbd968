package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/n0madic/go-ising-anneal/anneal"
	"github.com/n0madic/go-ising-anneal/internal/config"
	"github.com/n0madic/go-ising-anneal/internal/problemfile"
	"github.com/n0madic/go-ising-anneal/internal/store"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Draw annealed samples from a problem file",
	Long: `Sample runs independent simulated annealing runs on the problem and prints
the final spins, their energies and summary statistics. A beta_schedule in
the problem file overrides the generated linear or geometric schedule.`,
	RunE: runSample,
}

func init() {
	f := sampleCmd.Flags()
	f.String("problem", "", "problem file (YAML or JSON)")
	f.Int("samples", 100, "number of independent runs")
	f.Int("sweeps", 1000, "sweeps per run (schedule length)")
	f.Float64("beta-start", 0.01, "first inverse temperature")
	f.Float64("beta-end", 3.0, "last inverse temperature")
	f.String("schedule", config.ScheduleLinear, "schedule shape: linear or geometric")
	f.Int64("seed", 1, "random seed")
	f.Int("intermediate", 0, "snapshots recorded per run")
	f.Int("workers", 0, "concurrent runs (0 means GOMAXPROCS)")
	f.Int("check-interval", 0, "recompute energies from scratch every n sweeps (0 disables)")
	f.String("format", "json", "output format: json or yaml")
	f.Bool("stats-only", false, "print only summary statistics")
	_ = sampleCmd.MarkFlagRequired("problem")

	for key, name := range map[string]string{
		"samples":        "samples",
		"sweeps":         "sweeps",
		"beta_start":     "beta-start",
		"beta_end":       "beta-end",
		"schedule":       "schedule",
		"seed":           "seed",
		"intermediate":   "intermediate",
		"workers":        "workers",
		"check_interval": "check-interval",
	} {
		mustBind(key, f.Lookup(name))
	}

	rootCmd.AddCommand(sampleCmd)
}

type snapshotOutput struct {
	Sweep  int     `json:"sweep" yaml:"sweep"`
	Spins  []int8  `json:"spins" yaml:"spins,flow"`
	Energy float64 `json:"energy" yaml:"energy"`
}

type sampleOutput struct {
	RunID              string             `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Samples            [][]int8           `json:"samples,omitempty" yaml:"samples,omitempty,flow"`
	Energies           []float64          `json:"energies,omitempty" yaml:"energies,omitempty,flow"`
	IntermediateStates [][]snapshotOutput `json:"intermediate_states,omitempty" yaml:"intermediate_states,omitempty"`
	Stats              map[string]any     `json:"stats" yaml:"stats"`
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	problemPath, _ := cmd.Flags().GetString("problem")
	format, _ := cmd.Flags().GetString("format")
	statsOnly, _ := cmd.Flags().GetBool("stats-only")
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}

	pf, err := problemfile.Load(problemPath)
	if err != nil {
		return err
	}
	p, err := pf.Problem()
	if err != nil {
		return err
	}

	schedule := pf.BetaSchedule
	scheduleName := "file"
	if len(schedule) == 0 {
		if schedule, err = cfg.BetaSchedule(); err != nil {
			return err
		}
		scheduleName = cfg.Schedule
	}

	sampler := anneal.NewSampler(
		anneal.WithWorkers(cfg.Workers),
		anneal.WithCheckInterval(cfg.CheckInterval),
		anneal.WithLogger(logger),
	)

	logger.Info("sampling",
		"problem", problemPath,
		"variables", p.NumVariables(),
		"couplings", p.NumCouplings(),
		"samples", cfg.Samples,
		"sweeps", len(schedule),
		"schedule", scheduleName,
		"workers", sampler.Workers())

	res, err := sampler.Run(cmd.Context(), p, schedule, anneal.Request{
		Seed:               cfg.Seed,
		NumSamples:         cfg.Samples,
		NumSweeps:          len(schedule),
		IntermediateStates: cfg.Intermediate,
	})
	if err != nil {
		return err
	}

	out := sampleOutput{Stats: finiteStats(res.GetStats())}
	if !statsOnly {
		out.Samples = res.Samples
		out.Energies = res.Energies
		if cfg.Intermediate > 0 {
			out.IntermediateStates = snapshotsOutput(res.IntermediateStates)
		}
	}

	if cfg.DB != "" {
		st, err := store.Open(cfg.DB)
		if err != nil {
			return err
		}
		defer st.Close()

		out.RunID, err = st.Save(cmd.Context(), store.RunRecord{
			Problem:   problemPath,
			NumSweeps: len(schedule),
			Seed:      cfg.Seed,
			Schedule:  scheduleName,
		}, res)
		if err != nil {
			return err
		}
		logger.Info("run stored", "id", out.RunID, "db", cfg.DB)
	}

	return writeOutput(cmd.OutOrStdout(), format, out)
}

func snapshotsOutput(states [][]anneal.Snapshot) [][]snapshotOutput {
	out := make([][]snapshotOutput, len(states))
	for i, snaps := range states {
		out[i] = make([]snapshotOutput, len(snaps))
		for j, s := range snaps {
			out[i][j] = snapshotOutput{Sweep: s.Sweep, Spins: s.Spins, Energy: s.Energy}
		}
	}
	return out
}

// finiteStats replaces NaN statistics with nil so they encode as null.
func finiteStats(stats map[string]any) map[string]any {
	for k, v := range stats {
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			stats[k] = nil
		}
	}
	return stats
}

func writeOutput(w io.Writer, format string, v any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
