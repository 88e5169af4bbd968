// Package problemfile reads the YAML (or JSON) problem description consumed
// by the ising-anneal CLI:
//
//	h: [-1, -1, -1]
//	couplers:
//	  - {u: 0, v: 1, w: -1}
//	  - {u: 1, v: 2, w: -1}
//	beta_schedule: [0.1, 0.5, 1, 2]   # optional, overrides generated schedules
//	duplicates: sum                    # sum (default) | reject
//	self_loops: reject                 # reject (default) | offset
package problemfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/n0madic/go-ising-anneal/ising"
)

// Coupler is one J-term as written in the file.
type Coupler struct {
	U int     `yaml:"u" json:"u"`
	V int     `yaml:"v" json:"v"`
	W float64 `yaml:"w" json:"w"`
}

// File is a parsed problem file.
type File struct {
	H            []float64 `yaml:"h" json:"h"`
	Couplers     []Coupler `yaml:"couplers,omitempty" json:"couplers,omitempty"`
	BetaSchedule []float64 `yaml:"beta_schedule,omitempty" json:"beta_schedule,omitempty"`
	Duplicates   string    `yaml:"duplicates,omitempty" json:"duplicates,omitempty"`
	SelfLoops    string    `yaml:"self_loops,omitempty" json:"self_loops,omitempty"`
}

// Load reads and parses path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading problem file: %w", err)
	}
	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a problem description. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty problem file")
		}
		return nil, fmt.Errorf("parsing problem file: %w", err)
	}
	return &f, nil
}

// Arrays returns the couplers as parallel start, end and weight arrays.
func (f *File) Arrays() (starts, ends []int, weights []float64) {
	starts = make([]int, len(f.Couplers))
	ends = make([]int, len(f.Couplers))
	weights = make([]float64, len(f.Couplers))
	for i, c := range f.Couplers {
		starts[i], ends[i], weights[i] = c.U, c.V, c.W
	}
	return starts, ends, weights
}

// BuildOptions translates the duplicates and self_loops policies.
func (f *File) BuildOptions() ([]ising.Option, error) {
	var opts []ising.Option
	switch f.Duplicates {
	case "", "sum":
	case "reject":
		opts = append(opts, ising.WithRejectDuplicates())
	default:
		return nil, fmt.Errorf("unknown duplicates policy %q (want sum or reject)", f.Duplicates)
	}
	switch f.SelfLoops {
	case "", "reject":
	case "offset":
		opts = append(opts, ising.WithSelfLoopOffset())
	default:
		return nil, fmt.Errorf("unknown self_loops policy %q (want reject or offset)", f.SelfLoops)
	}
	return opts, nil
}

// Problem builds the validated Ising problem.
func (f *File) Problem() (*ising.Problem, error) {
	opts, err := f.BuildOptions()
	if err != nil {
		return nil, err
	}
	starts, ends, weights := f.Arrays()
	return ising.Build(f.H, starts, ends, weights, opts...)
}

// ParseSpins parses a spin assignment written either as comma separated
// integers ("1,-1,1") or as a string of signs ("+-+").
func ParseSpins(s string) ([]int8, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty spin assignment")
	}

	if strings.Trim(s, "+-") == "" {
		spins := make([]int8, len(s))
		for i := range s {
			spins[i] = 1
			if s[i] == '-' {
				spins[i] = -1
			}
		}
		return spins, nil
	}

	fields := strings.Split(s, ",")
	spins := make([]int8, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("spin %d: %w", i, err)
		}
		if v != 1 && v != -1 {
			return nil, fmt.Errorf("spin %d is %d, want -1 or +1", i, v)
		}
		spins[i] = int8(v)
	}
	return spins, nil
}
