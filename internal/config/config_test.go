package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	v := viper.New()
	require.NoError(t, Init(v, ""))
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 100, c.Samples)
	assert.Equal(t, 1000, c.Sweeps)
	assert.Equal(t, 0.01, c.BetaStart)
	assert.Equal(t, 3.0, c.BetaEnd)
	assert.Equal(t, ScheduleLinear, c.Schedule)
	assert.Equal(t, int64(1), c.Seed)
	assert.Equal(t, "info", c.LogLevel)
}

func TestConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
samples: 25
sweeps: 50
schedule: geometric
beta_start: 0.1
beta_end: 10
intermediate: 5
`), 0o644))

	t.Setenv("ISING_ANNEAL_SEED", "99")
	t.Setenv("ISING_ANNEAL_WORKERS", "3")

	v := viper.New()
	require.NoError(t, Init(v, path))
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 25, c.Samples)
	assert.Equal(t, 50, c.Sweeps)
	assert.Equal(t, ScheduleGeometric, c.Schedule)
	assert.Equal(t, 5, c.Intermediate)
	assert.Equal(t, int64(99), c.Seed)
	assert.Equal(t, 3, c.Workers)

	schedule, err := c.BetaSchedule()
	require.NoError(t, err)
	require.Len(t, schedule, 50)
	assert.InDelta(t, 0.1, schedule[0], 1e-12)
	assert.Equal(t, 10.0, schedule[49])
}

func TestExplicitConfigFileMissing(t *testing.T) {
	v := viper.New()
	err := Init(v, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{Samples: 1, Sweeps: 10, Schedule: ScheduleLinear}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero samples", mutate: func(c *Config) { c.Samples = 0 }},
		{name: "negative sweeps", mutate: func(c *Config) { c.Sweeps = -1 }},
		{name: "too many snapshots", mutate: func(c *Config) { c.Intermediate = 11 }},
		{name: "unknown schedule", mutate: func(c *Config) { c.Schedule = "cosine" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestBetaScheduleZeroSweeps(t *testing.T) {
	for _, kind := range []string{ScheduleLinear, ScheduleGeometric} {
		c := Config{Samples: 1, Sweeps: 0, BetaStart: 0.1, BetaEnd: 3, Schedule: kind}
		require.NoError(t, c.Validate())
		schedule, err := c.BetaSchedule()
		require.NoError(t, err, kind)
		assert.Empty(t, schedule, kind)
	}
}
