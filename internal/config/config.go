// Package config resolves ising-anneal settings from flags, environment
// variables (ISING_ANNEAL_*) and an optional YAML config file through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/n0madic/go-ising-anneal/anneal"
)

// EnvPrefix is the environment variable prefix.
const EnvPrefix = "ISING_ANNEAL"

// Schedule kinds.
const (
	ScheduleLinear    = "linear"
	ScheduleGeometric = "geometric"
)

// Config holds the sampling defaults of the CLI.
type Config struct {
	Samples       int     `mapstructure:"samples" yaml:"samples"`
	Sweeps        int     `mapstructure:"sweeps" yaml:"sweeps"`
	BetaStart     float64 `mapstructure:"beta_start" yaml:"beta_start"`
	BetaEnd       float64 `mapstructure:"beta_end" yaml:"beta_end"`
	Schedule      string  `mapstructure:"schedule" yaml:"schedule"`
	Seed          int64   `mapstructure:"seed" yaml:"seed"`
	Intermediate  int     `mapstructure:"intermediate" yaml:"intermediate"`
	Workers       int     `mapstructure:"workers" yaml:"workers"`
	CheckInterval int     `mapstructure:"check_interval" yaml:"check_interval"`
	LogLevel      string  `mapstructure:"log_level" yaml:"log_level"`
	LogJSON       bool    `mapstructure:"log_json" yaml:"log_json"`
	DB            string  `mapstructure:"db" yaml:"db"`
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("samples", 100)
	v.SetDefault("sweeps", 1000)
	v.SetDefault("beta_start", 0.01)
	v.SetDefault("beta_end", 3.0)
	v.SetDefault("schedule", ScheduleLinear)
	v.SetDefault("seed", 1)
	v.SetDefault("intermediate", 0)
	v.SetDefault("workers", 0)
	v.SetDefault("check_interval", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("db", "")
}

// Init points v at cfgFile, or at ./ising-anneal.yaml and
// ~/.config/ising-anneal/config.yaml when cfgFile is empty, and enables
// environment overrides. A missing config file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("ising-anneal")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ising-anneal"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks value ranges that can be checked without a problem.
func (c Config) Validate() error {
	if c.Samples < 1 {
		return fmt.Errorf("samples must be >= 1, got %d", c.Samples)
	}
	if c.Sweeps < 0 {
		return fmt.Errorf("sweeps must be >= 0, got %d", c.Sweeps)
	}
	if c.Intermediate < 0 || c.Intermediate > c.Sweeps {
		return fmt.Errorf("intermediate must be in [0,%d], got %d", c.Sweeps, c.Intermediate)
	}
	switch c.Schedule {
	case ScheduleLinear, ScheduleGeometric:
	default:
		return fmt.Errorf("unknown schedule %q (want %s or %s)", c.Schedule, ScheduleLinear, ScheduleGeometric)
	}
	return nil
}

// BetaSchedule generates the configured schedule.
func (c Config) BetaSchedule() ([]float64, error) {
	if c.Schedule == ScheduleGeometric {
		return anneal.GeometricSchedule(c.BetaStart, c.BetaEnd, c.Sweeps)
	}
	return anneal.LinearSchedule(c.BetaStart, c.BetaEnd, c.Sweeps)
}
