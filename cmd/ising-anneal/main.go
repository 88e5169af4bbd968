// Package main is the entry point for the ising-anneal CLI, which samples
// Ising problems described in YAML or JSON files with simulated annealing.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/n0madic/go-ising-anneal/internal/config"
	"github.com/n0madic/go-ising-anneal/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// configErr holds a config file error found during initialization so
	// that it is reported through cobra instead of being dropped.
	configErr error
	logger    = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "ising-anneal",
	Short: "Simulated annealing sampler for Ising problems",
	Long: `ising-anneal draws low-energy samples from an Ising model

  E(s) = sum_i h_i s_i + sum_(u,v) J_uv s_u s_v,   s_i in {-1,+1}

with single-spin-flip Metropolis simulated annealing. Problems are read
from YAML or JSON files; results can be printed and stored in SQLite.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		l, err := logging.New(logging.Config{
			Level:   viper.GetString("log_level"),
			JSON:    viper.GetBool("log_json"),
			Output:  cmd.ErrOrStderr(),
			Service: "ising-anneal",
		})
		if err != nil {
			return err
		}
		logger = l
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "path", used)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./ising-anneal.yaml or ~/.config/ising-anneal/config.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.Bool("log-json", false, "log as JSON instead of text")
	pf.String("db", "", "SQLite run store path (empty disables storing)")

	mustBind("log_level", pf.Lookup("log-level"))
	mustBind("log_json", pf.Lookup("log-json"))
	mustBind("db", pf.Lookup("db"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	configErr = config.Init(viper.GetViper(), cfgFile)
}

func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", key, err))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
