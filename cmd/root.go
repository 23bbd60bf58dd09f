// Package cmd wires the optval command line.
package cmd

import (
	"os"

	"github.com/bcdannyboy/optval/batch"
	"github.com/bcdannyboy/optval/config"
	"github.com/bcdannyboy/optval/logging"
	"github.com/bcdannyboy/optval/pricing"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
	registry   *pricing.Registry
}

func (a *app) defaults() batch.Defaults {
	return batch.Defaults{
		TimeSteps:  a.cfg.Pricing.TimeSteps,
		PriceSteps: a.cfg.Pricing.PriceSteps,
		Draws:      a.cfg.Pricing.Draws,
		Seed:       a.cfg.Pricing.Seed,
	}
}

// NewRootCmd builds the optval command tree.
func NewRootCmd() *cobra.Command {
	a := &app{registry: pricing.DefaultRegistry()}

	root := &cobra.Command{
		Use:           "optval",
		Short:         "Option valuation engine",
		Long:          `optval prices European, American and barrier options on a lognormal model by closed form, binomial tree, Crank-Nicolson PDE or Monte Carlo.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(c *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		Run: func(c *cobra.Command, args []string) {
			_ = c.Help()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (yaml, json or toml)")

	root.AddCommand(
		newPriceCmd(a),
		newBatchCmd(a),
		newServeCmd(a),
		newMethodsCmd(a),
	)
	return root
}

func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
