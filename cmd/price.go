package cmd

import (
	"fmt"

	"github.com/bcdannyboy/optval/batch"
	"github.com/bcdannyboy/optval/models"
	"github.com/spf13/cobra"
	"github.com/xhhuango/json"
)

type priceFlags struct {
	method, kind, right   string
	direction, activation string
	spot, strike, expiry  float64
	rate, yield, vol      float64
	barrier, rebate       float64
	timeSteps, priceSteps int
	drawKind              string
	draws                 int
	seed                  uint64
}

func newPriceCmd(a *app) *cobra.Command {
	f := &priceFlags{}

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a single contract",
		Example: `  optval price --kind european --right put --spot 60 --strike 65 --expiry 0.25 --rate 0.08 --vol 0.3
  optval price --kind barrier --direction down --activation out --barrier 95 --rebate 3 --method pde`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if !c.Flags().Changed("seed") {
				f.seed = a.cfg.Pricing.Seed
			}
			job, err := f.job()
			if err != nil {
				return err
			}
			res := batch.PriceJob(a.registry, job, a.defaults())
			if err := res.Err(); err != nil {
				return err
			}
			data, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.OutOrStdout(), string(data))
			return err
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.method, "method", "m", "closed_form", "closed_form, tree, pde or monte_carlo")
	fl.StringVarP(&f.kind, "kind", "k", "european", "european, american or barrier")
	fl.StringVarP(&f.right, "right", "r", "put", "put or call")
	fl.Float64Var(&f.spot, "spot", 100, "spot price")
	fl.Float64Var(&f.strike, "strike", 100, "strike price")
	fl.Float64Var(&f.expiry, "expiry", 1, "time to expiry in years")
	fl.Float64Var(&f.rate, "rate", 0, "continuously compounded risk-free rate")
	fl.Float64Var(&f.yield, "yield", 0, "continuous dividend yield")
	fl.Float64Var(&f.vol, "vol", 0.2, "annualised volatility")
	fl.IntVar(&f.timeSteps, "time-steps", 0, "time steps (default from config)")
	fl.IntVar(&f.priceSteps, "price-steps", 0, "PDE price nodes (default from config)")
	fl.Float64Var(&f.barrier, "barrier", 0, "barrier level")
	fl.StringVar(&f.direction, "direction", "down", "barrier direction: up or down")
	fl.StringVar(&f.activation, "activation", "out", "barrier activation: in or out")
	fl.Float64Var(&f.rebate, "rebate", 0, "barrier rebate")
	fl.StringVar(&f.drawKind, "draw-kind", batch.DrawsAntithetic, "Monte Carlo draws: antithetic or stratified")
	fl.IntVar(&f.draws, "draws", 0, "Monte Carlo draw count (default from config)")
	fl.Uint64Var(&f.seed, "seed", 0, "Monte Carlo seed (default from config)")

	return cmd
}

func (f *priceFlags) job() (batch.Job, error) {
	method, err := models.ParseMethod(f.method)
	if err != nil {
		return batch.Job{}, err
	}
	kind, err := models.ParseOptionKind(f.kind)
	if err != nil {
		return batch.Job{}, err
	}
	right, err := models.ParseRight(f.right)
	if err != nil {
		return batch.Job{}, err
	}
	direction, err := models.ParseBarrierDirection(f.direction)
	if err != nil {
		return batch.Job{}, err
	}
	activation, err := models.ParseBarrierActivation(f.activation)
	if err != nil {
		return batch.Job{}, err
	}

	job := batch.Job{
		Market: models.MarketParams{
			Kind:         models.Lognormal,
			Method:       method,
			RiskFreeRate: f.rate,
			YieldRate:    f.yield,
			Volatility:   f.vol,
			TimeSteps:    f.timeSteps,
			PriceSteps:   f.priceSteps,
		},
		Option: models.OptionParams{
			Kind:       kind,
			Right:      right,
			Spot:       f.spot,
			Strike:     f.strike,
			Expiry:     f.expiry,
			Barrier:    f.barrier,
			Direction:  direction,
			Activation: activation,
			Rebate:     f.rebate,
		},
	}
	if method == models.MonteCarlo {
		job.Draws = &batch.DrawSpec{Kind: f.drawKind, Count: f.draws, Seed: f.seed}
	}
	return job, nil
}
