package pricing

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/optval/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MonteCarlo prices from the standard normal draws carried by the model,
// indexed [draw, step]. Workers bounds the per-draw fan-out; zero means
// GOMAXPROCS. Results do not depend on Workers.
type MonteCarlo struct {
	Workers int
}

// MonteCarloEuropean prices with the default worker count.
func MonteCarloEuropean(m *models.MarketModel, o *models.OptionContract) (float64, error) {
	return MonteCarlo{}.European(m, o)
}

// MonteCarloBarrier prices with the default worker count.
func MonteCarloBarrier(m *models.MarketModel, o *models.OptionContract) (float64, error) {
	return MonteCarlo{}.Barrier(m, o)
}

// MonteCarloAmerican prices with the default worker count.
func MonteCarloAmerican(m *models.MarketModel, o *models.OptionContract) (float64, error) {
	return MonteCarlo{}.American(m, o)
}

// European jumps each draw straight to expiry using the first draw column.
func (mc MonteCarlo) European(m *models.MarketModel, o *models.OptionContract) (float64, error) {
	const fn = "MonteCarloEuropean"
	if err := checkInputs(fn, m, o, models.European); err != nil {
		return 0, err
	}
	draws, err := requireDraws(fn, m, 0)
	if err != nil {
		return 0, err
	}

	z := mat.Col(nil, 0, draws)
	S, T := o.Spot(), o.Expiry()
	sigma := m.Volatility()
	drift := (m.RiskFreeRate() - m.YieldRate() - 0.5*sigma*sigma) * T
	vol := sigma * math.Sqrt(T)

	payoffs := make([]float64, len(z))
	parallelFor(mc.Workers, len(z), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			payoffs[i] = o.Intrinsic(S * math.Exp(drift+vol*z[i]))
		}
	})

	price := math.Exp(-m.RiskFreeRate()*T) * floats.Sum(payoffs) / float64(len(z))
	return result(fn, price)
}

// Barrier walks every draw through the model's time steps, monitoring the
// barrier at each step. Knock-out rebates are paid at the step the barrier is
// hit; knock-in rebates at expiry.
func (mc MonteCarlo) Barrier(m *models.MarketModel, o *models.OptionContract) (float64, error) {
	const fn = "MonteCarloBarrier"
	if err := checkInputs(fn, m, o, models.Barrier); err != nil {
		return 0, err
	}
	draws, err := requireDraws(fn, m, m.TimeSteps())
	if err != nil {
		return 0, err
	}

	nDraws, nSteps := draws.Dims()
	S, T, R := o.Spot(), o.Expiry(), o.Rebate()
	r, sigma := m.RiskFreeRate(), m.Volatility()
	dt := T / float64(nSteps)
	drift := (r - m.YieldRate() - 0.5*sigma*sigma) * dt
	vol := sigma * math.Sqrt(dt)
	disc := math.Exp(-r * T)
	out := o.Activation() == models.Out

	values := make([]float64, nDraws)
	parallelFor(mc.Workers, nDraws, func(lo, hi int) {
		row := make([]float64, nSteps)
		for i := lo; i < hi; i++ {
			mat.Row(row, i, draws)

			x, hit := S, -1
			if o.Breached(x) {
				hit = 0
			}
			for t, z := range row {
				x *= math.Exp(drift + vol*z)
				if hit < 0 && o.Breached(x) {
					hit = t + 1
				}
			}

			switch {
			case out && hit >= 0:
				values[i] = R * math.Exp(-r*float64(hit)*dt)
			case !out && hit < 0:
				values[i] = R * disc
			default:
				values[i] = o.Intrinsic(x) * disc
			}
		}
	})

	return result(fn, floats.Sum(values)/float64(nDraws))
}

// requireDraws returns the model's draws, checking the column count when
// cols is positive.
func requireDraws(fn string, m *models.MarketModel, cols int) (mat.Matrix, error) {
	draws := m.Draws()
	if draws == nil {
		return nil, invalid(fn, "draws", nil, "required for monte carlo pricing")
	}
	r, c := draws.Dims()
	if cols > 0 && c != cols {
		return nil, invalid(fn, "draws", fmt.Sprintf("%dx%d", r, c), fmt.Sprintf("need %d columns to match time steps", cols))
	}
	return draws, nil
}
