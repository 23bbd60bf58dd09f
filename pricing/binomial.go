package pricing

import (
	"math"

	"github.com/bcdannyboy/optval/models"
)

// BinomialTree prices European and American options on a Cox-Ross-Rubinstein
// lattice with the model's time steps. O(n^2) time, O(n) space.
func BinomialTree(m *models.MarketModel, o *models.OptionContract) (float64, error) {
	const fn = "BinomialTree"
	if err := checkInputs(fn, m, o, models.European, models.American); err != nil {
		return 0, err
	}

	n := m.TimeSteps()
	american := o.Kind() == models.American

	dt := o.Expiry() / float64(n)
	u := math.Exp(m.Volatility() * math.Sqrt(dt))
	d := 1 / u
	disc := math.Exp(-m.RiskFreeRate() * dt)
	p := (math.Exp((m.RiskFreeRate()-m.YieldRate())*dt) - d) / (u - d)

	// Leaves, lowest state first.
	spots := make([]float64, n+1)
	values := make([]float64, n+1)
	x := o.Spot() * math.Pow(d, float64(n))
	for i := range spots {
		spots[i] = x
		values[i] = o.Intrinsic(x)
		x *= u * u
	}

	for step := 0; step < n; step++ {
		for i := 0; i < n-step; i++ {
			spots[i] *= u
			values[i] = disc * (p*values[i+1] + (1-p)*values[i])
			if american {
				values[i] = math.Max(values[i], o.Intrinsic(spots[i]))
			}
		}
	}

	return result(fn, values[0])
}
