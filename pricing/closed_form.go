package pricing

import (
	"math"

	"github.com/bcdannyboy/optval/models"
)

// EuropeanClosedForm prices a European option with the Black-Scholes-Merton
// formula including a continuous yield.
func EuropeanClosedForm(m *models.MarketModel, o *models.OptionContract) (float64, error) {
	const fn = "EuropeanClosedForm"
	if err := checkInputs(fn, m, o, models.European); err != nil {
		return 0, err
	}

	price := calculateBSM(o.Spot(), o.Strike(), o.Expiry(), m.RiskFreeRate(), m.YieldRate(), m.Volatility(), o.IsCall())
	return result(fn, price)
}

func calculateBSM(S, K, T, r, q, sigma float64, isCall bool) float64 {
	st := sigma * math.Sqrt(T)
	d1 := (math.Log(S/K) + (r-q+0.5*sigma*sigma)*T) / st
	d2 := d1 - st

	if isCall {
		return S*math.Exp(-q*T)*normCDF(d1) - K*math.Exp(-r*T)*normCDF(d2)
	}
	return K*math.Exp(-r*T)*normCDF(-d2) - S*math.Exp(-q*T)*normCDF(-d1)
}
