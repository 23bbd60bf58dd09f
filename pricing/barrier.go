package pricing

import (
	"math"

	"github.com/bcdannyboy/optval/models"
)

// BarrierClosedForm prices a single-barrier option with the Reiner-Rubinstein
// formulas. Knock-out rebates are paid when the barrier is hit, knock-in
// rebates at expiry if the barrier was never reached.
func BarrierClosedForm(m *models.MarketModel, o *models.OptionContract) (float64, error) {
	const fn = "BarrierClosedForm"
	if err := checkInputs(fn, m, o, models.Barrier); err != nil {
		return 0, err
	}

	S, K, H, R, T := o.Spot(), o.Strike(), o.Barrier(), o.Rebate(), o.Expiry()
	r, q, sigma := m.RiskFreeRate(), m.YieldRate(), m.Volatility()

	if o.Breached(S) {
		if o.Activation() == models.Out {
			return result(fn, R)
		}
		vanilla, err := o.WithKind(models.European)
		if err != nil {
			return 0, err
		}
		return EuropeanClosedForm(m, vanilla)
	}

	phi := -1.0
	if o.IsCall() {
		phi = 1
	}
	eta := 1.0
	if o.Direction() == models.Up {
		eta = -1
	}

	b := r - q
	s2 := sigma * sigma
	st := sigma * math.Sqrt(T)
	mu := (b - s2/2) / s2
	lambda := math.Sqrt(mu*mu + 2*r/s2)

	x1 := math.Log(S/K)/st + (1+mu)*st
	x2 := math.Log(S/H)/st + (1+mu)*st
	y1 := math.Log(H*H/(S*K))/st + (1+mu)*st
	y2 := math.Log(H/S)/st + (1+mu)*st
	z := math.Log(H/S)/st + lambda*st

	carry := S * math.Exp((b-r)*T)
	pv := K * math.Exp(-r*T)
	hs := H / S

	A := phi*carry*normCDF(phi*x1) - phi*pv*normCDF(phi*x1-phi*st)
	B := phi*carry*normCDF(phi*x2) - phi*pv*normCDF(phi*x2-phi*st)
	C := phi*carry*math.Pow(hs, 2*(mu+1))*normCDF(eta*y1) - phi*pv*math.Pow(hs, 2*mu)*normCDF(eta*y1-eta*st)
	D := phi*carry*math.Pow(hs, 2*(mu+1))*normCDF(eta*y2) - phi*pv*math.Pow(hs, 2*mu)*normCDF(eta*y2-eta*st)
	E := R * math.Exp(-r*T) * (normCDF(eta*x2-eta*st) - math.Pow(hs, 2*mu)*normCDF(eta*y2-eta*st))
	F := R * (math.Pow(hs, mu+lambda)*normCDF(eta*z) + math.Pow(hs, mu-lambda)*normCDF(eta*z-2*eta*lambda*st))

	above := K >= H
	pick := func(high, low float64) float64 {
		if above {
			return high
		}
		return low
	}

	var price float64
	call, up := o.IsCall(), o.Direction() == models.Up
	if o.Activation() == models.In {
		switch {
		case call && !up:
			price = pick(C+E, A-B+D+E)
		case call && up:
			price = pick(A+E, B-C+D+E)
		case !call && !up:
			price = pick(B-C+D+E, A+E)
		default:
			price = pick(A-B+D+E, C+E)
		}
	} else {
		switch {
		case call && !up:
			price = pick(A-C+F, B-D+F)
		case call && up:
			price = pick(F, A-B+C-D+F)
		case !call && !up:
			price = pick(A-B+C-D+F, F)
		default:
			price = pick(B-D+F, A-C+F)
		}
	}

	return result(fn, price)
}
