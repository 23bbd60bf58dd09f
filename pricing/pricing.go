// Package pricing values European, American and single-barrier options on a
// lognormal underlying with closed-form, binomial, Crank-Nicolson and Monte
// Carlo methods. Every pricer is a pure function of its model and contract;
// Monte Carlo output is fully determined by the draw matrix carried by the
// model.
package pricing

import (
	"math"

	"github.com/bcdannyboy/optval/models"
	"gonum.org/v1/gonum/stat/distuv"
)

// PriceFunc values a contract under a market model.
type PriceFunc func(*models.MarketModel, *models.OptionContract) (float64, error)

func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

func invalid(fn, field string, value any, reason string) error {
	return &models.ValidationError{Func: fn, Field: field, Value: value, Reason: reason}
}

// checkInputs rejects nil arguments and contracts of the wrong kind.
func checkInputs(fn string, m *models.MarketModel, o *models.OptionContract, kinds ...models.OptionKind) error {
	if m == nil {
		return invalid(fn, "model", nil, "must not be nil")
	}
	if o == nil {
		return invalid(fn, "option", nil, "must not be nil")
	}
	if m.Kind() != models.Lognormal {
		return invalid(fn, "model kind", m.Kind(), "unsupported")
	}
	for _, k := range kinds {
		if o.Kind() == k {
			return nil
		}
	}
	return invalid(fn, "option kind", o.Kind(), "not handled by this pricer")
}

// result turns a non-finite price into a *models.NumericalError.
func result(fn string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &models.NumericalError{Func: fn, Value: v}
	}
	return v, nil
}
