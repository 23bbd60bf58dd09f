package pricing

import (
	"math"
	"testing"

	"github.com/bcdannyboy/optval/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEuropeanClosedFormReference(t *testing.T) {
	m := mustModel(t, models.MarketParams{RiskFreeRate: 0.08, Volatility: 0.3})

	call, err := EuropeanClosedForm(m, mustOption(t, models.OptionParams{Right: models.Call, Spot: 60, Strike: 65, Expiry: 0.25}))
	require.NoError(t, err)
	assert.Less(t, relErr(call, 2.1333684449162043), 1e-4, "call = %v", call)

	put, err := EuropeanClosedForm(m, mustOption(t, models.OptionParams{Right: models.Put, Spot: 60, Strike: 65, Expiry: 0.25}))
	require.NoError(t, err)

	// Put-call parity with no yield.
	parity := call - 60 + 65*math.Exp(-0.08*0.25)
	assert.Less(t, relErr(put, parity), 1e-4, "put = %v, parity = %v", put, parity)
	assert.InDelta(t, 5.846282209855296, put, 1e-9)
}

func TestEuropeanClosedFormCases(t *testing.T) {
	for _, c := range vanillaCases {
		t.Run(c.name, func(t *testing.T) {
			got, err := EuropeanClosedForm(c.model(t, models.ClosedForm, 0, 0), c.option(t, models.European))
			require.NoError(t, err)
			assert.InDelta(t, c.closedFormPx, got, 1e-9)
		})
	}
}

func TestEuropeanClosedFormParityWithYield(t *testing.T) {
	for _, c := range vanillaCases {
		m := c.model(t, models.ClosedForm, 0, 0)
		p := models.OptionParams{Spot: c.spot, Strike: c.strike, Expiry: c.expiry}

		p.Right = models.Call
		call, err := EuropeanClosedForm(m, mustOption(t, p))
		require.NoError(t, err)
		p.Right = models.Put
		put, err := EuropeanClosedForm(m, mustOption(t, p))
		require.NoError(t, err)

		forward := c.spot*math.Exp(-c.yield*c.expiry) - c.strike*math.Exp(-c.rate*c.expiry)
		assert.InDelta(t, forward, call-put, 1e-9, c.name)
	}
}

func TestEuropeanClosedFormRejectsOtherKinds(t *testing.T) {
	m := mustModel(t, models.MarketParams{Volatility: 0.2})
	o := mustOption(t, models.OptionParams{Kind: models.American, Spot: 100, Strike: 100, Expiry: 1})

	_, err := EuropeanClosedForm(m, o)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "EuropeanClosedForm", verr.Func)
	assert.Equal(t, "option kind", verr.Field)

	_, err = EuropeanClosedForm(nil, o)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestEuropeanClosedFormDegenerateInputs(t *testing.T) {
	// At the money with no volatility the d1 term is 0/0.
	m := mustModel(t, models.MarketParams{})
	o := mustOption(t, models.OptionParams{Right: models.Call, Spot: 100, Strike: 100, Expiry: 1})

	_, err := EuropeanClosedForm(m, o)
	assert.ErrorIs(t, err, models.ErrNumerical)

	m = mustModel(t, models.MarketParams{Volatility: 0.2})
	o = mustOption(t, models.OptionParams{Right: models.Put, Spot: 100, Strike: 100})
	_, err = EuropeanClosedForm(m, o)
	assert.ErrorIs(t, err, models.ErrNumerical)
}
