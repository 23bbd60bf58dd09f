package pricing

import (
	"math"
	"testing"

	"github.com/bcdannyboy/optval/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrankNicolsonMatchesClosedForm(t *testing.T) {
	for _, c := range vanillaCases {
		t.Run(c.name, func(t *testing.T) {
			got, err := CrankNicolson(c.model(t, models.PDE, 500, 501), c.option(t, models.European))
			require.NoError(t, err)
			assert.Less(t, relErr(got, c.closedFormPx), 1e-3, "pde = %v, closed form = %v", got, c.closedFormPx)
		})
	}
}

func TestCrankNicolsonAmericanMatchesTree(t *testing.T) {
	for _, c := range vanillaCases {
		t.Run(c.name, func(t *testing.T) {
			pde, err := CrankNicolson(c.model(t, models.PDE, 1000, 501), c.option(t, models.American))
			require.NoError(t, err)
			tree, err := BinomialTree(c.model(t, models.Tree, 2500, 0), c.option(t, models.American))
			require.NoError(t, err)

			assert.Less(t, relErr(pde, tree), 1e-3, "pde = %v, tree = %v", pde, tree)
		})
	}
}

func TestCrankNicolsonEvenNodeCount(t *testing.T) {
	c := vanillaCases[1]
	even, err := CrankNicolson(c.model(t, models.PDE, 200, 200), c.option(t, models.European))
	require.NoError(t, err)
	odd, err := CrankNicolson(c.model(t, models.PDE, 200, 201), c.option(t, models.European))
	require.NoError(t, err)
	assert.Equal(t, odd, even)
}

func TestCrankNicolsonBarrier(t *testing.T) {
	m := mustModel(t, models.MarketParams{RiskFreeRate: 0.08, YieldRate: 0.04, Volatility: 0.25, TimeSteps: 500, PriceSteps: 501})
	cf := barrierMarket(t, models.ClosedForm)

	for _, c := range barrierCases {
		t.Run(c.name(), func(t *testing.T) {
			o := barrierOption(t, c, 3)
			want, err := BarrierClosedForm(cf, o)
			require.NoError(t, err)
			got, err := CrankNicolson(m, o)
			require.NoError(t, err)
			assert.Less(t, relErr(got, want), 2e-3, "pde = %v, closed form = %v", got, want)
		})
	}
}

func TestCrankNicolsonBarrierInOutParity(t *testing.T) {
	m := mustModel(t, models.MarketParams{RiskFreeRate: 0.08, YieldRate: 0.04, Volatility: 0.25, TimeSteps: 500, PriceSteps: 501})
	c := barrierCase{models.Put, models.Up, models.In, 100, 105, 0}

	in, err := CrankNicolson(m, barrierOption(t, c, 0))
	require.NoError(t, err)
	c.activation = models.Out
	out, err := CrankNicolson(m, barrierOption(t, c, 0))
	require.NoError(t, err)

	vanilla := calculateBSM(100, 100, 0.5, 0.08, 0.04, 0.25, false)
	assert.Less(t, relErr(in+out, vanilla), 1e-3)
}

func TestCrankNicolsonBarrierBreached(t *testing.T) {
	m := mustModel(t, models.MarketParams{RiskFreeRate: 0.08, YieldRate: 0.04, Volatility: 0.25, TimeSteps: 500, PriceSteps: 501})

	got, err := CrankNicolson(m, barrierOption(t, barrierCase{models.Put, models.Up, models.Out, 100, 100, 0}, 2))
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = CrankNicolson(m, barrierOption(t, barrierCase{models.Call, models.Down, models.In, 100, 100, 0}, 2))
	require.NoError(t, err)
	assert.Less(t, relErr(got, vanillaCall100), 1e-3)
}

func TestCrankNicolsonDegenerate(t *testing.T) {
	m := mustModel(t, models.MarketParams{RiskFreeRate: 0.05, TimeSteps: 10, PriceSteps: 11})
	o := mustOption(t, models.OptionParams{Right: models.Put, Spot: 100, Strike: 100, Expiry: 1})

	_, err := CrankNicolson(m, o)
	assert.ErrorIs(t, err, models.ErrNumerical)

	b := mustOption(t, models.OptionParams{Kind: models.Barrier, Right: models.Put, Spot: 100, Strike: 100, Expiry: 1, Barrier: 110, Direction: models.Up})
	_, err = CrankNicolson(m, b)
	assert.ErrorIs(t, err, models.ErrNumerical)
}

func TestGridAlignsBarrier(t *testing.T) {
	m := mustModel(t, models.MarketParams{Volatility: 0.25, TimeSteps: 500, PriceSteps: 501})
	g := newGrid(m, 100, 0.5)
	g.align(95)

	k, ok := g.barrierOffset(95)
	require.True(t, ok)
	assert.Equal(t, 4, k)
	assert.InDelta(t, 95, g.level(g.center()-k), 1e-9)

	knocked := g.knockedNodes(models.Down, 95)
	assert.True(t, knocked[g.center()-k])
	assert.False(t, knocked[g.center()-k+1])
	assert.True(t, knocked[0])
	assert.False(t, knocked[len(knocked)-1])
	assert.False(t, math.IsNaN(g.dx))
}
