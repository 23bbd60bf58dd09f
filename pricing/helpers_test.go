package pricing

import (
	"math"
	"testing"

	"github.com/bcdannyboy/optval/models"
	"github.com/stretchr/testify/require"
)

// vanillaCase is one European parameter set used across methods.
type vanillaCase struct {
	name                 string
	right                models.Right
	spot, strike         float64
	rate, yield, sigma   float64
	expiry, closedFormPx float64
}

var vanillaCases = []vanillaCase{
	{"put otm short", models.Put, 60, 65, 0.08, 0.01, 0.2, 0.25, 4.861222158991282},
	{"put itm long", models.Put, 100, 120, 0.08, 0.01, 0.3, 1, 19.249899752242342},
	{"put deep otm", models.Put, 100, 80, 0.08, 0.02, 0.33, 2, 5.002774876438307},
	{"call otm short", models.Call, 60, 65, 0.08, 0.01, 0.2, 0.25, 0.9984957378998072},
	{"call otm long", models.Call, 100, 120, 0.08, 0.01, 0.3, 1, 7.480921560762859},
	{"call deep itm", models.Call, 100, 80, 0.08, 0.02, 0.33, 2, 32.91021567437371},
}

func (c vanillaCase) model(t *testing.T, method models.Method, timeSteps, priceSteps int) *models.MarketModel {
	t.Helper()
	return mustModel(t, models.MarketParams{
		Method:       method,
		RiskFreeRate: c.rate,
		YieldRate:    c.yield,
		Volatility:   c.sigma,
		TimeSteps:    timeSteps,
		PriceSteps:   priceSteps,
	})
}

func (c vanillaCase) option(t *testing.T, kind models.OptionKind) *models.OptionContract {
	t.Helper()
	return mustOption(t, models.OptionParams{Kind: kind, Right: c.right, Spot: c.spot, Strike: c.strike, Expiry: c.expiry})
}

// mustModel builds a model, filling step counts the test leaves at zero.
func mustModel(t *testing.T, p models.MarketParams) *models.MarketModel {
	t.Helper()
	if p.TimeSteps == 0 {
		p.TimeSteps = models.DefaultSteps
	}
	if p.PriceSteps == 0 {
		p.PriceSteps = models.DefaultSteps
	}
	m, err := models.NewMarketModel(p)
	require.NoError(t, err)
	return m
}

func mustOption(t *testing.T, p models.OptionParams) *models.OptionContract {
	t.Helper()
	o, err := models.NewOptionContract(p)
	require.NoError(t, err)
	return o
}

func relErr(got, want float64) float64 {
	return math.Abs(got-want) / math.Abs(want)
}
