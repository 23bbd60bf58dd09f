package models

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultSteps is the step count callers fall back to when a request leaves
// one unset. NewMarketModel itself requires explicit positive counts.
const DefaultSteps = 100

// MarketParams is the caller-facing description of a market model.
type MarketParams struct {
	Kind         ModelKind `json:"model"`
	Method       Method    `json:"method"`
	RiskFreeRate float64   `json:"risk_free_rate"`
	YieldRate    float64   `json:"yield_rate"`
	Volatility   float64   `json:"volatility"`
	TimeSteps    int       `json:"time_steps,omitempty"`
	PriceSteps   int       `json:"price_steps,omitempty"`

	// Draws holds standard normal variates indexed [draw, step].
	Draws mat.Matrix `json:"-"`
}

// MarketModel is a validated, immutable market description.
type MarketModel struct {
	kind       ModelKind
	method     Method
	rate       float64
	yield      float64
	sigma      float64
	timeSteps  int
	priceSteps int
	draws      *mat.Dense
}

// NewMarketModel validates p and returns a model that owns a private copy of
// the draw matrix.
func NewMarketModel(p MarketParams) (*MarketModel, error) {
	const fn = "NewMarketModel"

	if !p.Kind.Valid() {
		return nil, invalid(fn, "model kind", p.Kind, "unsupported")
	}
	if !p.Method.Valid() {
		return nil, invalid(fn, "method", p.Method, "unsupported")
	}
	if !finite(p.RiskFreeRate) {
		return nil, invalid(fn, "risk-free rate", p.RiskFreeRate, "must be finite")
	}
	if !finite(p.YieldRate) {
		return nil, invalid(fn, "yield rate", p.YieldRate, "must be finite")
	}
	if !finite(p.Volatility) || p.Volatility < 0 {
		return nil, invalid(fn, "volatility", p.Volatility, "must be finite and non-negative")
	}

	if p.TimeSteps <= 0 {
		return nil, invalid(fn, "time steps", p.TimeSteps, "must be positive")
	}
	if p.PriceSteps <= 0 {
		return nil, invalid(fn, "price steps", p.PriceSteps, "must be positive")
	}

	var draws *mat.Dense
	if p.Draws != nil {
		r, c := p.Draws.Dims()
		if r == 0 || c == 0 {
			return nil, invalid(fn, "draws", [2]int{r, c}, "must be non-empty")
		}
		draws = mat.DenseCopyOf(p.Draws)
	}

	return &MarketModel{
		kind:       p.Kind,
		method:     p.Method,
		rate:       p.RiskFreeRate,
		yield:      p.YieldRate,
		sigma:      p.Volatility,
		timeSteps:  p.TimeSteps,
		priceSteps: p.PriceSteps,
		draws:      draws,
	}, nil
}

func (m *MarketModel) Kind() ModelKind       { return m.kind }
func (m *MarketModel) Method() Method        { return m.method }
func (m *MarketModel) RiskFreeRate() float64 { return m.rate }
func (m *MarketModel) YieldRate() float64    { return m.yield }
func (m *MarketModel) Volatility() float64   { return m.sigma }
func (m *MarketModel) TimeSteps() int        { return m.timeSteps }
func (m *MarketModel) PriceSteps() int       { return m.priceSteps }

// Draws returns a read-only view of the draw matrix, or nil if none was set.
func (m *MarketModel) Draws() mat.Matrix {
	if m.draws == nil {
		return nil
	}
	return m.draws
}

// Params returns parameters that rebuild an equivalent model.
func (m *MarketModel) Params() MarketParams {
	p := MarketParams{
		Kind:         m.kind,
		Method:       m.method,
		RiskFreeRate: m.rate,
		YieldRate:    m.yield,
		Volatility:   m.sigma,
		TimeSteps:    m.timeSteps,
		PriceSteps:   m.priceSteps,
	}
	if m.draws != nil {
		p.Draws = m.draws
	}
	return p
}

// WithMethod returns a copy of m priced with method.
func (m *MarketModel) WithMethod(method Method) (*MarketModel, error) {
	p := m.Params()
	p.Method = method
	return NewMarketModel(p)
}

// WithSteps returns a copy of m with new time and price step counts.
func (m *MarketModel) WithSteps(timeSteps, priceSteps int) (*MarketModel, error) {
	p := m.Params()
	p.TimeSteps, p.PriceSteps = timeSteps, priceSteps
	return NewMarketModel(p)
}

// WithDraws returns a copy of m holding draws.
func (m *MarketModel) WithDraws(draws mat.Matrix) (*MarketModel, error) {
	p := m.Params()
	p.Draws = draws
	return NewMarketModel(p)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
