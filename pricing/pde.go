package pricing

import (
	"math"

	"github.com/bcdannyboy/optval/models"
	"github.com/bcdannyboy/optval/numerics"
	"gonum.org/v1/gonum/mat"
)

// CrankNicolson prices European, American and barrier options on a uniform
// log-price grid centred on spot. Boundary nodes keep their terminal value.
// Barrier contracts use a grid whose spacing puts the barrier on a node.
func CrankNicolson(m *models.MarketModel, o *models.OptionContract) (float64, error) {
	const fn = "CrankNicolson"
	if err := checkInputs(fn, m, o, models.European, models.American, models.Barrier); err != nil {
		return 0, err
	}

	g := newGrid(m, o.Spot(), o.Expiry())
	payoff := o.Intrinsic

	if o.Kind() != models.Barrier {
		var exercise func(float64) float64
		if o.Kind() == models.American {
			exercise = payoff
		}
		v, err := g.roll(payoff, nil, 0, exercise)
		if err != nil {
			return 0, err
		}
		return result(fn, v)
	}

	return barrierPDE(fn, g, o, payoff)
}

func barrierPDE(fn string, g *grid, o *models.OptionContract, payoff func(float64) float64) (float64, error) {
	H, R := o.Barrier(), o.Rebate()

	if o.Breached(o.Spot()) {
		if o.Activation() == models.Out {
			return result(fn, R)
		}
		v, err := g.roll(payoff, nil, 0, nil)
		if err != nil {
			return 0, err
		}
		return result(fn, v)
	}

	g.align(H)
	knocked := g.knockedNodes(o.Direction(), H)

	if o.Activation() == models.Out {
		v, err := g.roll(payoff, knocked, R, nil)
		if err != nil {
			return 0, err
		}
		return result(fn, v)
	}

	// In = vanilla - out(no rebate) + rebate paid at expiry on survival.
	vanilla, err := g.roll(payoff, nil, 0, nil)
	if err != nil {
		return 0, err
	}
	out, err := g.roll(payoff, knocked, 0, nil)
	if err != nil {
		return 0, err
	}
	price := vanilla - out
	if R > 0 {
		noTouch, err := g.roll(func(float64) float64 { return 1 }, knocked, 0, nil)
		if err != nil {
			return 0, err
		}
		price += R * noTouch
	}
	return result(fn, price)
}

type grid struct {
	s0, r, b, sigma float64
	steps           int
	nodes           int
	dt, dx          float64
}

func newGrid(m *models.MarketModel, spot, expiry float64) *grid {
	nodes := m.PriceSteps()
	if nodes%2 == 0 {
		nodes++
	}
	dt := expiry / float64(m.TimeSteps())
	return &grid{
		s0:    spot,
		r:     m.RiskFreeRate(),
		b:     m.RiskFreeRate() - m.YieldRate(),
		sigma: m.Volatility(),
		steps: m.TimeSteps(),
		nodes: nodes,
		dt:    dt,
		dx:    m.Volatility() * math.Sqrt(3*dt),
	}
}

// barrierOffset is the number of dx steps between spot and the barrier.
func (g *grid) barrierOffset(h float64) (int, bool) {
	k := math.Max(1, math.Round(math.Abs(math.Log(g.s0/h))/g.dx))
	if g.dx <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return 0, false
	}
	return int(k), true
}

// align stretches dx so that the barrier sits exactly on a node.
func (g *grid) align(h float64) {
	if k, ok := g.barrierOffset(h); ok {
		g.dx = math.Abs(math.Log(g.s0/h)) / float64(k)
	}
}

func (g *grid) center() int { return g.nodes / 2 }

func (g *grid) level(i int) float64 {
	return g.s0 * math.Exp(g.dx*float64(i-g.center()))
}

// knockedNodes marks nodes on or beyond the barrier. Call after align.
// A degenerate grid knocks nothing so the roll surfaces the failure.
func (g *grid) knockedNodes(dir models.BarrierDirection, h float64) []bool {
	knocked := make([]bool, g.nodes)
	k, ok := g.barrierOffset(h)
	if !ok {
		return knocked
	}
	for i := range knocked {
		off := i - g.center()
		if dir == models.Up {
			knocked[i] = off >= k
		} else {
			knocked[i] = off <= -k
		}
	}
	return knocked
}

// roll steps terminal values back to today and returns the centre node.
// Knocked nodes are pinned to knockValue; exercise, when set, floors
// interior nodes after every step.
func (g *grid) roll(terminal func(float64) float64, knocked []bool, knockValue float64, exercise func(float64) float64) (float64, error) {
	n := g.nodes
	s2, dx2 := g.sigma*g.sigma, g.dx*g.dx
	m1 := (g.b - s2/2) / (4 * g.dx)
	m2 := s2 / (4 * dx2)
	m3 := 1 / g.dt
	m4 := (s2/dx2 + g.r) / 2

	fixed := func(i int) bool {
		return i == 0 || i == n-1 || (knocked != nil && knocked[i])
	}

	// Implicit bands for the Thomas solver, explicit bands for gonum.
	la, lb, lc := make([]float64, n), make([]float64, n), make([]float64, n)
	var edl, ed, edu []float64
	if n > 1 {
		edl, edu = make([]float64, n-1), make([]float64, n-1)
	}
	ed = make([]float64, n)
	for i := 0; i < n; i++ {
		if fixed(i) {
			lb[i], ed[i] = 1, 1
			continue
		}
		la[i], lb[i], lc[i] = -m1+m2, -m3-m4, m1+m2
		edl[i-1], ed[i], edu[i] = m1-m2, -m3+m4, -m1-m2
	}
	explicit := mat.NewTridiag(n, edl, ed, edu)

	levels := make([]float64, n)
	f := mat.NewVecDense(n, nil)
	for i := range levels {
		levels[i] = g.level(i)
		if knocked != nil && knocked[i] {
			f.SetVec(i, knockValue)
		} else {
			f.SetVec(i, terminal(levels[i]))
		}
	}

	rhs := mat.NewVecDense(n, nil)
	for step := 0; step < g.steps; step++ {
		explicit.MulVecTo(rhs, false, f)
		next, err := numerics.Solve(la, lb, lc, rhs.RawVector().Data)
		if err != nil {
			return 0, err
		}
		if exercise != nil {
			for i := 1; i < n-1; i++ {
				next[i] = math.Max(exercise(levels[i]), next[i])
			}
		}
		f = mat.NewVecDense(n, next)
	}
	return f.AtVec(g.center()), nil
}
