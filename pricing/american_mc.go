package pricing

import (
	"math"
	"sort"

	"github.com/bcdannyboy/optval/models"
	"gonum.org/v1/gonum/floats"
)

// tieTolerance separates equal underlying levels in the lookup table and
// breaks exercise-versus-hold ties in favour of exercise.
const tieTolerance = 1e-8

type lookupEntry struct {
	spot      float64 // underlying one step ahead
	value     float64 // option value one step ahead
	z         float64 // innovation realised over the step
	exercised bool
}

// lookupTable is sorted so that the payoff grows with the index: descending
// spot for puts, ascending for calls.
type lookupTable struct {
	entries   []lookupEntry
	isCall    bool
	intrinsic func(float64) float64
	worthless int // last zero-valued index before the first exercised entry, or -1
	exercised int // first exercised index, or len(entries)
}

func newLookupTable(entries []lookupEntry, isCall bool, intrinsic func(float64) float64) *lookupTable {
	sort.SliceStable(entries, func(a, b int) bool {
		if isCall {
			return entries[a].spot < entries[b].spot
		}
		return entries[a].spot > entries[b].spot
	})

	t := &lookupTable{entries: entries, isCall: isCall, intrinsic: intrinsic, worthless: -1, exercised: len(entries)}
	for i, e := range entries {
		if e.value == 0 {
			t.worthless = i
		}
		if e.exercised {
			t.exercised = i
			break
		}
	}
	return t
}

func (t *lookupTable) key(s float64) float64 {
	if t.isCall {
		return s
	}
	return -s
}

// continuation estimates the value one step ahead of level x, or reports
// false when x falls in the worthless region.
func (t *lookupTable) continuation(x float64) (float64, bool) {
	target := t.key(x) + tieTolerance
	j := sort.Search(len(t.entries), func(i int) bool {
		return t.key(t.entries[i].spot) > target
	})

	switch {
	case j <= t.worthless:
		return 0, false
	case j >= t.exercised:
		return t.intrinsic(x), true
	case j == 0:
		return t.entries[0].value, true
	}

	lo, hi := t.entries[j-1], t.entries[j]
	if math.Abs(lo.spot-x) <= tieTolerance {
		return lo.value, true
	}
	return lo.value + (x-lo.spot)*(hi.value-lo.value)/(hi.spot-lo.spot), true
}

// American prices an American option by backward induction over the draw
// paths. The holding value of each draw is estimated by regrowing its current
// level one step with every draw's innovation and reading the resulting
// levels off a table of next-step values, instead of regressing on a basis.
// The regrown step uses the same risk-neutral drift as the paths themselves,
// x = cur * exp((r - q - σ²/2)dt + σ√dt z), so table lookups compare levels
// on a consistent scale.
func (mc MonteCarlo) American(m *models.MarketModel, o *models.OptionContract) (float64, error) {
	const fn = "MonteCarloAmerican"
	if err := checkInputs(fn, m, o, models.American); err != nil {
		return 0, err
	}
	draws, err := requireDraws(fn, m, m.TimeSteps())
	if err != nil {
		return 0, err
	}

	n, steps := draws.Dims()
	S, K, T, isCall := o.Spot(), o.Strike(), o.Expiry(), o.IsCall()
	r, sigma := m.RiskFreeRate(), m.Volatility()
	dt := T / float64(steps)
	drift := (r - m.YieldRate() - 0.5*sigma*sigma) * dt
	vol := sigma * math.Sqrt(dt)
	disc := math.Exp(-r * dt)

	// paths[i*steps+t] is draw i's level after t+1 steps.
	paths := make([]float64, n*steps)
	parallelFor(mc.Workers, n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			x := S
			for t := 0; t < steps; t++ {
				x *= math.Exp(drift + vol*draws.At(i, t))
				paths[i*steps+t] = x
			}
		}
	})

	values := make([]float64, n)
	exercised := make([]bool, n)
	for i := 0; i < n; i++ {
		if p := exerciseValue(isCall, paths[i*steps+steps-1], K); p > 0 {
			values[i], exercised[i] = p, true
		}
	}

	entries := make([]lookupEntry, n)
	next := make([]float64, n)
	nextExercised := make([]bool, n)
	for t := steps - 2; t >= 0; t-- {
		for i := 0; i < n; i++ {
			entries[i] = lookupEntry{
				spot:      paths[i*steps+t+1],
				value:     values[i],
				z:         draws.At(i, t+1),
				exercised: exercised[i],
			}
		}
		table := newLookupTable(entries, isCall, o.Intrinsic)

		parallelFor(mc.Workers, n, func(lo, hi int) {
			for d := lo; d < hi; d++ {
				cur := paths[d*steps+t]
				var total float64
				for _, e := range table.entries {
					if v, ok := table.continuation(cur * math.Exp(drift+vol*e.z)); ok {
						total += v
					}
				}
				hold := disc * total / float64(n)

				if payout := exerciseValue(isCall, cur, K); payout > hold-tieTolerance {
					next[d], nextExercised[d] = payout, true
				} else {
					next[d], nextExercised[d] = hold, false
				}
			}
		})
		values, next = next, values
		exercised, nextExercised = nextExercised, exercised
	}

	price := math.Max(o.Intrinsic(S), disc*floats.Sum(values)/float64(n))
	return result(fn, price)
}

// exerciseValue is the signed exercise payoff, negative out of the money.
func exerciseValue(isCall bool, s, k float64) float64 {
	if isCall {
		return s - k
	}
	return k - s
}
