package pricing

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bcdannyboy/optval/models"
)

// Key identifies one (model kind, option kind, method) combination.
type Key struct {
	Model  models.ModelKind  `json:"model"`
	Option models.OptionKind `json:"option"`
	Method models.Method     `json:"method"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Model, k.Option, k.Method)
}

// Registry maps combinations to pricers. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	pricers map[Key]PriceFunc
}

func NewRegistry() *Registry {
	return &Registry{pricers: make(map[Key]PriceFunc)}
}

// DefaultRegistry returns a registry holding every supported combination.
// American closed form and barrier trees are deliberately absent.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	gbm := models.Lognormal

	r.Register(Key{gbm, models.European, models.ClosedForm}, EuropeanClosedForm)
	r.Register(Key{gbm, models.European, models.Tree}, BinomialTree)
	r.Register(Key{gbm, models.European, models.PDE}, CrankNicolson)
	r.Register(Key{gbm, models.European, models.MonteCarlo}, MonteCarloEuropean)

	r.Register(Key{gbm, models.American, models.Tree}, BinomialTree)
	r.Register(Key{gbm, models.American, models.PDE}, CrankNicolson)
	r.Register(Key{gbm, models.American, models.MonteCarlo}, MonteCarloAmerican)

	r.Register(Key{gbm, models.Barrier, models.ClosedForm}, BarrierClosedForm)
	r.Register(Key{gbm, models.Barrier, models.PDE}, CrankNicolson)
	r.Register(Key{gbm, models.Barrier, models.MonteCarlo}, MonteCarloBarrier)

	return r
}

// Register adds or replaces the pricer for k. A nil fn removes it.
func (r *Registry) Register(k Key, fn PriceFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fn == nil {
		delete(r.pricers, k)
		return
	}
	r.pricers[k] = fn
}

// Lookup returns the pricer for k or an error wrapping
// models.ErrMethodNotFound.
func (r *Registry) Lookup(k Key) (PriceFunc, error) {
	r.mu.RLock()
	fn, ok := r.pricers[k]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrMethodNotFound, k)
	}
	return fn, nil
}

// Price dispatches on the model kind, the contract kind and the model's method.
func (r *Registry) Price(m *models.MarketModel, o *models.OptionContract) (float64, error) {
	if m == nil || o == nil {
		return 0, invalid("Registry.Price", "arguments", nil, "model and option are required")
	}
	fn, err := r.Lookup(Key{m.Kind(), o.Kind(), m.Method()})
	if err != nil {
		return 0, err
	}
	return fn(m, o)
}

// Keys lists the registered combinations ordered by option kind, then method.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	keys := make([]Key, 0, len(r.pricers))
	for k := range r.pricers {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		if a.Option != b.Option {
			return a.Option < b.Option
		}
		return a.Method < b.Method
	})
	return keys
}
