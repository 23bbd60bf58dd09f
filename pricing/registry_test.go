package pricing

import (
	"errors"
	"testing"

	"github.com/bcdannyboy/optval/models"
	"github.com/bcdannyboy/optval/probability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryTable(t *testing.T) {
	r := DefaultRegistry()

	supported := map[models.OptionKind][]models.Method{
		models.European: {models.ClosedForm, models.Tree, models.PDE, models.MonteCarlo},
		models.American: {models.Tree, models.PDE, models.MonteCarlo},
		models.Barrier:  {models.ClosedForm, models.PDE, models.MonteCarlo},
	}
	for kind, methods := range supported {
		for _, method := range methods {
			_, err := r.Lookup(Key{models.Lognormal, kind, method})
			assert.NoError(t, err, "%s/%s", kind, method)
		}
	}

	for _, k := range []Key{
		{models.Lognormal, models.American, models.ClosedForm},
		{models.Lognormal, models.Barrier, models.Tree},
	} {
		_, err := r.Lookup(k)
		assert.ErrorIs(t, err, models.ErrMethodNotFound, k.String())
		assert.False(t, errors.Is(err, models.ErrInvalidInput))
	}

	assert.Len(t, r.Keys(), 10)
}

func TestRegistryKeysOrdered(t *testing.T) {
	keys := DefaultRegistry().Keys()
	require.NotEmpty(t, keys)
	assert.Equal(t, Key{models.Lognormal, models.European, models.ClosedForm}, keys[0])
	assert.Equal(t, Key{models.Lognormal, models.Barrier, models.MonteCarlo}, keys[len(keys)-1])
	assert.Equal(t, "lognormal/european/closed_form", keys[0].String())
}

func TestRegistryPriceDispatch(t *testing.T) {
	r := DefaultRegistry()
	c := vanillaCases[0]
	o := c.option(t, models.European)

	cf, err := r.Price(c.model(t, models.ClosedForm, 0, 0), o)
	require.NoError(t, err)
	assert.InDelta(t, c.closedFormPx, cf, 1e-9)

	tree, err := r.Price(c.model(t, models.Tree, 2000, 0), o)
	require.NoError(t, err)
	assert.Less(t, relErr(tree, cf), 1e-3)

	pde, err := r.Price(c.model(t, models.PDE, 300, 301), o)
	require.NoError(t, err)
	assert.Less(t, relErr(pde, cf), 2e-3)

	draws, err := probability.Stratified(50000)
	require.NoError(t, err)
	mc, err := r.Price(withDraws(t, c.model(t, models.MonteCarlo, 0, 0), draws), o)
	require.NoError(t, err)
	assert.Less(t, relErr(mc, cf), 2e-3)

	_, err = r.Price(c.model(t, models.ClosedForm, 0, 0), c.option(t, models.American))
	assert.ErrorIs(t, err, models.ErrMethodNotFound)

	_, err = r.Price(nil, o)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestRegistryRegisterOverrides(t *testing.T) {
	r := NewRegistry()
	k := Key{models.Lognormal, models.European, models.ClosedForm}

	_, err := r.Lookup(k)
	require.ErrorIs(t, err, models.ErrMethodNotFound)

	r.Register(k, func(*models.MarketModel, *models.OptionContract) (float64, error) { return 42, nil })
	fn, err := r.Lookup(k)
	require.NoError(t, err)
	v, err := fn(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)

	r.Register(k, nil)
	_, err = r.Lookup(k)
	assert.ErrorIs(t, err, models.ErrMethodNotFound)
}
