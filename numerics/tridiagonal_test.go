package numerics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func bands(n int, lo, mid, hi float64) (a, b, c []float64) {
	a = make([]float64, n)
	b = make([]float64, n)
	c = make([]float64, n)
	for i := range b {
		a[i], b[i], c[i] = lo, mid, hi
	}
	return a, b, c
}

func toTridiag(a, b, c []float64) *mat.Tridiag {
	n := len(b)
	return mat.NewTridiag(n, append([]float64(nil), a[1:]...), append([]float64(nil), b...), append([]float64(nil), c[:n-1]...))
}

func TestSolveHeatEquationStep(t *testing.T) {
	a, b, c := bands(4, 1, -2.6, 1)
	d := []float64{-240, 0, 0, -150}

	x, err := Solve(a, b, c, d)
	require.NoError(t, err)

	// Multiplying back must reproduce the right-hand side.
	got := mat.NewVecDense(4, nil)
	got.MulVec(toTridiag(a, b, c), mat.NewVecDense(4, x))
	assert.True(t, floats.EqualApprox(got.RawVector().Data, d, 1e-8), "M x = %v, want %v", got.RawVector().Data, d)

	want := mat.NewVecDense(4, nil)
	require.NoError(t, toTridiag(a, b, c).SolveVecTo(want, false, mat.NewVecDense(4, d)))
	assert.True(t, floats.EqualApprox(x, want.RawVector().Data, 1e-8))
}

func TestSolveVaryingBands(t *testing.T) {
	a := []float64{0, 0.5, -1, 2, 0.25}
	b := []float64{4, 5, 6, 7, 8}
	c := []float64{1, -0.5, 1.5, 0.75}
	d := []float64{1, 2, 3, 4, 5}

	x, err := Solve(a, b, c, d)
	require.NoError(t, err)

	want := mat.NewVecDense(5, nil)
	require.NoError(t, toTridiag(a, b, append(c, 0)).SolveVecTo(want, false, mat.NewVecDense(5, d)))
	assert.True(t, floats.EqualApprox(x, want.RawVector().Data, 1e-10))
}

func TestSolveSingleEquation(t *testing.T) {
	x, err := Solve([]float64{0}, []float64{4}, nil, []float64{2})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, x)
}

func TestSolveRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name       string
		a, b, c, d []float64
	}{
		{"empty", nil, nil, nil, nil},
		{"short sub-diagonal", []float64{1}, []float64{1, 2}, []float64{1}, []float64{1, 2}},
		{"long super-diagonal", []float64{0, 1}, []float64{1, 2}, []float64{1, 1, 1}, []float64{1, 2}},
		{"short rhs", []float64{0, 1}, []float64{1, 2}, []float64{1}, []float64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Solve(tt.a, tt.b, tt.c, tt.d)
			assert.Error(t, err)
		})
	}
}

func TestInverseIsIdentity(t *testing.T) {
	a, b, c := bands(4, 1, -2.6, 1)

	inv, err := Inverse(a, b, c)
	require.NoError(t, err)

	var prod mat.Dense
	prod.Mul(inv, toTridiag(a, b, c))
	eye := mat.NewDiagDense(4, []float64{1, 1, 1, 1})
	assert.True(t, mat.EqualApprox(&prod, eye, 1e-8), "inverse times matrix:\n%v", mat.Formatted(&prod))

	prod.Mul(toTridiag(a, b, c), inv)
	assert.True(t, mat.EqualApprox(&prod, eye, 1e-8))
}
