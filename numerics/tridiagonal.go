// Package numerics holds the linear algebra kernels shared by the lattice and
// finite-difference pricers.
package numerics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Solve solves the tridiagonal system M x = d with the Thomas algorithm.
//
// b is the main diagonal (length n), a the sub-diagonal indexed by row so that
// a[0] is ignored, and c the super-diagonal where c[n-1] is ignored when
// present. No pivoting is performed: a zero pivot yields Inf or NaN entries.
func Solve(a, b, c, d []float64) ([]float64, error) {
	n := len(b)
	if err := checkBands(n, a, c); err != nil {
		return nil, err
	}
	if len(d) != n {
		return nil, fmt.Errorf("numerics: right-hand side has length %d, want %d", len(d), n)
	}

	cp := make([]float64, n)
	dp := make([]float64, n)

	if n > 1 {
		cp[0] = c[0] / b[0]
	}
	dp[0] = d[0] / b[0]
	for i := 1; i < n; i++ {
		den := b[i] - a[i]*cp[i-1]
		if i < n-1 {
			cp[i] = c[i] / den
		}
		dp[i] = (d[i] - a[i]*dp[i-1]) / den
	}

	// Back substitution, reusing dp as the solution.
	for i := n - 2; i >= 0; i-- {
		dp[i] -= cp[i] * dp[i+1]
	}
	return dp, nil
}

// Inverse builds M^-1 one column at a time by solving against unit vectors.
// It costs O(n^2) and exists to check Solve, not for pricing.
func Inverse(a, b, c []float64) (*mat.Dense, error) {
	n := len(b)
	if err := checkBands(n, a, c); err != nil {
		return nil, err
	}

	inv := mat.NewDense(n, n, nil)
	e := make([]float64, n)
	for j := 0; j < n; j++ {
		e[j] = 1
		col, err := Solve(a, b, c, e)
		if err != nil {
			return nil, err
		}
		inv.SetCol(j, col)
		e[j] = 0
	}
	return inv, nil
}

func checkBands(n int, a, c []float64) error {
	if n == 0 {
		return fmt.Errorf("numerics: empty system")
	}
	if len(a) != n {
		return fmt.Errorf("numerics: sub-diagonal has length %d, want %d", len(a), n)
	}
	if len(c) != n && len(c) != n-1 {
		return fmt.Errorf("numerics: super-diagonal has length %d, want %d or %d", len(c), n-1, n)
	}
	return nil
}
