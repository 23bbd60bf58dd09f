// Package probability generates the standard normal draw matrices consumed by
// the Monte Carlo pricers.
package probability

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Antithetic returns an nDraws x nSteps matrix of standard normal variates in
// which row n-1-i is the negation of row i. With an odd draw count the middle
// row is zero. The same seed always yields the same matrix.
func Antithetic(nDraws, nSteps int, seed uint64) (*mat.Dense, error) {
	if nDraws <= 0 || nSteps <= 0 {
		return nil, fmt.Errorf("probability: draw matrix must be non-empty, got %dx%d", nDraws, nSteps)
	}

	rng := rand.New(rand.NewSource(seed))
	draws := mat.NewDense(nDraws, nSteps, nil)
	for i := 0; i < nDraws/2; i++ {
		for t := 0; t < nSteps; t++ {
			z := rng.NormFloat64()
			draws.Set(i, t, z)
			draws.Set(nDraws-1-i, t, -z)
		}
	}
	return draws, nil
}

// Stratified returns a single column of inverse-normal midpoints
// Φ⁻¹((i+½)/n). The column is symmetric and deterministic, which makes it
// suitable for one-step European estimates.
func Stratified(nDraws int) (*mat.Dense, error) {
	if nDraws <= 0 {
		return nil, fmt.Errorf("probability: draw count must be positive, got %d", nDraws)
	}

	draws := mat.NewDense(nDraws, 1, nil)
	n := float64(nDraws)
	for i := 0; i < nDraws; i++ {
		draws.Set(i, 0, distuv.UnitNormal.Quantile((float64(i)+0.5)/n))
	}
	return draws, nil
}
