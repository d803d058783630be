// Package meanfield computes fixed points of the social-learning model's
// self-consistency map.
//
// For informed fraction z, informed accuracy p and poll size m, a follower
// adopting the majority of m independent Bernoulli(pi) opinions with
// pi = z*p + (1-z)*q satisfies q = F(q) in the long run. F is a monotone
// sigmoid on [0,1]: the stable fixed points are reached by iterating from
// the boundaries, and the unstable interior one is bracketed between them.
package meanfield

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrParameter indicates z outside [0,1], p outside (0,1) or m < 1.
	ErrParameter = errors.New("meanfield: parameter out of valid range")

	// ErrNoBracket indicates the interior bracket holds no sign change,
	// typically because the boundary iterations already converged onto
	// the same fixed point.
	ErrNoBracket = errors.New("meanfield: bracket contains no sign change")
)

// DefaultIterations is the number of boundary iteration rounds.
const DefaultIterations = 200

// FixedPoints holds the three fixed points of the self-consistency map.
// Lower and Upper are stable; Middle is the unstable separator between
// their basins of attraction.
type FixedPoints struct {
	Lower  float64
	Middle float64
	Upper  float64
}

// SelfConsistencyMap returns the probability that a majority of m
// independent Bernoulli(z*p + (1-z)*q) draws are positive, summing the
// binomial tail from ceil(m/2) to m.
func SelfConsistencyMap(q, z, p float64, m int) float64 {
	pi := z*p + (1-z)*q
	if pi < 0 {
		pi = 0
	}
	if pi > 1 {
		pi = 1
	}

	total := 0.0
	for l := (m + 1) / 2; l <= m; l++ {
		total += binomial(m, l) * math.Pow(pi, float64(l)) * math.Pow(1-pi, float64(m-l))
	}
	return total
}

// FindFixedPoints iterates the map from both boundaries for the given
// number of rounds (DefaultIterations when iterations <= 0) and then
// bisects F(q)-q on [lower+0.1, upper-0.1] for the interior root.
func FindFixedPoints(z, p float64, m, iterations int) (FixedPoints, error) {
	if z < 0 || z > 1 {
		return FixedPoints{}, fmt.Errorf("%w: z=%f", ErrParameter, z)
	}
	if p <= 0 || p >= 1 {
		return FixedPoints{}, fmt.Errorf("%w: p=%f", ErrParameter, p)
	}
	if m < 1 {
		return FixedPoints{}, fmt.Errorf("%w: m=%d", ErrParameter, m)
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	lower, upper := 0.0, 1.0
	for i := 0; i < iterations; i++ {
		lower = SelfConsistencyMap(lower, z, p, m)
		upper = SelfConsistencyMap(upper, z, p, m)
	}

	a, b := lower+0.1, upper-0.1
	if a >= b {
		return FixedPoints{Lower: lower, Upper: upper},
			fmt.Errorf("%w: stable points %f and %f leave no interior bracket", ErrNoBracket, lower, upper)
	}

	g := func(q float64) float64 { return SelfConsistencyMap(q, z, p, m) - q }

	middle, err := bisect(g, a, b, 1e-12, 200)
	if err != nil {
		return FixedPoints{Lower: lower, Upper: upper}, err
	}

	return FixedPoints{Lower: lower, Middle: middle, Upper: upper}, nil
}

// binomial returns C(n, k) as a float64, computed multiplicatively to
// stay exact well past the poll sizes this model uses.
func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	c := 1.0
	for i := 0; i < k; i++ {
		c = c * float64(n-i) / float64(i+1)
	}
	return c
}

// bisect finds a root of f on [a, b], requiring a sign change.
func bisect(f func(float64) float64, a, b, tol float64, maxIter int) (float64, error) {
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if fa*fb > 0 {
		return 0, fmt.Errorf("%w: f(%f)=%e and f(%f)=%e", ErrNoBracket, a, fa, b, fb)
	}

	for i := 0; i < maxIter && b-a > tol; i++ {
		mid := 0.5 * (a + b)
		fm := f(mid)
		if fm == 0 {
			return mid, nil
		}
		if fa*fm < 0 {
			b = mid
		} else {
			a, fa = mid, fm
		}
	}
	return 0.5 * (a + b), nil
}
