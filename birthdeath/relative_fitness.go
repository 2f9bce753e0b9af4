package birthdeath

import (
	"expvar"
	"math"

	"github.com/golang/glog"
	"github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	moran "github.com/Axelrod-Python/axelrod-moran"
)

const (
	// Starting guess for the relative fitness.
	initialR = 1.2
	// Absolute step tolerance in log r for convergence.
	tolerance = 1.48e-8
	maxIter   = 100
	// Number of times a step may be halved before falling back to
	// bisection.
	maxDamping = 30
	// Phi(n, i, e^x) rounds to 0 or 1 well inside |x| < 2^maxBracket.
	maxBracket = 11
	epsilon    = 2.220446049250313e-16

	DefaultMemoSize = 4096
)

var (
	memoHits   = expvar.NewInt("relative_fitness/cache_hits")
	memoMisses = expvar.NewInt("relative_fitness/cache_misses")
)

// Phi returns the probability that i mutants of constant relative
// fitness r take over a population of n.
func Phi(n, i int, r float64) float64 {
	phi, _, _ := phiLog(n, i, math.Log(r))
	return phi
}

// PhiPrime returns dPhi/dr.
func PhiPrime(n, i int, r float64) float64 {
	_, d1, _ := phiLog(n, i, math.Log(r))
	return d1 / r
}

// PhiPrime2 returns d²Phi/dr².
func PhiPrime2(n, i int, r float64) float64 {
	_, d1, d2 := phiLog(n, i, math.Log(r))
	return (d2 - d1) / (r * r)
}

// phiLog returns Phi and its first two derivatives with respect to
// x = ln r. Powers of r only appear as e^{-kx} with x > 0, so nothing
// overflows for large populations.
func phiLog(n, i int, x float64) (phi, d1, d2 float64) {
	nf, xf := float64(n), float64(i)
	switch {
	case x == 0:
		// Taylor coefficients of the neutral case.
		return xf / nf, xf * (nf - xf) / (2 * nf), xf * (nf - xf) * (nf - 2*xf) / (6 * nf)
	case x < 0:
		// Phi(n, i, r) = 1 - Phi(n, n-i, 1/r).
		_, d1, d2 = phiLog(n, n-i, -x)
		phi = math.Exp((nf-xf)*x) * (math.Expm1(xf*x) / math.Expm1(nf*x))
		return phi, d1, -d2
	}

	// Phi = A/B with A = 1 - e^{-ix} and B = 1 - e^{-nx}.
	a, b := math.Exp(-xf*x), math.Exp(-nf*x)
	A, B := -math.Expm1(-xf*x), -math.Expm1(-nf*x)
	dA, dB := xf*a, nf*b
	ddA, ddB := -xf*xf*a, -nf*nf*b

	phi = A / B
	d1 = (dA*B - A*dB) / (B * B)
	d2 = (ddA*B-A*ddB)/(B*B) - 2*dB*d1/B
	return phi, d1, d2
}

type memoKey struct {
	n, i int
	p    float64
}

// Inverter finds the constant relative fitness that reproduces a given
// fixation probability. Results are memoized; an Inverter is safe for
// concurrent use.
type Inverter struct {
	memo *lru.Cache
}

func NewInverter(memoSize int) *Inverter {
	memo, err := lru.New(memoSize)
	if err != nil {
		panic(err)
	}

	return &Inverter{memo: memo}
}

var defaultInverter = NewInverter(DefaultMemoSize)

// FindRelativeFitness returns r such that Phi(n, i, r) == p, using a
// shared memoized Inverter.
func FindRelativeFitness(n, i int, p float64) (float64, error) {
	return defaultInverter.FindRelativeFitness(n, i, p)
}

func (inv *Inverter) FindRelativeFitness(n, i int, p float64) (float64, error) {
	key := memoKey{n: n, i: i, p: p}
	if cached, ok := inv.memo.Get(key); ok {
		memoHits.Add(1)
		return cached.(float64), nil
	}

	memoMisses.Add(1)
	r, err := solveRelativeFitness(n, i, p)
	if err != nil {
		return math.NaN(), err
	}

	inv.memo.Add(key, r)
	return r, nil
}

// solveRelativeFitness solves Phi(n, i, e^x) = p for x = ln r. Phi is
// increasing in x, so the root is first bracketed around x = 0. Halley
// steps are then damped by halving until the residual shrinks, and any
// step that leaves the bracket or fails to shrink the residual is
// replaced by bisection.
func solveRelativeFitness(n, i int, p float64) (float64, error) {
	if err := checkState(n, i); err != nil {
		return math.NaN(), errors.Wrapf(moran.ErrNumericDivergence, "N=%d i=%d p=%v: %v", n, i, p, err)
	}
	if !(p > 0 && p < 1) {
		return math.NaN(), errors.Wrapf(moran.ErrNumericDivergence,
			"N=%d i=%d: target probability %v outside (0, 1)", n, i, p)
	}

	neutral := float64(i) / float64(n)
	if p == neutral {
		return 1, nil
	}

	residual := func(x float64) float64 {
		phi, _, _ := phiLog(n, i, x)
		return phi - p
	}

	lo, hi := 0.0, 0.0
	for k := 0; ; k++ {
		if k > maxBracket {
			return math.NaN(), errors.Wrapf(moran.ErrNumericDivergence,
				"N=%d i=%d p=%v: root not bracketed", n, i, p)
		}

		width := math.Ldexp(1, k)
		if p > neutral {
			lo, hi = hi, width
			if residual(hi) >= 0 {
				break
			}
		} else {
			hi, lo = lo, -width
			if residual(lo) <= 0 {
				break
			}
		}
	}

	x := math.Log(initialR)
	if !(x > lo && x < hi) {
		x = (lo + hi) / 2
	}

	for iter := 0; iter < maxIter; iter++ {
		phi, d1, d2 := phiLog(n, i, x)
		f := phi - p
		if math.Abs(f) < 1e-15 {
			return math.Exp(x), nil
		}
		if f < 0 {
			lo = x
		} else {
			hi = x
		}
		if hi-lo <= 4*epsilon*math.Max(1, math.Abs(x)) {
			return math.Exp(x), nil
		}

		next := math.NaN()
		if d1 > 0 && isFinite(d1) {
			step := f / d1
			if isFinite(d2) {
				if adj := step * d2 / d1 / 2; math.Abs(adj) < 1 {
					step /= 1 - adj
				}
			}
			if math.Abs(step) < tolerance {
				return math.Exp(x - step), nil
			}

			next = x - step
			for k := 0; k < maxDamping; k++ {
				if next > lo && next < hi && math.Abs(residual(next)) < math.Abs(f) {
					break
				}
				step /= 2
				next = x - step
			}
		}

		if !(next > lo && next < hi) || !(math.Abs(residual(next)) < math.Abs(f)) {
			next = lo + (hi-lo)/2
		}

		glog.V(3).Infof("N=%d i=%d p=%v: iteration %d r=%v", n, i, p, iter, math.Exp(next))
		x = next
	}

	return math.NaN(), errors.Wrapf(moran.ErrNumericDivergence,
		"N=%d i=%d p=%v: no convergence after %d iterations from r=%v", n, i, p, maxIter, initialR)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
