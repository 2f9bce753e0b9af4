// Package birthdeath computes fixation probabilities of a two-strategy
// Moran process analytically, as absorption probabilities of a
// one-dimensional birth-death Markov chain.
package birthdeath

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	moran "github.com/Axelrod-Python/axelrod-moran"
)

// Matrix is the 2x2 utility matrix of a strategy pair (s1, s2). Row k
// holds the payoffs of strategy k+1 against s1 and against s2.
type Matrix [2][2]float64

// Swap returns the matrix of the pair (s2, s1).
func (m Matrix) Swap() Matrix {
	return Matrix{
		{m[1][1], m[1][0]},
		{m[0][1], m[0][0]},
	}
}

// FitnessModel maps expected payoffs to reproductive fitness.
type FitnessModel int

const (
	// Nowak is the linear model F = 1 + s(f - 1).
	Nowak FitnessModel = iota
	// Fermi is the exponential model F = exp(sf) / (exp(sf) + exp(sg)).
	Fermi
)

var fitnessModelStr = [...]string{
	"nowak",
	"fermi",
}

func (fm FitnessModel) String() string {
	if fm < 0 || int(fm) >= len(fitnessModelStr) {
		return fmt.Sprintf("FitnessModel(%d)", int(fm))
	}

	return fitnessModelStr[fm]
}

// ParseFitnessModel parses "nowak" or "fermi".
func ParseFitnessModel(s string) (FitnessModel, error) {
	for i, name := range fitnessModelStr {
		if s == name {
			return FitnessModel(i), nil
		}
	}

	return 0, errors.Errorf("unknown fitness model %q", s)
}

func checkState(n, i int) error {
	if n < 2 {
		return errors.Errorf("population size %d is less than 2", n)
	}
	if i < 1 || i > n-1 {
		return errors.Errorf("state %d outside [1, %d]", i, n-1)
	}

	return nil
}

// Payoffs returns the expected payoff f of an individual of the first
// type and g of the second type, in a population of n with i of the
// first type, excluding self-interaction.
func Payoffs(m Matrix, n, i int) (f, g float64) {
	nf, xf := float64(n), float64(i)
	f = (m[0][0]*(xf-1) + m[0][1]*(nf-xf)) / (nf - 1)
	g = (m[1][0]*xf + m[1][1]*(nf-xf-1)) / (nf - 1)
	return f, g
}

// Fitness returns the fitness of each type at state i under the given
// model and selection intensity.
func Fitness(m Matrix, n, i int, model FitnessModel, intensity float64) (F, G float64) {
	f, g := Payoffs(m, n, i)
	switch model {
	case Fermi:
		// Subtract the larger exponent so neither term overflows.
		x, y := intensity*f, intensity*g
		shift := math.Max(x, y)
		ef, eg := math.Exp(x-shift), math.Exp(y-shift)
		return ef / (ef + eg), eg / (ef + eg)
	default:
		return 1 + intensity*(f-1), 1 + intensity*(g-1)
	}
}

// Transition returns the probabilities of moving from state i to i-1,
// staying at i, and moving to i+1. A state where both types have zero
// fitness never moves.
func Transition(m Matrix, n, i int, model FitnessModel, intensity float64) (down, stay, up float64) {
	F, G := Fitness(m, n, i, model, intensity)
	nf, xf := float64(n), float64(i)
	total := F*xf + G*(nf-xf)
	if total == 0 {
		return 0, 1, 0
	}

	up = (F * xf / total) * ((nf - xf) / nf)
	down = (G * (nf - xf) / total) * (xf / nf)
	stay = 1 - up - down
	return down, stay, up
}

// Fixation returns the probability that i individuals of the first type
// in a population of n take over the whole population.
//
// A state j that cannot move up acts as an absorbing barrier: every
// state at or below j fixes with probability 0, and the states above
// it form a chain that is absorbed either at j or at n.
func Fixation(m Matrix, n, i int, model FitnessModel, intensity float64) (float64, error) {
	if err := checkState(n, i); err != nil {
		return 0, err
	}

	downs, ups := make([]float64, n), make([]float64, n)
	start := 1
	for j := 1; j < n; j++ {
		down, _, up := Transition(m, n, j, model, intensity)
		if !(down >= 0 && up >= 0) || math.IsInf(down, 0) || math.IsInf(up, 0) {
			return math.NaN(), errors.Wrapf(moran.ErrNumericDivergence,
				"N=%d j=%d: invalid transition probabilities down=%v up=%v", n, j, down, up)
		}
		if up == 0 {
			start = j + 1
		}
		downs[j], ups[j] = down, up
	}

	if i < start {
		return 0, nil
	}

	// sum = 1 + sum_{start<=k<j} prod_{start<=l<=k} down(l)/up(l)
	product, sum := 1.0, 1.0
	numerator := 1.0
	for j := start; j < n; j++ {
		if j == i {
			numerator = sum
		}
		product *= downs[j] / ups[j]
		sum += product
	}

	p := numerator / sum
	if math.IsNaN(p) {
		return math.NaN(), errors.Wrapf(moran.ErrNumericDivergence,
			"N=%d i=%d: fixation probability overflowed", n, i)
	}

	return p, nil
}
