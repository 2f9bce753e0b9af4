package birthdeath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	moran "github.com/Axelrod-Python/axelrod-moran"
)

func TestPhi(t *testing.T) {
	// Neutral drift.
	assert.InDelta(t, 0.25, Phi(4, 1, 1), 1e-12)
	assert.InDelta(t, 0.25, Phi(4, 1, 1+1e-9), 1e-6)
	// N=2, i=1 reduces to r / (1 + r).
	assert.InDelta(t, 2.0/3, Phi(2, 1, 2), 1e-12)
	// Constant fitness fixation is the birth-death solution with
	// utilities that make F/G == r everywhere.
	m := Matrix{{2, 2}, {1, 1}}
	p, err := Fixation(m, 6, 2, Nowak, 1)
	require.NoError(t, err)
	assert.InDelta(t, Phi(6, 2, 2), p, 1e-12)
}

func TestPhiDerivatives(t *testing.T) {
	const h = 1e-5
	for _, n := range []int{2, 3, 7, 12} {
		for i := 1; i < n; i++ {
			for _, r := range []float64{0.4, 0.9, 1.3, 2.5} {
				fd1 := (Phi(n, i, r+h) - Phi(n, i, r-h)) / (2 * h)
				assert.InDelta(t, fd1, PhiPrime(n, i, r), 1e-6, "phi' N=%d i=%d r=%v", n, i, r)

				fd2 := (PhiPrime(n, i, r+h) - PhiPrime(n, i, r-h)) / (2 * h)
				assert.InDelta(t, fd2, PhiPrime2(n, i, r), 1e-5, "phi'' N=%d i=%d r=%v", n, i, r)
			}
		}
	}
}

func TestFindRelativeFitness_RoundTrip(t *testing.T) {
	inv := NewInverter(16)
	probabilities := []float64{0.001, 0.01, 0.1, 0.3, 0.5, 0.7, 0.9, 0.99, 0.999}
	for n := 2; n <= 100; n++ {
		for i := 1; i < n; i++ {
			for _, p := range probabilities {
				r, err := inv.FindRelativeFitness(n, i, p)
				require.NoError(t, err, "N=%d i=%d p=%v", n, i, p)
				require.True(t, r > 0, "N=%d i=%d p=%v: r=%v", n, i, p, r)
				require.InDelta(t, p, Phi(n, i, r), 1e-9, "N=%d i=%d p=%v", n, i, p)
			}
		}
	}
}

// Starting far from the root used to make the undamped iteration
// oscillate and diverge.
func TestFindRelativeFitness_Oscillating(t *testing.T) {
	for _, tc := range []struct {
		n, i int
		p    float64
	}{
		{15, 11, 0.5},
		{16, 8, 0.2},
		{100, 50, 0.999},
		{100, 99, 0.001},
	} {
		r, err := solveRelativeFitness(tc.n, tc.i, tc.p)
		require.NoError(t, err, "%+v", tc)
		assert.InDelta(t, tc.p, Phi(tc.n, tc.i, r), 1e-9, "%+v", tc)
	}
}

func TestPhi_LargePopulation(t *testing.T) {
	// r^N overflows float64 here.
	for _, r := range []float64{1e-4, 1e4} {
		phi := Phi(200, 100, r)
		assert.False(t, math.IsNaN(phi), "r=%v", r)
		assert.True(t, phi >= 0 && phi <= 1, "r=%v: %v", r, phi)
		assert.False(t, math.IsNaN(PhiPrime(200, 100, r)), "r=%v", r)
	}
	assert.InDelta(t, 1.0, Phi(200, 100, 1e4), 1e-12)
	assert.InDelta(t, 0.0, Phi(200, 100, 1e-4), 1e-12)
}

func TestFindRelativeFitness_Neutral(t *testing.T) {
	r, err := FindRelativeFitness(10, 1, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r, 1e-4)
}

func TestFindRelativeFitness_Divergence(t *testing.T) {
	for _, p := range []float64{0, 1, -0.1, 1.5, math.NaN()} {
		r, err := FindRelativeFitness(5, 1, p)
		assert.ErrorIs(t, err, moran.ErrNumericDivergence, "p=%v", p)
		assert.True(t, math.IsNaN(r), "p=%v: r=%v", p, r)
	}

	_, err := FindRelativeFitness(5, 5, 0.5)
	assert.ErrorIs(t, err, moran.ErrNumericDivergence)
}

func TestFindRelativeFitness_Memoized(t *testing.T) {
	inv := NewInverter(4)
	r1, err := inv.FindRelativeFitness(8, 1, 0.3)
	require.NoError(t, err)
	assert.Equal(t, 1, inv.memo.Len())

	r2, err := inv.FindRelativeFitness(8, 1, 0.3)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inv.memo.Len())
}

func BenchmarkSolveRelativeFitness(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := solveRelativeFitness(14, 7, 0.73); err != nil {
			b.Fatal(err)
		}
	}
}
