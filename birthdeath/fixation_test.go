package birthdeath

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	moran "github.com/Axelrod-Python/axelrod-moran"
)

func prisonersDilemmaPayoffs() *PayoffTable {
	return NewPayoffTable(map[[2]string]moran.Outcome{
		{"Defector", "Cooperator"}:   {A: 5, B: 0},
		{"Defector", "Defector"}:     {A: 1, B: 1},
		{"Cooperator", "Cooperator"}: {A: 3, B: 3},
	})
}

func TestMatrix(t *testing.T) {
	pt := prisonersDilemmaPayoffs()

	m, err := pt.Matrix("Defector", "Cooperator")
	require.NoError(t, err)
	assert.Equal(t, Matrix{{1, 5}, {0, 3}}, m)

	m, err = pt.Matrix("Cooperator", "Defector")
	require.NoError(t, err)
	assert.Equal(t, Matrix{{3, 0}, {5, 1}}, m)
	assert.Equal(t, m, Matrix{{1, 5}, {0, 3}}.Swap())

	_, err = pt.Matrix("Cooperator", "Grudger")
	assert.ErrorIs(t, err, moran.ErrUnknownPairing)
}

func TestPayoffsFromCache(t *testing.T) {
	c := moran.NewCache()
	require.NoError(t, c.AddCounts("Defector", "Cooperator", map[moran.Outcome]int{{A: 5, B: 0}: 1}))
	require.NoError(t, c.AddCounts("Cooperator", "Cooperator", map[moran.Outcome]int{{A: 3, B: 3}: 1}))
	require.NoError(t, c.AddCounts("Defector", "Defector", map[moran.Outcome]int{{A: 1, B: 1}: 3, {A: 2, B: 2}: 1}))

	pt, err := PayoffsFromCache(c)
	require.NoError(t, err)

	m, err := pt.Matrix("Defector", "Cooperator")
	require.NoError(t, err)
	assert.InDelta(t, 1.25, m[0][0], 1e-12)
	assert.Equal(t, 5.0, m[0][1])
	assert.Equal(t, 0.0, m[1][0])
	assert.Equal(t, 3.0, m[1][1])
}

func TestFitness_Symmetry(t *testing.T) {
	pt := prisonersDilemmaPayoffs()
	dc, err := pt.Matrix("Defector", "Cooperator")
	require.NoError(t, err)
	cd, err := pt.Matrix("Cooperator", "Defector")
	require.NoError(t, err)

	for _, model := range []FitnessModel{Nowak, Fermi} {
		F1, G1 := Fitness(dc, 5, 1, model, 1)
		F2, G2 := Fitness(cd, 5, 4, model, 1)
		assert.InDelta(t, F1, G2, 1e-12, "model %v", model)
		assert.InDelta(t, G1, F2, 1e-12, "model %v", model)
	}
}

func TestFitness_Fermi(t *testing.T) {
	m := Matrix{{3, 0}, {5, 1}}
	f, g := Payoffs(m, 5, 2)
	F, G := Fitness(m, 5, 2, Fermi, 1)
	assert.InDelta(t, 1.0, F+G, 1e-12)
	assert.InDelta(t, 1/(1+math.Exp(g-f)), F, 1e-12)
	assert.InDelta(t, 1/(1+math.Exp(f-g)), G, 1e-12)
}

func TestTransition_Symmetry(t *testing.T) {
	pt := prisonersDilemmaPayoffs()
	dc, err := pt.Matrix("Defector", "Cooperator")
	require.NoError(t, err)

	down, stay, up := Transition(dc, 5, 2, Nowak, 1)
	down2, stay2, up2 := Transition(dc.Swap(), 5, 3, Nowak, 1)
	assert.InDelta(t, down, up2, 1e-12)
	assert.InDelta(t, stay, stay2, 1e-12)
	assert.InDelta(t, up, down2, 1e-12)
	assert.InDelta(t, 1.0, down+stay+up, 1e-12)
}

func TestFixation_DominatedCooperator(t *testing.T) {
	pt := prisonersDilemmaPayoffs()
	m, err := pt.Matrix("Cooperator", "Defector")
	require.NoError(t, err)

	p, err := Fixation(m, 5, 1, Nowak, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)
}

func TestFixation_Complement(t *testing.T) {
	matrices := []Matrix{
		{{3, 0.5}, {4, 1}},
		{{2, 2}, {2, 2}},
		{{1.5, 3}, {0.7, 2.2}},
	}

	for _, m := range matrices {
		for _, model := range []FitnessModel{Nowak, Fermi} {
			for n := 2; n <= 12; n++ {
				for i := 1; i < n; i++ {
					name := fmt.Sprintf("%v/%v/N=%d/i=%d", m, model, n, i)
					p, err := Fixation(m, n, i, model, 0.5)
					require.NoError(t, err, name)
					q, err := Fixation(m.Swap(), n, n-i, model, 0.5)
					require.NoError(t, err, name)
					assert.InDelta(t, 1.0, p+q, 1e-9, name)
					assert.True(t, p >= 0 && p <= 1, "%s: p=%v", name, p)
				}
			}
		}
	}
}

func TestFixation_Barrier(t *testing.T) {
	// A lone Cooperator earns nothing against Defectors, so under Nowak
	// fitness with s = 1 state 1 cannot move up. Larger groups of
	// Cooperators can still take over.
	m := Matrix{{3, 0}, {5, 1}}
	for n := 3; n <= 12; n++ {
		for i := 1; i < n; i++ {
			name := fmt.Sprintf("N=%d/i=%d", n, i)
			p, err := Fixation(m, n, i, Nowak, 1)
			require.NoError(t, err, name)
			q, err := Fixation(m.Swap(), n, n-i, Nowak, 1)
			require.NoError(t, err, name)

			assert.False(t, math.IsNaN(p), name)
			assert.True(t, p >= 0 && p <= 1, "%s: p=%v", name, p)
			assert.InDelta(t, 1.0, p+q, 1e-9, name)
			if i == 1 {
				assert.Equal(t, 0.0, p, name)
			}
		}
	}
}

func TestFixation_Frozen(t *testing.T) {
	// Both types have zero fitness at every interior state.
	m := Matrix{{0, 0}, {0, 0}}
	p, err := Fixation(m, 4, 3, Nowak, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)

	// Negative Nowak fitness has no probabilistic meaning.
	p, err = Fixation(Matrix{{0, 0}, {1, 1}}, 4, 2, Nowak, 2)
	assert.ErrorIs(t, err, moran.ErrNumericDivergence)
	assert.True(t, math.IsNaN(p))
}

func TestFixation_Neutral(t *testing.T) {
	m := Matrix{{2, 2}, {2, 2}}
	for n := 2; n <= 10; n++ {
		for i := 1; i < n; i++ {
			p, err := Fixation(m, n, i, Nowak, 1)
			require.NoError(t, err)
			assert.InDelta(t, float64(i)/float64(n), p, 1e-12, "N=%d i=%d", n, i)
		}
	}
}

func TestFixation_TwoPlayers(t *testing.T) {
	m := Matrix{{3, 0.5}, {4, 1}}
	// With N=2 and i=1 each individual only meets the other, so f = 0.5
	// and g = 4. Under Nowak fitness with s=1, F = 0.5 and G = 4:
	// up = F/(F+G) * 1/2, down = G/(F+G) * 1/2, fixation = 1/(1+G/F).
	p, err := Fixation(m, 2, 1, Nowak, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+4/0.5), p, 1e-12)

	down, stay, up := Transition(m, 2, 1, Nowak, 1)
	assert.InDelta(t, 4/4.5/2, down, 1e-12)
	assert.InDelta(t, 0.5/4.5/2, up, 1e-12)
	assert.InDelta(t, 0.5, stay, 1e-12)
}

func TestFixation_InvalidState(t *testing.T) {
	m := Matrix{{1, 1}, {1, 1}}
	for _, tc := range [][2]int{{1, 1}, {5, 0}, {5, 5}, {5, -1}} {
		_, err := Fixation(m, tc[0], tc[1], Nowak, 1)
		assert.Error(t, err, "N=%d i=%d", tc[0], tc[1])
	}
}

func TestParseFitnessModel(t *testing.T) {
	for _, model := range []FitnessModel{Nowak, Fermi} {
		parsed, err := ParseFitnessModel(model.String())
		require.NoError(t, err)
		assert.Equal(t, model, parsed)
	}

	_, err := ParseFitnessModel("moran")
	assert.Error(t, err)
}
