package analysis

import (
	"math"
	"sort"

	"github.com/golang/glog"

	"github.com/Axelrod-Python/axelrod-moran/birthdeath"
)

// FitnessRow holds the fixation probabilities of Player against
// Opponent in a population of N, starting from 1, N/2 and N-1
// individuals, and the constant relative fitness each one implies.
// Unavailable values are NaN.
type FitnessRow struct {
	Player, Opponent string
	N                int

	P1, PHalf, PMinus1 float64
	R1, RHalf, RMinus1 float64
}

type fitnessKey struct {
	player, opponent string
	n                int
}

// RelativeFitnessTable builds one row for every (player, opponent, N)
// appearing in the summaries. p_{N-1} of (A, B) is the fixation of the
// incumbent in the summary of (B, A) started from a single challenger.
// Rows are ordered by (N, player, opponent).
func RelativeFitnessTable(summaries []Summary) []FitnessRow {
	nan := math.NaN()
	rows := make(map[fitnessKey]*FitnessRow)
	get := func(player, opponent string, n int) *FitnessRow {
		key := fitnessKey{player, opponent, n}
		row, ok := rows[key]
		if !ok {
			row = &FitnessRow{
				Player: player, Opponent: opponent, N: n,
				P1: nan, PHalf: nan, PMinus1: nan,
			}
			rows[key] = row
		}
		return row
	}

	for _, s := range summaries {
		switch {
		case s.I == 1:
			get(s.P1, s.P2, s.N).P1 = s.P1Fixation
			get(s.P2, s.P1, s.N).PMinus1 = s.P2Fixation
			if s.N == 2 {
				get(s.P1, s.P2, s.N).PHalf = s.P1Fixation
			}
		case s.N%2 == 0 && s.I == s.N/2:
			get(s.P1, s.P2, s.N).PHalf = s.P1Fixation
		}
	}

	result := make([]FitnessRow, 0, len(rows))
	for _, row := range rows {
		row.R1 = relativeFitness(row.N, 1, row.P1)
		if row.N%2 == 0 {
			row.RHalf = relativeFitness(row.N, row.N/2, row.PHalf)
		} else {
			row.RHalf = nan
		}
		row.RMinus1 = relativeFitness(row.N, row.N-1, row.PMinus1)
		result = append(result, *row)
	}

	sort.Slice(result, func(a, b int) bool {
		ra, rb := result[a], result[b]
		if ra.N != rb.N {
			return ra.N < rb.N
		}
		if ra.Player != rb.Player {
			return ra.Player < rb.Player
		}
		return ra.Opponent < rb.Opponent
	})

	return result
}

func relativeFitness(n, i int, p float64) float64 {
	if math.IsNaN(p) {
		return math.NaN()
	}

	r, err := birthdeath.FindRelativeFitness(n, i, p)
	if err != nil {
		glog.V(1).Infof("Relative fitness unavailable: %v", err)
		return math.NaN()
	}

	return r
}
