// Package analysis reduces raw simulation results to fixation
// probabilities and the relative fitness they imply.
package analysis

import (
	"sort"

	"github.com/pkg/errors"

	moran "github.com/Axelrod-Python/axelrod-moran"
)

// Summary is the empirical outcome of every Moran process started
// with I individuals of P1 and N-I of P2.
type Summary struct {
	P1, P2      string
	N, I        int
	Repetitions int
	P1Fixation  float64
	P2Fixation  float64
}

type pairing struct {
	challenger, incumbent int
}

type tally struct {
	total, challenger, incumbent int
}

// Summarize groups winner records by (challenger, incumbent) and
// returns the fraction of runs each side won. Indices in the records
// refer to positions in u. Summaries are ordered by (P1, P2).
func Summarize(records []moran.WinnerRecord, u *moran.Universe, n, i int) ([]Summary, error) {
	tallies := make(map[pairing]*tally)
	for _, rec := range records {
		for _, idx := range [...]int{rec.Challenger, rec.Incumbent, rec.Winner} {
			if idx < 0 || idx >= u.Len() {
				return nil, errors.Errorf("player index %d out of range [0, %d)", idx, u.Len())
			}
		}
		if rec.Count <= 0 {
			return nil, errors.Errorf("record %+v has non-positive count", rec)
		}

		key := pairing{rec.Challenger, rec.Incumbent}
		t, ok := tallies[key]
		if !ok {
			t = &tally{}
			tallies[key] = t
		}

		t.total += rec.Count
		switch rec.Winner {
		case rec.Challenger:
			t.challenger += rec.Count
		case rec.Incumbent:
			t.incumbent += rec.Count
		}
	}

	result := make([]Summary, 0, len(tallies))
	for key, t := range tallies {
		result = append(result, Summary{
			P1:          u.At(key.challenger).Name,
			P2:          u.At(key.incumbent).Name,
			N:           n,
			I:           i,
			Repetitions: t.total,
			P1Fixation:  float64(t.challenger) / float64(t.total),
			P2Fixation:  float64(t.incumbent) / float64(t.total),
		})
	}

	sort.Slice(result, func(a, b int) bool {
		if result[a].P1 != result[b].P1 {
			return result[a].P1 < result[b].P1
		}
		return result[a].P2 < result[b].P2
	})

	return result, nil
}
