package birthdeath

import (
	"github.com/pkg/errors"

	moran "github.com/Axelrod-Python/axelrod-moran"
)

// PayoffTable holds the long-run mean per-turn payoff of every contest
// between two strategies, keyed by unordered pair.
type PayoffTable struct {
	means map[moran.PairKey]moran.Outcome
}

// NewPayoffTable builds a table from mean outcomes keyed by (a, b),
// oriented so that Outcome.A is the payoff of a.
func NewPayoffTable(means map[[2]string]moran.Outcome) *PayoffTable {
	pt := &PayoffTable{means: make(map[moran.PairKey]moran.Outcome, len(means))}
	for pair, o := range means {
		pt.Set(pair[0], pair[1], o)
	}

	return pt
}

// PayoffsFromCache uses the count-weighted mean of every distribution in
// the cache as the long-run payoff of the pair.
func PayoffsFromCache(c *moran.Cache) (*PayoffTable, error) {
	pt := &PayoffTable{means: make(map[moran.PairKey]moran.Outcome, c.Len())}
	for _, key := range c.Keys() {
		pdf, err := c.Get(key.A, key.B)
		if err != nil {
			return nil, err
		}
		pt.means[key] = pdf.Mean()
	}

	return pt, nil
}

// Set records the mean outcome of a contest between a and b.
func (pt *PayoffTable) Set(a, b string, o moran.Outcome) {
	key, swapped := moran.NewPairKey(a, b)
	if swapped {
		o = o.Swap()
	}

	pt.means[key] = o
}

// Payoff returns the mean outcome of a contest between a and b,
// oriented so that Outcome.A is the payoff of a.
func (pt *PayoffTable) Payoff(a, b string) (moran.Outcome, error) {
	key, swapped := moran.NewPairKey(a, b)
	o, ok := pt.means[key]
	if !ok {
		return moran.Outcome{}, errors.Wrapf(moran.ErrUnknownPairing, "(%s, %s)", a, b)
	}

	if swapped {
		return o.Swap(), nil
	}

	return o, nil
}

// Matrix returns the utility matrix of the pair (s1, s2):
//
//	[ u(s1 vs s1)  u(s1 vs s2) ]
//	[ u(s2 vs s1)  u(s2 vs s2) ]
func (pt *PayoffTable) Matrix(s1, s2 string) (Matrix, error) {
	self1, err := pt.Payoff(s1, s1)
	if err != nil {
		return Matrix{}, err
	}

	cross, err := pt.Payoff(s1, s2)
	if err != nil {
		return Matrix{}, err
	}

	self2, err := pt.Payoff(s2, s2)
	if err != nil {
		return Matrix{}, err
	}

	return Matrix{
		{self1.A, cross.A},
		{cross.B, self2.A},
	}, nil
}
