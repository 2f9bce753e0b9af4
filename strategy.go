package moran

import "github.com/pkg/errors"

// Strategy identifies a behavioral rule by name. Stochastic strategies
// need repeated contests to build a stable outcome distribution.
type Strategy struct {
	Name       string
	Stochastic bool
}

func (s Strategy) String() string {
	return s.Name
}

// IsStochasticPairing reports whether a contest between a and b can
// produce different outcomes from one repetition to the next.
func IsStochasticPairing(a, b Strategy, noise float64) bool {
	return a.Stochastic || b.Stochastic || noise > 0
}

// Universe is the immutable, ordered set of strategies that a cache
// build or a simulation batch works over. The index of a strategy is
// its position, which is also its id in the player index file.
type Universe struct {
	strategies []Strategy
	index      map[string]int
}

func NewUniverse(strategies ...Strategy) (*Universe, error) {
	if len(strategies) == 0 {
		return nil, errors.New("universe must contain at least one strategy")
	}

	u := &Universe{
		strategies: make([]Strategy, len(strategies)),
		index:      make(map[string]int, len(strategies)),
	}
	for i, s := range strategies {
		if s.Name == "" {
			return nil, errors.Errorf("strategy %d has an empty name", i)
		}
		if j, ok := u.index[s.Name]; ok {
			return nil, errors.Errorf("duplicate strategy %q at positions %d and %d", s.Name, j, i)
		}

		u.strategies[i] = s
		u.index[s.Name] = i
	}

	return u, nil
}

func (u *Universe) Len() int {
	return len(u.strategies)
}

// At returns the strategy with the given index.
func (u *Universe) At(i int) Strategy {
	return u.strategies[i]
}

// Index returns the position of the named strategy, or -1.
func (u *Universe) Index(name string) int {
	if i, ok := u.index[name]; ok {
		return i
	}

	return -1
}

// Lookup returns the named strategy.
func (u *Universe) Lookup(name string) (Strategy, bool) {
	i, ok := u.index[name]
	if !ok {
		return Strategy{}, false
	}

	return u.strategies[i], true
}

// Strategies returns a copy of the strategies in index order.
func (u *Universe) Strategies() []Strategy {
	result := make([]Strategy, len(u.strategies))
	copy(result, u.strategies)
	return result
}

// Pairs calls cb for every unordered pair (i <= j) of strategies,
// including self-pairs, in index order.
func (u *Universe) Pairs(cb func(i, j int)) {
	for i := range u.strategies {
		for j := i; j < len(u.strategies); j++ {
			cb(i, j)
		}
	}
}
