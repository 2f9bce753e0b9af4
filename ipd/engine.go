package ipd

import (
	"math/rand"

	"github.com/pkg/errors"

	moran "github.com/Axelrod-Python/axelrod-moran"
)

// Engine plays iterated prisoner's dilemma matches between registered
// players. It implements moran.MatchEngine and is safe for concurrent
// use once constructed.
type Engine struct {
	players map[string]Player
	order   []string
}

// NewEngine registers the given players, or DefaultPlayers if none.
func NewEngine(players ...Player) (*Engine, error) {
	if len(players) == 0 {
		players = DefaultPlayers
	}

	e := &Engine{players: make(map[string]Player, len(players))}
	for _, p := range players {
		if p.Decide == nil {
			return nil, errors.Errorf("player %q has no decision rule", p.Name)
		}
		if _, ok := e.players[p.Name]; ok {
			return nil, errors.Errorf("duplicate player %q", p.Name)
		}

		e.players[p.Name] = p
		e.order = append(e.order, p.Name)
	}

	return e, nil
}

// Names returns the registered player names in registration order.
func (e *Engine) Names() []string {
	return append([]string(nil), e.order...)
}

// Universe returns a universe of the named players, or of all
// registered players if no names are given.
func (e *Engine) Universe(names ...string) (*moran.Universe, error) {
	if len(names) == 0 {
		names = e.order
	}

	strategies := make([]moran.Strategy, len(names))
	for i, name := range names {
		p, ok := e.players[name]
		if !ok {
			return nil, errors.Errorf("unknown player %q", name)
		}
		strategies[i] = p.Strategy()
	}

	return moran.NewUniverse(strategies...)
}

// Play runs one match of the given number of turns. Each intended
// action is flipped with probability noise. The returned outcome holds
// the average score per turn of a and b.
func (e *Engine) Play(a, b moran.Strategy, turns int, noise float64, rng *rand.Rand) (moran.Outcome, error) {
	pa, ok := e.players[a.Name]
	if !ok {
		return moran.Outcome{}, errors.Errorf("unknown player %q", a.Name)
	}
	pb, ok := e.players[b.Name]
	if !ok {
		return moran.Outcome{}, errors.Errorf("unknown player %q", b.Name)
	}
	if turns <= 0 {
		return moran.Outcome{}, errors.Errorf("match must have at least one turn, got %d", turns)
	}
	if noise < 0 || noise > 1 {
		return moran.Outcome{}, errors.Errorf("noise %v outside [0, 1]", noise)
	}

	histA := make([]Action, 0, turns)
	histB := make([]Action, 0, turns)
	var totalA, totalB float64
	for t := 0; t < turns; t++ {
		actA := pa.Decide(histA, histB, rng)
		actB := pb.Decide(histB, histA, rng)
		if noise > 0 {
			if rng.Float64() < noise {
				actA = actA.Flip()
			}
			if rng.Float64() < noise {
				actB = actB.Flip()
			}
		}

		sa, sb := Score(actA, actB)
		totalA += sa
		totalB += sb
		histA = append(histA, actA)
		histB = append(histB, actB)
	}

	return moran.Outcome{
		A: totalA / float64(turns),
		B: totalB / float64(turns),
	}, nil
}
