package ipd

import (
	"math"
	"math/rand"

	moran "github.com/Axelrod-Python/axelrod-moran"
)

// Decision chooses the next action from the histories of both players.
// own and opp have equal length: the number of turns played so far.
type Decision func(own, opp []Action, rng *rand.Rand) Action

// Player is a registered strategy.
type Player struct {
	Name       string
	Stochastic bool
	Decide     Decision
}

// Strategy returns the identity of the player in a Moran process.
func (p Player) Strategy() moran.Strategy {
	return moran.Strategy{Name: p.Name, Stochastic: p.Stochastic}
}

// Probability that GTFT forgives a defection:
// min(1 - (T - R) / (R - S), (R - P) / (T - P)).
var gtftForgiveness = math.Min(
	1-(Temptation-Reward)/(Reward-Sucker),
	(Reward-Punishment)/(Temptation-Punishment))

// DefaultPlayers lists every built-in player in registration order.
var DefaultPlayers = []Player{
	{Name: "Cooperator", Decide: always(Cooperate)},
	{Name: "Defector", Decide: always(Defect)},
	{Name: "Tit For Tat", Decide: titForTat(Cooperate)},
	{Name: "Suspicious Tit For Tat", Decide: titForTat(Defect)},
	{Name: "Alternator", Decide: alternator},
	{Name: "Grudger", Decide: grudger},
	{Name: "Win-Stay Lose-Shift", Decide: winStayLoseShift},
	{Name: "Tit For 2 Tats", Decide: titFor2Tats},
	{Name: "Random", Stochastic: true, Decide: random},
	{Name: "GTFT", Stochastic: true, Decide: generousTitForTat},
}

func always(a Action) Decision {
	return func(own, opp []Action, rng *rand.Rand) Action {
		return a
	}
}

func titForTat(first Action) Decision {
	return func(own, opp []Action, rng *rand.Rand) Action {
		if len(opp) == 0 {
			return first
		}

		return opp[len(opp)-1]
	}
}

func alternator(own, opp []Action, rng *rand.Rand) Action {
	if len(own) == 0 {
		return Cooperate
	}

	return own[len(own)-1].Flip()
}

func grudger(own, opp []Action, rng *rand.Rand) Action {
	for _, a := range opp {
		if a == Defect {
			return Defect
		}
	}

	return Cooperate
}

// Repeat the last action after a good payoff (R or T), otherwise switch.
func winStayLoseShift(own, opp []Action, rng *rand.Rand) Action {
	if len(own) == 0 {
		return Cooperate
	}

	last := own[len(own)-1]
	if opp[len(opp)-1] == Cooperate {
		return last
	}

	return last.Flip()
}

func titFor2Tats(own, opp []Action, rng *rand.Rand) Action {
	n := len(opp)
	if n >= 2 && opp[n-1] == Defect && opp[n-2] == Defect {
		return Defect
	}

	return Cooperate
}

func random(own, opp []Action, rng *rand.Rand) Action {
	if rng.Float64() < 0.5 {
		return Cooperate
	}

	return Defect
}

func generousTitForTat(own, opp []Action, rng *rand.Rand) Action {
	if len(opp) == 0 || opp[len(opp)-1] == Cooperate {
		return Cooperate
	}

	if rng.Float64() < gtftForgiveness {
		return Cooperate
	}

	return Defect
}
