// Package ipd implements the iterated prisoner's dilemma as a match
// engine for Moran processes.
package ipd

// Action is a single move in the prisoner's dilemma.
type Action uint8

const (
	Cooperate Action = iota
	Defect
)

var actionStr = [...]string{
	"C",
	"D",
}

func (a Action) String() string {
	return actionStr[a]
}

// Flip returns the opposite action.
func (a Action) Flip() Action {
	if a == Cooperate {
		return Defect
	}

	return Cooperate
}

// Payoffs of the standard prisoner's dilemma.
const (
	Reward     = 3.0
	Sucker     = 0.0
	Temptation = 5.0
	Punishment = 1.0
)

// Score returns the payoffs of the row and column player.
func Score(a, b Action) (float64, float64) {
	switch {
	case a == Cooperate && b == Cooperate:
		return Reward, Reward
	case a == Cooperate && b == Defect:
		return Sucker, Temptation
	case a == Defect && b == Cooperate:
		return Temptation, Sucker
	default:
		return Punishment, Punishment
	}
}
