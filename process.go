package moran

import (
	"context"
	"expvar"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	roundsPlayed = expvar.NewInt("moran/rounds")
	absorptions  = expvar.NewInt("moran/absorptions")
	pairSamples  = expvar.NewInt("moran/pair_samples")
)

// DefaultMaxRounds caps a process when ProcessOptions.MaxRounds is unset.
const DefaultMaxRounds = 1000000

// ProcessOptions configures a Process. The zero value describes a
// process without mutation, without score history and with
// DefaultMaxRounds as its round cap.
type ProcessOptions struct {
	// Probability that the individual chosen to die is replaced by a
	// uniformly random strategy of Universe rather than a clone.
	MutationRate float64
	// Strategies to mutate into. Required when MutationRate > 0.
	Universe *Universe
	// Maximum number of rounds Play will run before giving up.
	MaxRounds int
	// Keep the round scores and population counts of every round.
	KeepHistory bool
}

// Process is a Moran process over a fixed-size population. Each round
// every pair of individuals meets once, then one individual chosen
// with probability proportional to its round score reproduces and
// replaces one individual chosen uniformly at random.
//
// A Process is not safe for concurrent use; run independent replicates
// on independent processes.
type Process struct {
	initial []Strategy
	players []Strategy
	scorer  RoundScorer
	rng     *rand.Rand
	opts    ProcessOptions

	round        int
	scoreHistory [][]float64
	populations  []map[string]int

	cumulative []float64
}

// NewProcess creates a process starting from the given population.
func NewProcess(initial []Strategy, scorer RoundScorer, rng *rand.Rand, opts ProcessOptions) (*Process, error) {
	if len(initial) < 2 {
		return nil, errors.Errorf("population must have at least 2 members, got %d", len(initial))
	}
	if scorer == nil {
		return nil, errors.New("round scorer is required")
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	if opts.MutationRate < 0 || opts.MutationRate > 1 {
		return nil, errors.Errorf("mutation rate %v outside [0, 1]", opts.MutationRate)
	}
	if opts.MutationRate > 0 && (opts.Universe == nil || opts.Universe.Len() == 0) {
		return nil, errors.New("mutation requires a strategy universe")
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}

	p := &Process{
		initial:    append([]Strategy(nil), initial...),
		scorer:     scorer,
		opts:       opts,
		cumulative: make([]float64, 0, len(initial)),
	}
	p.Reset(rng)
	return p, nil
}

// TwoTypePopulation returns i copies of a followed by n-i copies of b.
func TwoTypePopulation(a, b Strategy, n, i int) []Strategy {
	result := make([]Strategy, n)
	for k := range result {
		if k < i {
			result[k] = a
		} else {
			result[k] = b
		}
	}

	return result
}

// Reset restores the initial population and round counter, and
// replaces the random source so that another replicate can be run.
func (p *Process) Reset(rng *rand.Rand) {
	p.players = append(p.players[:0], p.initial...)
	p.rng = rng
	p.round = 0
	p.scoreHistory = nil
	p.populations = nil
	if p.opts.KeepHistory {
		p.populations = append(p.populations, p.Counts())
	}
}

// Population returns a copy of the current population.
func (p *Process) Population() []Strategy {
	return append([]Strategy(nil), p.players...)
}

// Round returns the number of completed rounds.
func (p *Process) Round() int {
	return p.round
}

// Counts returns the number of individuals of each strategy present.
func (p *Process) Counts() map[string]int {
	result := make(map[string]int)
	for _, s := range p.players {
		result[s.Name]++
	}

	return result
}

// IsAbsorbed reports whether a single strategy remains.
func (p *Process) IsAbsorbed() bool {
	for _, s := range p.players[1:] {
		if s.Name != p.players[0].Name {
			return false
		}
	}

	return true
}

// Winner returns the remaining strategy of an absorbed process.
func (p *Process) Winner() (Strategy, bool) {
	if !p.IsAbsorbed() {
		return Strategy{}, false
	}

	return p.players[0], true
}

// ScoreHistory returns the scores of every completed round when the
// process keeps history.
func (p *Process) ScoreHistory() [][]float64 {
	return p.scoreHistory
}

// PopulationHistory returns the population counts before the first
// round and after every completed round when the process keeps history.
func (p *Process) PopulationHistory() []map[string]int {
	return p.populations
}

// ScoreRound plays one round and returns each individual's total
// score, without any birth or death.
func (p *Process) ScoreRound() ([]float64, error) {
	scores := make([]float64, len(p.players))
	if err := p.scoreRound(scores); err != nil {
		return nil, err
	}

	return scores, nil
}

func (p *Process) scoreRound(scores []float64) error {
	if err := p.scorer.ScoreRound(p.players, scores, p.rng); err != nil {
		return errors.Wrapf(err, "round %d", p.round)
	}

	for i, s := range scores {
		if s < 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return errors.Errorf("round %d: %s has score %v, fitness proportionate selection needs finite non-negative scores",
				p.round, p.players[i], s)
		}
	}

	return nil
}

// Step plays one round and performs a single birth-death event.
func (p *Process) Step() error {
	scores := allocFloatSlice(len(p.players))
	defer freeFloatSlice(scores)
	if err := p.scoreRound(scores); err != nil {
		return err
	}

	birth := sampleProportional(p.rng, scores, p.cumulative)
	death := p.rng.Intn(len(p.players))
	if p.opts.MutationRate > 0 && p.rng.Float64() < p.opts.MutationRate {
		u := p.opts.Universe
		p.players[death] = u.At(p.rng.Intn(u.Len()))
	} else {
		p.players[death] = p.players[birth]
	}

	p.round++
	roundsPlayed.Add(1)
	if p.opts.KeepHistory {
		p.scoreHistory = append(p.scoreHistory, append([]float64(nil), scores...))
		p.populations = append(p.populations, p.Counts())
	}

	return nil
}

// Play steps the process until a single strategy remains and returns
// it. If the round cap is reached first, Play returns an error wrapping
// ErrRoundLimit and the process can be inspected or stepped further.
func (p *Process) Play(ctx context.Context) (Strategy, error) {
	for !p.IsAbsorbed() {
		if p.round >= p.opts.MaxRounds {
			return Strategy{}, errors.Wrapf(ErrRoundLimit, "after %d rounds population is %s",
				p.round, formatCounts(p.Counts()))
		}

		if p.round%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return Strategy{}, err
			}
		}

		if err := p.Step(); err != nil {
			return Strategy{}, err
		}
	}

	absorptions.Add(1)
	return p.players[0], nil
}

func formatCounts(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s:%d", name, counts[name])
	}
	return "{" + strings.Join(parts, " ") + "}"
}
