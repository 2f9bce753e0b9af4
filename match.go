package moran

import (
	"math/rand"

	"github.com/pkg/errors"
)

// MatchEngine plays one complete contest between two strategies and
// returns each side's average score per turn. Engines may be stochastic
// and must draw all of their randomness from rng.
type MatchEngine interface {
	Play(a, b Strategy, turns int, noise float64, rng *rand.Rand) (Outcome, error)
}

// RoundScorer fills scores with each member's accumulated score after
// every distinct pair of the population has met once. len(scores) ==
// len(population) and scores is zeroed on entry.
type RoundScorer interface {
	ScoreRound(population []Strategy, scores []float64, rng *rand.Rand) error
}

// MatchScorer scores a round by playing a fresh contest for every pair.
type MatchScorer struct {
	Engine MatchEngine
	Turns  int
	Noise  float64
}

func (ms *MatchScorer) ScoreRound(population []Strategy, scores []float64, rng *rand.Rand) error {
	for i := range population {
		for j := i + 1; j < len(population); j++ {
			o, err := ms.Engine.Play(population[i], population[j], ms.Turns, ms.Noise, rng)
			if err != nil {
				return errors.Wrapf(err, "match (%s, %s)", population[i], population[j])
			}

			scores[i] += o.A
			scores[j] += o.B
		}
	}

	return nil
}

// CacheScorer scores a round by sampling every pair's outcome from a
// cache of previously observed contests.
type CacheScorer struct {
	Cache *Cache
}

func (cs *CacheScorer) ScoreRound(population []Strategy, scores []float64, rng *rand.Rand) error {
	for i := range population {
		for j := i + 1; j < len(population); j++ {
			pdf, err := cs.Cache.Get(population[i].Name, population[j].Name)
			if err != nil {
				return err
			}

			o := pdf.Sample(rng)
			scores[i] += o.A
			scores[j] += o.B
			pairSamples.Add(1)
		}
	}

	return nil
}
