// Package simulate runs many independent Moran processes to estimate
// fixation probabilities empirically.
package simulate

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	moran "github.com/Axelrod-Python/axelrod-moran"
)

// Estimate describes a set of replicates of a two-strategy process
// started with I individuals of A and N-I of B.
type Estimate struct {
	A, B moran.Strategy
	N, I int
	// Replicate k is seeded with Seed + k.
	Replicates int
	Seed       int64
	// Maximum number of replicates run concurrently. Defaults to NumCPU.
	Workers int
	// Scorer is shared by all replicates and must be safe for
	// concurrent use.
	Scorer  moran.RoundScorer
	Options moran.ProcessOptions
}

// EstimateResult counts the outcome of every replicate. Excluded
// replicates hit the round cap and do not count toward Fixation.
type EstimateResult struct {
	Wins     int
	Runs     int
	Excluded int
	Fixation float64
}

func (e *Estimate) validate() error {
	if e.N < 2 {
		return errors.Errorf("population size %d is less than 2", e.N)
	}
	if e.I < 1 || e.I > e.N-1 {
		return errors.Errorf("initial count %d outside [1, %d]", e.I, e.N-1)
	}
	if e.Replicates <= 0 {
		return errors.Errorf("replicates must be positive, got %d", e.Replicates)
	}
	if e.Scorer == nil {
		return errors.New("round scorer is required")
	}

	return nil
}

// EstimateFixation runs the replicates and returns the fraction won by
// A. Any replicate error other than the round cap aborts the estimate.
func EstimateFixation(ctx context.Context, e Estimate) (EstimateResult, error) {
	if err := e.validate(); err != nil {
		return EstimateResult{Fixation: math.NaN()}, err
	}

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var mu sync.Mutex
	var result EstimateResult
	initial := moran.TwoTypePopulation(e.A, e.B, e.N, e.I)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for k := 0; k < e.Replicates; k++ {
		if gctx.Err() != nil {
			break
		}

		k := k
		g.Go(func() error {
			rng := rand.New(rand.NewSource(e.Seed + int64(k)))
			p, err := moran.NewProcess(initial, e.Scorer, rng, e.Options)
			if err != nil {
				return err
			}

			winner, err := p.Play(gctx)
			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, moran.ErrRoundLimit) {
				glog.Warningf("(%s, %s) N=%d i=%d replicate %d excluded: %v", e.A, e.B, e.N, e.I, k, err)
				result.Excluded++
				return nil
			} else if err != nil {
				return errors.Wrapf(err, "(%s, %s) N=%d i=%d replicate %d", e.A, e.B, e.N, e.I, k)
			}

			result.Runs++
			if winner.Name == e.A.Name {
				result.Wins++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return EstimateResult{Fixation: math.NaN()}, err
	}
	if err := ctx.Err(); err != nil {
		return EstimateResult{Fixation: math.NaN()}, err
	}

	result.Fixation = math.NaN()
	if result.Runs > 0 {
		result.Fixation = float64(result.Wins) / float64(result.Runs)
	}

	return result, nil
}
