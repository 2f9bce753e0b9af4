package simulate

import (
	"context"
	"math"
	"runtime"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	moran "github.com/Axelrod-Python/axelrod-moran"
	"github.com/Axelrod-Python/axelrod-moran/birthdeath"
)

// ValidationSink receives each comparison point as soon as it is done.
type ValidationSink interface {
	WriteValidation(ctx context.Context, rec moran.ValidationRecord) error
}

// Validation compares the analytic fixation probability of every pair
// against an estimate from cache-sampled processes.
type Validation struct {
	Cache *moran.Cache
	Pairs [][2]moran.Strategy
	Sizes []int
	// Number of replicates per comparison point. Replicate k of every
	// point is seeded with Seed + k.
	Replicates int
	Seed       int64
	// Maximum number of points computed concurrently. Defaults to NumCPU.
	Workers int
	Model   birthdeath.FitnessModel
	// Selection intensity of the theoretic value. 0 is neutral drift.
	Intensity float64
	MaxRounds int
}

// StartingStates returns the initial counts of the first strategy that
// are validated for a population of n: 1, n/2 and n-1 without repeats.
func StartingStates(n int) []int {
	var result []int
	seen := make(map[int]bool)
	for _, i := range []int{1, n / 2, n - 1} {
		if i >= 1 && i <= n-1 && !seen[i] {
			seen[i] = true
			result = append(result, i)
		}
	}

	return result
}

type point struct {
	n, i int
	pair [2]moran.Strategy
}

func (v *Validation) points() []point {
	var result []point
	for _, n := range v.Sizes {
		for _, pair := range v.Pairs {
			for _, i := range StartingStates(n) {
				result = append(result, point{n: n, i: i, pair: pair})
			}
		}
	}

	return result
}

// Run computes every comparison point. A point whose theoretic or
// simulated value cannot be computed is logged and recorded as NaN.
// Records are returned in (N, pair, i) order.
func (v *Validation) Run(ctx context.Context, sink ValidationSink) ([]moran.ValidationRecord, error) {
	if v.Cache == nil {
		return nil, errors.New("outcome cache is required")
	}

	payoffs, err := birthdeath.PayoffsFromCache(v.Cache)
	if err != nil {
		return nil, err
	}

	workers := v.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	points := v.points()
	records := make([]moran.ValidationRecord, len(points))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for idx, pt := range points {
		if gctx.Err() != nil {
			break
		}

		idx, pt := idx, pt
		g.Go(func() error {
			rec := v.compare(gctx, payoffs, pt)
			records[idx] = rec
			if sink != nil {
				if err := sink.WriteValidation(gctx, rec); err != nil {
					return errors.Wrap(err, "writing validation")
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (v *Validation) compare(ctx context.Context, payoffs *birthdeath.PayoffTable, pt point) moran.ValidationRecord {
	a, b := pt.pair[0], pt.pair[1]
	rec := moran.ValidationRecord{
		Repetitions: v.Replicates,
		N:           pt.n,
		I:           pt.i,
		Player1:     a.Name,
		Player2:     b.Name,
		Theoretic:   math.NaN(),
		Simulated:   math.NaN(),
	}

	m, err := payoffs.Matrix(a.Name, b.Name)
	if err == nil {
		rec.Theoretic, err = birthdeath.Fixation(m, pt.n, pt.i, v.Model, v.Intensity)
	}
	if err != nil {
		glog.Warningf("(%s, %s) N=%d i=%d: no theoretic value: %v", a, b, pt.n, pt.i, err)
		rec.Theoretic = math.NaN()
	}

	result, err := EstimateFixation(ctx, Estimate{
		A:          a,
		B:          b,
		N:          pt.n,
		I:          pt.i,
		Replicates: v.Replicates,
		Seed:       v.Seed,
		Workers:    1,
		Scorer:     &moran.CacheScorer{Cache: v.Cache},
		Options:    moran.ProcessOptions{MaxRounds: v.MaxRounds},
	})
	if err != nil {
		glog.Warningf("(%s, %s) N=%d i=%d: no simulated value: %v", a, b, pt.n, pt.i, err)
	} else {
		rec.Simulated = result.Fixation
	}

	glog.V(1).Infof("(%s, %s) N=%d i=%d: theoretic %.4f simulated %.4f",
		a, b, pt.n, pt.i, rec.Theoretic, rec.Simulated)
	return rec
}
