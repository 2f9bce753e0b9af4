// Package cachegen builds outcome caches by playing every pair of a
// strategy universe through a match engine.
package cachegen

import (
	"context"
	"expvar"
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	moran "github.com/Axelrod-Python/axelrod-moran"
)

var (
	tasksCompleted     = expvar.NewInt("cachegen/tasks_completed")
	tasksFailed        = expvar.NewInt("cachegen/tasks_failed")
	repetitionsPlayed  = expvar.NewInt("cachegen/repetitions")
	repetitionsDropped = expvar.NewInt("cachegen/repetitions_dropped")
)

const (
	DefaultPrecision = 5
	// Seeds of consecutive pairs are this far apart, so that no pair
	// reuses another pair's repetition seeds.
	pairSeedStride = 1 << 32
)

// Task asks for Repetitions more contests between A and B. Repetition
// k is played with a random source seeded with Seed + k.
type Task struct {
	A, B        moran.Strategy
	Repetitions int
	Seed        int64
}

// Sink receives the outcome records of each finished task.
type Sink interface {
	WriteOutcomes(ctx context.Context, records []moran.OutcomeRecord) error
}

// Builder plays the contests that make up an outcome cache.
type Builder struct {
	Engine      moran.MatchEngine
	Turns       int
	Noise       float64
	Repetitions int
	// Number of decimal places kept in each outcome. Negative disables
	// truncation.
	Precision int
	// Maximum number of tasks run concurrently. Defaults to NumCPU.
	Workers int
	Seed    int64
}

// RequiredRepetitions returns the number of contests needed for a
// stable distribution of the pair: one if neither side can vary.
func (b *Builder) RequiredRepetitions(x, y moran.Strategy) int {
	if moran.IsStochasticPairing(x, y, b.Noise) {
		return b.Repetitions
	}

	return 1
}

func (b *Builder) pairSeed(pairIndex int) int64 {
	return b.Seed + int64(pairIndex)*pairSeedStride
}

// Tasks returns a task for every unordered pair of the universe,
// including self-pairs.
func (b *Builder) Tasks(u *moran.Universe) []Task {
	return b.Reconcile(u, nil)
}

// Reconcile returns the tasks still owed given the records already
// persisted: for each pair, the required repetitions minus those
// already observed in either orientation. Pairs that are complete are
// skipped. A resumed task continues the seed sequence of its pair, so
// an interrupted build that is resumed produces the same cache as one
// that ran to completion.
//
// Only successful repetitions are recorded. If some repetitions of a
// pair failed, the resumed task restarts at the successful count and
// replays seeds that already produced recorded outcomes.
func (b *Builder) Reconcile(u *moran.Universe, existing []moran.OutcomeRecord) []Task {
	observed := make(map[moran.PairKey]int)
	for _, rec := range existing {
		key, _ := moran.NewPairKey(rec.A, rec.B)
		observed[key] += rec.Count
	}

	var tasks []Task
	pairIndex := 0
	u.Pairs(func(i, j int) {
		x, y := u.At(i), u.At(j)
		key, _ := moran.NewPairKey(x.Name, y.Name)
		done := observed[key]
		owed := b.RequiredRepetitions(x, y) - done
		if owed > 0 {
			tasks = append(tasks, Task{
				A:           x,
				B:           y,
				Repetitions: owed,
				Seed:        b.pairSeed(pairIndex) + int64(done),
			})
		}

		pairIndex++
	})

	return tasks
}

// Truncate drops all but the given number of decimal places of x,
// rounding toward zero.
func Truncate(x float64, precision int) float64 {
	if precision < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}

	scale := math.Pow(10, float64(precision))
	v := x * scale
	// 2.995 * 1000 is 2994.9999999999995 in floating point.
	if r := math.Round(v); math.Abs(v-r) < 1e-9*math.Max(1, math.Abs(v)) {
		v = r
	}

	return math.Trunc(v) / scale
}

// Play runs every repetition of the task and returns the tally of
// truncated outcomes. Failed repetitions are logged and dropped. If
// every repetition fails the error wraps moran.ErrInvalidDistribution.
func (b *Builder) Play(t Task) (map[moran.Outcome]int, error) {
	counts := make(map[moran.Outcome]int)
	var lastErr error
	for k := 0; k < t.Repetitions; k++ {
		rng := rand.New(rand.NewSource(t.Seed + int64(k)))
		o, err := b.Engine.Play(t.A, t.B, b.Turns, b.Noise, rng)
		if err != nil {
			glog.Warningf("(%s, %s) repetition %d failed: %v", t.A, t.B, k, err)
			repetitionsDropped.Add(1)
			lastErr = err
			continue
		}

		o = moran.Outcome{A: Truncate(o.A, b.Precision), B: Truncate(o.B, b.Precision)}
		counts[o]++
		repetitionsPlayed.Add(1)
	}

	if len(counts) == 0 {
		return nil, errors.Wrapf(moran.ErrInvalidDistribution,
			"(%s, %s): all %d repetitions failed, last error: %v", t.A, t.B, t.Repetitions, lastErr)
	}

	return counts, nil
}

// Build runs the tasks on a bounded pool of workers. Each finished
// task is written to sink (if non-nil) and added to the returned
// cache, which only holds the pairs built by this call. Tasks whose
// every repetition failed are logged and returned; they do not stop
// the build. An error from the sink or cancellation of ctx stops
// dispatching new tasks, and rows already written stay valid.
func (b *Builder) Build(ctx context.Context, tasks []Task, sink Sink) (*moran.Cache, []Task, error) {
	if b.Engine == nil {
		return nil, nil, errors.New("match engine is required")
	}
	if b.Turns <= 0 {
		return nil, nil, errors.Errorf("turns must be positive, got %d", b.Turns)
	}

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var mu sync.Mutex
	cache := moran.NewCache()
	var failed []Task

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	glog.Infof("Building %d pairs with %d workers", len(tasks), workers)
	for i, t := range tasks {
		if gctx.Err() != nil {
			break
		}

		i, t := i, t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			glog.V(1).Infof("[%d/%d] Playing %d repetitions of (%s, %s)",
				i+1, len(tasks), t.Repetitions, t.A, t.B)
			counts, err := b.Play(t)
			if err != nil {
				glog.Errorf("Skipping (%s, %s): %v", t.A, t.B, err)
				tasksFailed.Add(1)
				mu.Lock()
				failed = append(failed, t)
				mu.Unlock()
				return nil
			}

			pdf, err := moran.NewPdf(counts)
			if err != nil {
				return err
			}

			if sink != nil {
				if err := sink.WriteOutcomes(gctx, records(t, pdf)); err != nil {
					return errors.Wrapf(err, "writing (%s, %s)", t.A, t.B)
				}
			}

			mu.Lock()
			cache.Add(t.A.Name, t.B.Name, pdf)
			mu.Unlock()

			tasksCompleted.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return cache, failed, err
	}

	return cache, failed, ctx.Err()
}

func records(t Task, pdf *moran.Pdf) []moran.OutcomeRecord {
	result := make([]moran.OutcomeRecord, pdf.Len())
	for i, o := range pdf.SampleSpace {
		result[i] = moran.OutcomeRecord{
			A:       t.A.Name,
			B:       t.B.Name,
			Outcome: o,
			Count:   pdf.Counts[i],
		}
	}

	return result
}
