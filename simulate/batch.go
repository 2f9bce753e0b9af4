package simulate

import (
	"context"
	"expvar"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	moran "github.com/Axelrod-Python/axelrod-moran"
)

var (
	replicatesRun      = expvar.NewInt("simulate/replicates")
	replicatesExcluded = expvar.NewInt("simulate/replicates_excluded")
)

// Seeds of consecutive pairings are this far apart.
const pairSeedStride = 1 << 32

// WinnerSink receives the aggregated winners of each finished pairing.
type WinnerSink interface {
	WriteWinners(ctx context.Context, records []moran.WinnerRecord) error
}

// Batch runs Replicates processes for every ordered pair (challenger,
// incumbent) of distinct strategies, each started with I challengers
// and N-I incumbents.
type Batch struct {
	Universe   *moran.Universe
	N          int
	I          int
	Replicates int
	// Maximum number of pairings run concurrently. Defaults to NumCPU.
	Workers int
	Seed    int64
	// Scorer is shared by all pairings and must be safe for concurrent use.
	Scorer  moran.RoundScorer
	Options moran.ProcessOptions
}

// Pairing is one ordered pair of strategies of a batch.
type Pairing struct {
	// Position of the pair in the batch, which fixes its seeds.
	Index                 int
	Challenger, Incumbent int
	// Replicates already recorded when the batch started.
	Done int
}

// pairings returns every ordered pair with fewer than Replicates
// recorded runs.
func (b *Batch) pairings(existing []moran.WinnerRecord) []Pairing {
	done := make(map[[2]int]int)
	for _, rec := range existing {
		done[[2]int{rec.Challenger, rec.Incumbent}] += rec.Count
	}

	var result []Pairing
	index := 0
	for i := 0; i < b.Universe.Len(); i++ {
		for j := 0; j < b.Universe.Len(); j++ {
			if i == j {
				continue
			}

			if d := done[[2]int{i, j}]; d < b.Replicates {
				result = append(result, Pairing{Index: index, Challenger: i, Incumbent: j, Done: d})
			}
			index++
		}
	}

	return result
}

// Run plays the replicates still owed given the existing records and
// writes one aggregated record per (pairing, winner) to sink. Replicate
// k of a pairing is always seeded the same way, so a resumed batch
// plays exactly the replicates an uninterrupted one would have.
// Replicates that hit the round cap are logged and produce no record.
//
// A pairing whose process fails for any other reason is logged, keeps
// the winners of the replicates it finished, and is returned among the
// failed pairings; the rest of the batch carries on. Only invalid
// setup, unknown pairings, sink errors and cancellation abort Run.
func (b *Batch) Run(ctx context.Context, sink WinnerSink, existing []moran.WinnerRecord) ([]moran.WinnerRecord, []Pairing, error) {
	if b.Universe == nil || b.Universe.Len() < 2 {
		return nil, nil, errors.New("batch needs a universe of at least 2 strategies")
	}
	i := b.I
	if i == 0 {
		i = 1
	}
	if b.N < 2 || i < 1 || i > b.N-1 {
		return nil, nil, errors.Errorf("invalid population N=%d i=%d", b.N, i)
	}
	if b.Scorer == nil {
		return nil, nil, errors.New("round scorer is required")
	}

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	todo := b.pairings(existing)
	glog.Infof("N=%d i=%d: %d pairings owe replicates", b.N, i, len(todo))

	var mu sync.Mutex
	var all []moran.WinnerRecord
	var failed []Pairing
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, pr := range todo {
		if gctx.Err() != nil {
			break
		}

		pr := pr
		g.Go(func() error {
			records, err := b.runPairing(gctx, pr, i)
			if err != nil {
				if gctx.Err() != nil || errors.Is(err, moran.ErrUnknownPairing) {
					return err
				}
				glog.Errorf("N=%d i=%d: %s vs %s failed: %v", b.N, i,
					b.Universe.At(pr.Challenger), b.Universe.At(pr.Incumbent), err)
				mu.Lock()
				failed = append(failed, pr)
				mu.Unlock()
			}

			if sink != nil && len(records) > 0 {
				if err := sink.WriteWinners(gctx, records); err != nil {
					return errors.Wrap(err, "writing winners")
				}
			}

			mu.Lock()
			all = append(all, records...)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	sort.Slice(all, func(x, y int) bool {
		if all[x].Challenger != all[y].Challenger {
			return all[x].Challenger < all[y].Challenger
		}
		if all[x].Incumbent != all[y].Incumbent {
			return all[x].Incumbent < all[y].Incumbent
		}
		return all[x].Winner < all[y].Winner
	})
	sort.Slice(failed, func(x, y int) bool {
		return failed[x].Index < failed[y].Index
	})

	if err != nil {
		return all, failed, err
	}

	return all, failed, ctx.Err()
}

// runPairing returns the winners of the replicates it finished, even
// when a later replicate fails.
func (b *Batch) runPairing(ctx context.Context, pr Pairing, i int) ([]moran.WinnerRecord, error) {
	challenger, incumbent := b.Universe.At(pr.Challenger), b.Universe.At(pr.Incumbent)
	glog.V(1).Infof("N=%d: %s vs %s, replicates %d to %d",
		b.N, challenger, incumbent, pr.Done, b.Replicates)

	seed := b.Seed + int64(pr.Index)*pairSeedStride
	initial := moran.TwoTypePopulation(challenger, incumbent, b.N, i)
	var p *moran.Process
	wins := make(map[int]int)
	var err error
	for k := pr.Done; k < b.Replicates; k++ {
		rng := rand.New(rand.NewSource(seed + int64(k)))
		if p == nil {
			if p, err = moran.NewProcess(initial, b.Scorer, rng, b.Options); err != nil {
				return nil, err
			}
		} else {
			p.Reset(rng)
		}

		winner, playErr := p.Play(ctx)
		if errors.Is(playErr, moran.ErrRoundLimit) {
			glog.Warningf("%s vs %s replicate %d excluded: %v", challenger, incumbent, k, playErr)
			replicatesExcluded.Add(1)
			continue
		} else if playErr != nil {
			err = errors.Wrapf(playErr, "%s vs %s replicate %d", challenger, incumbent, k)
			break
		}

		wins[b.Universe.Index(winner.Name)]++
		replicatesRun.Add(1)
	}

	records := make([]moran.WinnerRecord, 0, len(wins))
	for winner, count := range wins {
		records = append(records, moran.WinnerRecord{
			Challenger: pr.Challenger,
			Incumbent:  pr.Incumbent,
			Winner:     winner,
			Count:      count,
		})
	}

	return records, err
}
