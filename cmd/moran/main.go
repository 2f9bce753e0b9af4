// Runs a batch of Moran processes for every ordered pair of strategies
// and records the winner of each run. Interrupted batches resume where
// they stopped.
package main

import (
	"context"
	"flag"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"time"

	"github.com/golang/glog"

	moran "github.com/Axelrod-Python/axelrod-moran"
	"github.com/Axelrod-Python/axelrod-moran/config"
	"github.com/Axelrod-Python/axelrod-moran/internal/datafile"
	"github.com/Axelrod-Python/axelrod-moran/internal/store"
	"github.com/Axelrod-Python/axelrod-moran/ipd"
	"github.com/Axelrod-Python/axelrod-moran/simulate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		glog.Fatal(err)
	}

	n := flag.Int("n", 4, "Population size")
	i := flag.Int("i", 1, "Initial number of challengers")
	mutation := flag.Float64("mutation_rate", 0, "Probability of mutating instead of cloning")
	sampled := flag.Bool("sampled", true, "Sample scores from the outcome cache instead of playing matches")
	flag.IntVar(&cfg.Repetitions, "repetitions", cfg.Repetitions, "Replicates per ordered pair")
	flag.IntVar(&cfg.Turns, "turns", cfg.Turns, "Turns per match when not sampling")
	flag.Float64Var(&cfg.Noise, "noise", cfg.Noise, "Match noise when not sampling")
	flag.IntVar(&cfg.MaxRounds, "max_rounds", cfg.MaxRounds, "Rounds after which a replicate is abandoned")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Pairs run concurrently (0 = NumCPU)")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Base random seed")
	flag.StringVar(&cfg.DataDir, "data_dir", cfg.DataDir, "Directory of data files")
	flag.StringVar(&cfg.Store, "store", cfg.Store, "Storage backend: csv, sqlite or memory")
	flag.Parse()

	go http.ListenAndServe(cfg.DebugAddr, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	u, err := datafile.ReadPlayers(cfg.PlayersPath())
	if err != nil {
		glog.Fatal(err)
	}

	s, err := store.Open(cfg)
	if err != nil {
		glog.Fatal(err)
	}
	if err := s.Init(ctx); err != nil {
		glog.Fatal(err)
	}
	defer s.Close()

	var scorer moran.RoundScorer
	if *sampled {
		records, err := s.Outcomes(ctx)
		if err != nil {
			glog.Fatal(err)
		}
		cache, err := moran.BuildCache(records)
		if err != nil {
			glog.Fatal(err)
		}
		if err := cache.CoversUniverse(u); err != nil {
			glog.Fatal(err)
		}
		scorer = &moran.CacheScorer{Cache: cache}
	} else {
		engine, err := ipd.NewEngine()
		if err != nil {
			glog.Fatal(err)
		}
		scorer = &moran.MatchScorer{Engine: engine, Turns: cfg.Turns, Noise: cfg.Noise}
	}

	winners := store.NewWinnerSet(s, *n, *i)
	existing, err := winners.Winners(ctx)
	if err != nil {
		glog.Fatal(err)
	}

	opts := moran.ProcessOptions{MaxRounds: cfg.MaxRounds, MutationRate: *mutation}
	if *mutation > 0 {
		opts.Universe = u
	}

	b := &simulate.Batch{
		Universe:   u,
		N:          *n,
		I:          *i,
		Replicates: cfg.Repetitions,
		Workers:    cfg.Workers,
		Seed:       cfg.Seed,
		Scorer:     scorer,
		Options:    opts,
	}

	start := time.Now()
	records, failed, err := b.Run(ctx, winners, existing)
	if err != nil {
		glog.Fatal(err)
	}
	for _, pr := range failed {
		glog.Errorf("N=%d i=%d: %s vs %s is incomplete, rerun to resume it",
			*n, *i, u.At(pr.Challenger), u.At(pr.Incumbent))
	}
	glog.Infof("N=%d i=%d: recorded %d winner rows in %v", *n, *i, len(records), time.Since(start))
}
