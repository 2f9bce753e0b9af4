// Plays every pair of strategies and appends the distribution of their
// average scores to the outcome cache. Pairs already covered by the
// cache only play the repetitions they are still owed.
package main

import (
	"context"
	"flag"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/Axelrod-Python/axelrod-moran/cachegen"
	"github.com/Axelrod-Python/axelrod-moran/config"
	"github.com/Axelrod-Python/axelrod-moran/internal/datafile"
	"github.com/Axelrod-Python/axelrod-moran/internal/store"
	"github.com/Axelrod-Python/axelrod-moran/ipd"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		glog.Fatal(err)
	}

	players := flag.String("players", "", "Comma-separated strategies to include (default all)")
	flag.IntVar(&cfg.Turns, "turns", cfg.Turns, "Turns per match")
	flag.Float64Var(&cfg.Noise, "noise", cfg.Noise, "Probability of flipping each action")
	flag.IntVar(&cfg.Repetitions, "repetitions", cfg.Repetitions,
		"Repetitions of pairs involving a stochastic strategy")
	flag.IntVar(&cfg.Precision, "precision", cfg.Precision, "Decimal digits kept of each score")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Pairs played concurrently (0 = NumCPU)")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Base random seed")
	flag.StringVar(&cfg.DataDir, "data_dir", cfg.DataDir, "Directory of data files")
	flag.StringVar(&cfg.Store, "store", cfg.Store, "Storage backend: csv, sqlite or memory")
	flag.Parse()

	go http.ListenAndServe(cfg.DebugAddr, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine, err := ipd.NewEngine()
	if err != nil {
		glog.Fatal(err)
	}

	names := engine.Names()
	if *players != "" {
		names = strings.Split(*players, ",")
	}
	u, err := engine.Universe(names...)
	if err != nil {
		glog.Fatal(err)
	}

	if err := datafile.WritePlayers(cfg.PlayersPath(), u); err != nil {
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

	existing, err := s.Outcomes(ctx)
	if err != nil {
		glog.Fatal(err)
	}

	b := &cachegen.Builder{
		Engine:      engine,
		Turns:       cfg.Turns,
		Noise:       cfg.Noise,
		Repetitions: cfg.Repetitions,
		Precision:   cfg.Precision,
		Workers:     cfg.Workers,
		Seed:        cfg.Seed,
	}

	tasks := b.Reconcile(u, existing)
	glog.Infof("%d strategies, %d of %d pairs owe repetitions",
		u.Len(), len(tasks), len(b.Tasks(u)))

	start := time.Now()
	cache, failed, err := b.Build(ctx, tasks, s)
	if err != nil {
		glog.Fatal(err)
	}

	for _, t := range failed {
		glog.Errorf("(%s, %s) produced no outcomes", t.A, t.B)
	}
	glog.Infof("Built %d pairs in %v", cache.Len(), time.Since(start))
}
