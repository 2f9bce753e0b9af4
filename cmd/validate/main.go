// Compares the birth-death fixation probability of each experiment pair
// with an estimate from simulated Moran processes.
package main

import (
	"context"
	"flag"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"

	"github.com/golang/glog"

	moran "github.com/Axelrod-Python/axelrod-moran"
	"github.com/Axelrod-Python/axelrod-moran/birthdeath"
	"github.com/Axelrod-Python/axelrod-moran/config"
	"github.com/Axelrod-Python/axelrod-moran/internal/datafile"
	"github.com/Axelrod-Python/axelrod-moran/internal/store"
	"github.com/Axelrod-Python/axelrod-moran/simulate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		glog.Fatal(err)
	}

	experimentPath := flag.String("experiment", "", "YAML experiment file (default built-in pairs)")
	output := flag.String("output", "", "Validation output file (default in data_dir)")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Points computed concurrently (0 = NumCPU)")
	flag.IntVar(&cfg.MaxRounds, "max_rounds", cfg.MaxRounds, "Rounds after which a replicate is abandoned")
	flag.StringVar(&cfg.DataDir, "data_dir", cfg.DataDir, "Directory of data files")
	flag.StringVar(&cfg.Store, "store", cfg.Store, "Storage backend: csv, sqlite or memory")
	flag.Parse()

	go http.ListenAndServe(cfg.DebugAddr, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp := config.DefaultExperiment()
	if *experimentPath != "" {
		if exp, err = config.LoadExperiment(*experimentPath); err != nil {
			glog.Fatal(err)
		}
	}

	model, err := birthdeath.ParseFitnessModel(exp.FitnessModel)
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

	records, err := s.Outcomes(ctx)
	if err != nil {
		glog.Fatal(err)
	}
	cache, err := moran.BuildCache(records)
	if err != nil {
		glog.Fatal(err)
	}

	pairs := make([][2]moran.Strategy, len(exp.Pairs))
	for k, pair := range exp.Pairs {
		pairs[k] = [2]moran.Strategy{{Name: pair[0]}, {Name: pair[1]}}
	}

	if *output == "" {
		*output = cfg.ValidationPath()
	}
	sink, err := datafile.NewAppender(*output, datafile.ValidationHeader)
	if err != nil {
		glog.Fatal(err)
	}
	defer sink.Close()

	v := &simulate.Validation{
		Cache:      cache,
		Pairs:      pairs,
		Sizes:      exp.Sizes,
		Replicates: exp.Repetitions,
		Seed:       exp.Seed,
		Workers:    cfg.Workers,
		Model:      model,
		Intensity:  exp.Intensity,
		MaxRounds:  cfg.MaxRounds,
	}

	results, err := v.Run(ctx, sink)
	if err != nil {
		glog.Fatal(err)
	}
	glog.Infof("Wrote %d validation points to %s", len(results), *output)
}
