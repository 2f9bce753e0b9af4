// Aggregates the winner records of every simulated batch into fixation
// frequencies per pair of strategies.
package main

import (
	"context"
	"flag"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/Axelrod-Python/axelrod-moran/analysis"
	"github.com/Axelrod-Python/axelrod-moran/config"
	"github.com/Axelrod-Python/axelrod-moran/internal/datafile"
	"github.com/Axelrod-Python/axelrod-moran/internal/store"
	"github.com/Axelrod-Python/axelrod-moran/simulate"
)

func parseSizes(s string) ([]int, error) {
	var result []int
	for _, field := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}

	return result, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		glog.Fatal(err)
	}

	sizesFlag := flag.String("sizes", "2,4,6,8,10,12,14", "Comma-separated population sizes")
	flag.StringVar(&cfg.DataDir, "data_dir", cfg.DataDir, "Directory of data files")
	flag.StringVar(&cfg.Store, "store", cfg.Store, "Storage backend: csv, sqlite or memory")
	flag.Parse()

	sizes, err := parseSizes(*sizesFlag)
	if err != nil {
		glog.Fatalf("invalid -sizes: %v", err)
	}

	ctx := context.Background()
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

	var all []analysis.Summary
	for _, n := range sizes {
		for _, i := range simulate.StartingStates(n) {
			records, err := store.NewWinnerSet(s, n, i).Winners(ctx)
			if err != nil {
				glog.Fatal(err)
			}
			if len(records) == 0 {
				glog.V(1).Infof("N=%d i=%d: no simulations", n, i)
				continue
			}

			summaries, err := analysis.Summarize(records, u, n, i)
			if err != nil {
				glog.Fatalf("N=%d i=%d: %v", n, i, err)
			}
			glog.Infof("N=%d i=%d: %d pairs", n, i, len(summaries))
			all = append(all, summaries...)
		}
	}

	if err := datafile.WriteSummaries(cfg.SummaryPath(), all); err != nil {
		glog.Fatal(err)
	}
}
