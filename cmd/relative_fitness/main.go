// Converts the summarized fixation frequencies into the relative
// fitness of each strategy against each opponent.
package main

import (
	"flag"

	"github.com/golang/glog"

	"github.com/Axelrod-Python/axelrod-moran/analysis"
	"github.com/Axelrod-Python/axelrod-moran/config"
	"github.com/Axelrod-Python/axelrod-moran/internal/datafile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		glog.Fatal(err)
	}

	input := flag.String("input", cfg.SummaryPath(), "Summary file")
	output := flag.String("output", cfg.FitnessPath(), "Relative fitness file")
	flag.Parse()

	summaries, err := datafile.ReadSummaries(*input)
	if err != nil {
		glog.Fatal(err)
	}

	rows := analysis.RelativeFitnessTable(summaries)
	if err := datafile.WriteFitness(*output, rows); err != nil {
		glog.Fatal(err)
	}
	glog.Infof("Wrote %d rows to %s", len(rows), *output)
}
