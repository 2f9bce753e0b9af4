package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Experiment describes a validation or simulation campaign.
type Experiment struct {
	// Pairs compared by the validation tool.
	Pairs        [][]string `yaml:"pairs"`
	Sizes        []int      `yaml:"sizes"`
	Repetitions  int        `yaml:"repetitions"`
	FitnessModel string     `yaml:"fitness_model"`
	Intensity    float64    `yaml:"intensity"`
	Seed         int64      `yaml:"seed"`
}

// DefaultExperiment compares a handful of classic pairs for every even
// population size up to 20.
func DefaultExperiment() Experiment {
	sizes := make([]int, 0, 10)
	for n := 2; n <= 20; n += 2 {
		sizes = append(sizes, n)
	}

	return Experiment{
		Pairs: [][]string{
			{"Defector", "Defector"},
			{"Defector", "Alternator"},
			{"Defector", "Cooperator"},
			{"Defector", "Tit For Tat"},
			{"Defector", "Win-Stay Lose-Shift"},
			{"Random", "Random"},
			{"Random", "GTFT"},
		},
		Sizes:        sizes,
		Repetitions:  1000,
		FitnessModel: "nowak",
		Intensity:    1,
	}
}

// LoadExperiment reads an experiment file. Fields missing from the
// file keep the values of DefaultExperiment.
func LoadExperiment(path string) (Experiment, error) {
	exp := DefaultExperiment()
	data, err := os.ReadFile(path)
	if err != nil {
		return exp, fmt.Errorf("load experiment: %w", err)
	}

	if err := yaml.Unmarshal(data, &exp); err != nil {
		return exp, fmt.Errorf("parse experiment %s: %w", path, err)
	}

	return exp, exp.Validate()
}

func (e Experiment) Validate() error {
	for i, pair := range e.Pairs {
		if len(pair) != 2 {
			return fmt.Errorf("pair %d has %d strategies, expected 2", i, len(pair))
		}
	}
	for _, n := range e.Sizes {
		if n < 2 {
			return fmt.Errorf("population size %d is less than 2", n)
		}
	}
	if e.Repetitions <= 0 {
		return fmt.Errorf("repetitions must be positive, got %d", e.Repetitions)
	}
	if e.Intensity < 0 {
		return fmt.Errorf("selection intensity must be non-negative, got %v", e.Intensity)
	}

	return nil
}
