package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 200, cfg.Turns)
	assert.Equal(t, 1000, cfg.Repetitions)
	assert.Equal(t, 1000000, cfg.MaxRounds)
	assert.Equal(t, "csv", cfg.Store)
	assert.Equal(t, filepath.Join("data", "outcomes.csv"), cfg.OutcomesPath())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MORAN_DATA_DIR", "/tmp/moran")
	t.Setenv("MORAN_NOISE", "0.05")
	t.Setenv("MORAN_STORE", "sqlite")
	t.Setenv("MORAN_SEED", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.05, cfg.Noise)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "/tmp/moran/moran.db", cfg.SQLitePath())
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("MORAN_TURNS", "not-an-int")
	_, err := Load()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "parse env:"), err.Error())

	t.Setenv("MORAN_TURNS", "200")
	t.Setenv("MORAN_STORE", "postgres")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("MORAN_STORE", "csv")
	t.Setenv("MORAN_NOISE", "1.5")
	_, err = Load()
	assert.Error(t, err)
}

func TestSimsPath(t *testing.T) {
	cfg := Config{DataDir: "data"}
	assert.Equal(t, filepath.Join("data", "sims_1", "sims_04.csv"), cfg.SimsPath(4, 1))
	assert.Equal(t, filepath.Join("data", "sims_n_over_2", "sims_10.csv"), cfg.SimsPath(10, 5))
	assert.Equal(t, filepath.Join("data", "sims_n_minus_1", "sims_10.csv"), cfg.SimsPath(10, 9))
	assert.Equal(t, filepath.Join("data", "sims_i3", "sims_10.csv"), cfg.SimsPath(10, 3))
}

func TestLoadExperiment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pairs:
  - [Defector, Cooperator]
  - [Random, GTFT]
sizes: [2, 4, 6]
repetitions: 50
fitness_model: fermi
`), 0644))

	exp, err := LoadExperiment(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Defector", "Cooperator"}, {"Random", "GTFT"}}, exp.Pairs)
	assert.Equal(t, []int{2, 4, 6}, exp.Sizes)
	assert.Equal(t, 50, exp.Repetitions)
	assert.Equal(t, "fermi", exp.FitnessModel)
	assert.Equal(t, 1.0, exp.Intensity)
}

func TestLoadExperiment_Invalid(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"pair.yaml":  "pairs:\n  - [Defector]\n",
		"size.yaml":  "sizes: [1]\n",
		"reps.yaml":  "repetitions: 0\n",
		"parse.yaml": "sizes: [two]\n",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		_, err := LoadExperiment(path)
		assert.Error(t, err, name)
	}

	_, err := LoadExperiment(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
