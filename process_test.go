package moran

import (
	"context"
	"math/rand"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

var (
	cooperator = Strategy{Name: "Cooperator"}
	defector   = Strategy{Name: "Defector"}
)

func newPrisonersDilemmaCache(t testing.TB) *Cache {
	c := NewCache()
	for _, entry := range []struct {
		a, b    string
		outcome Outcome
	}{
		{"Defector", "Cooperator", Outcome{A: 5, B: 0}},
		{"Cooperator", "Cooperator", Outcome{A: 3, B: 3}},
		{"Defector", "Defector", Outcome{A: 1, B: 1}},
	} {
		if err := c.AddCounts(entry.a, entry.b, map[Outcome]int{entry.outcome: 1}); err != nil {
			t.Fatal(err)
		}
	}

	return c
}

func TestProcessScoreRound_Cached(t *testing.T) {
	c := newPrisonersDilemmaCache(t)
	for seed := int64(0); seed < 3; seed++ {
		rng := rand.New(rand.NewSource(seed))
		p, err := NewProcess([]Strategy{cooperator, defector}, &CacheScorer{Cache: c}, rng, ProcessOptions{})
		if err != nil {
			t.Fatal(err)
		}

		for i := 0; i < 3; i++ {
			scores, err := p.ScoreRound()
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(scores, []float64{0, 5}) {
				t.Errorf("seed %d round %d: scores %v, expected [0 5]", seed, i, scores)
			}
		}

		winner, err := p.Play(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if winner != defector {
			t.Errorf("seed %d: winner is %v, expected Defector", seed, winner)
		}
	}
}

func TestProcessPlay_UnknownPairing(t *testing.T) {
	c := NewCache()
	if err := c.AddCounts("Cooperator", "Cooperator", map[Outcome]int{{A: 3, B: 3}: 1}); err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(1))
	p, err := NewProcess([]Strategy{cooperator, defector}, &CacheScorer{Cache: c}, rng, ProcessOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Play(context.Background()); !errors.Is(err, ErrUnknownPairing) {
		t.Errorf("got error %v, expected ErrUnknownPairing", err)
	}
}

func TestProcessPlay_RoundLimit(t *testing.T) {
	c := newPrisonersDilemmaCache(t)
	population := TwoTypePopulation(cooperator, defector, 4, 2)
	rng := rand.New(rand.NewSource(1))
	p, err := NewProcess(population, &CacheScorer{Cache: c}, rng, ProcessOptions{MaxRounds: 1})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Play(context.Background()); !errors.Is(err, ErrRoundLimit) {
		t.Errorf("got error %v, expected ErrRoundLimit", err)
	}
	if p.Round() != 1 {
		t.Errorf("process played %d rounds, expected 1", p.Round())
	}
}

func TestNewProcess_Invalid(t *testing.T) {
	c := newPrisonersDilemmaCache(t)
	scorer := &CacheScorer{Cache: c}
	rng := rand.New(rand.NewSource(1))
	pair := []Strategy{cooperator, defector}

	if _, err := NewProcess([]Strategy{cooperator}, scorer, rng, ProcessOptions{}); err == nil {
		t.Error("expected error for population of 1")
	}
	if _, err := NewProcess(pair, nil, rng, ProcessOptions{}); err == nil {
		t.Error("expected error for missing scorer")
	}
	if _, err := NewProcess(pair, scorer, nil, ProcessOptions{}); err == nil {
		t.Error("expected error for missing random source")
	}
	if _, err := NewProcess(pair, scorer, rng, ProcessOptions{MutationRate: 0.1}); err == nil {
		t.Error("expected error for mutation without universe")
	}
	if _, err := NewProcess(pair, scorer, rng, ProcessOptions{MutationRate: 1.5}); err == nil {
		t.Error("expected error for mutation rate above 1")
	}
}

func TestProcessPlay_Reproducible(t *testing.T) {
	c := newPrisonersDilemmaCache(t)
	population := TwoTypePopulation(cooperator, defector, 6, 3)
	run := func(seed int64) (Strategy, int) {
		p, err := NewProcess(population, &CacheScorer{Cache: c}, rand.New(rand.NewSource(seed)), ProcessOptions{})
		if err != nil {
			t.Fatal(err)
		}
		winner, err := p.Play(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return winner, p.Round()
	}

	for seed := int64(0); seed < 5; seed++ {
		w1, r1 := run(seed)
		w2, r2 := run(seed)
		if w1 != w2 || r1 != r2 {
			t.Errorf("seed %d: (%v, %d) != (%v, %d)", seed, w1, r1, w2, r2)
		}
	}
}

func TestProcessHistory(t *testing.T) {
	c := newPrisonersDilemmaCache(t)
	population := TwoTypePopulation(cooperator, defector, 5, 1)
	p, err := NewProcess(population, &CacheScorer{Cache: c}, rand.New(rand.NewSource(3)),
		ProcessOptions{KeepHistory: true})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Play(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(p.ScoreHistory()) != p.Round() {
		t.Errorf("%d score rows for %d rounds", len(p.ScoreHistory()), p.Round())
	}
	if len(p.PopulationHistory()) != p.Round()+1 {
		t.Errorf("%d populations for %d rounds", len(p.PopulationHistory()), p.Round())
	}
	for _, counts := range p.PopulationHistory() {
		total := 0
		for _, n := range counts {
			total += n
		}
		if total != 5 {
			t.Errorf("population size changed to %d: %v", total, counts)
		}
	}

	// One cooperator among defectors scores 0 against each of them.
	first := p.ScoreHistory()[0]
	if first[0] != 0 || first[1] != 8 {
		t.Errorf("unexpected first round scores %v", first)
	}

	p.Reset(rand.New(rand.NewSource(3)))
	if p.Round() != 0 || p.IsAbsorbed() {
		t.Errorf("reset left round %d absorbed %v", p.Round(), p.IsAbsorbed())
	}
}

func TestProcessMutation(t *testing.T) {
	universe, err := NewUniverse(cooperator, defector)
	if err != nil {
		t.Fatal(err)
	}

	c := newPrisonersDilemmaCache(t)
	population := TwoTypePopulation(cooperator, defector, 4, 4)
	p, err := NewProcess(population, &CacheScorer{Cache: c}, rand.New(rand.NewSource(9)),
		ProcessOptions{MutationRate: 1, Universe: universe})
	if err != nil {
		t.Fatal(err)
	}

	sawDefector := false
	for i := 0; i < 50; i++ {
		if err := p.Step(); err != nil {
			t.Fatal(err)
		}
		if p.Counts()["Defector"] > 0 {
			sawDefector = true
		}
		if len(p.Population()) != 4 {
			t.Fatalf("population size changed to %d", len(p.Population()))
		}
	}

	if !sawDefector {
		t.Error("mutation never introduced a Defector")
	}
}

type fixedEngine struct {
	calls int
}

func (e *fixedEngine) Play(a, b Strategy, turns int, noise float64, rng *rand.Rand) (Outcome, error) {
	e.calls++
	return Outcome{A: 1, B: 2}, nil
}

func TestMatchScorer(t *testing.T) {
	engine := &fixedEngine{}
	scorer := &MatchScorer{Engine: engine, Turns: 10}
	population := TwoTypePopulation(cooperator, defector, 4, 2)
	scores := make([]float64, 4)
	if err := scorer.ScoreRound(population, scores, rand.New(rand.NewSource(1))); err != nil {
		t.Fatal(err)
	}

	if engine.calls != 6 {
		t.Errorf("engine played %d matches, expected 6", engine.calls)
	}
	// Member i is first in matches against j > i and second against j < i.
	expected := []float64{3, 4, 5, 6}
	if !reflect.DeepEqual(scores, expected) {
		t.Errorf("scores %v, expected %v", scores, expected)
	}
}

func BenchmarkProcessPlay(b *testing.B) {
	c := newPrisonersDilemmaCache(b)
	population := TwoTypePopulation(cooperator, defector, 10, 5)
	p, err := NewProcess(population, &CacheScorer{Cache: c}, rand.New(rand.NewSource(1)), ProcessOptions{})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Reset(rand.New(rand.NewSource(int64(i))))
		if _, err := p.Play(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}
