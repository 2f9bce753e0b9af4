package moran

import (
	"testing"
)

func TestNewUniverse(t *testing.T) {
	u, err := NewUniverse(
		Strategy{Name: "Cooperator"},
		Strategy{Name: "Defector"},
		Strategy{Name: "Random", Stochastic: true},
	)
	if err != nil {
		t.Fatal(err)
	}

	if u.Len() != 3 {
		t.Errorf("universe has %d strategies, expected 3", u.Len())
	}
	if u.Index("Defector") != 1 || u.Index("Grudger") != -1 {
		t.Errorf("unexpected indices: %d %d", u.Index("Defector"), u.Index("Grudger"))
	}

	nPairs := 0
	u.Pairs(func(i, j int) {
		if i > j {
			t.Errorf("pair (%d, %d) is not ordered", i, j)
		}
		nPairs++
	})
	if nPairs != 6 {
		t.Errorf("got %d pairs, expected 6", nPairs)
	}
}

func TestNewUniverse_Invalid(t *testing.T) {
	if _, err := NewUniverse(); err == nil {
		t.Error("expected error for empty universe")
	}
	if _, err := NewUniverse(Strategy{Name: "A"}, Strategy{Name: "A"}); err == nil {
		t.Error("expected error for duplicate names")
	}
	if _, err := NewUniverse(Strategy{}); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestIsStochasticPairing(t *testing.T) {
	det := Strategy{Name: "Cooperator"}
	stoch := Strategy{Name: "Random", Stochastic: true}
	testCases := []struct {
		a, b     Strategy
		noise    float64
		expected bool
	}{
		{det, det, 0, false},
		{det, det, 0.05, true},
		{det, stoch, 0, true},
		{stoch, stoch, 0, true},
	}

	for _, tc := range testCases {
		if got := IsStochasticPairing(tc.a, tc.b, tc.noise); got != tc.expected {
			t.Errorf("IsStochasticPairing(%v, %v, %v) = %v, expected %v",
				tc.a, tc.b, tc.noise, got, tc.expected)
		}
	}
}
