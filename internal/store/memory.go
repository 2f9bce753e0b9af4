package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	moran "github.com/Axelrod-Python/axelrod-moran"
)

type outcomeKey struct {
	a, b    string
	outcome moran.Outcome
}

type winnerKey struct {
	n, i                          int
	challenger, incumbent, winner int
}

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	outcomes    map[outcomeKey]int
	winners     map[winnerKey]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.outcomes = make(map[outcomeKey]int)
	s.winners = make(map[winnerKey]int)
	return nil
}

func (s *MemoryStore) WriteOutcomes(_ context.Context, records []moran.OutcomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	for _, rec := range records {
		s.outcomes[outcomeKey{rec.A, rec.B, rec.Outcome}] += rec.Count
	}
	return nil
}

func (s *MemoryStore) Outcomes(_ context.Context) ([]moran.OutcomeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]moran.OutcomeRecord, 0, len(s.outcomes))
	for key, count := range s.outcomes {
		result = append(result, moran.OutcomeRecord{A: key.a, B: key.b, Outcome: key.outcome, Count: count})
	}
	sortOutcomes(result)
	return result, nil
}

func (s *MemoryStore) WriteWinners(_ context.Context, n, i int, records []moran.WinnerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	for _, rec := range records {
		s.winners[winnerKey{n, i, rec.Challenger, rec.Incumbent, rec.Winner}] += rec.Count
	}
	return nil
}

func (s *MemoryStore) Winners(_ context.Context, n, i int) ([]moran.WinnerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []moran.WinnerRecord
	for key, count := range s.winners {
		if key.n != n || key.i != i {
			continue
		}
		result = append(result, moran.WinnerRecord{
			Challenger: key.challenger,
			Incumbent:  key.incumbent,
			Winner:     key.winner,
			Count:      count,
		})
	}
	sortWinners(result)
	return result, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Both backends return rows in the same order as the SQL queries.
func sortOutcomes(records []moran.OutcomeRecord) {
	sort.Slice(records, func(i, j int) bool {
		x, y := records[i], records[j]
		if x.A != y.A {
			return x.A < y.A
		}
		if x.B != y.B {
			return x.B < y.B
		}
		if x.Outcome.A != y.Outcome.A {
			return x.Outcome.A < y.Outcome.A
		}
		return x.Outcome.B < y.Outcome.B
	})
}

func sortWinners(records []moran.WinnerRecord) {
	sort.Slice(records, func(i, j int) bool {
		x, y := records[i], records[j]
		if x.Challenger != y.Challenger {
			return x.Challenger < y.Challenger
		}
		if x.Incumbent != y.Incumbent {
			return x.Incumbent < y.Incumbent
		}
		return x.Winner < y.Winner
	})
}
