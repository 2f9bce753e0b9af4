package store

import (
	"context"
	"errors"
	"sync"

	moran "github.com/Axelrod-Python/axelrod-moran"
	"github.com/Axelrod-Python/axelrod-moran/internal/datafile"
)

// CSVStore keeps outcomes and winners in the plain data files, one
// winners file per (N, i) batch. Reads aggregate repeated rows.
type CSVStore struct {
	outcomesPath string
	winnersPath  func(n, i int) string

	mu          sync.Mutex
	initialized bool
	appenders   map[string]*datafile.Appender
}

func NewCSVStore(outcomesPath string, winnersPath func(n, i int) string) *CSVStore {
	return &CSVStore{
		outcomesPath: outcomesPath,
		winnersPath:  winnersPath,
	}
}

func (s *CSVStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcomesPath == "" || s.winnersPath == nil {
		return errors.New("csv store paths are required")
	}
	if !s.initialized {
		s.initialized = true
		s.appenders = make(map[string]*datafile.Appender)
	}
	return nil
}

func (s *CSVStore) appender(path string) (*datafile.Appender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil, errors.New("store is not initialized")
	}
	if a, ok := s.appenders[path]; ok {
		return a, nil
	}

	a, err := datafile.NewAppender(path, nil)
	if err != nil {
		return nil, err
	}
	s.appenders[path] = a
	return a, nil
}

func (s *CSVStore) WriteOutcomes(ctx context.Context, records []moran.OutcomeRecord) error {
	a, err := s.appender(s.outcomesPath)
	if err != nil {
		return err
	}
	return a.WriteOutcomes(ctx, records)
}

// Outcomes returns nothing if the outcomes file does not exist yet.
func (s *CSVStore) Outcomes(_ context.Context) ([]moran.OutcomeRecord, error) {
	rows, err := datafile.ReadOutcomes(s.outcomesPath)
	if errors.Is(err, moran.ErrMissingDataFile) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	counts := make(map[outcomeKey]int)
	for _, rec := range rows {
		counts[outcomeKey{rec.A, rec.B, rec.Outcome}] += rec.Count
	}

	result := make([]moran.OutcomeRecord, 0, len(counts))
	for k, count := range counts {
		result = append(result, moran.OutcomeRecord{A: k.a, B: k.b, Outcome: k.outcome, Count: count})
	}
	sortOutcomes(result)
	return result, nil
}

func (s *CSVStore) WriteWinners(ctx context.Context, n, i int, records []moran.WinnerRecord) error {
	a, err := s.appender(s.winnersPath(n, i))
	if err != nil {
		return err
	}
	return a.WriteWinners(ctx, records)
}

func (s *CSVStore) Winners(_ context.Context, n, i int) ([]moran.WinnerRecord, error) {
	rows, err := datafile.ReadWinners(s.winnersPath(n, i))
	if errors.Is(err, moran.ErrMissingDataFile) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	counts := make(map[winnerKey]int)
	for _, rec := range rows {
		counts[winnerKey{n, i, rec.Challenger, rec.Incumbent, rec.Winner}] += rec.Count
	}

	result := make([]moran.WinnerRecord, 0, len(counts))
	for k, count := range counts {
		result = append(result, moran.WinnerRecord{
			Challenger: k.challenger,
			Incumbent:  k.incumbent,
			Winner:     k.winner,
			Count:      count,
		})
	}
	sortWinners(result)
	return result, nil
}

func (s *CSVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for path, a := range s.appenders {
		if err := a.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.appenders, path)
	}
	return firstErr
}
