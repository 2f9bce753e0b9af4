// Package store persists outcome and winner records in a database as an
// alternative to CSV data files.
package store

import (
	"context"
	"fmt"

	moran "github.com/Axelrod-Python/axelrod-moran"
	"github.com/Axelrod-Python/axelrod-moran/config"
)

// Store holds the outcome cache rows and the winner rows of every
// (N, i) simulation batch. Writes add to the counts already stored.
type Store interface {
	Init(ctx context.Context) error
	WriteOutcomes(ctx context.Context, records []moran.OutcomeRecord) error
	Outcomes(ctx context.Context) ([]moran.OutcomeRecord, error)
	WriteWinners(ctx context.Context, n, i int, records []moran.WinnerRecord) error
	Winners(ctx context.Context, n, i int) ([]moran.WinnerRecord, error)
	Close() error
}

// Open returns the backend selected by cfg.Store.
func Open(cfg config.Config) (Store, error) {
	if cfg.Store == "csv" {
		return NewCSVStore(cfg.OutcomesPath(), cfg.SimsPath), nil
	}
	return NewStore(cfg.Store, cfg.SQLitePath())
}

func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// WinnerSet is the slice of a Store holding one (N, i) batch.
type WinnerSet struct {
	store Store
	n, i  int
}

func NewWinnerSet(s Store, n, i int) *WinnerSet {
	return &WinnerSet{store: s, n: n, i: i}
}

func (ws *WinnerSet) WriteWinners(ctx context.Context, records []moran.WinnerRecord) error {
	return ws.store.WriteWinners(ctx, ws.n, ws.i, records)
}

func (ws *WinnerSet) Winners(ctx context.Context) ([]moran.WinnerRecord, error) {
	return ws.store.Winners(ctx, ws.n, ws.i)
}
