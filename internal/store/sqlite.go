package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	_ "modernc.org/sqlite"

	moran "github.com/Axelrod-Python/axelrod-moran"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	// Workers share one connection so concurrent batches never see
	// SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// WriteOutcomes adds the records in a single transaction.
func (s *SQLiteStore) WriteOutcomes(ctx context.Context, records []moran.OutcomeRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	return inTx(ctx, db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO outcomes (a, b, score_a, score_b, count)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(a, b, score_a, score_b) DO UPDATE SET
				count = count + excluded.count
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, rec := range records {
			if _, err := stmt.ExecContext(ctx, rec.A, rec.B, rec.Outcome.A, rec.Outcome.B, rec.Count); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Outcomes(ctx context.Context) ([]moran.OutcomeRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT a, b, score_a, score_b, count FROM outcomes
		ORDER BY a, b, score_a, score_b
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []moran.OutcomeRecord
	for rows.Next() {
		var rec moran.OutcomeRecord
		if err := rows.Scan(&rec.A, &rec.B, &rec.Outcome.A, &rec.Outcome.B, &rec.Count); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// WriteWinners adds the records of the (n, i) batch in a single
// transaction.
func (s *SQLiteStore) WriteWinners(ctx context.Context, n, i int, records []moran.WinnerRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	return inTx(ctx, db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO winners (n, i, challenger, incumbent, winner, count)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(n, i, challenger, incumbent, winner) DO UPDATE SET
				count = count + excluded.count
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, rec := range records {
			if _, err := stmt.ExecContext(ctx, n, i, rec.Challenger, rec.Incumbent, rec.Winner, rec.Count); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Winners(ctx context.Context, n, i int) ([]moran.WinnerRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT challenger, incumbent, winner, count FROM winners
		WHERE n = ? AND i = ?
		ORDER BY challenger, incumbent, winner
	`, n, i)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []moran.WinnerRecord
	for rows.Next() {
		var rec moran.WinnerRecord
		if err := rows.Scan(&rec.Challenger, &rec.Incumbent, &rec.Winner, &rec.Count); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS outcomes (
			a TEXT NOT NULL,
			b TEXT NOT NULL,
			score_a REAL NOT NULL,
			score_b REAL NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (a, b, score_a, score_b)
		);
		CREATE TABLE IF NOT EXISTS winners (
			n INTEGER NOT NULL,
			i INTEGER NOT NULL,
			challenger INTEGER NOT NULL,
			incumbent INTEGER NOT NULL,
			winner INTEGER NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (n, i, challenger, incumbent, winner)
		);
	`)
	return err
}
