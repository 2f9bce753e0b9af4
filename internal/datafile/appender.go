package datafile

import (
	"context"
	"encoding/csv"
	"sync"

	moran "github.com/Axelrod-Python/axelrod-moran"
)

// Appender appends rows to a data file from many goroutines. Every call
// writes and flushes whole rows under a lock, so a crash never leaves a
// partial line behind.
type Appender struct {
	mu sync.Mutex
	w  *writeCloser
	cw *csv.Writer
}

// NewAppender opens path for appending. If header is non-nil it is
// written first when the file is new or empty.
func NewAppender(path string, header []string) (*Appender, error) {
	w, empty, err := create(path, true)
	if err != nil {
		return nil, err
	}

	a := &Appender{w: w, cw: csv.NewWriter(w)}
	if header != nil && empty {
		if err := a.append([][]string{header}); err != nil {
			w.Close()
			return nil, err
		}
	}

	return a, nil
}

func (a *Appender) append(rows [][]string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, row := range rows {
		if err := a.cw.Write(row); err != nil {
			return err
		}
	}

	a.cw.Flush()
	if err := a.cw.Error(); err != nil {
		return err
	}

	return a.w.Flush()
}

// WriteOutcomes appends outcome cache rows.
func (a *Appender) WriteOutcomes(ctx context.Context, records []moran.OutcomeRecord) error {
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = outcomeRow(rec)
	}

	return a.append(rows)
}

// WriteWinners appends simulation result rows.
func (a *Appender) WriteWinners(ctx context.Context, records []moran.WinnerRecord) error {
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = winnerRow(rec)
	}

	return a.append(rows)
}

// WriteValidation appends a fixation validation row.
func (a *Appender) WriteValidation(ctx context.Context, rec moran.ValidationRecord) error {
	return a.append([][]string{validationRow(rec)})
}

func (a *Appender) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.w.Close()
}
