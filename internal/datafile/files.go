// Package datafile reads and writes the CSV files exchanged between the
// cache builder, the simulation drivers and the analysis tools. Any path
// ending in ".gz" is transparently compressed with pgzip.
package datafile

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	gzip "github.com/klauspost/pgzip"
	"github.com/pkg/errors"

	moran "github.com/Axelrod-Python/axelrod-moran"
)

func isCompressed(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var firstErr error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Open opens a data file for reading. A missing file yields an error
// wrapping moran.ErrMissingDataFile.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(moran.ErrMissingDataFile, path)
		}
		return nil, err
	}

	if !isCompressed(path) {
		return f, nil
	}

	r, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	return &readCloser{Reader: r, closers: []io.Closer{r, f}}, nil
}

type writeCloser struct {
	io.Writer
	flush   func() error
	closers []io.Closer
}

func (wc *writeCloser) Flush() error {
	if wc.flush == nil {
		return nil
	}

	return wc.flush()
}

func (wc *writeCloser) Close() error {
	var firstErr error
	for _, c := range wc.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// create opens path for writing, truncating it unless appending.
// Appending to a ".gz" file adds a new gzip member.
func create(path string, appending bool) (*writeCloser, bool, error) {
	flags := os.O_WRONLY | os.O_CREATE
	if appending {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, false, err
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, false, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, false, err
	}
	empty := info.Size() == 0

	if !isCompressed(path) {
		return &writeCloser{Writer: f, closers: []io.Closer{f}}, empty, nil
	}

	w := gzip.NewWriter(f)
	return &writeCloser{Writer: w, flush: w.Flush, closers: []io.Closer{w, f}}, empty, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return cr
}

// forEachRow calls fn with every row of the file, skipping the first
// row when the file has a header.
func forEachRow(path string, header bool, fn func(line int, row []string) error) error {
	f, err := Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := newCSVReader(f)
	for line := 1; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return errors.Wrapf(err, "%s:%d", path, line)
		}

		if header && line == 1 {
			continue
		}

		if err := fn(line, row); err != nil {
			return errors.Wrapf(err, "%s:%d", path, line)
		}
	}
}

func writeAll(path string, header []string, rows [][]string) error {
	w, _, err := create(path, false)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if header != nil {
		if err := cw.Write(header); err != nil {
			w.Close()
			return err
		}
	}
	if err := cw.WriteAll(rows); err != nil {
		w.Close()
		return err
	}

	return w.Close()
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan":
		return 0, errors.Errorf("missing value %q", s)
	}

	return strconv.ParseFloat(s, 64)
}

// parseOptionalFloat parses a value that may be written as NaN.
func parseOptionalFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}

	return strconv.ParseFloat(s, 64)
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func expectFields(row []string, min, max int) error {
	if len(row) < min || len(row) > max {
		if min == max {
			return errors.Errorf("expected %d fields, got %d", min, len(row))
		}
		return errors.Errorf("expected %d to %d fields, got %d", min, max, len(row))
	}

	return nil
}
