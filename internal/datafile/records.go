package datafile

import (
	"strconv"

	"github.com/pkg/errors"

	moran "github.com/Axelrod-Python/axelrod-moran"
	"github.com/Axelrod-Python/axelrod-moran/analysis"
)

var (
	ValidationHeader = []string{"Repetitions", "N", "i", "Player 1", "Player 2", "Theoretic", "Simulated"}
	SummaryHeader    = []string{"P1", "P2", "N", "i", "Repetitions", "P1 fixation", "P2 fixation"}
	FitnessHeader    = []string{"player", "opponent", "N", "p_1", "p_N/2", "r_1", "r_N/2", "p_N-1", "r_N-1"}
)

func outcomeRow(rec moran.OutcomeRecord) []string {
	return []string{
		rec.A, rec.B,
		formatFloat(rec.Outcome.A), formatFloat(rec.Outcome.B),
		strconv.Itoa(rec.Count),
	}
}

func parseOutcomeRow(row []string) (moran.OutcomeRecord, error) {
	if err := expectFields(row, 5, 5); err != nil {
		return moran.OutcomeRecord{}, err
	}

	a, err := parseFloat(row[2])
	if err != nil {
		return moran.OutcomeRecord{}, err
	}
	b, err := parseFloat(row[3])
	if err != nil {
		return moran.OutcomeRecord{}, err
	}
	count, err := parseInt(row[4])
	if err != nil {
		return moran.OutcomeRecord{}, err
	}

	return moran.OutcomeRecord{
		A:       row[0],
		B:       row[1],
		Outcome: moran.Outcome{A: a, B: b},
		Count:   count,
	}, nil
}

// ReadOutcomes reads every row of an outcome cache file:
// strategy_a,strategy_b,score_a,score_b,count.
func ReadOutcomes(path string) ([]moran.OutcomeRecord, error) {
	var result []moran.OutcomeRecord
	err := forEachRow(path, false, func(line int, row []string) error {
		rec, err := parseOutcomeRow(row)
		if err != nil {
			return err
		}

		result = append(result, rec)
		return nil
	})

	return result, err
}

// ReadCache loads an outcome cache file. Rows for the same pair in
// either orientation are merged.
func ReadCache(path string) (*moran.Cache, error) {
	records, err := ReadOutcomes(path)
	if err != nil {
		return nil, err
	}

	c, err := moran.BuildCache(records)
	if err != nil {
		return nil, errors.Wrapf(err, "building cache from %s", path)
	}

	return c, nil
}

// WriteOutcomes replaces the file with the given outcome records.
func WriteOutcomes(path string, records []moran.OutcomeRecord) error {
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = outcomeRow(rec)
	}

	return writeAll(path, nil, rows)
}

// WritePlayers writes the player index file: index,name,stochastic.
func WritePlayers(path string, u *moran.Universe) error {
	rows := make([][]string, u.Len())
	for i, s := range u.Strategies() {
		rows[i] = []string{strconv.Itoa(i), s.Name, strconv.FormatBool(s.Stochastic)}
	}

	return writeAll(path, nil, rows)
}

// ReadPlayers reads a player index file. The stochastic column is
// optional and indices must be 0, 1, 2, ... in order.
func ReadPlayers(path string) (*moran.Universe, error) {
	var strategies []moran.Strategy
	err := forEachRow(path, false, func(line int, row []string) error {
		if err := expectFields(row, 2, 3); err != nil {
			return err
		}

		idx, err := parseInt(row[0])
		if err != nil {
			return err
		}
		if idx != len(strategies) {
			return errors.Errorf("player index %d out of order, expected %d", idx, len(strategies))
		}

		s := moran.Strategy{Name: row[1]}
		if len(row) == 3 {
			if s.Stochastic, err = strconv.ParseBool(row[2]); err != nil {
				return err
			}
		}

		strategies = append(strategies, s)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return moran.NewUniverse(strategies...)
}

func winnerRow(rec moran.WinnerRecord) []string {
	return []string{
		strconv.Itoa(rec.Challenger),
		strconv.Itoa(rec.Incumbent),
		strconv.Itoa(rec.Winner),
		strconv.Itoa(rec.Count),
	}
}

// ReadWinners reads a simulation result file:
// challenger,incumbent,winner[,count]. A row without a count stands
// for a single run. A missing file yields moran.ErrMissingDataFile.
func ReadWinners(path string) ([]moran.WinnerRecord, error) {
	var result []moran.WinnerRecord
	err := forEachRow(path, false, func(line int, row []string) error {
		if err := expectFields(row, 3, 4); err != nil {
			return err
		}

		var fields [4]int
		fields[3] = 1
		for i, s := range row {
			v, err := parseInt(s)
			if err != nil {
				return err
			}
			fields[i] = v
		}

		result = append(result, moran.WinnerRecord{
			Challenger: fields[0],
			Incumbent:  fields[1],
			Winner:     fields[2],
			Count:      fields[3],
		})
		return nil
	})

	return result, err
}

func validationRow(rec moran.ValidationRecord) []string {
	return []string{
		strconv.Itoa(rec.Repetitions),
		strconv.Itoa(rec.N),
		strconv.Itoa(rec.I),
		rec.Player1,
		rec.Player2,
		formatFloat(rec.Theoretic),
		formatFloat(rec.Simulated),
	}
}

// ReadValidation reads a fixation validation file with its header.
func ReadValidation(path string) ([]moran.ValidationRecord, error) {
	var result []moran.ValidationRecord
	err := forEachRow(path, true, func(line int, row []string) error {
		if err := expectFields(row, 7, 7); err != nil {
			return err
		}

		var rec moran.ValidationRecord
		var err error
		if rec.Repetitions, err = parseInt(row[0]); err != nil {
			return err
		}
		if rec.N, err = parseInt(row[1]); err != nil {
			return err
		}
		if rec.I, err = parseInt(row[2]); err != nil {
			return err
		}
		rec.Player1, rec.Player2 = row[3], row[4]
		if rec.Theoretic, err = parseOptionalFloat(row[5]); err != nil {
			return err
		}
		if rec.Simulated, err = parseOptionalFloat(row[6]); err != nil {
			return err
		}

		result = append(result, rec)
		return nil
	})

	return result, err
}

// WriteSummaries replaces the file with a summary table.
func WriteSummaries(path string, summaries []analysis.Summary) error {
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{
			s.P1, s.P2,
			strconv.Itoa(s.N), strconv.Itoa(s.I), strconv.Itoa(s.Repetitions),
			formatFloat(s.P1Fixation), formatFloat(s.P2Fixation),
		}
	}

	return writeAll(path, SummaryHeader, rows)
}

// ReadSummaries reads a summary table written by WriteSummaries.
func ReadSummaries(path string) ([]analysis.Summary, error) {
	var result []analysis.Summary
	err := forEachRow(path, true, func(line int, row []string) error {
		if err := expectFields(row, 7, 7); err != nil {
			return err
		}

		s := analysis.Summary{P1: row[0], P2: row[1]}
		var err error
		if s.N, err = parseInt(row[2]); err != nil {
			return err
		}
		if s.I, err = parseInt(row[3]); err != nil {
			return err
		}
		if s.Repetitions, err = parseInt(row[4]); err != nil {
			return err
		}
		if s.P1Fixation, err = parseFloat(row[5]); err != nil {
			return err
		}
		if s.P2Fixation, err = parseFloat(row[6]); err != nil {
			return err
		}

		result = append(result, s)
		return nil
	})

	return result, err
}

// WriteFitness replaces the file with a relative fitness table.
func WriteFitness(path string, rows []analysis.FitnessRow) error {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			r.Player, r.Opponent, strconv.Itoa(r.N),
			formatFloat(r.P1), formatFloat(r.PHalf),
			formatFloat(r.R1), formatFloat(r.RHalf),
			formatFloat(r.PMinus1), formatFloat(r.RMinus1),
		}
	}

	return writeAll(path, FitnessHeader, out)
}
