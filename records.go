package moran

// OutcomeRecord is one row of the outcome cache file: the number of
// times a contest between A and B ended with the given outcome.
type OutcomeRecord struct {
	A, B    string
	Outcome Outcome
	Count   int
}

// WinnerRecord is one row of a simulation result file. Challenger,
// Incumbent and Winner are indices into the player index file. Count
// is the number of runs that ended with this winner.
type WinnerRecord struct {
	Challenger int
	Incumbent  int
	Winner     int
	Count      int
}

// ValidationRecord compares the analytic and simulated fixation
// probability of Player1 starting from I individuals in a population of N.
type ValidationRecord struct {
	Repetitions int
	N           int
	I           int
	Player1     string
	Player2     string
	Theoretic   float64
	Simulated   float64
}
