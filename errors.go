package moran

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidDistribution is returned when an outcome distribution
	// would have an empty sample space or a non-positive count.
	ErrInvalidDistribution = errors.New("invalid outcome distribution")
	// ErrUnknownPairing is returned when the outcome cache has no entry
	// for a pair of strategies in either orientation.
	ErrUnknownPairing = errors.New("unknown strategy pairing")
	// ErrNumericDivergence is returned when the relative fitness solver
	// cannot find a root for the requested fixation probability.
	ErrNumericDivergence = errors.New("numeric divergence")
	// ErrMissingDataFile is returned when a partial results file does not exist.
	ErrMissingDataFile = errors.New("missing data file")
	// ErrRoundLimit is returned when a process exceeds its round cap
	// without reaching fixation.
	ErrRoundLimit = errors.New("round limit exceeded before fixation")
)
