package moran

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Outcome holds the per-turn average scores of one contest. A is the
// score of the first-named strategy of the pair.
type Outcome struct {
	A, B float64
}

// Swap returns the outcome seen from the other side of the pair.
func (o Outcome) Swap() Outcome {
	return Outcome{A: o.B, B: o.A}
}

func (o Outcome) String() string {
	return fmt.Sprintf("(%v, %v)", o.A, o.B)
}

func lessOutcome(x, y Outcome) bool {
	if x.A != y.A {
		return x.A < y.A
	}

	return x.B < y.B
}

// Pdf is an empirical probability mass function over observed contest
// outcomes. It is immutable once built and safe for concurrent use.
type Pdf struct {
	// The distinct observed outcomes, sorted so that a seeded draw is
	// reproducible independent of map iteration order.
	SampleSpace []Outcome
	Counts      []int
	Total       int
	Probability []float64

	cumulativeProbs []float64
}

// NewPdf builds a distribution from a frequency table of outcomes.
func NewPdf(counts map[Outcome]int) (*Pdf, error) {
	if len(counts) == 0 {
		return nil, errors.Wrap(ErrInvalidDistribution, "empty sample space")
	}

	sampleSpace := make([]Outcome, 0, len(counts))
	for o, n := range counts {
		if n <= 0 {
			return nil, errors.Wrapf(ErrInvalidDistribution, "outcome %v has count %d", o, n)
		}
		sampleSpace = append(sampleSpace, o)
	}
	sort.Slice(sampleSpace, func(i, j int) bool {
		return lessOutcome(sampleSpace[i], sampleSpace[j])
	})

	pdf := &Pdf{
		SampleSpace: sampleSpace,
		Counts:      make([]int, len(sampleSpace)),
	}
	for i, o := range sampleSpace {
		pdf.Counts[i] = counts[o]
		pdf.Total += counts[o]
	}
	pdf.fillProbabilities()
	return pdf, nil
}

func (pdf *Pdf) fillProbabilities() {
	pdf.Probability = make([]float64, len(pdf.Counts))
	for i, n := range pdf.Counts {
		pdf.Probability[i] = float64(n) / float64(pdf.Total)
	}

	pdf.cumulativeProbs = cumulativeSum(pdf.Probability, make([]float64, 0, len(pdf.Probability)))
	pdf.cumulativeProbs[len(pdf.cumulativeProbs)-1] = 1.0
}

// Len returns the number of distinct outcomes.
func (pdf *Pdf) Len() int {
	return len(pdf.SampleSpace)
}

// Sample draws one outcome with probability proportional to its count.
func (pdf *Pdf) Sample(rng *rand.Rand) Outcome {
	if len(pdf.SampleSpace) == 1 {
		return pdf.SampleSpace[0]
	}

	i := searchCumulative(pdf.cumulativeProbs, rng.Float64())
	return pdf.SampleSpace[i]
}

// Mirror returns the distribution seen from the other side of the pair:
// every outcome has its coordinates swapped, counts are unchanged.
func (pdf *Pdf) Mirror() *Pdf {
	counts := make(map[Outcome]int, len(pdf.SampleSpace))
	for i, o := range pdf.SampleSpace {
		counts[o.Swap()] = pdf.Counts[i]
	}

	// Cannot fail: counts are copied from a valid distribution.
	mirror, err := NewPdf(counts)
	if err != nil {
		panic(err)
	}

	return mirror
}

// CountOf returns the recorded count of an outcome.
func (pdf *Pdf) CountOf(o Outcome) int {
	for i, x := range pdf.SampleSpace {
		if x == o {
			return pdf.Counts[i]
		}
	}

	return 0
}

// Frequencies returns the distribution as a frequency table.
func (pdf *Pdf) Frequencies() map[Outcome]int {
	result := make(map[Outcome]int, len(pdf.SampleSpace))
	for i, o := range pdf.SampleSpace {
		result[o] = pdf.Counts[i]
	}

	return result
}

// Mean returns the expected outcome.
func (pdf *Pdf) Mean() Outcome {
	var mean Outcome
	for i, o := range pdf.SampleSpace {
		mean.A += pdf.Probability[i] * o.A
		mean.B += pdf.Probability[i] * o.B
	}

	return mean
}

func (pdf *Pdf) String() string {
	var b strings.Builder
	b.WriteString("Sample space: [")
	for i, o := range pdf.SampleSpace {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(o.String())
	}
	fmt.Fprintf(&b, "] - Probabilities: %v", pdf.Probability)
	return b.String()
}
