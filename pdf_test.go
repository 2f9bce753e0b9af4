package moran

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
)

// Outcomes of a single turn, with C = 0 and D = 1.
var (
	outcomeCD = Outcome{A: 0, B: 1}
	outcomeCC = Outcome{A: 0, B: 0}
	outcomeDC = Outcome{A: 1, B: 0}
	outcomeDD = Outcome{A: 1, B: 1}
)

func newTestPdf(t *testing.T) *Pdf {
	pdf, err := NewPdf(map[Outcome]int{
		outcomeCD: 4,
		outcomeCC: 12,
		outcomeDC: 2,
		outcomeDD: 15,
	})
	if err != nil {
		t.Fatal(err)
	}

	return pdf
}

func TestNewPdf(t *testing.T) {
	pdf := newTestPdf(t)
	if pdf.Len() != 4 {
		t.Errorf("sample space has %d outcomes, expected 4", pdf.Len())
	}
	if pdf.Total != 33 {
		t.Errorf("total is %d, expected 33", pdf.Total)
	}

	sum := 0.0
	for _, p := range pdf.Probability {
		sum += p
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("probabilities sum to %v", sum)
	}

	expected := map[Outcome]int{outcomeCD: 4, outcomeCC: 12, outcomeDC: 2, outcomeDD: 15}
	for o, n := range expected {
		if pdf.CountOf(o) != n {
			t.Errorf("count of %v is %d, expected %d", o, pdf.CountOf(o), n)
		}
	}
}

func TestNewPdf_Invalid(t *testing.T) {
	testCases := []map[Outcome]int{
		nil,
		{},
		{outcomeCC: 0},
		{outcomeCC: 3, outcomeDD: -1},
	}

	for _, counts := range testCases {
		if _, err := NewPdf(counts); !errors.Is(err, ErrInvalidDistribution) {
			t.Errorf("counts %v: got error %v, expected ErrInvalidDistribution", counts, err)
		}
	}
}

func TestPdfSample(t *testing.T) {
	pdf := newTestPdf(t)
	rng := rand.New(rand.NewSource(0))
	seen := make(map[Outcome]int)
	for i := 0; i < 100; i++ {
		o := pdf.Sample(rng)
		if pdf.CountOf(o) == 0 {
			t.Fatalf("sampled %v outside of sample space", o)
		}
		seen[o]++
	}

	if len(seen) != 4 {
		t.Errorf("100 draws covered %d of 4 outcomes: %v", len(seen), seen)
	}
}

func TestPdfSample_Seed(t *testing.T) {
	pdf := newTestPdf(t)
	for seed := int64(0); seed < 10; seed++ {
		rng1 := rand.New(rand.NewSource(seed))
		rng2 := rand.New(rand.NewSource(seed))
		for i := 0; i < 100; i++ {
			if x, y := pdf.Sample(rng1), pdf.Sample(rng2); x != y {
				t.Fatalf("seed %d draw %d: %v != %v", seed, i, x, y)
			}
		}
	}
}

func TestPdfSample_Frequencies(t *testing.T) {
	pdf := newTestPdf(t)
	rng := rand.New(rand.NewSource(42))
	const nDraws = 200000
	counts := make(map[Outcome]int)
	for i := 0; i < nDraws; i++ {
		counts[pdf.Sample(rng)]++
	}

	for i, o := range pdf.SampleSpace {
		observed := float64(counts[o]) / nDraws
		if math.Abs(observed-pdf.Probability[i]) > 0.01 {
			t.Errorf("%v observed with frequency %.4f, expected %.4f",
				o, observed, pdf.Probability[i])
		}
	}
}

func TestPdfMirror(t *testing.T) {
	pdf := newTestPdf(t)
	mirror := pdf.Mirror()
	if mirror.Total != pdf.Total {
		t.Errorf("mirror total %d != %d", mirror.Total, pdf.Total)
	}

	for i, o := range pdf.SampleSpace {
		if n := mirror.CountOf(o.Swap()); n != pdf.Counts[i] {
			t.Errorf("mirror has %d of %v, expected %d", n, o.Swap(), pdf.Counts[i])
		}
	}
}

func TestPdfMean(t *testing.T) {
	pdf, err := NewPdf(map[Outcome]int{{A: 3, B: 3}: 1, {A: 0, B: 5}: 3})
	if err != nil {
		t.Fatal(err)
	}

	mean := pdf.Mean()
	if math.Abs(mean.A-0.75) > 1e-12 || math.Abs(mean.B-4.5) > 1e-12 {
		t.Errorf("mean is %v, expected (0.75, 4.5)", mean)
	}
}

func BenchmarkPdfSample(b *testing.B) {
	counts := make(map[Outcome]int)
	for i := 0; i < 200; i++ {
		counts[Outcome{A: float64(i) / 200, B: 1 - float64(i)/200}] = i + 1
	}
	pdf, err := NewPdf(counts)
	if err != nil {
		b.Fatal(err)
	}

	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pdf.Sample(rng)
	}
}
