package moran

import (
	"sort"

	"github.com/pkg/errors"
)

// PairKey identifies an unordered pair of strategies by name. Keys
// produced by NewPairKey are canonical: A <= B.
type PairKey struct {
	A, B string
}

// NewPairKey returns the canonical key for the pair (a, b), and whether
// the order of a and b was swapped to produce it.
func NewPairKey(a, b string) (PairKey, bool) {
	if b < a {
		return PairKey{A: b, B: a}, true
	}

	return PairKey{A: a, B: b}, false
}

type cacheEntry struct {
	// Distribution with outcomes oriented as (key.A, key.B).
	pdf *Pdf
	// Same distribution oriented as (key.B, key.A).
	mirror *Pdf
}

// Cache maps unordered strategy pairs to the distribution of their
// contest outcomes. Both orientations of a pair are addressable in O(1).
// A Cache must not be modified once it is shared between processes.
type Cache struct {
	entries map[PairKey]cacheEntry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[PairKey]cacheEntry)}
}

// Add records the distribution of outcomes for a contest between a and
// b, oriented so that Outcome.A is the score of a. An existing entry
// for the pair is replaced.
func (c *Cache) Add(a, b string, pdf *Pdf) {
	key, swapped := NewPairKey(a, b)
	if swapped {
		pdf = pdf.Mirror()
	}

	entry := cacheEntry{pdf: pdf, mirror: pdf}
	if key.A != key.B {
		entry.mirror = pdf.Mirror()
	}

	c.entries[key] = entry
}

// AddCounts builds a distribution from counts and adds it to the cache.
func (c *Cache) AddCounts(a, b string, counts map[Outcome]int) error {
	pdf, err := NewPdf(counts)
	if err != nil {
		return errors.Wrapf(err, "pair (%s, %s)", a, b)
	}

	c.Add(a, b, pdf)
	return nil
}

// Get returns the distribution of outcomes for a contest between a and
// b, oriented so that Outcome.A is the score of a.
func (c *Cache) Get(a, b string) (*Pdf, error) {
	key, swapped := NewPairKey(a, b)
	entry, ok := c.entries[key]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPairing, "(%s, %s)", a, b)
	}

	if swapped {
		return entry.mirror, nil
	}

	return entry.pdf, nil
}

// Contains reports whether the cache has an entry for the pair in
// either orientation.
func (c *Cache) Contains(a, b string) bool {
	key, _ := NewPairKey(a, b)
	_, ok := c.entries[key]
	return ok
}

// Len returns the number of unordered pairs in the cache.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Keys returns the canonical keys of all stored pairs in sorted order.
func (c *Cache) Keys() []PairKey {
	keys := make([]PairKey, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].A != keys[j].A {
			return keys[i].A < keys[j].A
		}
		return keys[i].B < keys[j].B
	})

	return keys
}

// Records returns one record per stored outcome bucket, in the
// canonical orientation of each pair.
func (c *Cache) Records() []OutcomeRecord {
	var result []OutcomeRecord
	for _, key := range c.Keys() {
		pdf := c.entries[key].pdf
		for i, o := range pdf.SampleSpace {
			result = append(result, OutcomeRecord{
				A:       key.A,
				B:       key.B,
				Outcome: o,
				Count:   pdf.Counts[i],
			})
		}
	}

	return result
}

// CoversUniverse returns an error naming the first pair of the universe
// (including self-pairs) that has no cache entry.
func (c *Cache) CoversUniverse(u *Universe) error {
	var err error
	u.Pairs(func(i, j int) {
		if err != nil {
			return
		}
		a, b := u.At(i).Name, u.At(j).Name
		if !c.Contains(a, b) {
			err = errors.Wrapf(ErrUnknownPairing, "(%s, %s)", a, b)
		}
	})

	return err
}

// BuildCache assembles a cache from outcome records. Records for the
// same pair in either orientation are merged by summing counts.
func BuildCache(records []OutcomeRecord) (*Cache, error) {
	tallies := make(map[PairKey]map[Outcome]int)
	for _, r := range records {
		key, swapped := NewPairKey(r.A, r.B)
		o := r.Outcome
		if swapped {
			o = o.Swap()
		}

		tally, ok := tallies[key]
		if !ok {
			tally = make(map[Outcome]int)
			tallies[key] = tally
		}
		tally[o] += r.Count
	}

	c := NewCache()
	for key, tally := range tallies {
		if err := c.AddCounts(key.A, key.B, tally); err != nil {
			return nil, err
		}
	}

	return c, nil
}
