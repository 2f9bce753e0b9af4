// Package moran simulates Moran processes between competing strategies.
//
// A Process evolves a finite population round by round until a single
// strategy remains. Round scores come from a RoundScorer: MatchScorer
// plays fresh contests through a MatchEngine, while CacheScorer samples
// previously observed outcomes from a Cache of per-pair distributions.
package moran
