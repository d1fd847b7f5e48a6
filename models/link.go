// Package models defines data structures shared across the pipeline.
package models

// CandidateLink is a URL plus the short textual context it was extracted
// with (anchor text, title attribute and the URL itself). Candidates are
// deduplicated by exact URL at extraction time and never mutated afterwards.
type CandidateLink struct {
	URL     string
	Context string
}

// ScoredLink pairs a candidate with its lexical prefilter score.
// Recomputed per query, never persisted.
type ScoredLink struct {
	Link         CandidateLink
	LexicalScore int
}

// RankedURL is one entry of the ranking stage output, ordered by
// non-increasing similarity.
type RankedURL struct {
	URL        string
	Similarity float64
}
