package core

import "sort"

// Candidate is one generated protein sequence with its generator metrics.
type Candidate struct {
	ID              int     `json:"id"`
	LogProbPerToken float64 `json:"log_prob_per_token"`
	Score           float64 `json:"score"`
	Sequence        string  `json:"sequence"`
}

// CandidateSet is an ordered collection of candidates, sorted by score
// descending with ties broken by original input order (first-seen wins).
// A set is always replaced wholesale; it is never mutated in place.
type CandidateSet struct {
	Candidates []Candidate `json:"candidates"`
}

// NewCandidateSet builds a set from parsed rows, applying the canonical
// ordering. The input slice is not retained.
func NewCandidateSet(candidates []Candidate) CandidateSet {
	out := make([]Candidate, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return CandidateSet{Candidates: out}
}

// Len returns the number of candidates in the set.
func (s CandidateSet) Len() int {
	return len(s.Candidates)
}

// Empty reports whether the set holds no candidates.
func (s CandidateSet) Empty() bool {
	return len(s.Candidates) == 0
}

// Top returns the highest-scoring candidate.
func (s CandidateSet) Top() (Candidate, bool) {
	if len(s.Candidates) == 0 {
		return Candidate{}, false
	}
	return s.Candidates[0], true
}

// At returns the candidate at the given position in score order.
func (s CandidateSet) At(i int) (Candidate, bool) {
	if i < 0 || i >= len(s.Candidates) {
		return Candidate{}, false
	}
	return s.Candidates[i], true
}
