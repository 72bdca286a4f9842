package screening

import "github.com/agext/levenshtein"

// Strategy measures how far apart two normalized names are.
type Strategy interface {
	Distance(a, b string) int
}

// Levenshtein is the default Strategy: rune-wise edit distance with unit costs.
type Levenshtein struct{}

func (Levenshtein) Distance(a, b string) int {
	return levenshtein.Distance(a, b, nil)
}

// MatchKind tells an exact hit from a fuzzy one.
type MatchKind string

const (
	MatchExact MatchKind = "exact"
	MatchFuzzy MatchKind = "fuzzy"
)

// Verdict is the outcome for one counterpart. Score is 1 for exact hits and in
// (0,1) for fuzzy hits.
type Verdict struct {
	Kind  MatchKind
	Score float64
}

func Exact() Verdict {
	return Verdict{Kind: MatchExact, Score: 1}
}

func Fuzzy(score float64) Verdict {
	return Verdict{Kind: MatchFuzzy, Score: score}
}
