package screening

import (
	"fmt"
	"unicode/utf8"

	apperrors "github.com/ikkim/screening-backend/internal/errors"
)

// Subject is the freshly created natural detail being screened.
type Subject struct {
	FullName   string
	NationalID *string
	TaxID      *string
}

// Candidate is one row of the opposite population.
type Candidate struct {
	ID       uint
	FullName string
}

// Population is the opposite side of a screening run.
type Population interface {
	// ExactCandidates returns rows sharing the full name or a non-nil identifier.
	ExactCandidates(subject Subject) ([]Candidate, error)
	// Candidates returns every live row, for the fuzzy pass.
	Candidates() ([]Candidate, error)
}

// ThresholdSource yields the current maximum edit distance. It is consulted
// once per run and never cached.
type ThresholdSource interface {
	MaxDistance() (int, error)
}

// Hit pairs a counterpart with its verdict.
type Hit struct {
	CounterpartID uint
	Verdict       Verdict
}

type Engine struct {
	strategy Strategy
}

func NewEngine(strategy Strategy) *Engine {
	if strategy == nil {
		strategy = Levenshtein{}
	}
	return &Engine{strategy: strategy}
}

// Screen runs the exact pass and, only when it finds nothing, the fuzzy pass.
// A run yields either all exact hits or all fuzzy hits. No hits is not an error.
func (e *Engine) Screen(subject Subject, population Population, thresholds ThresholdSource) ([]Hit, error) {
	threshold, err := thresholds.MaxDistance()
	if err != nil {
		return nil, err
	}

	exact, err := population.ExactCandidates(subject)
	if err != nil {
		return nil, fmt.Errorf("exact pass: %w", err)
	}
	if len(exact) > 0 {
		seen := make(map[uint]struct{}, len(exact))
		hits := make([]Hit, 0, len(exact))
		for _, c := range exact {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			hits = append(hits, Hit{CounterpartID: c.ID, Verdict: Exact()})
		}
		return hits, nil
	}

	return e.fuzzy(subject.FullName, threshold, population)
}

func (e *Engine) fuzzy(name string, threshold int, population Population) ([]Hit, error) {
	n := utf8.RuneCountInString(name)
	if n == 0 {
		return nil, apperrors.ErrDegenerateName
	}

	candidates, err := population.Candidates()
	if err != nil {
		return nil, fmt.Errorf("fuzzy pass: %w", err)
	}

	var hits []Hit
	for _, c := range candidates {
		// distance is never below the length difference
		if abs(n-utf8.RuneCountInString(c.FullName)) >= threshold {
			continue
		}
		d := e.strategy.Distance(name, c.FullName)
		if d >= threshold {
			continue
		}
		score := float64(n-d) / float64(n)
		if score <= 0 {
			continue
		}
		hits = append(hits, Hit{CounterpartID: c.ID, Verdict: Fuzzy(score)})
	}
	return hits, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
