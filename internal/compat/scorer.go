package compat

import "github.com/starmatch/starmatch/internal/astro"

// Scorer computes compatibility from a fixed, validated weight table.
// It is safe for concurrent use.
type Scorer struct {
	weights Weights
	clamp   bool
}

// NewScorer validates w and returns a Scorer. When clamp is set the score
// never exceeds MaxScore.
func NewScorer(w Weights, clamp bool) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: w.clone(), clamp: clamp}, nil
}

// Weights returns a copy of the scorer's table.
func (s *Scorer) Weights() Weights {
	return s.weights.clone()
}

// Score adds the weight of every body present in both a and b whose signs
// share an element. Unknown placements never match.
func (s *Scorer) Score(a, b astro.Placements) int {
	score := 0
	for _, body := range astro.Bodies {
		weight, ok := s.weights[body]
		if !ok {
			continue
		}
		signA, okA := a[body]
		signB, okB := b[body]
		if !okA || !okB {
			continue
		}
		if astro.SameElement(signA, signB) {
			score += weight
		}
	}

	if s.clamp && score > MaxScore {
		score = MaxScore
	}
	return score
}
