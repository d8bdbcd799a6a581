// Package compat scores elemental compatibility between two sets of
// zodiac placements.
package compat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/starmatch/starmatch/internal/astro"
)

// MaxScore is the total every weight table must sum to.
const MaxScore = 100

// Weight table errors.
var (
	ErrInvalidWeights = errors.New("invalid weight table")
	ErrUnknownProfile = errors.New("unknown weight profile")
)

// Weights maps a body to the points awarded when both placements share an
// element.
type Weights map[astro.Body]int

// Named weight profiles.
const (
	ProfileClassic   = "classic"
	ProfilePlanetary = "planetary"
)

var profiles = map[string]Weights{
	ProfileClassic: {
		astro.Sun:    40,
		astro.Moon:   30,
		astro.Rising: 30,
	},
	ProfilePlanetary: {
		astro.Sun:     20,
		astro.Moon:    20,
		astro.Rising:  15,
		astro.Venus:   15,
		astro.Mars:    15,
		astro.Jupiter: 15,
	},
}

// Profile returns a copy of the named weight table.
func Profile(name string) (Weights, error) {
	w, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return w.clone(), nil
}

// ParseWeights parses "sun=20,moon=25,..." into a validated table.
func ParseWeights(s string) (Weights, error) {
	w := make(Weights)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w: entry %q is not body=weight", ErrInvalidWeights, part)
		}

		body := astro.Body(strings.ToLower(strings.TrimSpace(name)))
		if _, dup := w[body]; dup {
			return nil, fmt.Errorf("%w: %s listed twice", ErrInvalidWeights, body)
		}

		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%w: weight for %s: %v", ErrInvalidWeights, body, err)
		}
		w[body] = n
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Validate checks that every body is known, no weight is negative and the
// weights sum to MaxScore.
func (w Weights) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidWeights)
	}
	for body, n := range w {
		if !body.IsValid() {
			return fmt.Errorf("%w: unknown body %q", ErrInvalidWeights, body)
		}
		if n < 0 {
			return fmt.Errorf("%w: negative weight for %s", ErrInvalidWeights, body)
		}
	}
	if total := w.Total(); total != MaxScore {
		return fmt.Errorf("%w: weights sum to %d, want %d", ErrInvalidWeights, total, MaxScore)
	}
	return nil
}

// Total returns the sum of all weights.
func (w Weights) Total() int {
	total := 0
	for _, n := range w {
		total += n
	}
	return total
}

// String renders the table in ParseWeights format, ordered by body.
func (w Weights) String() string {
	parts := make([]string, 0, len(w))
	for _, body := range astro.Bodies {
		if n, ok := w[body]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", body, n))
		}
	}
	return strings.Join(parts, ",")
}

func (w Weights) clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}
