package compat

import (
	"errors"
	"testing"

	"github.com/starmatch/starmatch/internal/astro"
)

func TestParseWeights(t *testing.T) {
	t.Parallel()

	w, err := ParseWeights("sun=20, moon=25,rising=10,venus=20,mars=15,jupiter=10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w[astro.Moon] != 25 || w[astro.Jupiter] != 10 {
		t.Errorf("unexpected weights: %v", w)
	}
	if w.String() != "sun=20,moon=25,rising=10,venus=20,mars=15,jupiter=10" {
		t.Errorf("String() = %q", w.String())
	}
}

func TestParseWeights_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"does not sum to 100", "sun=40,moon=30"},
		{"over 100", "sun=60,moon=60"},
		{"unknown body", "sun=40,moon=30,pluto=30"},
		{"negative", "sun=120,moon=-20"},
		{"not a number", "sun=forty,moon=60"},
		{"missing equals", "sun40,moon=60"},
		{"duplicate", "sun=50,sun=50"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ParseWeights(tt.input); !errors.Is(err, ErrInvalidWeights) {
				t.Errorf("ParseWeights(%q) error = %v, want ErrInvalidWeights", tt.input, err)
			}
		})
	}
}

func TestProfile(t *testing.T) {
	t.Parallel()

	for _, name := range []string{ProfileClassic, ProfilePlanetary, " Classic "} {
		w, err := Profile(name)
		if err != nil {
			t.Fatalf("Profile(%q): %v", name, err)
		}
		if err := w.Validate(); err != nil {
			t.Errorf("Profile(%q) invalid: %v", name, err)
		}
	}

	if _, err := Profile("v9"); !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("expected ErrUnknownProfile, got %v", err)
	}
}

func TestProfile_ReturnsCopy(t *testing.T) {
	t.Parallel()

	w, _ := Profile(ProfileClassic)
	w[astro.Sun] = 0

	again, _ := Profile(ProfileClassic)
	if again[astro.Sun] != 40 {
		t.Error("Profile returned a shared map")
	}
}
