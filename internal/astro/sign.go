// Package astro derives zodiac placements from birth data.
// All calculations are closed-form approximations: no ephemeris tables,
// no I/O and no state between calls.
package astro

import "math"

// Sign is a zodiac sign label.
type Sign string

// The twelve zodiac signs, plus the sentinel used when a placement cannot be
// derived from the input.
const (
	Aries       Sign = "Aries"
	Taurus      Sign = "Taurus"
	Gemini      Sign = "Gemini"
	Cancer      Sign = "Cancer"
	Leo         Sign = "Leo"
	Virgo       Sign = "Virgo"
	Libra       Sign = "Libra"
	Scorpio     Sign = "Scorpio"
	Sagittarius Sign = "Sagittarius"
	Capricorn   Sign = "Capricorn"
	Aquarius    Sign = "Aquarius"
	Pisces      Sign = "Pisces"

	Unknown Sign = "Unknown"
)

// zodiac lists the signs in ecliptic order; index i covers [30*i, 30*i+30).
var zodiac = [12]Sign{
	Aries, Taurus, Gemini, Cancer, Leo, Virgo,
	Libra, Scorpio, Sagittarius, Capricorn, Aquarius, Pisces,
}

// Element is one of the four classical categories partitioning the zodiac.
type Element string

const (
	Fire  Element = "fire"
	Earth Element = "earth"
	Air   Element = "air"
	Water Element = "water"

	// NoElement is returned for Unknown and unrecognised labels.
	NoElement Element = ""
)

var elements = map[Sign]Element{
	Aries: Fire, Leo: Fire, Sagittarius: Fire,
	Taurus: Earth, Virgo: Earth, Capricorn: Earth,
	Gemini: Air, Libra: Air, Aquarius: Air,
	Cancer: Water, Scorpio: Water, Pisces: Water,
}

// Signs returns the twelve signs in ecliptic order.
func Signs() []Sign {
	out := make([]Sign, len(zodiac))
	copy(out, zodiac[:])
	return out
}

// IsValid reports whether s is one of the twelve zodiac signs.
func (s Sign) IsValid() bool {
	_, ok := elements[s]
	return ok
}

// Element returns the element of s, or NoElement.
func (s Sign) Element() Element {
	return elements[s]
}

// SameElement reports whether both signs are known and share an element.
func SameElement(a, b Sign) bool {
	ea := a.Element()
	return ea != NoElement && ea == b.Element()
}

// SignFromLongitude maps an ecliptic longitude in degrees to its 30° sector.
// The result depends only on deg mod 360.
func SignFromLongitude(deg float64) Sign {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return Unknown
	}
	idx := int(normalizeDegrees(deg) / 30)
	if idx > 11 {
		// guards against 359.99999... rounding up to 360 after normalisation
		idx = 11
	}
	return zodiac[idx]
}

// normalizeDegrees folds deg into [0, 360).
func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}
