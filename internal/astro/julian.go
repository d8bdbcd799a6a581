package astro

import (
	"math"
	"time"
)

// J2000 is the Julian Day of 2000-01-01 12:00 UTC.
const J2000 = 2451545.0

// JulianDay converts t (read as UTC) to a Julian Day number using the
// standard Gregorian calendar formula.
func JulianDay(t time.Time) float64 {
	t = t.UTC()

	y := t.Year()
	m := int(t.Month())
	if m <= 2 {
		y--
		m += 12
	}

	a := math.Floor(float64(y) / 100)
	b := 2 - a + math.Floor(a/4)

	dayFraction := (float64(t.Hour()) +
		float64(t.Minute())/60 +
		float64(t.Second())/3600) / 24

	return math.Floor(365.25*float64(y+4716)) +
		math.Floor(30.6001*float64(m+1)) +
		float64(t.Day()) + b - 1524.5 + dayFraction
}

// meanElements holds the J2000 mean longitude and daily motion of a body,
// both in degrees.
type meanElements struct {
	base float64
	rate float64
}

var meanLongitudes = map[Body]meanElements{
	Moon:    {base: 218.316, rate: 13.176396},
	Venus:   {base: 181.979801, rate: 1.602130},
	Mars:    {base: 355.433, rate: 0.524033},
	Jupiter: {base: 34.351519, rate: 0.083056},
}

// MeanLongitude returns the unperturbed ecliptic longitude of b at jd.
// The Sun and Rising have no mean-longitude entry and report false.
func MeanLongitude(b Body, jd float64) (float64, bool) {
	el, ok := meanLongitudes[b]
	if !ok {
		return 0, false
	}
	return normalizeDegrees(el.base + el.rate*(jd-J2000)), true
}

// Greenwich mean sidereal time coefficients, degrees.
const (
	gmstAtJ2000 = 280.46061837
	gmstPerDay  = 360.98564736629
)

// AscendantLongitude approximates the rising point from sidereal time:
// the local sidereal angle rotated back by a quarter turn.
func AscendantLongitude(jd, placeLongitude float64) float64 {
	gmst := gmstAtJ2000 + gmstPerDay*(jd-J2000) + placeLongitude
	return normalizeDegrees(gmst - 90)
}
