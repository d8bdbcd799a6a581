package astro

import "fmt"

// Method names a sign derivation strategy.
type Method string

const (
	// MethodCalendar derives the Sun sign from fixed calendar boundaries only.
	MethodCalendar Method = "calendar"
	// MethodApprox adds mean-longitude planets and a sidereal-time ascendant.
	MethodApprox Method = "approx"
)

// IsValid reports whether m names a known method.
func (m Method) IsValid() bool {
	return m == MethodCalendar || m == MethodApprox
}

// Coordinate is a geographic position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BirthData is the raw input to a Calculator.
type BirthData struct {
	Date     string
	Time     string
	Location Coordinate
}

// Calculator derives placements for every tracked body. Implementations
// never fail: unparseable input yields Unknown placements.
type Calculator interface {
	Calculate(in BirthData) Placements
	Method() Method
}

// NewCalculator returns the Calculator for m.
func NewCalculator(m Method) (Calculator, error) {
	switch m {
	case MethodCalendar:
		return CalendarCalculator{}, nil
	case MethodApprox:
		return ApproxCalculator{}, nil
	default:
		return nil, fmt.Errorf("unknown sign method %q", m)
	}
}

// CalendarCalculator computes only the Sun sign. Every other body is the
// Unknown placeholder.
type CalendarCalculator struct{}

// Method implements Calculator.
func (CalendarCalculator) Method() Method { return MethodCalendar }

// Calculate implements Calculator.
func (CalendarCalculator) Calculate(in BirthData) Placements {
	p := unknownPlacements()

	date, err := ParseBirthDate(in.Date)
	if err != nil {
		return p
	}
	p[Sun] = SunSign(date.Month(), date.Day())
	return p
}

// ApproxCalculator combines the calendar Sun sign with mean-longitude
// planets and a sidereal-time ascendant. Local date and time are read as UTC.
type ApproxCalculator struct{}

// Method implements Calculator.
func (ApproxCalculator) Method() Method { return MethodApprox }

// Calculate implements Calculator.
func (ApproxCalculator) Calculate(in BirthData) Placements {
	p := unknownPlacements()

	date, err := ParseBirthDate(in.Date)
	if err != nil {
		return p
	}
	p[Sun] = SunSign(date.Month(), date.Day())

	offset, err := ParseBirthTime(in.Time)
	if err != nil {
		return p
	}

	jd := JulianDay(date.Add(offset))
	for _, b := range []Body{Moon, Venus, Mars, Jupiter} {
		if lon, ok := MeanLongitude(b, jd); ok {
			p[b] = SignFromLongitude(lon)
		}
	}
	p[Rising] = SignFromLongitude(AscendantLongitude(jd, in.Location.Lon))

	return p
}
