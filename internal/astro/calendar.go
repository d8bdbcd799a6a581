package astro

import (
	"errors"
	"strings"
	"time"
)

// Birth data parse errors.
var (
	ErrInvalidDate = errors.New("invalid birth date")
	ErrInvalidTime = errors.New("invalid birth time")
)

var (
	dateLayouts = []string{"2006-1-2", "2006/1/2"}
	timeLayouts = []string{"15:04", "15:04:05"}
)

// sunBoundary is the first (month, day) on which sign is the Sun sign.
type sunBoundary struct {
	month time.Month
	day   int
	sign  Sign
}

// sunBoundaries is ordered by calendar position. Dates before Jan 20 fall
// through to Capricorn.
var sunBoundaries = []sunBoundary{
	{time.January, 20, Aquarius},
	{time.February, 19, Pisces},
	{time.March, 21, Aries},
	{time.April, 20, Taurus},
	{time.May, 21, Gemini},
	{time.June, 21, Cancer},
	{time.July, 23, Leo},
	{time.August, 23, Virgo},
	{time.September, 23, Libra},
	{time.October, 23, Scorpio},
	{time.November, 22, Sagittarius},
	{time.December, 22, Capricorn},
}

// SunSign returns the tropical Sun sign for a calendar day using fixed
// boundary dates. Out-of-range input yields Unknown.
func SunSign(month time.Month, day int) Sign {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return Unknown
	}

	sign := Capricorn
	for _, b := range sunBoundaries {
		if month > b.month || (month == b.month && day >= b.day) {
			sign = b.sign
		}
	}
	return sign
}

// ParseBirthDate parses YYYY-MM-DD or YYYY/MM/DD. Single-digit month and
// day are accepted.
func ParseBirthDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// ParseBirthTime parses HH:MM (seconds optional) and returns the offset
// from midnight.
func ParseBirthTime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, ErrInvalidTime
}
