package calendar

import (
	"time"

	"github.com/sitariff/sitariff/pkg/types"
)

const (
	// MinYear is the first year the Gregorian computus applies to.
	MinYear = 1583
	// MaxYear is the last year accepted by the resolver.
	MaxYear = 9999
)

func validYear(year int) error {
	if year < MinYear || year > MaxYear {
		return types.NewError(types.ErrorKindInvalidDate, "year", year)
	}
	return nil
}

// EasterSunday returns the date of Easter Sunday in the Gregorian calendar
// (anonymous Gregorian algorithm). The result is midnight UTC.
func EasterSunday(year int) (time.Time, error) {
	if err := validYear(year); err != nil {
		return time.Time{}, err
	}
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}
