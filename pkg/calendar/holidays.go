package calendar

import (
	"sort"
	"time"

	"github.com/sitariff/sitariff/pkg/types"
)

type fixedHoliday struct {
	month time.Month
	day   int
	name  string
}

// fixedHolidays are the Slovenian public holidays that fall on the same date
// every year.
var fixedHolidays = []fixedHoliday{
	{time.January, 1, "Novo leto"},
	{time.January, 2, "Novo leto"},
	{time.February, 8, "Prešernov dan"},
	{time.April, 27, "Dan upora proti okupatorju"},
	{time.May, 1, "Praznik dela"},
	{time.May, 2, "Praznik dela"},
	{time.June, 25, "Dan državnosti"},
	{time.August, 15, "Marijino vnebovzetje"},
	{time.October, 31, "Dan reformacije"},
	{time.November, 1, "Dan spomina na mrtve"},
	{time.December, 25, "Božič"},
	{time.December, 26, "Dan samostojnosti in enotnosti"},
}

type easterHoliday struct {
	offset int
	name   string
}

// easterHolidays are offsets in days from Easter Sunday.
var easterHolidays = []easterHoliday{
	{1, "Velikonočni ponedeljek"},
	{49, "Binkošti"},
	{50, "Binkoštni ponedeljek"},
}

// Holidays returns every holiday of the year ordered by date. Dates are
// midnight UTC.
func Holidays(year int) ([]types.Holiday, error) {
	easter, err := EasterSunday(year)
	if err != nil {
		return nil, err
	}

	out := make([]types.Holiday, 0, len(fixedHolidays)+len(easterHolidays))
	for _, h := range fixedHolidays {
		out = append(out, types.Holiday{
			Date: time.Date(year, h.month, h.day, 0, 0, 0, 0, time.UTC),
			Name: h.name,
		})
	}
	for _, h := range easterHolidays {
		out = append(out, types.Holiday{
			Date:    easter.AddDate(0, 0, h.offset),
			Name:    h.name,
			Movable: true,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// HolidayOn returns the holiday falling on the calendar date of t, if any.
// Only the year, month and day of t in its own location are considered.
func HolidayOn(t time.Time) (types.Holiday, bool, error) {
	holidays, err := Holidays(t.Year())
	if err != nil {
		return types.Holiday{}, false, err
	}
	_, month, day := t.Date()
	for _, h := range holidays {
		if h.Date.Month() == month && h.Date.Day() == day {
			return h, true, nil
		}
	}
	return types.Holiday{}, false, nil
}

// IsHoliday returns true if the calendar date of t is a public holiday.
func IsHoliday(t time.Time) (bool, error) {
	_, ok, err := HolidayOn(t)
	return ok, err
}
