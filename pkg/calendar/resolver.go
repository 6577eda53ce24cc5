// Package calendar classifies calendar dates for Slovenian tariff purposes:
// season, public holidays and the resulting day type.
package calendar

import (
	"time"

	"github.com/sitariff/sitariff/pkg/types"
)

// SeasonOf returns the season for a month. November through February is the
// higher season.
func SeasonOf(month time.Month) types.Season {
	switch month {
	case time.November, time.December, time.January, time.February:
		return types.SeasonHigher
	}
	return types.SeasonLower
}

// IsWeekend returns true on Saturday and Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Resolve classifies the calendar date of t. The date is taken in t's own
// location; callers convert to local time first.
func Resolve(t time.Time) (types.Day, error) {
	if t.IsZero() {
		return types.Day{}, types.NewError(types.ErrorKindInvalidDate, "date", "zero time")
	}
	holiday, isHoliday, err := HolidayOn(t)
	if err != nil {
		return types.Day{}, err
	}

	year, month, day := t.Date()
	d := types.Day{
		Date:      time.Date(year, month, day, 0, 0, 0, 0, t.Location()),
		Season:    SeasonOf(month),
		IsHoliday: isHoliday,
		IsWeekend: IsWeekend(t),
	}
	switch {
	case isHoliday:
		d.DayType = types.DayTypeHoliday
		d.HolidayName = holiday.Name
	case d.IsWeekend:
		d.DayType = types.DayTypeWeekend
	default:
		d.DayType = types.DayTypeWorkday
	}
	return d, nil
}
