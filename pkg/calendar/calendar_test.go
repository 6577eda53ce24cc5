package calendar

import (
	"testing"
	"time"

	"github.com/sitariff/sitariff/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestEasterSunday(t *testing.T) {
	tests := []struct {
		year int
		want time.Time
	}{
		{1818, date(1818, time.March, 22)},
		{2000, date(2000, time.April, 23)},
		{2019, date(2019, time.April, 21)},
		{2024, date(2024, time.March, 31)},
		{2025, date(2025, time.April, 20)},
		{2026, date(2026, time.April, 5)},
		{2027, date(2027, time.March, 28)},
		{2038, date(2038, time.April, 25)},
	}
	for _, tt := range tests {
		got, err := EasterSunday(tt.year)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "year %d", tt.year)
		assert.Equal(t, time.Sunday, got.Weekday(), "year %d", tt.year)
	}

	_, err := EasterSunday(1500)
	assert.ErrorIs(t, err, types.ErrInvalidDate)
	_, err = EasterSunday(10000)
	assert.ErrorIs(t, err, types.ErrInvalidDate)
}

func TestHolidays(t *testing.T) {
	t.Run("2025", func(t *testing.T) {
		holidays, err := Holidays(2025)
		require.NoError(t, err)
		assert.Len(t, holidays, 15)

		byDate := map[string]types.Holiday{}
		for i, h := range holidays {
			byDate[h.Date.Format(time.DateOnly)] = h
			if i > 0 {
				assert.False(t, h.Date.Before(holidays[i-1].Date), "holidays must be sorted")
			}
		}

		easterMonday, ok := byDate["2025-04-21"]
		require.True(t, ok)
		assert.True(t, easterMonday.Movable)
		assert.Equal(t, time.Monday, easterMonday.Date.Weekday())

		whitMonday, ok := byDate["2025-06-09"]
		require.True(t, ok)
		assert.True(t, whitMonday.Movable)
		assert.Equal(t, time.Monday, whitMonday.Date.Weekday())

		_, ok = byDate["2025-06-08"]
		assert.True(t, ok, "whit sunday")

		for _, d := range []string{"2025-01-01", "2025-01-02", "2025-02-08", "2025-04-27", "2025-05-01", "2025-05-02", "2025-06-25", "2025-08-15", "2025-10-31", "2025-11-01", "2025-12-25", "2025-12-26"} {
			h, ok := byDate[d]
			require.True(t, ok, d)
			assert.False(t, h.Movable, d)
			assert.NotEmpty(t, h.Name, d)
		}
	})

	t.Run("movable mondays", func(t *testing.T) {
		for year := 1900; year <= 2100; year++ {
			holidays, err := Holidays(year)
			require.NoError(t, err)
			var mondays int
			for _, h := range holidays {
				if h.Movable && h.Date.Weekday() == time.Monday {
					mondays++
				}
			}
			assert.Equal(t, 2, mondays, "year %d", year)
		}
	})

	t.Run("recomputed per year", func(t *testing.T) {
		ok, err := IsHoliday(date(2025, time.April, 21))
		require.NoError(t, err)
		assert.True(t, ok)

		// Easter Monday 2025 is an ordinary day in 2024
		ok, err = IsHoliday(date(2024, time.April, 21))
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = IsHoliday(date(2024, time.April, 1))
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestSeasonOf(t *testing.T) {
	want := map[time.Month]types.Season{
		time.January:   types.SeasonHigher,
		time.February:  types.SeasonHigher,
		time.March:     types.SeasonLower,
		time.April:     types.SeasonLower,
		time.May:       types.SeasonLower,
		time.June:      types.SeasonLower,
		time.July:      types.SeasonLower,
		time.August:    types.SeasonLower,
		time.September: types.SeasonLower,
		time.October:   types.SeasonLower,
		time.November:  types.SeasonHigher,
		time.December:  types.SeasonHigher,
	}
	for m, s := range want {
		assert.Equal(t, s, SeasonOf(m), m.String())
	}

	// every day of several years agrees with its month
	for d := date(2023, time.January, 1); d.Year() < 2027; d = d.AddDate(0, 0, 1) {
		day, err := Resolve(d)
		require.NoError(t, err)
		assert.Equal(t, want[d.Month()], day.Season, d.Format(time.DateOnly))
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		date    time.Time
		dayType types.DayType
		holiday bool
		weekend bool
	}{
		{"monday workday", date(2025, time.July, 14), types.DayTypeWorkday, false, false},
		{"saturday", date(2025, time.July, 12), types.DayTypeWeekend, false, true},
		{"sunday", date(2025, time.July, 13), types.DayTypeWeekend, false, true},
		{"weekday holiday", date(2025, time.December, 25), types.DayTypeHoliday, true, false},
		{"saturday holiday", date(2026, time.August, 15), types.DayTypeHoliday, true, true},
		{"whit sunday", date(2025, time.June, 8), types.DayTypeHoliday, true, true},
		{"easter monday", date(2026, time.April, 6), types.DayTypeHoliday, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Resolve(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.dayType, d.DayType)
			assert.Equal(t, tt.holiday, d.IsHoliday)
			assert.Equal(t, tt.weekend, d.IsWeekend)
			if tt.holiday {
				assert.NotEmpty(t, d.HolidayName)
			} else {
				assert.Empty(t, d.HolidayName)
			}
		})
	}

	t.Run("uses local calendar date", func(t *testing.T) {
		loc, err := time.LoadLocation("Europe/Ljubljana")
		require.NoError(t, err)
		// 23:30 UTC on Dec 31 is already New Year's Day in Ljubljana
		ts := time.Date(2024, time.December, 31, 23, 30, 0, 0, time.UTC)
		d, err := Resolve(ts.In(loc))
		require.NoError(t, err)
		assert.Equal(t, types.DayTypeHoliday, d.DayType)

		d, err = Resolve(ts)
		require.NoError(t, err)
		assert.Equal(t, types.DayTypeWorkday, d.DayType)
	})

	t.Run("invalid dates", func(t *testing.T) {
		_, err := Resolve(time.Time{})
		assert.ErrorIs(t, err, types.ErrInvalidDate)

		_, err = Resolve(date(1200, time.May, 4))
		assert.ErrorIs(t, err, types.ErrInvalidDate)
	})
}
