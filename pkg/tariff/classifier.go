// Package tariff maps instants to the Slovenian network block and energy
// tariff in effect.
package tariff

import (
	"fmt"
	"sort"
	"time"

	"github.com/sitariff/sitariff/pkg/calendar"
	"github.com/sitariff/sitariff/pkg/types"
)

const (
	// vtStart and vtEnd bound the high energy tariff on workdays.
	vtStart = 6 * time.Hour
	vtEnd   = 22 * time.Hour
)

// EnergyTariffAt returns VT on workdays between 06:00 and 22:00 and MT at all
// other times.
func EnergyTariffAt(dayType types.DayType, tod time.Duration) types.EnergyTariff {
	if dayType.IsWorkday() && tod >= vtStart && tod < vtEnd {
		return types.EnergyTariffVT
	}
	return types.EnergyTariffMT
}

// Classifier combines the calendar with a schedule variant. It holds no
// mutable state and is safe for concurrent use.
type Classifier struct {
	schedule *ScheduleVariant
	location *time.Location
}

// NewClassifier returns a classifier for the schedule. A nil location uses
// Europe/Ljubljana.
func NewClassifier(schedule *ScheduleVariant, location *time.Location) *Classifier {
	if location == nil {
		location = Location
	}
	return &Classifier{
		schedule: schedule,
		location: location,
	}
}

// Schedule returns the schedule variant the classifier uses.
func (c *Classifier) Schedule() *ScheduleVariant {
	return c.schedule
}

// Classify returns the tariff regime in effect at ts.
func (c *Classifier) Classify(ts time.Time) (types.Classification, error) {
	if ts.IsZero() {
		return types.Classification{}, types.NewError(types.ErrorKindInvalidDate, "timestamp", "zero time")
	}
	local := ts.In(c.location)
	day, err := calendar.Resolve(local)
	if err != nil {
		return types.Classification{}, err
	}
	tod := TimeOfDay(local)
	block, err := c.schedule.Lookup(day.Season, day.DayType, tod)
	if err != nil {
		return types.Classification{}, err
	}
	return types.Classification{
		Timestamp:    local,
		Season:       day.Season,
		DayType:      day.DayType,
		IsHoliday:    day.IsHoliday,
		IsWeekend:    day.IsWeekend,
		HolidayName:  day.HolidayName,
		NetworkBlock: block,
		EnergyTariff: EnergyTariffAt(day.DayType, tod),
	}, nil
}

// nextChange returns the first instant after local at which the
// classification may change.
func (c *Classifier) nextChange(local time.Time, cl types.Classification) (time.Time, error) {
	bounds, err := c.schedule.boundaries(cl.Season, cl.DayType)
	if err != nil {
		return time.Time{}, err
	}
	if cl.DayType.IsWorkday() {
		bounds = append(bounds, vtStart, vtEnd)
	}
	sort.Slice(bounds, func(i, j int) bool {
		return bounds[i] < bounds[j]
	})
	tod := TimeOfDay(local)
	for _, b := range bounds {
		if b > tod {
			return atTimeOfDay(local, b), nil
		}
	}
	return atTimeOfDay(local, Day), nil
}

// Timeline returns the tariff periods covering [start, end), merging adjacent
// spans with identical classifications.
func (c *Classifier) Timeline(start, end time.Time) ([]types.TariffPeriod, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("timeline start %s must be before end %s", start, end)
	}
	var out []types.TariffPeriod
	cur := start.In(c.location)
	for cur.Before(end) {
		cl, err := c.Classify(cur)
		if err != nil {
			return nil, err
		}
		next, err := c.nextChange(cur, cl)
		if err != nil {
			return nil, err
		}
		if !next.After(cur) {
			// wall clock repeated across a DST change
			next = cur.Add(time.Hour)
		}
		if next.After(end) {
			next = end.In(c.location)
		}

		if n := len(out); n > 0 && samePeriod(out[n-1], cl) {
			out[n-1].TSEnd = next
		} else {
			out = append(out, types.TariffPeriod{
				TSStart:      cur,
				TSEnd:        next,
				Season:       cl.Season,
				DayType:      cl.DayType,
				NetworkBlock: cl.NetworkBlock,
				EnergyTariff: cl.EnergyTariff,
			})
		}
		cur = next
	}
	return out, nil
}

func samePeriod(p types.TariffPeriod, cl types.Classification) bool {
	return p.Season == cl.Season &&
		p.DayType == cl.DayType &&
		p.NetworkBlock == cl.NetworkBlock &&
		p.EnergyTariff == cl.EnergyTariff
}
