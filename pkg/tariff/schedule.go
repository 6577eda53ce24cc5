package tariff

import (
	"fmt"
	"sort"
	"time"

	"github.com/sitariff/sitariff/pkg/types"
)

// Day is the length of a tariff day. Times of day are durations since local
// midnight in [0, Day).
const Day = 24 * time.Hour

// Interval assigns a network block to the half-open span [Start, End) of the
// day.
type Interval struct {
	Start time.Duration      `json:"start"`
	End   time.Duration      `json:"end"`
	Block types.NetworkBlock `json:"block"`
}

// Contains returns true if tod falls within the interval.
func (i Interval) Contains(tod time.Duration) bool {
	return tod >= i.Start && tod < i.End
}

// scheduleKey collapses holidays and weekends into a single non-workday.
type scheduleKey struct {
	season  types.Season
	workday bool
}

var scheduleKeys = []scheduleKey{
	{types.SeasonHigher, true},
	{types.SeasonHigher, false},
	{types.SeasonLower, true},
	{types.SeasonLower, false},
}

func (k scheduleKey) String() string {
	if k.workday {
		return string(k.season) + "/workday"
	}
	return string(k.season) + "/non-workday"
}

func keyFor(season types.Season, dayType types.DayType) (scheduleKey, error) {
	k := scheduleKey{season: season}
	switch dayType {
	case types.DayTypeWorkday:
		k.workday = true
	case types.DayTypeWeekend, types.DayTypeHoliday:
	default:
		return k, types.NewError(types.ErrorKindUnmappedSchedule, "dayType", string(dayType))
	}
	switch season {
	case types.SeasonHigher, types.SeasonLower:
	default:
		return k, types.NewError(types.ErrorKindUnmappedSchedule, "season", string(season))
	}
	return k, nil
}

// ScheduleVariant is one complete rule set mapping (season, day type, time of
// day) to a network block.
type ScheduleVariant struct {
	ID          string
	Name        string
	Description string
	table       map[scheduleKey][]Interval
}

// ScheduleInfo provides metadata about a schedule variant.
type ScheduleInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Intervals   int    `json:"intervals"`
	Default     bool   `json:"default"`
}

// Info returns the variant's metadata.
func (v *ScheduleVariant) Info() ScheduleInfo {
	return ScheduleInfo{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description,
		Intervals:   len(v.table[scheduleKeys[0]]),
		Default:     v.ID == types.DefaultSchedule,
	}
}

// Intervals returns the ordered intervals for the season and day type.
func (v *ScheduleVariant) Intervals(season types.Season, dayType types.DayType) ([]Interval, error) {
	k, err := keyFor(season, dayType)
	if err != nil {
		return nil, err
	}
	iv, ok := v.table[k]
	if !ok || len(iv) == 0 {
		return nil, types.NewError(types.ErrorKindUnmappedSchedule, v.ID, k.String())
	}
	return iv, nil
}

// Lookup returns the network block in effect at tod.
func (v *ScheduleVariant) Lookup(season types.Season, dayType types.DayType, tod time.Duration) (types.NetworkBlock, error) {
	if tod < 0 || tod >= Day {
		return 0, types.NewError(types.ErrorKindInvalidTime, "timeOfDay", tod.String())
	}
	iv, err := v.Intervals(season, dayType)
	if err != nil {
		return 0, err
	}
	// first interval ending after tod
	i := sort.Search(len(iv), func(i int) bool {
		return iv[i].End > tod
	})
	if i == len(iv) || !iv[i].Contains(tod) {
		return 0, types.NewError(types.ErrorKindUnmappedSchedule, v.ID, fmt.Sprintf("%s@%s", scheduleKey{season, dayType.IsWorkday()}, tod))
	}
	return iv[i].Block, nil
}

// Validate checks that every (season, day type) pair is partitioned into
// contiguous intervals covering the whole day exactly once.
func (v *ScheduleVariant) Validate() error {
	for _, k := range scheduleKeys {
		iv := v.table[k]
		if len(iv) == 0 {
			return types.NewError(types.ErrorKindUnmappedSchedule, v.ID, k.String())
		}
		if iv[0].Start != 0 {
			return fmt.Errorf("%s %s: first interval starts at %s: %w", v.ID, k, iv[0].Start, types.ErrUnmappedSchedule)
		}
		if iv[len(iv)-1].End != Day {
			return fmt.Errorf("%s %s: last interval ends at %s: %w", v.ID, k, iv[len(iv)-1].End, types.ErrUnmappedSchedule)
		}
		for i, in := range iv {
			if in.Start >= in.End {
				return fmt.Errorf("%s %s: empty interval at %s: %w", v.ID, k, in.Start, types.ErrUnmappedSchedule)
			}
			if !in.Block.Valid() {
				return fmt.Errorf("%s %s: invalid block %d: %w", v.ID, k, in.Block, types.ErrUnmappedSchedule)
			}
			if i > 0 && iv[i-1].End != in.Start {
				return fmt.Errorf("%s %s: gap or overlap at %s: %w", v.ID, k, in.Start, types.ErrUnmappedSchedule)
			}
		}
	}
	return nil
}

// boundaries returns the distinct interval start times for the season and day
// type, excluding midnight.
func (v *ScheduleVariant) boundaries(season types.Season, dayType types.DayType) ([]time.Duration, error) {
	iv, err := v.Intervals(season, dayType)
	if err != nil {
		return nil, err
	}
	out := make([]time.Duration, 0, len(iv))
	for _, in := range iv[1:] {
		out = append(out, in.Start)
	}
	return out, nil
}

// hourly builds intervals from whole-hour boundaries (including 0 and 24) and
// one block per interval.
func hourly(boundaries []int, blocks ...types.NetworkBlock) []Interval {
	if len(boundaries) != len(blocks)+1 {
		panic(fmt.Sprintf("schedule has %d boundaries for %d blocks", len(boundaries), len(blocks)))
	}
	out := make([]Interval, len(blocks))
	for i, b := range blocks {
		out[i] = Interval{
			Start: time.Duration(boundaries[i]) * time.Hour,
			End:   time.Duration(boundaries[i+1]) * time.Hour,
			Block: b,
		}
	}
	return out
}
