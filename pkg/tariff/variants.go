package tariff

import (
	"sort"

	"github.com/sitariff/sitariff/pkg/types"
)

const (
	b1 = types.NetworkBlock1
	b2 = types.NetworkBlock2
	b3 = types.NetworkBlock3
	b4 = types.NetworkBlock4
	b5 = types.NetworkBlock5
)

var sevenIntervalHours = []int{0, 6, 7, 14, 16, 20, 22, 24}

// SevenInterval separates the early morning, afternoon and evening shoulders
// from the two daily peaks (07-14 and 16-20).
var SevenInterval = &ScheduleVariant{
	ID:          "seven_interval",
	Name:        "Sedem intervalov",
	Description: "Peaks 07-14 and 16-20 with one-hour and two-hour shoulders; block 5 only on lower season non-workday nights",
	table: map[scheduleKey][]Interval{
		{types.SeasonHigher, true}:  hourly(sevenIntervalHours, b3, b2, b1, b2, b1, b2, b3),
		{types.SeasonLower, true}:   hourly(sevenIntervalHours, b4, b3, b2, b3, b2, b3, b4),
		{types.SeasonHigher, false}: hourly(sevenIntervalHours, b4, b3, b2, b3, b2, b3, b4),
		{types.SeasonLower, false}:  hourly(sevenIntervalHours, b5, b4, b3, b4, b3, b4, b5),
	},
}

var fiveIntervalHours = []int{0, 6, 14, 16, 22, 24}

// FiveInterval folds the shoulders into the adjacent peaks: 06-14 and 16-22
// are peak, 14-16 is the afternoon valley.
var FiveInterval = &ScheduleVariant{
	ID:          "five_interval",
	Name:        "Pet intervalov",
	Description: "Peaks 06-14 and 16-22 with an afternoon valley 14-16",
	table: map[scheduleKey][]Interval{
		{types.SeasonHigher, true}:  hourly(fiveIntervalHours, b3, b1, b2, b1, b3),
		{types.SeasonLower, true}:   hourly(fiveIntervalHours, b4, b2, b3, b2, b4),
		{types.SeasonHigher, false}: hourly(fiveIntervalHours, b4, b2, b3, b2, b4),
		{types.SeasonLower, false}:  hourly(fiveIntervalHours, b5, b3, b4, b3, b5),
	},
}

var variants = map[string]*ScheduleVariant{
	SevenInterval.ID: SevenInterval,
	FiveInterval.ID:  FiveInterval,
}

// Variant returns the schedule variant with the given ID. An empty name
// selects the default variant.
func Variant(id string) (*ScheduleVariant, error) {
	if id == "" {
		id = types.DefaultSchedule
	}
	v, ok := variants[id]
	if !ok {
		return nil, types.NewError(types.ErrorKindUnmappedSchedule, "schedule", id)
	}
	return v, nil
}

// Variants lists metadata for all schedule variants ordered by ID.
func Variants() []ScheduleInfo {
	out := make([]ScheduleInfo, 0, len(variants))
	for _, v := range variants {
		out = append(out, v.Info())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}
