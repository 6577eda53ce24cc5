package tariff

import (
	"fmt"
	"time"

	// the tariff rules are defined in Slovenian local time regardless of the
	// host's zoneinfo
	_ "time/tzdata"
)

var (
	// Location is the zone tariff rules are expressed in.
	Location = func() *time.Location {
		loc, err := time.LoadLocation("Europe/Ljubljana")
		if err != nil {
			panic(fmt.Errorf("failed to load slovenian time location: %w", err))
		}
		return loc
	}()
)

// TimeOfDay returns the wall-clock time of t as a duration since midnight in
// t's location.
func TimeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

// atTimeOfDay returns the instant on the local date of day at wall-clock tod.
// A tod of Day is the following midnight.
func atTimeOfDay(day time.Time, tod time.Duration) time.Time {
	y, m, d := day.Date()
	h := int(tod / time.Hour)
	minute := int((tod % time.Hour) / time.Minute)
	return time.Date(y, m, d, h, minute, 0, 0, day.Location())
}
