package types

import (
	"encoding/json"
	"time"
)

// Season is the network-charge season. The higher season is winter.
type Season string

const (
	SeasonHigher Season = "higher"
	SeasonLower  Season = "lower"
)

// SeasonInfo is display metadata for a season.
type SeasonInfo struct {
	ID          Season `json:"id"`
	Name        string `json:"name"`
	Months      string `json:"months"`
	Description string `json:"description"`
}

// Info returns the display metadata for the season.
func (s Season) Info() SeasonInfo {
	switch s {
	case SeasonHigher:
		return SeasonInfo{
			ID:          s,
			Name:        "Višja sezona",
			Months:      "November - Februar",
			Description: "Zimska tarifa z višjimi tarifami v koničnih urah",
		}
	case SeasonLower:
		return SeasonInfo{
			ID:          s,
			Name:        "Nižja sezona",
			Months:      "Marec - Oktober",
			Description: "Poletna tarifa z nižjimi tarifami",
		}
	}
	return SeasonInfo{ID: s, Name: "Unknown"}
}

// DayType classifies a calendar day. Holiday takes precedence over Weekend
// which takes precedence over Workday.
type DayType string

const (
	DayTypeWorkday DayType = "workday"
	DayTypeWeekend DayType = "weekend"
	DayTypeHoliday DayType = "holiday"
)

// IsWorkday returns true for Monday-Friday days that are not holidays.
func (d DayType) IsWorkday() bool {
	return d == DayTypeWorkday
}

// EnergyTariff is the energy (električna energija) tariff period.
type EnergyTariff string

const (
	// EnergyTariffVT is the high tariff (visoka tarifa).
	EnergyTariffVT EnergyTariff = "VT"
	// EnergyTariffMT is the low tariff (mala tarifa).
	EnergyTariffMT EnergyTariff = "MT"
)

// Description returns a human readable description of the tariff.
func (e EnergyTariff) Description() string {
	switch e {
	case EnergyTariffVT:
		return "Visoka tarifa (High tariff) - Električna energija"
	case EnergyTariffMT:
		return "Mala tarifa (Low tariff) - Električna energija"
	}
	return "Unknown"
}

// NetworkBlock is one of the five network-charge (omrežnina) blocks.
type NetworkBlock int

const (
	NetworkBlock1 NetworkBlock = iota + 1
	NetworkBlock2
	NetworkBlock3
	NetworkBlock4
	NetworkBlock5
)

// NetworkBlocks lists every block in order.
var NetworkBlocks = []NetworkBlock{NetworkBlock1, NetworkBlock2, NetworkBlock3, NetworkBlock4, NetworkBlock5}

// Valid returns true if the block is within 1..5.
func (b NetworkBlock) Valid() bool {
	return b >= NetworkBlock1 && b <= NetworkBlock5
}

// Cheap returns true for the two lowest-rate blocks, 4 and 5.
func (b NetworkBlock) Cheap() bool {
	return b == NetworkBlock4 || b == NetworkBlock5
}

// Expensive returns true for the two highest-rate blocks, 1 and 2.
func (b NetworkBlock) Expensive() bool {
	return b == NetworkBlock1 || b == NetworkBlock2
}

// Description returns a human readable description of the block.
func (b NetworkBlock) Description() string {
	switch b {
	case NetworkBlock1:
		return "Highest rate (peak hours) - Omrežnina"
	case NetworkBlock2:
		return "High rate - Omrežnina"
	case NetworkBlock3:
		return "Medium rate - Omrežnina"
	case NetworkBlock4:
		return "Low rate - Omrežnina"
	case NetworkBlock5:
		return "Lowest rate (night/off-peak) - Omrežnina"
	}
	return "Unknown"
}

// Holiday is a Slovenian public holiday on a specific date.
type Holiday struct {
	Date    time.Time
	Name    string
	Movable bool
}

// MarshalJSON encodes the date without a time component.
func (h Holiday) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date    string `json:"date"`
		Name    string `json:"name"`
		Movable bool   `json:"movable"`
	}{
		Date:    h.Date.Format(time.DateOnly),
		Name:    h.Name,
		Movable: h.Movable,
	})
}

// Day is the calendar classification of a single date.
type Day struct {
	Date        time.Time `json:"-"`
	Season      Season    `json:"season"`
	DayType     DayType   `json:"dayType"`
	IsHoliday   bool      `json:"isHoliday"`
	IsWeekend   bool      `json:"isWeekend"`
	HolidayName string    `json:"holidayName,omitempty"`
}

// Classification is the full tariff regime in effect at an instant.
type Classification struct {
	Timestamp    time.Time    `json:"timestamp"`
	Season       Season       `json:"season"`
	DayType      DayType      `json:"dayType"`
	IsHoliday    bool         `json:"isHoliday"`
	IsWeekend    bool         `json:"isWeekend"`
	HolidayName  string       `json:"holidayName,omitempty"`
	NetworkBlock NetworkBlock `json:"networkBlock"`
	EnergyTariff EnergyTariff `json:"energyTariff"`
}

// TariffPeriod is a contiguous span of time during which the classification
// does not change.
type TariffPeriod struct {
	TSStart      time.Time    `json:"tsStart"`
	TSEnd        time.Time    `json:"tsEnd"`
	Season       Season       `json:"season"`
	DayType      DayType      `json:"dayType"`
	NetworkBlock NetworkBlock `json:"networkBlock"`
	EnergyTariff EnergyTariff `json:"energyTariff"`
}
