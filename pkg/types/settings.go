package types

import (
	"fmt"
	"time"
)

// CurrentSettingsVersion is the current version of the settings struct.
// Increment this value when adding new fields that require default values.
const CurrentSettingsVersion = 2

// DefaultSchedule is the schedule variant used when none has been chosen.
const DefaultSchedule = "seven_interval"

// Settings represents the configuration stored in the database.
// These are dynamic settings that can be changed without redeploying.
type Settings struct {
	// Schedule is the name of the network block schedule variant.
	Schedule string `json:"schedule"`

	// Supplier is the electricity supplier (dobavitelj) the prices belong to.
	Supplier string `json:"supplier"`

	// Prices are the operator-entered unit prices. They are unset until the
	// first price update.
	Prices PriceConfiguration `json:"prices"`
}

// SupplierInfo provides metadata about an electricity supplier.
type SupplierInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Suppliers lists the known Slovenian suppliers and distributors.
var Suppliers = []SupplierInfo{
	{ID: "gen_i", Name: "GEN-I"},
	{ID: "petrol", Name: "Petrol"},
	{ID: "elektro_energija", Name: "Elektro energija"},
	{ID: "eco_energy", Name: "ECO energy"},
	{ID: "elektro_ljubljana", Name: "Elektro Ljubljana (osnovni dobavitelj)"},
	{ID: "elektro_maribor", Name: "Elektro Maribor (osnovni dobavitelj)"},
	{ID: "elektro_celje", Name: "Elektro Celje (osnovni dobavitelj)"},
	{ID: "elektro_gorenjska", Name: "Elektro Gorenjska (osnovni dobavitelj)"},
	{ID: "elektro_primorska", Name: "Elektro Primorska (osnovni dobavitelj)"},
	{ID: SupplierOther, Name: "Drug dobavitelj"},
}

// SupplierOther is used when the supplier is not one of the known ones.
const SupplierOther = "other"

// LookupSupplier returns the supplier with the given ID.
func LookupSupplier(id string) (SupplierInfo, bool) {
	for _, s := range Suppliers {
		if s.ID == id {
			return s, true
		}
	}
	return SupplierInfo{}, false
}

// MigrateSettings migrates the settings to the current version.
// It returns the migrated settings, a boolean indicating if changes were made, and an error if migration failed.
func MigrateSettings(s Settings, currentVersion int) (Settings, bool, error) {
	if currentVersion >= CurrentSettingsVersion {
		return s, false, nil
	}

	migrated := false
	for version := currentVersion + 1; version <= CurrentSettingsVersion; version++ {
		switch version {
		case 1:
			// version 1: schedule variants became selectable
			if s.Schedule == "" {
				s.Schedule = DefaultSchedule
				migrated = true
			}
		case 2:
			// version 2: supplier must be one of the known IDs
			if _, ok := LookupSupplier(s.Supplier); !ok {
				s.Supplier = SupplierOther
				migrated = true
			}
		default:
			return s, false, fmt.Errorf("unknown settings version: %d", version)
		}
	}

	return s, migrated, nil
}

// SettingsRevision is one entry of the configuration audit trail written on
// every settings change.
type SettingsRevision struct {
	Timestamp time.Time `json:"timestamp"`
	Version   int       `json:"version"`
	Settings  Settings  `json:"settings"`
}
