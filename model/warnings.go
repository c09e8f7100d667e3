package model

import (
	"fmt"
	"log"
	"strings"
)

// Warning type constants
const (
	WarningJourneyUnknownCalendar   = "journey_unknown_calendar"
	WarningFrequencyUnknownJourney  = "frequency_unknown_journey"
	WarningTransferUnknownStopPoint = "transfer_unknown_stop_point"
	WarningPriceUnknownTicket       = "price_unknown_ticket"
	WarningAdminUnknownStopArea     = "admin_unknown_stop_area"
	WarningDanglingGeometry         = "dangling_geometry"
	WarningDanglingEquipment        = "dangling_equipment"
	WarningDanglingTripProperty     = "dangling_trip_property"
	WarningDanglingDestination      = "dangling_destination"
	WarningDanglingComment          = "dangling_comment"
	WarningEmptyCalendar            = "empty_calendar"
)

// warningInfo holds aggregated information about a specific warning type
type warningInfo struct {
	count    int
	examples []string
}

// WarningAggregator collects defects found while cleaning a model and logs
// one consolidated line per warning type instead of one line per record.
type WarningAggregator struct {
	warnings map[string]*warningInfo
}

// NewWarningAggregator creates a new warning aggregator
func NewWarningAggregator() *WarningAggregator {
	return &WarningAggregator{
		warnings: make(map[string]*warningInfo),
	}
}

// Add records a warning occurrence with an example ID
func (w *WarningAggregator) Add(warningType, exampleID string) {
	if w.warnings[warningType] == nil {
		w.warnings[warningType] = &warningInfo{
			examples: make([]string, 0, 3),
		}
	}

	info := w.warnings[warningType]
	info.count++

	// Store up to 3 examples
	if len(info.examples) < 3 {
		info.examples = append(info.examples, exampleID)
	}
}

// LogAll outputs all collected warnings in consolidated format
func (w *WarningAggregator) LogAll(pass string) {
	for warningType, info := range w.warnings {
		log.Printf("%s", w.formatWarningMessage(warningType, pass, info))
	}
}

func (w *WarningAggregator) formatWarningMessage(warningType, pass string, info *warningInfo) string {
	var description, action string

	switch warningType {
	case WarningJourneyUnknownCalendar:
		description = "vehicle journeys referencing a missing calendar"
		action = "Dropping them and their stop times"
	case WarningFrequencyUnknownJourney:
		description = "frequencies referencing a missing vehicle journey"
		action = "Dropping them"
	case WarningTransferUnknownStopPoint:
		description = "transfers referencing a missing stop point"
		action = "Dropping them"
	case WarningPriceUnknownTicket:
		description = "ticket prices referencing a missing ticket"
		action = "Dropping them"
	case WarningAdminUnknownStopArea:
		description = "admin stations referencing a missing stop area"
		action = "Dropping them"
	case WarningDanglingGeometry:
		description = "objects referencing a missing geometry"
		action = "Clearing the reference"
	case WarningDanglingEquipment:
		description = "stops referencing missing equipment"
		action = "Clearing the reference"
	case WarningDanglingTripProperty:
		description = "vehicle journeys referencing a missing trip property"
		action = "Clearing the reference"
	case WarningDanglingDestination:
		description = "routes whose destination stop area is missing"
		action = "Clearing the reference"
	case WarningDanglingComment:
		description = "comment links pointing at a missing comment"
		action = "Pruning the links"
	case WarningEmptyCalendar:
		description = "calendars left without any date"
		action = "Removing them"
	default:
		description = "unknown defect"
		action = "Recovering with fallback behavior"
	}

	examplesStr := strings.Join(info.examples, ", ")

	return fmt.Sprintf("Pass %s found %s (%d occurrences). %s. Examples: %s",
		pass, description, info.count, action, examplesStr)
}
