package mergestopareas

import (
	"encoding/json"
	"os"

	"github.com/theoremus-urban-solutions/transit-model/utils"
)

// Skip reasons recorded in the report.
const (
	ReasonTooFar = "too far"
)

// MergeEntry is one master / merged pair of the report.
type MergeEntry struct {
	MasterID       string  `json:"master_stop_area_id"`
	MergedID       string  `json:"merged_stop_area_id"`
	Reason         string  `json:"reason,omitempty"`
	DistanceMeters float64 `json:"distance_meters,omitempty"`
}

// Report accumulates the outcome of one merge invocation: applied merges,
// merges skipped with a reason, and identifiers named by rules but absent
// from the model.
type Report struct {
	GeneratedAt string       `json:"generated_at"`
	Applied     []MergeEntry `json:"applied"`
	Skipped     []MergeEntry `json:"skipped"`
	Unmatched   []string     `json:"unmatched_identifiers"`
}

// NewReport creates an empty report stamped with the current time.
func NewReport() *Report {
	return &Report{
		GeneratedAt: utils.Iso8601Now(),
		Applied:     []MergeEntry{},
		Skipped:     []MergeEntry{},
		Unmatched:   []string{},
	}
}

func (r *Report) addApplied(masterID, mergedID string) {
	r.Applied = append(r.Applied, MergeEntry{MasterID: masterID, MergedID: mergedID})
}

func (r *Report) addSkipped(masterID, mergedID, reason string, distanceMeters float64) {
	r.Skipped = append(r.Skipped, MergeEntry{
		MasterID:       masterID,
		MergedID:       mergedID,
		Reason:         reason,
		DistanceMeters: distanceMeters,
	})
}

func (r *Report) addUnmatched(id string) {
	for _, existing := range r.Unmatched {
		if existing == id {
			return
		}
	}
	r.Unmatched = append(r.Unmatched, id)
}

// Write serializes the report as indented JSON at the given path.
func (r *Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
