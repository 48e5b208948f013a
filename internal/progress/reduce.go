package progress

import (
	"time"

	"ckd-progress/internal/staging"
)

// PartitionMap holds one partition's reduction: for each patient, the
// earliest date every staged level was recorded in that partition.
// Patients with no staged record are absent, never present with an empty
// inner map.
type PartitionMap map[string]map[staging.Stage]time.Time

// Reduce collapses a partition's records into a PartitionMap via a
// grouped minimum. Duplicate identical rows are absorbed; the fold is
// idempotent and order-independent.
func Reduce(records []Record) PartitionMap {
	pm := make(PartitionMap)
	for _, r := range records {
		stages, ok := pm[r.PatientID]
		if !ok {
			stages = make(map[staging.Stage]time.Time)
			pm[r.PatientID] = stages
		}
		if existing, ok := stages[r.Stage]; !ok || r.Date.Before(existing) {
			stages[r.Stage] = r.Date
		}
	}
	return pm
}
