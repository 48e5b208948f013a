package progress

import (
	"ckd-progress/internal/source"
	"ckd-progress/internal/staging"
)

// Normalized is the output of one partition's normalization pass.
type Normalized struct {
	// Records are the staged (1-6) conditions inside the date window.
	Records []Record

	// Members holds every patient with at least one classified CKD code
	// in the window, stage 0 included. It is a superset of the patients
	// appearing in Records.
	Members map[string]struct{}
}

// Normalize filters one partition's raw rows down to staged records.
// Rows with missing or unparsable dates, rows outside the window and rows
// whose code the classifier does not know are dropped. Stage-0 rows count
// the patient into Members but produce no record.
func Normalize(rows []source.Row, classifier staging.Classifier, window Window) Normalized {
	n := Normalized{Members: make(map[string]struct{})}

	for _, row := range rows {
		date, ok := ParseDate(row.StartDate)
		if !ok {
			continue
		}
		if !window.Contains(date) {
			continue
		}
		stage := classifier.Classify(row.Code)
		if stage == staging.Unmapped {
			continue
		}

		n.Members[row.PatientID] = struct{}{}
		if !stage.Staged() {
			continue
		}
		n.Records = append(n.Records, Record{
			PatientID: row.PatientID,
			Stage:     stage,
			Date:      date,
		})
	}

	return n
}
