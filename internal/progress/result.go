package progress

import (
	"sort"
	"time"

	"ckd-progress/internal/staging"
)

// StageDate pairs a stage with its globally earliest diagnosis date.
type StageDate struct {
	Stage staging.Stage
	Date  time.Time
}

// PatientProgression is one patient's merged timeline.
type PatientProgression struct {
	PatientID string

	// Diagnoses maps each recorded stage to its earliest date.
	Diagnoses map[staging.Stage]time.Time

	// Chronological holds the same entries ordered by date (stage breaks
	// ties), for display.
	Chronological []StageDate

	// Transitions are this patient's forward-in-time observations, in
	// configured spec order.
	Transitions []Observation
}

// Result is the full output surface of one run.
type Result struct {
	// PopulationCount is the number of patients with any classified CKD
	// code, stage 0 included.
	PopulationCount int

	// StagedCount is the number of patients with at least one stage 1-6
	// diagnosis.
	StagedCount int

	// Patients lists every staged patient's merged progression, ordered
	// by patient ID.
	Patients []PatientProgression

	// Summaries holds one entry per configured transition, in spec order,
	// including transitions with zero observations.
	Summaries []Summary
}

// BuildResult derives the read-only result surface from a merged store.
func BuildResult(s *Store, specs []Spec) Result {
	res := Result{
		PopulationCount: s.PopulationCount(),
		StagedCount:     s.StagedCount(),
	}

	durations := make(map[string][]int, len(specs))
	for _, patient := range s.Patients() {
		stages := s.Stages(patient)
		obs := observe(patient, stages, specs)
		for _, o := range obs {
			durations[o.Label] = append(durations[o.Label], o.Days)
		}
		res.Patients = append(res.Patients, PatientProgression{
			PatientID:     patient,
			Diagnoses:     stages,
			Chronological: chronological(stages),
			Transitions:   obs,
		})
	}

	for _, sp := range specs {
		res.Summaries = append(res.Summaries, Summarize(sp.Label, durations[sp.Label]))
	}
	return res
}

func chronological(stages map[staging.Stage]time.Time) []StageDate {
	out := make([]StageDate, 0, len(stages))
	for stage, date := range stages {
		out = append(out, StageDate{Stage: stage, Date: date})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Stage < out[j].Stage
	})
	return out
}
