package progress

import (
	"fmt"
	"time"

	"ckd-progress/internal/staging"
)

// Spec is one configured stage pair whose forward-time gap is measured.
type Spec struct {
	Label string
	From  staging.Stage
	To    staging.Stage
}

// Validate checks that both endpoints are staged levels and distinct.
func (sp Spec) Validate() error {
	if !sp.From.Staged() || !sp.To.Staged() {
		return fmt.Errorf("transition %q uses non-staged level (%d -> %d)", sp.Label, int(sp.From), int(sp.To))
	}
	if sp.From == sp.To {
		return fmt.Errorf("transition %q maps a stage onto itself", sp.Label)
	}
	return nil
}

// DefaultSpecs returns the CKD progression path, stage 1 through ESRD.
func DefaultSpecs() []Spec {
	return []Spec{
		{Label: "Stage 1 to Stage 2", From: 1, To: 2},
		{Label: "Stage 2 to Stage 3", From: 2, To: 3},
		{Label: "Stage 3 to Stage 4", From: 3, To: 4},
		{Label: "Stage 4 to Stage 5", From: 4, To: 5},
		{Label: "Stage 5 to End Stage Renal Disease", From: 5, To: 6},
	}
}

// Observation is one measured patient transition. Days is always > 0:
// same-day or backwards pairs are never materialized.
type Observation struct {
	PatientID string
	Label     string
	Days      int
}

// daysBetween counts whole days between two UTC calendar days. Unix
// seconds instead of time.Time.Sub, because Duration saturates on spans
// past roughly 292 years and a widened window may admit such dates.
func daysBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / 86400)
}

// observe evaluates every spec against one patient's earliest-date map.
// Each pair is judged independently: only strictly forward-in-time pairs
// produce an observation, anything else is silently discarded by policy.
func observe(patient string, stages map[staging.Stage]time.Time, specs []Spec) []Observation {
	var obs []Observation
	for _, sp := range specs {
		from, okFrom := stages[sp.From]
		to, okTo := stages[sp.To]
		if !okFrom || !okTo {
			continue
		}
		if days := daysBetween(from, to); days > 0 {
			obs = append(obs, Observation{PatientID: patient, Label: sp.Label, Days: days})
		}
	}
	return obs
}

// Transitions computes all observations over the merged store, patient by
// patient in lexical order, spec by spec in configured order.
func Transitions(s *Store, specs []Spec) []Observation {
	var all []Observation
	for _, patient := range s.Patients() {
		all = append(all, observe(patient, s.Stages(patient), specs)...)
	}
	return all
}
