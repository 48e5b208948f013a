package progress

import (
	"sort"
	"time"

	"ckd-progress/internal/staging"
)

// Store accumulates partition reductions into the global progression
// picture: patient -> stage -> earliest date across every partition merged
// so far, plus the CKD population membership set.
//
// Merge is a per-key minimum over an unordered collection of partitions,
// so it is commutative, associative and idempotent: any merge order, or
// any pairwise grouping, yields an identical store. Dates only ever move
// earlier; nothing is deleted.
type Store struct {
	patients map[string]map[staging.Stage]time.Time
	members  map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		patients: make(map[string]map[staging.Stage]time.Time),
		members:  make(map[string]struct{}),
	}
}

// Merge folds one partition's reduction into the store.
func (s *Store) Merge(pm PartitionMap) {
	for patient, stages := range pm {
		existing, ok := s.patients[patient]
		if !ok {
			existing = make(map[staging.Stage]time.Time, len(stages))
			s.patients[patient] = existing
		}
		for stage, date := range stages {
			if current, ok := existing[stage]; !ok || date.Before(current) {
				existing[stage] = date
			}
		}
	}
}

// AddMembers unions a partition's membership set into the store.
func (s *Store) AddMembers(members map[string]struct{}) {
	for id := range members {
		s.members[id] = struct{}{}
	}
}

// PopulationCount is the number of patients with any classified CKD code,
// stage 0 included.
func (s *Store) PopulationCount() int {
	return len(s.members)
}

// StagedCount is the number of patients with at least one stage 1-6
// diagnosis.
func (s *Store) StagedCount() int {
	return len(s.patients)
}

// Patients returns the staged patient IDs in lexical order.
func (s *Store) Patients() []string {
	ids := make([]string, 0, len(s.patients))
	for id := range s.patients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Stages returns a copy of one patient's stage -> earliest date map, or
// nil when the patient has no staged diagnosis.
func (s *Store) Stages(patient string) map[staging.Stage]time.Time {
	stages, ok := s.patients[patient]
	if !ok {
		return nil
	}
	out := make(map[staging.Stage]time.Time, len(stages))
	for stage, date := range stages {
		out[stage] = date
	}
	return out
}

// Snapshot returns a deep copy of the full progression mapping. Intended
// for structural comparison; the store itself stays private.
func (s *Store) Snapshot() map[string]map[staging.Stage]time.Time {
	out := make(map[string]map[staging.Stage]time.Time, len(s.patients))
	for patient := range s.patients {
		out[patient] = s.Stages(patient)
	}
	return out
}
