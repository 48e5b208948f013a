package staging

import "fmt"

// Stage is the ordinal severity level of chronic kidney disease.
// Stage 0 means "CKD present but unstaged"; 6 is end-stage renal disease
// on dialysis. Unmapped marks codes that are not relevant to staging.
type Stage int

const (
	Unmapped Stage = -1
	General  Stage = 0 // CKD without a specific stage
	ESRD     Stage = 6
)

// Staged reports whether the stage participates in progression analysis.
// Stage 0 counts toward the CKD population but never toward progression.
func (s Stage) Staged() bool {
	return s >= 1 && s <= ESRD
}

// Valid reports whether the stage is one a classifier table may assign.
func (s Stage) Valid() bool {
	return s >= General && s <= ESRD
}

func (s Stage) String() string {
	switch {
	case s == Unmapped:
		return "unmapped"
	case s == General:
		return "unstaged CKD"
	case s == ESRD:
		return "End Stage Renal Disease"
	default:
		return fmt.Sprintf("Stage %d", int(s))
	}
}

// Classifier maps diagnostic codes to stages. It is configuration data,
// not control flow: lookups never branch on code contents.
type Classifier map[string]Stage

// Classify returns the stage for a code, or Unmapped when the code is not
// in the table.
func (c Classifier) Classify(code string) Stage {
	if s, ok := c[code]; ok {
		return s
	}
	return Unmapped
}

// Validate checks that every entry assigns a stage in the 0-6 range.
func (c Classifier) Validate() error {
	for code, s := range c {
		if !s.Valid() {
			return fmt.Errorf("code %s maps to invalid stage %d", code, int(s))
		}
	}
	return nil
}

// DefaultClassifier returns the SNOMED CT table for CKD staging. Codes
// mapped to stage 0 mark the patient as part of the CKD population
// without placing them on the progression path.
func DefaultClassifier() Classifier {
	return Classifier{
		"431855005": 1, // Chronic kidney disease stage 1
		"431856006": 2, // Chronic kidney disease stage 2
		"433144002": 3, // Chronic kidney disease stage 3
		"431857002": 4, // Chronic kidney disease stage 4
		"433146000": 5, // Chronic kidney disease stage 5
		"714153000": 5, // Stage 5 with transplant
		"714152005": 6, // Stage 5 on dialysis (ESRD)
		"709044004": 0, // Chronic kidney disease, general
		"713313000": 0, // CKD mineral and bone disorder
		"722149000": 0, // CKD following excision of neoplasm of kidney
		"726018006": 0, // Autosomal dominant tubulointerstitial kidney disease
		"723373006": 0, // Uromodulin related ADTKD
	}
}
