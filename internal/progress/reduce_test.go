package progress

import (
	"testing"
)

func TestReduceGroupedMinimum(t *testing.T) {
	records := []Record{
		{PatientID: "p1", Stage: 2, Date: date(2005, 6, 1)},
		{PatientID: "p1", Stage: 2, Date: date(2004, 1, 1)},
		{PatientID: "p1", Stage: 2, Date: date(2006, 3, 3)},
		{PatientID: "p1", Stage: 3, Date: date(2007, 1, 1)},
		{PatientID: "p2", Stage: 2, Date: date(2010, 1, 1)},
	}

	pm := Reduce(records)

	if len(pm) != 2 {
		t.Fatalf("expected 2 patients, got %d", len(pm))
	}
	if got := pm["p1"][2]; !got.Equal(date(2004, 1, 1)) {
		t.Errorf("p1 stage 2 = %v, want 2004-01-01", got)
	}
	if got := pm["p1"][3]; !got.Equal(date(2007, 1, 1)) {
		t.Errorf("p1 stage 3 = %v, want 2007-01-01", got)
	}
}

func TestReduceIdempotentOnDuplicates(t *testing.T) {
	records := []Record{
		{PatientID: "p1", Stage: 1, Date: date(2000, 1, 1)},
		{PatientID: "p1", Stage: 1, Date: date(2000, 1, 1)},
	}

	pm := Reduce(records)
	if len(pm["p1"]) != 1 || !pm["p1"][1].Equal(date(2000, 1, 1)) {
		t.Errorf("duplicate identical rows must collapse, got %v", pm["p1"])
	}
}

func TestReduceEmptyInput(t *testing.T) {
	pm := Reduce(nil)
	if len(pm) != 0 {
		t.Errorf("expected empty map, got %v", pm)
	}
}
