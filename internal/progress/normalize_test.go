package progress

import (
	"testing"
	"time"

	"ckd-progress/internal/source"
	"ckd-progress/internal/staging"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testWindow() Window {
	return Window{Start: date(1997, 1, 1), End: date(2023, 12, 31)}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"PlainDate", "2005-03-14", date(2005, 3, 14), true},
		{"RFC3339", "2005-03-14T09:30:00Z", date(2005, 3, 14), true},
		{"NoZone", "2005-03-14T09:30:00", date(2005, 3, 14), true},
		{"Empty", "", time.Time{}, false},
		{"Garbage", "not-a-date", time.Time{}, false},
		{"USFormat", "03/14/2005", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeFilters(t *testing.T) {
	rows := []source.Row{
		{PatientID: "p1", Code: "431855005", StartDate: "2000-01-01"}, // stage 1, in window
		{PatientID: "p1", Code: "431856006", StartDate: "1990-01-01"}, // before window
		{PatientID: "p2", Code: "431856006", StartDate: "2030-01-01"}, // after window
		{PatientID: "p3", Code: "431856006", StartDate: "bogus"},      // unparsable
		{PatientID: "p4", Code: "431856006", StartDate: ""},           // missing
		{PatientID: "p5", Code: "44054006", StartDate: "2000-01-01"},  // unmapped code
	}

	n := Normalize(rows, staging.DefaultClassifier(), testWindow())

	if len(n.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(n.Records))
	}
	r := n.Records[0]
	if r.PatientID != "p1" || r.Stage != 1 || !r.Date.Equal(date(2000, 1, 1)) {
		t.Errorf("unexpected record %+v", r)
	}
	if len(n.Members) != 1 {
		t.Errorf("expected only p1 in membership, got %v", n.Members)
	}
}

func TestNormalizeWindowBoundsInclusive(t *testing.T) {
	rows := []source.Row{
		{PatientID: "p1", Code: "431855005", StartDate: "1997-01-01"},
		{PatientID: "p2", Code: "431855005", StartDate: "2023-12-31"},
	}

	n := Normalize(rows, staging.DefaultClassifier(), testWindow())
	if len(n.Records) != 2 {
		t.Errorf("window bounds are inclusive, expected 2 records, got %d", len(n.Records))
	}
}

func TestNormalizeStageZeroMembershipOnly(t *testing.T) {
	rows := []source.Row{
		{PatientID: "p1", Code: "709044004", StartDate: "2000-01-01"}, // general CKD
		{PatientID: "p2", Code: "431857002", StartDate: "2001-01-01"}, // stage 4
	}

	n := Normalize(rows, staging.DefaultClassifier(), testWindow())

	if _, ok := n.Members["p1"]; !ok {
		t.Error("stage-0 patient must count toward population membership")
	}
	if _, ok := n.Members["p2"]; !ok {
		t.Error("staged patient must count toward population membership")
	}
	for _, r := range n.Records {
		if r.PatientID == "p1" {
			t.Error("stage-0 rows must not produce staged records")
		}
	}
	if len(n.Records) != 1 {
		t.Errorf("expected 1 staged record, got %d", len(n.Records))
	}
}

func TestNormalizeRelatedCodesCountTowardMembership(t *testing.T) {
	// CKD-related codes without a specific stage (mineral and bone
	// disorder, post-excision CKD, ADTKD variants) keep the patient in
	// the population without contributing to progression.
	rows := []source.Row{
		{PatientID: "p1", Code: "713313000", StartDate: "2000-01-01"},
		{PatientID: "p2", Code: "722149000", StartDate: "2001-01-01"},
		{PatientID: "p3", Code: "726018006", StartDate: "2002-01-01"},
		{PatientID: "p4", Code: "723373006", StartDate: "2003-01-01"},
	}

	n := Normalize(rows, staging.DefaultClassifier(), testWindow())

	if len(n.Members) != 4 {
		t.Errorf("expected all 4 patients in membership, got %v", n.Members)
	}
	if len(n.Records) != 0 {
		t.Errorf("related codes must not produce staged records, got %v", n.Records)
	}
}
