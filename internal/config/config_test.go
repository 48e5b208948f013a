package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if got := cfg.Window.Start; !got.Equal(time.Date(1997, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("default window start = %v", got)
	}
	if got := cfg.Window.End; !got.Equal(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("default window end = %v", got)
	}
	if cfg.Workers != 1 {
		t.Errorf("default workers = %d, want 1", cfg.Workers)
	}
	if got := cfg.Classifier.Classify("714152005"); int(got) != 6 {
		t.Errorf("default table should map dialysis code to 6, got %v", got)
	}
	if len(cfg.Specs) != 5 {
		t.Fatalf("expected 5 default transitions, got %d", len(cfg.Specs))
	}
	if cfg.Specs[4].Label != "Stage 5 to End Stage Renal Disease" {
		t.Errorf("unexpected last transition %q", cfg.Specs[4].Label)
	}
}

func TestLoadYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ckd.yaml")
	content := `
input_dir: /data/synthea
window_start: "2000-01-01"
window_end: "2010-12-31"
workers: 4
codes:
  "111": 1
  "222": 2
transitions:
  - label: Early progression
    from: 1
    to: 2
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.InputDir != "/data/synthea" {
		t.Errorf("InputDir = %q", cfg.InputDir)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	// Configured table replaces the default, it does not merge.
	if got := cfg.Classifier.Classify("431855005"); got.Staged() {
		t.Errorf("default codes should be gone, 431855005 -> %v", got)
	}
	if got := cfg.Classifier.Classify("222"); int(got) != 2 {
		t.Errorf("configured code lost: 222 -> %v", got)
	}
	if len(cfg.Specs) != 1 || cfg.Specs[0].Label != "Early progression" {
		t.Errorf("configured transitions lost: %+v", cfg.Specs)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CKD_INPUT_DIR", "/elsewhere")
	t.Setenv("CKD_WORKERS", "3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.InputDir != "/elsewhere" {
		t.Errorf("InputDir = %q, want /elsewhere", cfg.InputDir)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
}

func TestLoadEnvOverYAML(t *testing.T) {
	// Env beats the file for scalars, and the reset that makes a
	// configured code table replace the defaults must survive the env
	// layer loading afterwards.
	path := filepath.Join(t.TempDir(), "ckd.yaml")
	content := "workers: 2\ncodes:\n  \"555\": 3\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CKD_WORKERS", "6")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Workers != 6 {
		t.Errorf("Workers = %d, env should beat the file", cfg.Workers)
	}
	if got := cfg.Classifier.Classify("555"); int(got) != 3 {
		t.Errorf("configured code lost: 555 -> %v", got)
	}
	if got := cfg.Classifier.Classify("431855005"); got.Staged() {
		t.Errorf("default codes should be replaced, 431855005 -> %v", got)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"BadStart", "window_start: nonsense\n"},
		{"InvertedWindow", "window_start: \"2020-01-01\"\nwindow_end: \"2010-01-01\"\n"},
		{"StageOutOfRange", "codes:\n  \"1\": 9\n"},
		{"ZeroWorkers", "workers: 0\n"},
		{"SelfTransition", "transitions:\n  - label: loop\n    from: 2\n    to: 2\n"},
		{"UnlabeledTransition", "transitions:\n  - from: 1\n    to: 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("an explicitly named but missing config file must fail")
	}
}
