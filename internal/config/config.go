// Package config loads the run configuration by layering defaults, an
// optional YAML file and CKD_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"ckd-progress/internal/progress"
	"ckd-progress/internal/staging"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// Config is the resolved, validated run configuration.
type Config struct {
	// InputDir holds the Synthea export archives, one *.tar.gz per
	// partition.
	InputDir string

	// Window is the closed date interval conditions must fall into.
	Window progress.Window

	// Classifier is the code -> stage lookup table.
	Classifier staging.Classifier

	// Specs lists the stage transitions to measure, in report order.
	Specs []progress.Spec

	// Workers bounds concurrent partition processing; 1 is sequential.
	Workers int

	// Sample is how many per-patient timelines the report prints.
	Sample int
}

type rawTransition struct {
	Label string `koanf:"label"`
	From  int    `koanf:"from"`
	To    int    `koanf:"to"`
}

type rawConfig struct {
	InputDir    string          `koanf:"input_dir"`
	WindowStart string          `koanf:"window_start"`
	WindowEnd   string          `koanf:"window_end"`
	Workers     int             `koanf:"workers"`
	Sample      int             `koanf:"sample"`
	Codes       map[string]int  `koanf:"codes"`
	Transitions []rawTransition `koanf:"transitions"`
}

func defaults() rawConfig {
	raw := rawConfig{
		WindowStart: "1997-01-01",
		WindowEnd:   "2023-12-31",
		Workers:     1,
		Sample:      10,
		Codes:       make(map[string]int),
	}
	for code, stage := range staging.DefaultClassifier() {
		raw.Codes[code] = int(stage)
	}
	for _, sp := range progress.DefaultSpecs() {
		raw.Transitions = append(raw.Transitions, rawTransition{
			Label: sp.Label,
			From:  int(sp.From),
			To:    int(sp.To),
		})
	}
	return raw
}

// Load builds a Config. Order of precedence (low -> high):
//  1. defaults (CKD SNOMED table, 1997-2023 window, stage 1 -> ESRD path)
//  2. YAML file, if path is non-empty or CKD_CONFIG is set
//  3. environment variables with prefix CKD_ (CKD_INPUT_DIR, CKD_WORKERS, ...)
//
// Environment keys cover the flat scalar settings; the code table and the
// transition list come from defaults or the YAML file. Whenever any layer
// supplies a table or transition list, it replaces the default wholesale
// instead of merging into it.
func Load(path string) (*Config, error) {
	// .env support, best effort.
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, relying on environment variables")
	}

	raw := defaults()

	k := koanf.New(".")
	if path == "" {
		path = os.Getenv("CKD_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("CKD_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "CKD_"))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	// A configured code table or transition list replaces the default
	// wholesale rather than merging into it, whichever layer supplied it.
	if k.Exists("codes") {
		raw.Codes = nil
	}
	if k.Exists("transitions") {
		raw.Transitions = nil
	}

	if err := k.UnmarshalWithConf("", &raw, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return resolve(raw)
}

func resolve(raw rawConfig) (*Config, error) {
	start, ok := progress.ParseDate(raw.WindowStart)
	if !ok {
		return nil, fmt.Errorf("invalid window_start %q", raw.WindowStart)
	}
	end, ok := progress.ParseDate(raw.WindowEnd)
	if !ok {
		return nil, fmt.Errorf("invalid window_end %q", raw.WindowEnd)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("window_end %s precedes window_start %s", raw.WindowEnd, raw.WindowStart)
	}

	classifier := make(staging.Classifier, len(raw.Codes))
	for code, stage := range raw.Codes {
		classifier[code] = staging.Stage(stage)
	}
	if err := classifier.Validate(); err != nil {
		return nil, fmt.Errorf("invalid code table: %w", err)
	}

	specs := make([]progress.Spec, 0, len(raw.Transitions))
	for _, tr := range raw.Transitions {
		sp := progress.Spec{Label: tr.Label, From: staging.Stage(tr.From), To: staging.Stage(tr.To)}
		if sp.Label == "" {
			return nil, fmt.Errorf("transition %d -> %d has no label", tr.From, tr.To)
		}
		if err := sp.Validate(); err != nil {
			return nil, err
		}
		specs = append(specs, sp)
	}

	if raw.Workers < 1 {
		return nil, fmt.Errorf("workers must be >= 1, got %d", raw.Workers)
	}
	if raw.Sample < 0 {
		return nil, fmt.Errorf("sample must be >= 0, got %d", raw.Sample)
	}

	return &Config{
		InputDir:   raw.InputDir,
		Window:     progress.Window{Start: start, End: end},
		Classifier: classifier,
		Specs:      specs,
		Workers:    raw.Workers,
		Sample:     raw.Sample,
	}, nil
}
