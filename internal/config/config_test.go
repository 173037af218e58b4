package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/signalnine/trafficlab/internal/config"
	"github.com/signalnine/trafficlab/internal/summary"
)

func TestLoadMinimal(t *testing.T) {
	cfg, err := config.Load("../../testdata/minimal.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Groups) != 1 || cfg.Groups[0] != "step1" {
		t.Errorf("expected groups [step1], got %v", cfg.Groups)
	}
	if cfg.RunsPerGroup != 10 {
		t.Errorf("expected default 10 runs, got %d", cfg.RunsPerGroup)
	}
	if cfg.OutputFile != "customized_summary_output.xlsx" {
		t.Errorf("unexpected default output file %q", cfg.OutputFile)
	}
	if cfg.Inputs.Dir != "." {
		t.Errorf("expected input dir '.', got %q", cfg.Inputs.Dir)
	}
	if cfg.Patterns() != summary.DefaultPatterns {
		t.Errorf("expected default patterns, got %+v", cfg.Patterns())
	}
	if cfg.Simulation.Binary != "sumo" || cfg.Simulation.Parallel != 1 {
		t.Errorf("unexpected simulation defaults: %+v", cfg.Simulation)
	}
	if cfg.Simulation.Timeout() != time.Hour {
		t.Errorf("expected 1h timeout, got %s", cfg.Simulation.Timeout())
	}
	if cfg.History.DB != "" || cfg.Chart.File != "" {
		t.Error("history and chart should be disabled by default")
	}
}

func TestLoadFull(t *testing.T) {
	cfg, err := config.Load("../../testdata/full.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Groups) != 3 {
		t.Errorf("expected 3 groups, got %d", len(cfg.Groups))
	}
	if cfg.Simulation.Parallel != 4 || cfg.Simulation.Timeout() != 30*time.Minute {
		t.Errorf("unexpected simulation settings: %+v", cfg.Simulation)
	}
	static := cfg.FindScenario("static")
	if static == nil {
		t.Fatal("expected static scenario")
	}
	if static.Runs != 5 {
		t.Errorf("static runs should default to runs_per_group, got %d", static.Runs)
	}
	if static.Group != "static" {
		t.Errorf("group should default to name, got %q", static.Group)
	}
	if static.TimeToTeleport == nil || *static.TimeToTeleport != -1 {
		t.Error("expected time_to_teleport -1")
	}
	dynamic := cfg.FindScenario("dynamic")
	if dynamic == nil {
		t.Fatal("expected dynamic scenario")
	}
	if dynamic.Runs != 3 || dynamic.FCDOutput != "fcd.xml" || len(dynamic.ExtraArgs) != 1 {
		t.Errorf("unexpected dynamic scenario: %+v", dynamic)
	}
	if cfg.FindScenario("nope") != nil {
		t.Error("expected nil for unknown scenario")
	}

	p := cfg.Pipeline()
	if p.InputDir != "./sim-output" || p.RunsPerGroup != 5 || p.OutputFile != "out/summary.xlsx" {
		t.Errorf("unexpected pipeline config: %+v", p)
	}
	if got := p.Patterns.TripInfoFile("static", 2); got != "static/TripInfo_2.xml" {
		t.Errorf("tripinfo file: got %q", got)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := config.Load("nonexistent.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalid(t *testing.T) {
	_, err := config.Load("../../testdata/invalid.yaml")
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"no groups", "reference_file: t.xml\n", "no groups"},
		{"no reference", "groups: [a]\n", "reference_file"},
		{"empty subgroup", "groups: [a+]\nreference_file: t.xml\n", "empty sub-group"},
		{"negative runs", "groups: [a]\nruns_per_group: -2\nreference_file: t.xml\n", "runs_per_group"},
		{"bad pattern", "groups: [a]\nreference_file: t.xml\ninputs:\n  tripinfo_pattern: trips.xml\n", "must contain"},
		{"scenario without network", "groups: [a]\nreference_file: t.xml\nscenarios:\n  - name: a\n", "config_file or net_file"},
		{"duplicate scenario", "groups: [a]\nreference_file: t.xml\nscenarios:\n  - name: a\n    net_file: n.xml\n  - name: a\n    net_file: n.xml\n", "duplicate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := config.Load(path)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}
