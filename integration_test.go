//go:build integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalnine/trafficlab/internal/config"
	"github.com/signalnine/trafficlab/internal/pipeline"
	"github.com/signalnine/trafficlab/internal/result"
	"github.com/signalnine/trafficlab/internal/simulator"
	"github.com/signalnine/trafficlab/internal/summary"
	"github.com/signalnine/trafficlab/internal/workbook"
)

// fakeSumo writes one vehicle-route and one trip-info file per invocation,
// with a time loss that grows with the seed.
const fakeSumo = `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    --seed) seed=$2; shift ;;
    --tripinfo-output) trips=$2; shift ;;
    --vehroute-output) routes=$2; shift ;;
  esac
  shift
done
echo "seed $seed"
echo '<routes><vehicle id="A"/><vehicle id="B"/></routes>' > "$routes"
echo "<tripinfos><tripinfo id=\"A\" vType=\"passenger\" duration=\"600\" routeLength=\"5000\" timeLoss=\"$((seed * 60))\"/></tripinfos>" > "$trips"
`

// createScenario lays out a scenario directory with the stub simulator and
// the reference demand file.
func createScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fake-sumo.sh"), []byte(fakeSumo), 0o755); err != nil {
		t.Fatal(err)
	}
	ref := `<routes><trip id="A" type="passenger"/><trip id="B" type="passenger"/></routes>`
	if err := os.WriteFile(filepath.Join(dir, "odtrips.xml"), []byte(ref), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func simulateAndSummarize(t *testing.T, dir string, sim config.Simulation) {
	t.Helper()
	batch, err := result.CreateBatchDir(t.TempDir())
	if err != nil {
		t.Fatalf("CreateBatchDir: %v", err)
	}
	scenario := config.Scenario{Name: "static", Group: "static", Dir: dir, Runs: 3, NetFile: "net.xml"}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	metas, errs := simulator.Run(ctx, &simulator.Opts{
		Simulation: sim,
		Patterns:   summary.DefaultPatterns,
		Batch:      batch,
	}, []config.Scenario{scenario})
	if len(errs) > 0 {
		t.Fatalf("simulate: %v", errs)
	}
	for _, m := range metas {
		if m.ExitReason != "completed" {
			t.Errorf("seed %d: exit_reason %q", m.Seed, m.ExitReason)
		}
	}

	out := filepath.Join(t.TempDir(), "summary.xlsx")
	reports, err := pipeline.Run(ctx, pipeline.Config{
		Groups:        []string{"static"},
		RunsPerGroup:  3,
		ReferenceFile: "odtrips.xml",
		OutputFile:    out,
		InputDir:      dir,
	})
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	rep := reports[0]
	if got := rep.Mean().Value("Weighted Avg TimeLoss (min)"); got != 2 {
		t.Errorf("mean time loss: got %v, want 2", got)
	}
	if labels := rep.RepresentativeLabels(); len(labels) != 1 || labels[0] != "Sim_2" {
		t.Errorf("representative: got %v, want [Sim_2]", labels)
	}
	if _, err := workbook.ReadSheet(out, "static_Summary"); err != nil {
		t.Errorf("reading workbook: %v", err)
	}
}

func TestSimulateThenSummarizeLocal(t *testing.T) {
	dir := createScenario(t)
	simulateAndSummarize(t, dir, config.Simulation{
		Binary:         filepath.Join(dir, "fake-sumo.sh"),
		TimeoutMinutes: 1,
		Parallel:       2,
	})
}

func TestSimulateThenSummarizeDocker(t *testing.T) {
	if os.Getenv("TRAFFICLAB_DOCKER_TESTS") == "" {
		t.Skip("set TRAFFICLAB_DOCKER_TESTS=1 to run integration tests")
	}
	dir := createScenario(t)
	simulateAndSummarize(t, dir, config.Simulation{
		Binary:         "/workspace/fake-sumo.sh",
		Image:          "alpine:latest",
		TimeoutMinutes: 1,
		Parallel:       1,
	})
}
