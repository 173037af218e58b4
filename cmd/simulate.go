package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"

	"github.com/signalnine/trafficlab/internal/config"
	"github.com/signalnine/trafficlab/internal/result"
	"github.com/signalnine/trafficlab/internal/simulator"
	"github.com/spf13/cobra"
)

var (
	flagParallel          int
	flagSimRuns           int
	flagLocal             bool
	flagCleanupAggressive bool
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate [scenario...]",
		Short: "Run simulation scenarios once per seed",
		RunE:  runSimulate,
	}
	cmd.Flags().IntVar(&flagParallel, "parallel", 0, "max concurrent simulator processes (default from config)")
	cmd.Flags().IntVar(&flagSimRuns, "runs", 0, "override the number of seeds per scenario")
	cmd.Flags().BoolVar(&flagLocal, "local", false, "run the simulator on the host even if an image is configured")
	cmd.Flags().BoolVar(&flagCleanupAggressive, "cleanup-aggressive", false, "remove all trafficlab Docker containers after the batch")
	return cmd
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	scenarios, err := filterScenarios(cfg.Scenarios, args)
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		return fmt.Errorf("no scenarios configured")
	}
	if flagSimRuns > 0 {
		for i := range scenarios {
			scenarios[i].Runs = flagSimRuns
		}
	}
	sim := cfg.Simulation
	if flagParallel > 0 {
		sim.Parallel = flagParallel
	}
	if flagLocal {
		sim.Image = ""
	}

	batch, err := result.CreateBatchDir(sim.ResultsDir)
	if err != nil {
		return err
	}
	fmt.Printf("Batch %s: %s\n", batch.ID, batch.Dir)

	metas, errs := simulator.Run(context.Background(), &simulator.Opts{
		Simulation: sim,
		Patterns:   cfg.Patterns(),
		Batch:      batch,
	}, scenarios)
	for _, err := range errs {
		fmt.Printf("  ERROR: %v\n", err)
	}

	if flagCleanupAggressive && sim.Image != "" {
		cleanupDocker()
	}

	fmt.Println("\n--- Runs ---")
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tSEED\tRESULT\tDURATION\tTRIPINFO")
	for _, m := range metas {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%ds\t%s\n", m.Scenario, m.Seed, m.ExitReason, m.DurationS, m.TripInfoFile)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d runs could not be started", len(errs), len(errs)+len(metas))
	}
	return nil
}

func cleanupDocker() {
	// Best-effort cleanup of trafficlab-labeled containers
	fmt.Println("Cleaning up Docker artifacts...")
	run := func(args ...string) {
		cmd := newExecCmd(args...)
		cmd.Run()
	}
	run("docker", "container", "prune", "-f", "--filter", "label=trafficlab=true")
}

// filterScenarios returns the named scenarios in config order, or all of
// them when names is empty. Unknown names are an error.
func filterScenarios(scenarios []config.Scenario, names []string) ([]config.Scenario, error) {
	if len(names) == 0 {
		return append([]config.Scenario(nil), scenarios...), nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var filtered []config.Scenario
	for _, s := range scenarios {
		if want[s.Name] {
			filtered = append(filtered, s)
			delete(want, s.Name)
		}
	}
	for _, n := range names {
		if want[n] {
			return nil, fmt.Errorf("scenario %q is not configured", n)
		}
	}
	return filtered, nil
}

func newExecCmd(args ...string) *exec.Cmd {
	return exec.Command(args[0], args[1:]...)
}
