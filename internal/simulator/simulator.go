// Package simulator runs traffic scenarios in batch mode, once per seed, and
// records where each run left its trip-info and vehicle-route logs.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/signalnine/trafficlab/internal/config"
	"github.com/signalnine/trafficlab/internal/docker"
	"github.com/signalnine/trafficlab/internal/monitoring"
	"github.com/signalnine/trafficlab/internal/result"
	"github.com/signalnine/trafficlab/internal/runner"
	"github.com/signalnine/trafficlab/internal/summary"
)

// LogName is the per-run simulator output file inside the run directory.
const LogName = "sumo.log"

// Files are the outputs of one run, relative to the scenario directory.
type Files struct {
	TripInfo string
	VehRoute string
	FCD      string
}

// OutputFiles names the logs for one seed using the same patterns the
// summarizer reads. Only the last run of a scenario keeps an FCD trace.
func OutputFiles(p summary.Patterns, sc *config.Scenario, seed int) Files {
	f := Files{
		TripInfo: p.TripInfoFile(sc.Group, seed),
		VehRoute: p.VehRouteFile(sc.Group, seed),
	}
	if seed == sc.Runs {
		f.FCD = sc.FCDOutput
	}
	return f
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildCommand returns the simulator argv for one seed.
func BuildCommand(binary string, sc *config.Scenario, seed int, files Files) []string {
	cmd := []string{binary}
	if sc.ConfigFile != "" {
		cmd = append(cmd, "-c", sc.ConfigFile)
	}
	if sc.NetFile != "" {
		cmd = append(cmd, "-n", sc.NetFile)
	}
	if len(sc.RouteFiles) > 0 {
		cmd = append(cmd, "--route-files", strings.Join(sc.RouteFiles, ","))
	}
	if len(sc.AdditionalFiles) > 0 {
		cmd = append(cmd, "-a", strings.Join(sc.AdditionalFiles, ","))
	}
	cmd = append(cmd, "--duration-log.statistics", "true")
	if sc.Begin != nil {
		cmd = append(cmd, "-b", formatFloat(*sc.Begin))
	}
	if sc.End != nil {
		cmd = append(cmd, "-e", formatFloat(*sc.End))
	}
	if sc.StepLength > 0 {
		cmd = append(cmd, "--step-length", formatFloat(sc.StepLength))
	}
	if sc.RoutingAlgorithm != "" {
		cmd = append(cmd, "--routing-algorithm", sc.RoutingAlgorithm)
	}
	if sc.TimeToTeleport != nil {
		cmd = append(cmd, "--time-to-teleport", formatFloat(*sc.TimeToTeleport))
	}
	if sc.TimeToImpatience != nil {
		cmd = append(cmd, "--time-to-impatience", formatFloat(*sc.TimeToImpatience))
	}
	if sc.ReroutingProbability != nil {
		cmd = append(cmd, "--device.rerouting.probability", formatFloat(*sc.ReroutingProbability))
	}
	cmd = append(cmd,
		"--seed", strconv.Itoa(seed), "--random",
		"--tripinfo-output", files.TripInfo,
		"--vehroute-output", files.VehRoute,
	)
	if files.FCD != "" {
		cmd = append(cmd, "--fcd-output", files.FCD)
	}
	return append(cmd, sc.ExtraArgs...)
}

func ExitReason(code int, timedOut bool) string {
	if timedOut {
		return "timeout"
	}
	if code == 0 {
		return "completed"
	}
	return "failed"
}

// Invocation is one simulator process to start.
type Invocation struct {
	Command []string
	Dir     string
	LogFile string
	Timeout time.Duration
}

type Outcome struct {
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// Executor starts an invocation and waits for it to finish. A non-zero exit
// is reported through Outcome, not as an error.
type Executor func(ctx context.Context, inv Invocation) (*Outcome, error)

// RunLocal executes the simulator on the host.
func RunLocal(ctx context.Context, inv Invocation) (*Outcome, error) {
	if len(inv.Command) == 0 {
		return nil, errors.New("empty command")
	}
	logFile, err := os.Create(inv.LogFile)
	if err != nil {
		return nil, fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = time.Hour
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, inv.Command[0], inv.Command[1:]...)
	cmd.Dir = inv.Dir
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	start := time.Now()
	err = cmd.Run()
	out := &Outcome{Duration: time.Since(start)}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		out.ExitCode = 124
		out.TimedOut = true
		return out, nil
	}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
	default:
		return nil, fmt.Errorf("running %s: %w", inv.Command[0], err)
	}
	return out, nil
}

// DockerExecutor runs the simulator inside image with the scenario directory
// mounted as the working directory.
func DockerExecutor(image string) Executor {
	return func(ctx context.Context, inv Invocation) (*Outcome, error) {
		res, err := docker.RunContainer(ctx, &docker.RunOpts{
			Image:   image,
			Command: inv.Command,
			WorkDir: inv.Dir,
			Timeout: inv.Timeout,
			LogFile: inv.LogFile,
			UserID:  fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid()),
		})
		if err != nil {
			return nil, fmt.Errorf("running container: %w", err)
		}
		return &Outcome{ExitCode: res.ExitCode, TimedOut: res.TimedOut, Duration: res.Duration}, nil
	}
}

type Opts struct {
	Simulation config.Simulation
	Patterns   summary.Patterns
	Batch      *result.Batch
	// Exec overrides how runs are started. When nil, runs go to Docker if
	// Simulation.Image is set and to the host otherwise.
	Exec Executor
}

func (o *Opts) executor() Executor {
	if o.Exec != nil {
		return o.Exec
	}
	if o.Simulation.Image != "" {
		return DockerExecutor(o.Simulation.Image)
	}
	return RunLocal
}

// RunSeed runs one seed of sc and writes its meta.json.
func RunSeed(ctx context.Context, opts *Opts, sc *config.Scenario, seed int) (*result.RunMeta, error) {
	runDir := result.RunDir(opts.Batch.Dir, sc.Name, seed)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run dir: %w", err)
	}
	scenarioDir, err := filepath.Abs(sc.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving scenario dir: %w", err)
	}

	files := OutputFiles(opts.Patterns, sc, seed)
	for _, f := range []string{files.TripInfo, files.VehRoute} {
		if err := os.MkdirAll(filepath.Join(scenarioDir, filepath.Dir(f)), 0o755); err != nil {
			return nil, fmt.Errorf("creating output dir: %w", err)
		}
	}

	command := BuildCommand(opts.Simulation.Binary, sc, seed, files)
	monitoring.Logf("running %s seed %d", sc.Name, seed)
	outcome, err := opts.executor()(ctx, Invocation{
		Command: command,
		Dir:     scenarioDir,
		LogFile: filepath.Join(runDir, LogName),
		Timeout: opts.Simulation.Timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("%s seed %d: %w", sc.Name, seed, err)
	}

	meta := &result.RunMeta{
		BatchID:      opts.Batch.ID,
		Scenario:     sc.Name,
		Group:        sc.Group,
		Seed:         seed,
		Command:      command,
		DurationS:    int(outcome.Duration.Seconds()),
		ExitCode:     outcome.ExitCode,
		ExitReason:   ExitReason(outcome.ExitCode, outcome.TimedOut),
		TripInfoFile: filepath.Join(scenarioDir, files.TripInfo),
		VehRouteFile: filepath.Join(scenarioDir, files.VehRoute),
	}
	if files.FCD != "" {
		meta.FCDFile = filepath.Join(scenarioDir, files.FCD)
	}
	if err := result.WriteRunMeta(runDir, meta); err != nil {
		return nil, fmt.Errorf("writing meta: %w", err)
	}
	if meta.ExitReason != "completed" {
		monitoring.Logf("warning: %s seed %d %s (exit %d), see %s", sc.Name, seed, meta.ExitReason, meta.ExitCode, filepath.Join(runDir, LogName))
	}
	return meta, nil
}

// Run executes seeds 1..Runs of every scenario with at most
// Simulation.Parallel processes at once. Runs that cannot be started are
// returned as errors; the remaining runs still go ahead.
func Run(ctx context.Context, opts *Opts, scenarios []config.Scenario) ([]*result.RunMeta, []error) {
	var (
		mu    sync.Mutex
		metas []*result.RunMeta
		jobs  []runner.Job
	)
	for i := range scenarios {
		sc := &scenarios[i]
		for seed := 1; seed <= sc.Runs; seed++ {
			jobs = append(jobs, func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				meta, err := RunSeed(ctx, opts, sc, seed)
				if err != nil {
					monitoring.Logf("warning: %v", err)
					return err
				}
				mu.Lock()
				metas = append(metas, meta)
				mu.Unlock()
				return nil
			})
		}
	}
	errs := runner.RunPool(opts.Simulation.Parallel, jobs)
	sort.Slice(metas, func(i, j int) bool {
		if metas[i].Scenario != metas[j].Scenario {
			return metas[i].Scenario < metas[j].Scenario
		}
		return metas[i].Seed < metas[j].Seed
	})
	return metas, errs
}
