// Package pipeline runs the aggregation of every configured experiment
// group and hands each finished report to the output sinks.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/signalnine/trafficlab/internal/monitoring"
	"github.com/signalnine/trafficlab/internal/summary"
	"github.com/signalnine/trafficlab/internal/tripinfo"
	"github.com/signalnine/trafficlab/internal/workbook"
)

// ErrReferenceMissing aborts a run whose reference demand file is absent.
var ErrReferenceMissing = errors.New("reference demand file not found")

// Config is everything a pipeline run needs.
type Config struct {
	Groups        []string
	RunsPerGroup  int
	ReferenceFile string
	OutputFile    string
	InputDir      string
	Patterns      summary.Patterns
}

// Sink receives each group report as soon as it is built.
type Sink interface {
	WriteGroup(rep *summary.GroupReport) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(rep *summary.GroupReport) error

func (f SinkFunc) WriteGroup(rep *summary.GroupReport) error { return f(rep) }

// Run processes groups in order, writing each report to the workbook at
// cfg.OutputFile (when set) and then to sinks. A missing reference file is
// fatal; missing per-run files only leave their slice of the report empty.
func Run(ctx context.Context, cfg Config, sinks ...Sink) ([]*summary.GroupReport, error) {
	refPath := cfg.ReferenceFile
	if !filepath.IsAbs(refPath) && cfg.InputDir != "" {
		refPath = filepath.Join(cfg.InputDir, refPath)
	}
	if _, err := os.Stat(refPath); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrReferenceMissing, refPath)
	}
	expected, err := tripinfo.LoadExpected(refPath)
	if err != nil {
		return nil, fmt.Errorf("loading reference %s: %w", refPath, err)
	}

	patterns := cfg.Patterns
	if patterns.VehRoute == "" {
		patterns.VehRoute = summary.DefaultPatterns.VehRoute
	}
	if patterns.TripInfo == "" {
		patterns.TripInfo = summary.DefaultPatterns.TripInfo
	}
	in := summary.Inputs{Dir: cfg.InputDir, Patterns: patterns}

	if cfg.OutputFile != "" {
		sinks = append([]Sink{workbook.NewWriter(cfg.OutputFile)}, sinks...)
	}

	var reports []*summary.GroupReport
	for _, group := range cfg.Groups {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		monitoring.Logf("processing group %s", group)
		rep, err := summary.Summarize(expected, group, cfg.RunsPerGroup, in)
		if err != nil {
			return reports, err
		}
		for _, s := range sinks {
			if err := s.WriteGroup(rep); err != nil {
				return reports, fmt.Errorf("writing group %s: %w", group, err)
			}
		}
		reports = append(reports, rep)
	}
	return reports, nil
}
