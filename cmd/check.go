package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/signalnine/trafficlab/internal/config"
	"github.com/signalnine/trafficlab/internal/pipeline"
	"github.com/signalnine/trafficlab/internal/summary"
	"github.com/spf13/cobra"
)

var flagMissingOnly bool

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report which input files are present",
		Long:  "Walk every configured group and run and list the vehicle-route and trip-info files the summarizer would read, marking the missing ones.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			return checkInputs(cfg, os.Stdout)
		},
	}
	cmd.Flags().BoolVar(&flagMissingOnly, "missing", false, "only list missing files")
	return cmd
}

func checkInputs(cfg *config.Config, w io.Writer) error {
	ref := cfg.ReferenceFile
	if !filepath.IsAbs(ref) {
		ref = filepath.Join(cfg.Inputs.Dir, ref)
	}
	_, statErr := os.Stat(ref)
	refOK := !errors.Is(statErr, fs.ErrNotExist)
	fmt.Fprintf(w, "Reference: %s [%s]\n\n", ref, presence(refOK))

	in := summary.Inputs{Dir: cfg.Inputs.Dir, Patterns: cfg.Patterns()}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tRUN\tKIND\tSTATUS\tPATH")
	var present, total int
	for _, g := range cfg.Groups {
		for run := 1; run <= cfg.RunsPerGroup; run++ {
			for _, f := range in.Files(g, run) {
				total++
				if f.Exists {
					present++
					if flagMissingOnly {
						continue
					}
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", g, run, f.Kind, presence(f.Exists), f.Path)
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d of %d run files present\n", present, total)
	if !refOK {
		return fmt.Errorf("%w: %s", pipeline.ErrReferenceMissing, ref)
	}
	return nil
}

func presence(ok bool) string {
	if ok {
		return "ok"
	}
	return "missing"
}
