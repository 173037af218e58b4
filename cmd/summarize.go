package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/signalnine/trafficlab/internal/chart"
	"github.com/signalnine/trafficlab/internal/config"
	"github.com/signalnine/trafficlab/internal/history"
	"github.com/signalnine/trafficlab/internal/pipeline"
	"github.com/signalnine/trafficlab/internal/report"
	"github.com/spf13/cobra"
)

var (
	flagOutput    string
	flagRuns      int
	flagSumFormat string
	flagNoHistory bool
)

func newSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize [group...]",
		Short: "Aggregate trip logs into the summary workbook",
		RunE:  runSummarize,
	}
	cmd.Flags().StringVar(&flagOutput, "output", "", "override the workbook path")
	cmd.Flags().IntVar(&flagRuns, "runs", 0, "override runs per group")
	cmd.Flags().StringVar(&flagSumFormat, "format", "table", "console output format (table, markdown, json)")
	cmd.Flags().BoolVar(&flagNoHistory, "no-history", false, "do not record summaries in the history database")
	return cmd
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	pcfg := cfg.Pipeline()
	if flagOutput != "" {
		pcfg.OutputFile = flagOutput
	}
	if flagRuns > 0 {
		pcfg.RunsPerGroup = flagRuns
	}
	groups, err := selectGroups(cfg.Groups, args)
	if err != nil {
		return err
	}
	pcfg.Groups = groups

	var sinks []pipeline.Sink
	if cfg.History.DB != "" && !flagNoHistory {
		store, err := history.Open(cfg.History.DB)
		if err != nil {
			return err
		}
		defer store.Close()
		sinks = append(sinks, store)
	}
	var page *chart.Page
	if cfg.Chart.File != "" {
		page = chart.NewPage("trafficlab summary")
		sinks = append(sinks, page)
	}

	reports, err := pipeline.Run(context.Background(), pcfg, sinks...)
	if err != nil {
		return err
	}
	fmt.Printf("Workbook: %s\n", pcfg.OutputFile)
	if page != nil {
		if err := page.WriteFile(cfg.Chart.File); err != nil {
			return err
		}
		fmt.Printf("Chart: %s\n", cfg.Chart.File)
	}

	fmt.Println("\n--- Summary ---")
	return report.Generate(reports, flagSumFormat, os.Stdout)
}

// selectGroups returns the configured groups named in args, in argument
// order, or every group when args is empty.
func selectGroups(configured, args []string) ([]string, error) {
	if len(args) == 0 {
		return configured, nil
	}
	known := make(map[string]bool, len(configured))
	for _, g := range configured {
		known[g] = true
	}
	for _, a := range args {
		if !known[a] {
			return nil, fmt.Errorf("group %q is not configured", a)
		}
	}
	return args, nil
}
