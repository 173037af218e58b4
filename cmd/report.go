package cmd

import (
	"fmt"
	"os"

	"github.com/signalnine/trafficlab/internal/config"
	"github.com/signalnine/trafficlab/internal/history"
	"github.com/signalnine/trafficlab/internal/report"
	"github.com/signalnine/trafficlab/internal/summary"
	"github.com/spf13/cobra"
)

var flagFormat string

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [group...]",
		Short: "Print stored group summaries from the history database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if cfg.History.DB == "" {
				return fmt.Errorf("history.db is not configured")
			}
			store, err := history.Open(cfg.History.DB)
			if err != nil {
				return err
			}
			defer store.Close()

			reports, err := loadReports(store, args)
			if err != nil {
				return err
			}
			return report.Generate(reports, flagFormat, os.Stdout)
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "table", "output format (table, markdown, json)")
	return cmd
}

func loadReports(store *history.Store, groups []string) ([]*summary.GroupReport, error) {
	if len(groups) == 0 {
		var err error
		groups, err = store.Groups()
		if err != nil {
			return nil, err
		}
	}
	reports := make([]*summary.GroupReport, 0, len(groups))
	for _, g := range groups {
		rep, err := store.Load(g)
		if err != nil {
			return nil, err
		}
		if rep == nil {
			return nil, fmt.Errorf("group %q has no stored summary", g)
		}
		reports = append(reports, rep)
	}
	return reports, nil
}
