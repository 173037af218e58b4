package cmd

import (
	"fmt"
	"strings"

	"github.com/signalnine/trafficlab/internal/config"
	"github.com/signalnine/trafficlab/internal/summary"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured groups and simulation scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Groups (%d runs each):\n", cfg.RunsPerGroup)
			for _, g := range cfg.Groups {
				fmt.Printf("  - %s -> %s [%s]\n", g, summary.SheetName(g), strings.Join(summary.SubGroups(g), ", "))
			}
			fmt.Println("\nScenarios:")
			for _, s := range cfg.Scenarios {
				network := s.ConfigFile
				if network == "" {
					network = s.NetFile
				}
				fmt.Printf("  - %s (group: %s, runs: %d, %s)\n", s.Name, s.Group, s.Runs, network)
			}
			return nil
		},
	}
}
