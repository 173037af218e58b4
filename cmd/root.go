package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trafficlab",
		Short: "Run traffic simulation batches and summarize their trip logs",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "trafficlab.yaml", "config file path")
	root.AddCommand(newSummarizeCmd())
	root.AddCommand(newSimulateCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newCheckCmd())
	return root
}
