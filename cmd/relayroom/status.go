package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BioHazard786/relayroom/internal/client"
	"github.com/BioHazard786/relayroom/internal/ui"
)

var flagOutput string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show room and connection counts for the relay server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadClientConfig(cmd)
		if err != nil {
			return err
		}

		stopSpinner := func() {}
		if flagOutput == ui.OutputTable {
			stopSpinner = ui.RunConnectionSpinner("Fetching stats from " + cfg.Server)
		}
		stats, err := client.FetchStats(cmd.Context(), cfg.Server)
		stopSpinner()
		if err != nil {
			return err
		}

		report, err := ui.StatsReport(cfg.Server, stats, flagOutput)
		if err != nil {
			return err
		}
		fmt.Println(report)
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVarP(&flagOutput, "output", "o", ui.OutputTable, "output format (table, plain, markdown, csv)")
}
