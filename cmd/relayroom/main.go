package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/BioHazard786/relayroom/internal/config"
	"github.com/BioHazard786/relayroom/internal/logging"
	"github.com/BioHazard786/relayroom/internal/ui"
	"github.com/BioHazard786/relayroom/internal/version"
)

var flagServer string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "relayroom",
	Short:   "Chat with one peer through a relayroom server",
	Long:    `relayroom joins a named two-peer room on a relay server. Lines typed on stdin go to the peer and the peer's messages are printed as they arrive.`,
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s", config.DefaultServerURL, "relay server URL (env RELAYROOM_SERVER)")
	rootCmd.AddCommand(joinCmd, statusCmd)
}

func loadClientConfig(cmd *cobra.Command) (*config.ClientConfig, error) {
	return config.LoadClient(cmd.Flags())
}

func main() {
	logging.Init("error", "text")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
