// Package cmd contains the copilot CLI commands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cctns/copilot/pkg/config"
	"github.com/cctns/copilot/pkg/logging"
)

var (
	rootConfigFile string
	rootVerbose    bool
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "copilot",
		Short: "Conversational copilot for the CCTNS crime records database",
		Long: `copilot translates natural language questions about CCTNS crime records
into SQL, lets you review and confirm each query, and renders the results
as charts, tables and summaries.

Questions can be asked in English, Telugu or Hindi.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if rootVerbose {
				logging.SetVerbose()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&rootConfigFile, "config", "", "Path to the config file (defaults to ~/.config/cctns-copilot/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(NewChatCmd())
	rootCmd.AddCommand(NewAskCmd())
	rootCmd.AddCommand(NewVersionCmd())
	return rootCmd
}

// loadConfig loads the config honoring the --config flag.
func loadConfig() (*config.Config, error) {
	if rootConfigFile != "" {
		return config.LoadFrom(rootConfigFile)
	}
	return config.Load()
}
