// Package cmd provides the command-line interface for eventreport.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "eventreport",
	Short: "eventreport generates reporting proxies and inspects the " +
		"activities that they record.",
	Long: `eventreport generates reporting proxies for capability ` +
		`interfaces, tabulates recorded activity databases and serves them ` +
		`over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "",
		"Log level (debug, info, warn, error). Overrides "+
			"EVENTREPORT_LOG_LEVEL.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
