package cmd

import (
	"fmt"
	"os"

	"github.com/sarchlab/eventreport/codegen"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [file.go]...",
	Short: "Generate reporting proxies for the interfaces in Go files.",
	Long: "`generate file.go` writes file_reporting.go next to file.go. It " +
		"holds a reporting proxy for every interface in the file, or for " +
		"the interfaces named by --type. Methods marked with " +
		codegen.IgnoreDirective + " are forwarded without being reported.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		types, _ := cmd.Flags().GetStringSlice("type")

		for _, path := range args {
			out, err := codegen.GenerateFile(path, types...)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Reporting proxies written to %s\n", out)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringSlice("type", nil,
		"Interfaces to generate proxies for (default: all)")
}
