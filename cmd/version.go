package cmd

import "github.com/spf13/cobra"

// Version is overridden at build time via -ldflags.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tempnode version",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println("tempnode", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
