package main

import (
	"fmt"

	"github.com/mechadv/robocoord"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of robocoord",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "robocoord version %s\n", robocoord.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
