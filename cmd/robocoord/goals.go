package main

import (
	"github.com/mechadv/robocoord/internal/cli"
	"github.com/spf13/cobra"
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "List the goals each coordinator accepts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Goals(commonOptions(cmd))
	},
}

func init() {
	rootCmd.AddCommand(goalsCmd)
}
