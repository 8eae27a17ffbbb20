package main

import (
	"github.com/mechadv/robocoord/internal/cli"
	"github.com/mechadv/robocoord/pkg/runner"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [script.yaml]",
	Short: "Run the simulated robot, optionally following a script",
	Long: `Runs the coordinators against simulated mechanisms and prints a status line
whenever the state changes. A script sets goals, sensors and match mode at
given times and can assert on the resulting state.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.RunOptions{Options: commonOptions(cmd)}
		opts.Script, _ = cmd.Flags().GetString("script")
		if opts.Script == "" && len(args) > 0 {
			opts.Script = args[0]
		}
		opts.Duration, _ = cmd.Flags().GetDuration("duration")
		opts.RealTime, _ = cmd.Flags().GetBool("real-time")
		opts.Quiet, _ = cmd.Flags().GetBool("quiet")
		opts.Report, _ = cmd.Flags().GetBool("report")

		sm := runner.NewSignalManager(cmd.Context())
		defer sm.Stop()
		return cli.Run(sm.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("script", "s", "", "Scenario script to follow")
	runCmd.Flags().DurationP("duration", "d", 0, "Simulated time to run (default: script length, or 5s)")
	runCmd.Flags().Bool("real-time", false, "Pace cycles at the control period")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print status lines")
	runCmd.Flags().Bool("report", false, "Print a report of the final state")
}
