package main

import (
	"github.com/mechadv/robocoord/internal/cli"
	"github.com/mechadv/robocoord/pkg/runner"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the snapshots a serving robot publishes to Redis",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.WatchOptions{Options: commonOptions(cmd)}
		opts.RedisAddr, _ = cmd.Flags().GetString("redis")
		opts.Changes, _ = cmd.Flags().GetBool("changes")

		sm := runner.NewSignalManager(cmd.Context())
		defer sm.Stop()
		return cli.Watch(sm.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("redis", "", "Redis address (overrides redis.addr)")
	watchCmd.Flags().Bool("changes", false, "Only print snapshots that differ from the previous one")
}
