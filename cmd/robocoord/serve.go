package main

import (
	"github.com/mechadv/robocoord/internal/cli"
	"github.com/mechadv/robocoord/pkg/runner"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulated robot in real time behind an HTTP API",
	Long: `Starts the control loop at the configured period and exposes goal holds,
state, server-sent events and Prometheus metrics over HTTP. With a Redis
address every snapshot is also published there.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.ServeOptions{Options: commonOptions(cmd)}
		opts.Addr, _ = cmd.Flags().GetString("addr")
		opts.RedisAddr, _ = cmd.Flags().GetString("redis")
		quiet, _ := cmd.Flags().GetBool("quiet")
		opts.Banner = !quiet

		sm := runner.NewSignalManager(cmd.Context())
		defer sm.Stop()
		return cli.Serve(sm.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "HTTP listen address (overrides http.addr)")
	serveCmd.Flags().String("redis", "", "Redis address for snapshot publishing (overrides redis.addr)")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
