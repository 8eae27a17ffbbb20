package main

import (
	"fmt"
	"os"

	"github.com/mechadv/robocoord/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "robocoord",
	Short: "robocoord coordinates a robot's rollers and superstructure",
	Long: `robocoord runs the rollers and superstructure goal coordinators against
simulated mechanisms. Use "run" for scripted scenarios and "serve" to drive the
robot over HTTP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "robocoord.yaml", "Config file (missing file means defaults)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringArray("set", nil, "Override a config key, e.g. --set rollers.station_debounce=80ms")
}

// commonOptions reads the persistent flags shared by every command.
func commonOptions(cmd *cobra.Command) cli.Options {
	configPath, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")
	sets, _ := cmd.Flags().GetStringArray("set")
	return cli.Options{
		ConfigPath: configPath,
		LogLevel:   logLevel,
		Sets:       sets,
		Out:        cmd.OutOrStdout(),
		Err:        cmd.ErrOrStderr(),
	}
}
