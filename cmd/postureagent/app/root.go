// Package app is the posture agent's cobra command tree, a thin harness
// around pkg/posture for manual testing — per spec.md §1 the CLI surface
// itself is out of the core's scope.
package app

import (
	"flag"
	"os"

	"github.com/spf13/cobra"

	"github.com/meshzero/posture-agent/pkg/errlog"
)

func init() {
	RootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	RootCmd.PersistentFlags().BoolVarP(&errlog.DebugOutput, "debug", "d", false, "enable debug output (includes stack traces)")
}

// RootCmd is the command executed when posture-agent runs with no
// subcommand.
var RootCmd = &cobra.Command{
	Use:   "posture-agent",
	Short: "Collect and submit posture-assessment evidence to a zero-trust controller",
	Long:  "posture-agent discovers which posture checks a controller requires, gathers the corresponding evidence from the local host, and submits it over HTTPS.",
	Run:   rootCmd,
}

func rootCmd(cmd *cobra.Command, args []string) {
	cmd.Help()
	os.Exit(0)
}
