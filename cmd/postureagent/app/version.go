package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meshzero/posture-agent/pkg/buildinfo"
)

func init() {
	RootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print posture-agent version",
	Run:   runVersion,
	Args:  cobra.ExactArgs(0),
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("Posture Agent Version: %s\n", buildinfo.Version)
	fmt.Printf("GitSHA: %s\n", buildinfo.GitSHA)
	fmt.Printf("BuildDate: %s\n", buildinfo.BuildDate)
}
