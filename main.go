package main

import (
	"os"

	"github.com/meshzero/posture-agent/cmd/postureagent/app"
	"github.com/meshzero/posture-agent/pkg/errlog"
)

func main() {
	if err := app.RootCmd.Execute(); err != nil {
		errlog.LogError(err)
		os.Exit(1)
	}
}
