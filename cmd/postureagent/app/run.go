package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/meshzero/posture-agent/pkg/catalogue"
	"github.com/meshzero/posture-agent/pkg/config"
	"github.com/meshzero/posture-agent/pkg/controllerapi"
	"github.com/meshzero/posture-agent/pkg/errlog"
	"github.com/meshzero/posture-agent/pkg/posture"
)

const (
	spinnerType     int = 14
	spinnerDuration     = 120 * time.Millisecond
	spinnerColor        = "cyan"
)

var (
	runSessionID    string
	runControllerID string
)

func init() {
	runCmd.Flags().StringVar(&runSessionID, "session-id", "demo-session", "session id to report as authenticated (demo harness stand-in for the SDK session)")
	runCmd.Flags().StringVar(&runControllerID, "controller-instance-id", "demo-controller", "controller instance id to report (demo harness stand-in for the SDK session)")
	RootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the posture agent against a configured controller until interrupted",
	Run:   runAgent,
}

func runAgent(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		errlog.LogError(errors.Wrap(err, "loading configuration"))
		os.Exit(1)
	}
	if err := errlog.SetLevel(cfg.LogLevel); err != nil {
		errlog.LogError(err)
	}

	client := controllerapi.NewHTTPClient(cfg.ControllerURL, http.DefaultClient)
	cat := catalogue.NewStatic(nil)

	agent := posture.New(posture.Config{
		PollInterval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
		Catalogue:    cat,
		Client:       client,
		Session: func() posture.SessionInfo {
			return posture.SessionInfo{
				SessionID:            runSessionID,
				Authenticated:        true,
				ControllerInstanceID: runControllerID,
			}
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logrus.WithField("controller", cfg.ControllerURL).Info("starting posture agent")
	agent.Start(ctx)

	s := spinner.New(spinner.CharSets[spinnerType], spinnerDuration)
	s.Color(spinnerColor)
	s.Suffix = " watching for posture check ticks (ctrl-c to stop)"
	s.Start()

	<-ctx.Done()

	s.Stop()
	logrus.Info("stopping posture agent")
	agent.Stop()
}
