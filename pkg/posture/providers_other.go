//go:build !windows && !linux && !darwin

package posture

import (
	"context"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/meshzero/posture-agent/pkg/posture/wire"
)

func defaultOSProvider(_ context.Context, queryID string) ([]byte, error) {
	logrus.WithField("goos", runtime.GOOS).Warn("no OS posture provider for this platform")
	return wire.NewOSResponse(queryID, runtime.GOOS, "", "").Marshal()
}

func defaultDomainProvider(_ context.Context, queryID string) ([]byte, error) {
	return wire.NewDomainResponse(queryID, "").Marshal()
}
