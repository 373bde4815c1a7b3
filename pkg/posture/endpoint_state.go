package posture

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/meshzero/posture-agent/pkg/catalogue"
	"github.com/meshzero/posture-agent/pkg/controllerapi"
	"github.com/meshzero/posture-agent/pkg/posture/wire"
)

// submitEndpointState implements the one-shot endpoint-state signal,
// spec.md §4.6. Callers already filter out the (false, false) no-op case.
func submitEndpointState(ctx context.Context, client controllerapi.Client, cat catalogue.Catalogue, woken, unlocked bool) {
	body, err := wire.NewEndpointStateResponse(woken, unlocked).Marshal()
	if err != nil {
		logrus.WithError(err).Warn("failed marshaling endpoint-state response")
		return
	}

	resp, err := client.PostResponse(ctx, body)
	if err != nil {
		logrus.WithError(err).Warn("endpoint-state submission failed")
		return
	}

	refreshServices(cat)
	applyServiceTimers(cat, resp)
}
