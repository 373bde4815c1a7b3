package posture

import (
	"bytes"
	"context"

	"github.com/sirupsen/logrus"

	"github.com/meshzero/posture-agent/pkg/catalogue"
	"github.com/meshzero/posture-agent/pkg/controllerapi"
	"github.com/meshzero/posture-agent/pkg/posture/wire"
)

// submit is the Submitter, spec.md §4.5: it emits whatever is currently
// dirty, in bulk or one request per entry depending on state.BulkDisabled.
func submit(ctx context.Context, client controllerapi.Client, cat catalogue.Catalogue, state *State) {
	if state.BulkDisabled {
		submitIndividual(ctx, client, cat, state)
		return
	}
	submitBulk(ctx, client, cat, state)
}

// submitBulk concatenates every dirty entry's raw body into one JSON array
// and posts it, spec.md §4.5.
func submitBulk(ctx context.Context, client controllerapi.Client, cat catalogue.Catalogue, state *State) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	first := true
	var included []string

	for key, e := range state.Responses {
		if !e.ShouldSend {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(e.Body)
		e.ShouldSend = false
		included = append(included, key)
	}
	buf.WriteByte(']')

	if len(included) == 0 {
		return
	}

	resp, err := client.PostResponseBulk(ctx, buf.Bytes())
	if err != nil {
		logrus.WithError(err).Warn("bulk posture response submission failed")
		state.MustSend = true
		if controllerapi.IsNotFound(err) {
			state.BulkDisabled = true
			logrus.Info("controller has no bulk posture-response endpoint, falling back to individual submission")
		}
		return
	}

	state.MustSend = false
	refreshServices(cat)
	applyServiceTimers(cat, resp)
}

// submitIndividual posts one request per dirty entry, tracking
// success/failure per response key, spec.md §4.5.
func submitIndividual(ctx context.Context, client controllerapi.Client, cat catalogue.Catalogue, state *State) {
	for key, e := range state.Responses {
		if !e.ShouldSend {
			continue
		}

		body := append([]byte(nil), e.Body...)
		e.ShouldSend = false

		resp, err := client.PostResponse(ctx, body)
		if err != nil {
			logrus.WithError(err).WithField("key", key).Warn("posture response submission failed")
			state.ErrorStates[key] = true
			continue
		}

		state.ErrorStates[key] = false
		refreshServices(cat)
		applyServiceTimers(cat, resp)
	}
}

// refreshServices triggers a blanket service-policy refresh on every
// successful submission, spec.md §4.5/§4.6, mirroring the source's
// unconditional ziti_services_refresh(ztx, true) call in
// ziti_pr_post_cb/ziti_pr_post_bulk_cb (posture.c:464/502/867) — it fires
// regardless of whether the controller named any services, unlike
// applyServiceTimers below.
func refreshServices(cat catalogue.Catalogue) {
	for _, svc := range cat.Services() {
		cat.InvalidateService(svc.ID)
	}
}

// applyServiceTimers dispatches §4.6's service-timer update for every
// service id the controller returned.
func applyServiceTimers(cat catalogue.Catalogue, resp *wire.ControllerResponse) {
	if resp == nil {
		return
	}
	for _, st := range resp.Services {
		cat.ForceServiceUpdate(st.ID)
	}
}

// marshalProcessResponse builds the wire body for a completed process
// job, spec.md §6.
func marshalProcessResponse(queryID, path string, result ProcessResult) ([]byte, error) {
	return wire.NewProcessResponse(queryID, path, result.IsRunning, result.SHA512Hex, result.Signers).Marshal()
}
