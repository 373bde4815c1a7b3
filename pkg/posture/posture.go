// Package posture's public surface: New/Start/Stop, modelled on the
// source's ziti_posture_init/ziti_posture_checks_free in
// original_source/library/posture.c, spec.md §4.7.
package posture

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/meshzero/posture-agent/pkg/catalogue"
	"github.com/meshzero/posture-agent/pkg/controllerapi"
	"github.com/meshzero/posture-agent/pkg/ptime"
)

// SessionInfo is the slice of SDK session lifecycle the posture core
// reads, spec.md §1's "only the current session id and controller
// instance id are consumed."
type SessionInfo struct {
	SessionID            string
	Authenticated        bool
	ControllerInstanceID string
}

// SessionProvider reports the current session, polled once per tick.
type SessionProvider func() SessionInfo

// Config wires the posture core to its external collaborators, spec.md §1.
type Config struct {
	// PollInterval is the scheduler's tick cadence. Required.
	PollInterval time.Duration

	// Session supplies the current session snapshot. Required.
	Session SessionProvider

	// Catalogue is the service-policy collaborator. Required.
	Catalogue catalogue.Catalogue

	// Client submits responses to the controller. Required.
	Client controllerapi.Client

	// Providers overrides evidence collection; unset fields use the
	// platform default (DefaultProviders).
	Providers Providers

	// Clock abstracts the ticker source; defaults to ptime.Real.
	Clock ptime.Source
}

// Agent is a running posture-assessment core: one State plus the
// machinery that drives it, spec.md §2/§5. All State mutation happens on
// a single internal goroutine (the "loop thread" of spec.md §5); Start,
// Stop, and EndpointStateChange post work onto it rather than touching
// state directly.
type Agent struct {
	cfg   Config
	state *State

	ticker ptime.Ticker

	commandCh   chan func(ctx context.Context)
	jobResultCh chan jobCompletion
	stopCh      chan struct{}
	doneCh      chan struct{}

	jobs errgroup.Group
}

// New constructs an Agent. Init is otherwise idempotent at the Start
// boundary: repeated Start calls on the same Agent are a no-op.
func New(cfg Config) *Agent {
	if cfg.Clock == nil {
		cfg.Clock = ptime.Real
	}
	cfg.Providers = DefaultProviders(cfg.Providers)

	return &Agent{
		cfg:         cfg,
		state:       newState(),
		commandCh:   make(chan func(ctx context.Context)),
		jobResultCh: make(chan jobCompletion, 16),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the periodic tick, spec.md §4.7. Calling Start twice on
// the same Agent is a no-op.
func (a *Agent) Start(ctx context.Context) {
	if a.ticker != nil {
		return
	}
	a.ticker = a.cfg.Clock.NewTicker(time.Millisecond, a.cfg.PollInterval)
	go a.loop(ctx)
}

// Stop tears the agent down, spec.md §4.7: stops the timer, cancels every
// outstanding process job, and clears the response and error caches. It
// blocks until the loop goroutine has exited.
func (a *Agent) Stop() {
	if a.ticker == nil {
		return
	}
	close(a.stopCh)
	<-a.doneCh
}

// EndpointStateChange reports a one-shot endpoint-state signal, spec.md
// §4.6. Safe to call concurrently with Start/Stop and from any goroutine.
func (a *Agent) EndpointStateChange(ctx context.Context, woken, unlocked bool) {
	if !woken && !unlocked {
		return
	}
	a.post(ctx, func(ctx context.Context) {
		submitEndpointState(ctx, a.cfg.Client, a.cfg.Catalogue, woken, unlocked)
	})
}

// post enqueues cmd to run on the loop goroutine, dropping it silently if
// the agent is stopped or ctx is done, matching the "late callback is a
// well-defined no-op" guidance of spec.md §9. Before Start it is not
// dropped: post waits until the loop accepts it or ctx is done.
func (a *Agent) post(ctx context.Context, cmd func(ctx context.Context)) {
	select {
	case a.commandCh <- cmd:
	case <-a.stopCh:
	case <-ctx.Done():
	}
}

func (a *Agent) loop(ctx context.Context) {
	defer close(a.doneCh)
	defer a.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.teardown()
			return

		case <-a.stopCh:
			a.teardown()
			return

		case <-a.ticker.C():
			a.tick(ctx)

		case jc := <-a.jobResultCh:
			a.handleJobCompletion(jc)

		case cmd := <-a.commandCh:
			cmd(ctx)
		}
	}
}

// teardown implements spec.md §4.7's teardown half: cancel outstanding
// jobs, free the caches, wait for any in-flight worker goroutines so no
// owned buffer outlives the state.
func (a *Agent) teardown() {
	for _, job := range a.state.ActiveWork {
		job.Canceled.Store(true)
	}
	a.state.ActiveWork = map[string]*ProcessJob{}
	a.state.Responses = map[string]*ResponseEntry{}
	a.state.ErrorStates = map[string]bool{}
	a.state.PreviousSessionID = nil
	a.state.ControllerInstanceID = nil

	if err := a.jobs.Wait(); err != nil {
		logrus.WithError(err).Debug("process worker reported an error during teardown")
	}
}

func (a *Agent) handleJobCompletion(jc jobCompletion) {
	delete(a.state.ActiveWork, jc.job.Path)
	if jc.job.Canceled.Load() || jc.job.done == nil {
		return
	}
	jc.job.done(jc.result)
}
