package posture

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/meshzero/posture-agent/pkg/catalogue"
)

// tick is the Scheduler/Reconciler, spec.md §4.1. It never suspends: it
// only builds the plan, mutates the cache, dispatches providers, and
// hands off to the Submitter.
func (a *Agent) tick(ctx context.Context) {
	session := a.cfg.Session()
	if session.SessionID == "" || !session.Authenticated {
		logrus.Debug("posture tick skipped: no authenticated session")
		return
	}

	a.resolveForceSend(session)

	plan := a.buildPlan()
	a.sweepAndDispatch(ctx, plan)

	submit(ctx, a.cfg.Client, a.cfg.Catalogue, a.state)
}

// resolveForceSend computes must_send for this tick, spec.md §4.1.
func (a *Agent) resolveForceSend(session SessionInfo) {
	newSession := a.state.PreviousSessionID == nil || *a.state.PreviousSessionID != session.SessionID
	newCtrl := a.state.ControllerInstanceID == nil || *a.state.ControllerInstanceID != session.ControllerInstanceID

	a.state.MustSend = newSession || a.state.MustSendEveryTime || newCtrl

	if a.state.MustSend {
		sessionID := session.SessionID
		ctrlID := session.ControllerInstanceID
		a.state.PreviousSessionID = &sessionID
		a.state.ControllerInstanceID = &ctrlID
	}
}

// buildPlan walks the service catalogue, spec.md §4.1.
func (a *Agent) buildPlan() *QueryPlan {
	plan := newQueryPlan()

	for _, svc := range a.cfg.Catalogue.Services() {
		for _, qs := range svc.QuerySets {
			for _, q := range qs.Queries {
				a.classify(plan, q)
			}
		}
	}

	return plan
}

func (a *Agent) classify(plan *QueryPlan, q catalogue.Query) {
	if q.Timeout == catalogue.NoTimeout {
		a.state.MustSendEveryTime = false
	}

	switch q.Type {
	case catalogue.TypeOS:
		qq := q
		plan.OS = &qq
	case catalogue.TypeMAC:
		qq := q
		plan.MAC = &qq
	case catalogue.TypeDomain:
		qq := q
		plan.Domain = &qq
	case catalogue.TypeProcess:
		if q.Process != nil {
			if _, claimed := plan.Processes[q.Process.Path]; !claimed {
				plan.Processes[q.Process.Path] = q
			}
		}
	case catalogue.TypeProcessMulti:
		for _, proc := range q.Processes {
			if _, claimed := plan.Processes[proc.Path]; !claimed {
				plan.Processes[proc.Path] = q
			}
		}
	}
}

// sweepAndDispatch is the obsolescence sweep plus provider dispatch,
// spec.md §4.1.
func (a *Agent) sweepAndDispatch(ctx context.Context, plan *QueryPlan) {
	for _, e := range a.state.Responses {
		if !e.Pending && !e.ShouldSend {
			e.Obsolete = true
		}
	}

	if plan.OS != nil {
		a.dispatchEvidence(ctx, KeyOS, plan.OS.ID, a.cfg.Providers.OS)
	}
	if plan.MAC != nil {
		a.dispatchEvidence(ctx, KeyMAC, plan.MAC.ID, a.cfg.Providers.MAC)
	}
	if plan.Domain != nil {
		a.dispatchEvidence(ctx, KeyDomain, plan.Domain.ID, a.cfg.Providers.Domain)
	}
	for path, q := range plan.Processes {
		a.dispatchProcess(ctx, path, q.ID)
	}

	for key, e := range a.state.Responses {
		if e.Obsolete {
			delete(a.state.Responses, key)
			delete(a.state.ErrorStates, key)
		}
	}
}

// dispatchEvidence runs a synchronous provider (OS/MAC/DOMAIN) and feeds
// its result straight into the cache, spec.md §4.2/§5 ("synchronous
// providers therefore dirty the cache before submit runs").
func (a *Agent) dispatchEvidence(ctx context.Context, key, queryID string, provider EvidenceFunc) {
	e := a.state.entry(key)
	e.Obsolete = false
	if e.Pending {
		return
	}
	e.Pending = true

	body, err := provider(ctx, queryID)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("evidence provider failed")
		e.Pending = false
		return
	}
	a.state.collect(key, body)
}

// dispatchProcess starts (or leaves running) the off-loop job for path,
// spec.md §4.1/§4.3.
func (a *Agent) dispatchProcess(ctx context.Context, path, queryID string) {
	e := a.state.entry(path)
	e.Obsolete = false
	if e.Pending {
		return
	}
	e.Pending = true

	job := &ProcessJob{ID: uuid.New().String(), Path: path}
	job.done = func(result ProcessResult) {
		body, err := marshalProcessResponse(queryID, path, result)
		if err != nil {
			logrus.WithError(err).WithField("path", path).Warn("failed marshaling process response")
			e.Pending = false
			return
		}
		a.state.collect(path, body)
	}

	a.state.ActiveWork[path] = job
	a.jobs.Go(dispatchProcessJob(ctx, a.cfg.Providers.Process, job, a.jobResultCh))
}
