// Package posture implements the posture-assessment core: it discovers
// which posture checks the controller requires, collects the
// corresponding evidence from the local host, and submits responses to
// the controller, reconciling two independent change signals (new
// session/controller instance, content change) against a sticky
// "always resend" flag. See original_source/library/posture.c, the C
// implementation this package's semantics are grounded on.
package posture

import (
	"sync/atomic"

	"github.com/meshzero/posture-agent/pkg/catalogue"
)

// Response keys for the three singleton checks; process checks are keyed
// by their absolute executable path instead (spec.md §3).
const (
	KeyOS     = "OS"
	KeyMAC    = "MAC"
	KeyDomain = "DOMAIN"
)

// ResponseEntry is the cached last-known response for one response key,
// spec.md §3.
type ResponseEntry struct {
	ID string

	// Body is the last serialized JSON object for this key, or nil if no
	// provider has completed yet.
	Body []byte

	// ShouldSend is cleared as the Submitter consumes the entry and set
	// again by collect whenever policy, history, or content demands a
	// resend.
	ShouldSend bool

	// Pending is true while a provider is in flight for this key. A
	// pending entry is pinned: the obsolescence sweep will not evict it.
	Pending bool

	// Obsolete is set at the start of each reconciliation pass and
	// cleared iff the key is still referenced by some policy by the end
	// of the pass.
	Obsolete bool
}

// ProcessJob is a transient off-loop unit of work for a single PROCESS
// response key, spec.md §3.
type ProcessJob struct {
	ID       string
	Path     string
	Canceled atomic.Bool

	done func(ProcessResult)
}

// ProcessResult is what the process inspection worker reports back to the
// loop thread, spec.md §4.3.
type ProcessResult struct {
	IsRunning bool
	SHA512Hex string // empty if the file was missing/unreadable
	Signers   []string
}

// QueryPlan is the per-tick, per-service-catalogue walk result, spec.md §3:
// up to one singleton query per OS/MAC/DOMAIN kind, plus every PROCESS /
// PROCESS_MULTI query collapsed by absolute path.
type QueryPlan struct {
	OS        *catalogue.Query
	MAC       *catalogue.Query
	Domain    *catalogue.Query
	Processes map[string]catalogue.Query // keyed by absolute path
}

func newQueryPlan() *QueryPlan {
	return &QueryPlan{Processes: map[string]catalogue.Query{}}
}

// State is the process-wide posture-assessment record, spec.md §3. It is
// owned by whatever embeds this package (an SDK context, an agent
// process) and passed by reference — there is no package-level
// singleton, per spec.md §9's "global-ish state" redesign note.
type State struct {
	Responses   map[string]*ResponseEntry
	ErrorStates map[string]bool
	ActiveWork  map[string]*ProcessJob // keyed by response key

	PreviousSessionID    *string
	ControllerInstanceID *string
	MustSendEveryTime    bool
	MustSend             bool
	BulkDisabled         bool
}

// newState builds an empty, post-init State. mustSendEveryTime defaults
// true per spec.md §3.
func newState() *State {
	return &State{
		Responses:         map[string]*ResponseEntry{},
		ErrorStates:       map[string]bool{},
		ActiveWork:        map[string]*ProcessJob{},
		MustSendEveryTime: true,
	}
}

// entry returns the ResponseEntry for key, creating it if absent. Mirrors
// the source's get_resp_info.
func (s *State) entry(key string) *ResponseEntry {
	e, ok := s.Responses[key]
	if !ok {
		e = &ResponseEntry{ID: key}
		s.Responses[key] = e
	}
	return e
}

// lastSubmissionErrored reports whether the most recent submission for key
// failed. Absent keys are treated as not errored, mirroring
// ziti_pr_is_info_errored's "not found => false".
func (s *State) lastSubmissionErrored(key string) bool {
	return s.ErrorStates[key]
}
