// Package catalogue is a minimal stand-in for the SDK's service-policy data
// model and service-refresh engine (spec.md §1's "out of scope" collaborator
// #2). It gives the posture scheduler something real to walk and something
// real to call back into, without reimplementing policy evaluation.
package catalogue

import "sync"

// QueryType is one of the controller-defined posture-check kinds,
// spec.md §4.1.
type QueryType string

const (
	TypeOS           QueryType = "OS"
	TypeMAC          QueryType = "MAC"
	TypeDomain       QueryType = "DOMAIN"
	TypeProcess      QueryType = "PROCESS"
	TypeProcessMulti QueryType = "PROCESS_MULTI"
)

// NoTimeout is the sentinel "always required, non-expiring" timeout value,
// spec.md §4.1.
const NoTimeout = -1

// ProcessRef names a single binary a PROCESS or PROCESS_MULTI query cares
// about.
type ProcessRef struct {
	Path string
}

// Query is one posture check within a policy's query set.
type Query struct {
	ID        string
	Type      QueryType
	Timeout   int // seconds; NoTimeout means "no timeout / always required"
	Process   *ProcessRef
	Processes []ProcessRef
}

// QuerySet groups the queries a single posture policy requires.
type QuerySet struct {
	PolicyID string
	Queries  []Query
}

// Service is a controller-defined service with the posture policies that
// gate access to it.
type Service struct {
	ID        string
	Name      string
	QuerySets []QuerySet
}

// Catalogue is the subset of the service-policy engine the posture core
// consumes: the current services to walk, and two refresh hooks the
// Submitter calls on a successful submission (spec.md §4.5, §4.6).
type Catalogue interface {
	// Services returns a snapshot of the currently known services. The
	// scheduler never mutates the result.
	Services() []Service

	// ForceServiceUpdate is called once per service id named in a
	// controller response's services[] array, so the refresh engine can
	// reset that service's grace timer (spec.md §4.5).
	ForceServiceUpdate(serviceID string)

	// InvalidateService marks a service's cached policy stale, forcing a
	// re-fetch from the controller. Called once per known service on
	// every successful submission, mirroring the source's unconditional
	// ziti_services_refresh(ztx, true) (spec.md §4.5/§4.6).
	InvalidateService(serviceID string)
}

// Static is an in-memory Catalogue: a fixed service list plus recorder
// hooks, suitable for both production embedding (fed by whatever discovers
// the real services) and tests.
type Static struct {
	mu       sync.RWMutex
	services []Service

	OnForceUpdate func(serviceID string)
	OnInvalidate  func(serviceID string)
	forcedUpdates []string
	invalidations []string
}

// NewStatic builds a Catalogue over a fixed snapshot of services.
func NewStatic(services []Service) *Static {
	return &Static{services: services}
}

func (s *Static) Services() []Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Service, len(s.services))
	copy(out, s.services)
	return out
}

// SetServices replaces the service snapshot, letting an embedder push
// policy changes in (e.g. after a controller-driven sync) between ticks.
func (s *Static) SetServices(services []Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services = services
}

func (s *Static) ForceServiceUpdate(serviceID string) {
	s.mu.Lock()
	s.forcedUpdates = append(s.forcedUpdates, serviceID)
	s.mu.Unlock()
	if s.OnForceUpdate != nil {
		s.OnForceUpdate(serviceID)
	}
}

func (s *Static) InvalidateService(serviceID string) {
	s.mu.Lock()
	s.invalidations = append(s.invalidations, serviceID)
	s.mu.Unlock()
	if s.OnInvalidate != nil {
		s.OnInvalidate(serviceID)
	}
}

// ForcedUpdates returns the service ids ForceServiceUpdate has been called
// with, in call order. Exposed for tests asserting on Submitter behavior.
func (s *Static) ForcedUpdates() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.forcedUpdates))
	copy(out, s.forcedUpdates)
	return out
}

// Invalidations returns the service ids InvalidateService has been called
// with, in call order. Exposed for tests asserting on the blanket
// service-refresh behavior.
func (s *Static) Invalidations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.invalidations))
	copy(out, s.invalidations)
	return out
}
