package posture

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/meshzero/posture-agent/pkg/catalogue"
	"github.com/meshzero/posture-agent/pkg/controllerapi"
	"github.com/meshzero/posture-agent/pkg/posture/wire"
)

type fakeClient struct {
	bulkBodies       [][]byte
	individualBodies [][]byte
	bulkErr          error
	individualErr    error
	resp             *wire.ControllerResponse
}

func (f *fakeClient) PostResponse(ctx context.Context, body []byte) (*wire.ControllerResponse, error) {
	f.individualBodies = append(f.individualBodies, body)
	if f.individualErr != nil {
		return nil, f.individualErr
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &wire.ControllerResponse{}, nil
}

func (f *fakeClient) PostResponseBulk(ctx context.Context, body []byte) (*wire.ControllerResponse, error) {
	f.bulkBodies = append(f.bulkBodies, body)
	if f.bulkErr != nil {
		return nil, f.bulkErr
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &wire.ControllerResponse{}, nil
}

var _ controllerapi.Client = (*fakeClient)(nil)

func TestSubmitBulkSendsDirtyEntriesAndClearsMustSend(t *testing.T) {
	s := newState()
	s.MustSend = true
	e := s.entry(KeyOS)
	e.Body = []byte(`{"a":1}`)
	e.ShouldSend = true

	client := &fakeClient{}
	cat := catalogue.NewStatic(nil)

	submitBulk(context.Background(), client, cat, s)

	if len(client.bulkBodies) != 1 {
		t.Fatalf("expected exactly one bulk request, got %d", len(client.bulkBodies))
	}
	if s.MustSend {
		t.Fatal("a successful bulk submission must clear must_send")
	}
	if e.ShouldSend {
		t.Fatal("a successful bulk submission must leave should_send cleared")
	}
}

func TestSubmitBulkSuccessTriggersBlanketServiceRefresh(t *testing.T) {
	s := newState()
	e := s.entry(KeyOS)
	e.Body = []byte(`{}`)
	e.ShouldSend = true

	cat := catalogue.NewStatic([]catalogue.Service{{ID: "svc1"}, {ID: "svc2"}})
	submitBulk(context.Background(), &fakeClient{}, cat, s)

	got := cat.Invalidations()
	if len(got) != 2 || got[0] != "svc1" || got[1] != "svc2" {
		t.Fatalf("expected a blanket InvalidateService per known service, got %v", got)
	}
}

func TestSubmitBulkFailureDoesNotTriggerServiceRefresh(t *testing.T) {
	s := newState()
	e := s.entry(KeyOS)
	e.Body = []byte(`{}`)
	e.ShouldSend = true

	cat := catalogue.NewStatic([]catalogue.Service{{ID: "svc1"}})
	client := &fakeClient{bulkErr: &controllerapi.HTTPError{StatusCode: 500}}
	submitBulk(context.Background(), client, cat, s)

	if got := cat.Invalidations(); len(got) != 0 {
		t.Fatalf("a failed submission must not trigger a service refresh, got %v", got)
	}
}

func TestSubmitBulkNothingDirtyFiresNoRequest(t *testing.T) {
	s := newState()
	client := &fakeClient{}
	submitBulk(context.Background(), client, catalogue.NewStatic(nil), s)

	if len(client.bulkBodies) != 0 {
		t.Fatal("an empty dirty set must not fire a bulk request")
	}
}

func TestSubmitBulkNotFoundDisablesBulkPermanently(t *testing.T) {
	s := newState()
	e := s.entry(KeyOS)
	e.Body = []byte(`{}`)
	e.ShouldSend = true

	client := &fakeClient{bulkErr: &controllerapi.HTTPError{StatusCode: 404}}
	submitBulk(context.Background(), client, catalogue.NewStatic(nil), s)

	if !s.BulkDisabled {
		t.Fatal("a 404 from the bulk endpoint must disable bulk mode")
	}
	if !s.MustSend {
		t.Fatal("a failed submission must set must_send for retry")
	}
}

func TestSubmitBulkNonNotFoundFailureDoesNotDisableBulk(t *testing.T) {
	s := newState()
	e := s.entry(KeyOS)
	e.Body = []byte(`{}`)
	e.ShouldSend = true

	client := &fakeClient{bulkErr: &controllerapi.HTTPError{StatusCode: 500}}
	submitBulk(context.Background(), client, catalogue.NewStatic(nil), s)

	if s.BulkDisabled {
		t.Fatal("a non-404 failure must not disable bulk mode")
	}
}

func TestSubmitIndividualTracksPerKeyErrorState(t *testing.T) {
	s := newState()
	s.BulkDisabled = true
	ok := s.entry(KeyOS)
	ok.Body = []byte(`{"typeId":"OS"}`)
	ok.ShouldSend = true
	bad := s.entry(KeyMAC)
	bad.Body = []byte(`{"typeId":"MAC"}`)
	bad.ShouldSend = true

	submitIndividual(context.Background(), &selectiveFailClient{fail: KeyMAC}, catalogue.NewStatic(nil), s)

	if s.ErrorStates[KeyOS] {
		t.Fatal("a succeeding key must not be marked errored")
	}
	if !s.ErrorStates[KeyMAC] {
		t.Fatal("a failing key must be marked errored")
	}
	if ok.ShouldSend || bad.ShouldSend {
		t.Fatal("should_send is cleared at dispatch time regardless of outcome")
	}
}

func TestSubmitIndividualSuccessTriggersBlanketServiceRefresh(t *testing.T) {
	s := newState()
	s.BulkDisabled = true
	e := s.entry(KeyOS)
	e.Body = []byte(`{"typeId":"OS"}`)
	e.ShouldSend = true

	cat := catalogue.NewStatic([]catalogue.Service{{ID: "svc1"}})
	submitIndividual(context.Background(), &selectiveFailClient{fail: "none"}, cat, s)

	got := cat.Invalidations()
	if len(got) != 1 || got[0] != "svc1" {
		t.Fatalf("expected a blanket InvalidateService on individual success, got %v", got)
	}
}

// selectiveFailClient fails PostResponse whenever the body round-trips to
// a response whose typeId matches fail; used to drive per-key
// individual-submission outcomes deterministically in tests.
type selectiveFailClient struct {
	fail string
}

func (c *selectiveFailClient) PostResponse(ctx context.Context, body []byte) (*wire.ControllerResponse, error) {
	var probe struct {
		TypeID wire.TypeID `json:"typeId"`
	}
	_ = json.Unmarshal(body, &probe)
	if string(probe.TypeID) == c.fail {
		return nil, &controllerapi.HTTPError{StatusCode: 500}
	}
	return &wire.ControllerResponse{}, nil
}

func (c *selectiveFailClient) PostResponseBulk(ctx context.Context, body []byte) (*wire.ControllerResponse, error) {
	return &wire.ControllerResponse{}, nil
}

func TestRefreshServicesInvalidatesEveryKnownService(t *testing.T) {
	cat := catalogue.NewStatic([]catalogue.Service{{ID: "svc1"}, {ID: "svc2"}, {ID: "svc3"}})
	refreshServices(cat)

	got := cat.Invalidations()
	if len(got) != 3 || got[0] != "svc1" || got[1] != "svc2" || got[2] != "svc3" {
		t.Fatalf("expected every known service invalidated once, got %v", got)
	}
}

func TestApplyServiceTimersForcesEachServiceUpdate(t *testing.T) {
	cat := catalogue.NewStatic(nil)
	applyServiceTimers(cat, &wire.ControllerResponse{Services: []wire.ServiceTimer{{ID: "svc1"}, {ID: "svc2"}}})

	got := cat.ForcedUpdates()
	if len(got) != 2 || got[0] != "svc1" || got[1] != "svc2" {
		t.Fatalf("unexpected forced updates: %v", got)
	}
}
