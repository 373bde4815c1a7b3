package posture

import (
	"context"
	"testing"
	"time"

	"github.com/meshzero/posture-agent/pkg/catalogue"
	"github.com/meshzero/posture-agent/pkg/controllerapi"
	"github.com/meshzero/posture-agent/pkg/posture/wire"
	"github.com/meshzero/posture-agent/pkg/ptime"
)

// fakeTicker lets tests fire ticks on demand instead of waiting on a real
// timer.
type fakeTicker struct {
	c chan time.Time
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop()               {}

type fakeSource struct {
	ticker *fakeTicker
}

func (s *fakeSource) NewTicker(time.Duration, time.Duration) ptime.Ticker { return s.ticker }

func (s *fakeSource) fire() { s.ticker.c <- time.Now() }

func newFakeSource() *fakeSource {
	return &fakeSource{ticker: &fakeTicker{c: make(chan time.Time, 1)}}
}

func TestAgentStartTickSubmitsAndStop(t *testing.T) {
	client := &fakeClient{}
	cat := catalogue.NewStatic([]catalogue.Service{
		{ID: "svc1", QuerySets: []catalogue.QuerySet{{Queries: []catalogue.Query{
			{ID: "q1", Type: catalogue.TypeOS, Timeout: 60},
		}}}},
	})
	src := newFakeSource()

	a := New(Config{
		PollInterval: time.Second,
		Session:      func() SessionInfo { return SessionInfo{SessionID: "s1", Authenticated: true} },
		Catalogue:    cat,
		Client:       client,
		Clock:        src,
		Providers: Providers{
			OS: func(ctx context.Context, id string) ([]byte, error) {
				return wire.NewOSResponse(id, "linux", "1.0", "").Marshal()
			},
		},
	})

	ctx := context.Background()
	a.Start(ctx)
	src.fire()

	deadline := time.After(time.Second)
	for len(client.bulkBodies) == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for a bulk submission after the first tick")
		case <-time.After(time.Millisecond):
		}
	}

	a.Stop()

	if len(a.state.Responses) != 0 {
		t.Fatal("Stop must clear the response cache")
	}
}

func TestAgentEndpointStateChangeNoOpWhenBothFalse(t *testing.T) {
	client := &fakeClient{}
	a := New(Config{
		PollInterval: time.Hour,
		Session:      func() SessionInfo { return SessionInfo{} },
		Catalogue:    catalogue.NewStatic(nil),
		Client:       client,
		Clock:        newFakeSource(),
	})
	a.Start(context.Background())
	defer a.Stop()

	a.EndpointStateChange(context.Background(), false, false)
	time.Sleep(10 * time.Millisecond)

	if len(client.individualBodies) != 0 {
		t.Fatal("woken=false, unlocked=false must not submit anything")
	}
}

func TestAgentEndpointStateChangeSubmits(t *testing.T) {
	client := &fakeClient{}
	a := New(Config{
		PollInterval: time.Hour,
		Session:      func() SessionInfo { return SessionInfo{} },
		Catalogue:    catalogue.NewStatic(nil),
		Client:       client,
		Clock:        newFakeSource(),
	})
	a.Start(context.Background())
	defer a.Stop()

	a.EndpointStateChange(context.Background(), true, false)

	deadline := time.After(time.Second)
	for len(client.individualBodies) == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for the endpoint-state submission")
		case <-time.After(time.Millisecond):
		}
	}
}

var _ controllerapi.Client = (*fakeClient)(nil)
