package wire

import (
	"encoding/json"
	"testing"
)

func TestOSResponseMarshal(t *testing.T) {
	r := NewOSResponse("q1", "windows", "10.0.19045", "ununsed")
	b, err := r.Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["typeId"] != "OS" || got["build"] != "ununsed" {
		t.Fatalf("unexpected fields: %v", got)
	}
}

func TestMACResponseEmptyIsEmptyArrayNotNull(t *testing.T) {
	r := NewMACResponse("q1", nil)
	b, err := r.Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != `{"id":"q1","typeId":"MAC","macAddresses":[]}` {
		t.Fatalf("unexpected json: %s", b)
	}
}

func TestProcessResponseFields(t *testing.T) {
	r := NewProcessResponse("q1", "/usr/bin/true", true, "deadbeef", []string{"abc123"})
	b, _ := r.Marshal()

	var got ProcessResponse
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Path != "/usr/bin/true" || !got.IsRunning || got.Hash != "deadbeef" || len(got.Signers) != 1 {
		t.Fatalf("unexpected round trip: %+v", got)
	}
}

func TestEndpointStateResponseFixedID(t *testing.T) {
	r := NewEndpointStateResponse(true, false)
	if r.ID != "0" {
		t.Fatalf("expected id 0, got %q", r.ID)
	}
}
