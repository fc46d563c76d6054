package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/ShayCichocki/taskmgr/internal/protocol"
)

func TestChildExit_SupervisedWorker(t *testing.T) {
	host := newFakeHost()
	m := NewMonitor(host)
	state := mustEncode(t, testState("worker-1"))

	got := m.ChildExit(context.Background(), state, "worker-1", []byte("bye"))

	if !bytes.Equal(got, state) {
		t.Error("expected state unchanged")
	}
	if len(host.shutdowns) != 1 {
		t.Errorf("expected exactly one shutdown request, got %d", len(host.shutdowns))
	}
}

func TestChildExit_OtherChild(t *testing.T) {
	host := newFakeHost()
	m := NewMonitor(host)
	state := mustEncode(t, testState("worker-1"))

	got := m.ChildExit(context.Background(), state, "tool-7", nil)

	if !bytes.Equal(got, state) {
		t.Error("expected state unchanged")
	}
	if len(host.shutdowns) != 0 {
		t.Errorf("expected no shutdown, got %d", len(host.shutdowns))
	}
}

func TestChildExit_UninitializedWorker(t *testing.T) {
	host := newFakeHost()
	m := NewMonitor(host)

	m.ChildExit(context.Background(), mustEncode(t, testState("")), "worker-1", nil)
	if len(host.shutdowns) != 0 {
		t.Error("expected no shutdown without a stored worker")
	}
}

func TestChildExit_BadState(t *testing.T) {
	for _, state := range [][]byte{nil, []byte("{broken")} {
		host := newFakeHost()
		m := NewMonitor(host)

		if got := m.ChildExit(context.Background(), state, "worker-1", nil); got != nil {
			t.Errorf("expected state discarded, got %q", got)
		}
		if len(host.shutdowns) != 0 {
			t.Error("expected no shutdown")
		}
	}
}

func TestChildExternalStop(t *testing.T) {
	host := newFakeHost()
	m := NewMonitor(host)
	state := mustEncode(t, testState("worker-1"))

	got := m.ChildExternalStop(context.Background(), state, "worker-1")

	if !bytes.Equal(got, state) {
		t.Error("expected state unchanged")
	}
	if len(host.shutdowns) != 0 {
		t.Error("external stop must not cascade")
	}
	if !host.logged("externally stopped: worker-1") {
		t.Errorf("expected stop to be logged, logs: %v", host.logs)
	}
}

func TestChildError(t *testing.T) {
	tests := []struct {
		name    string
		cerr    ChildError
		wantMsg string
	}{
		{
			"internal with byte data",
			ChildError{Kind: ErrorKindInternal, Payload: []byte(`{"hash":[1,2],"parent_hash":null,"event_type":"error","data":[111,111,112,115],"timestamp":17}`)},
			"oops",
		},
		{
			"internal with string data",
			ChildError{Kind: ErrorKindInternal, Payload: []byte(`{"event_type":"error","data":"model unavailable","timestamp":1}`)},
			"model unavailable",
		},
		{
			"internal with string hash",
			ChildError{Kind: ErrorKindInternal, Payload: []byte(`{"hash":"abc","parent_hash":[0],"event_type":"error","data":[104,105],"timestamp":2,"description":null}`)},
			"hi",
		},
		{
			"internal with out of range data",
			ChildError{Kind: ErrorKindInternal, Payload: []byte(`{"event_type":"error","data":[300]}`)},
			`{"event_type":"error","data":[300]}`,
		},
		{
			"internal without data",
			ChildError{Kind: ErrorKindInternal, Payload: []byte(`{"event_type":"error"}`)},
			`{"event_type":"error"}`,
		},
		{
			"internal without chain event",
			ChildError{Kind: ErrorKindInternal, Payload: []byte("plain failure")},
			"plain failure",
		},
		{
			"other kind",
			ChildError{Kind: ErrorKindTimeout, Payload: []byte("deadline exceeded")},
			"deadline exceeded",
		},
		{
			"no payload",
			ChildError{Kind: ErrorKindShuttingDown},
			"no error details",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := newFakeHost()
			m := NewMonitor(host)

			state, err := m.ChildError(context.Background(), mustEncode(t, testState("worker-1")), "worker-1", tt.cerr)
			if state != nil {
				t.Error("expected no state on worker error")
			}

			var werr *WorkerError
			if !errors.As(err, &werr) {
				t.Fatalf("expected *WorkerError, got %v", err)
			}
			if werr.ChildID != "worker-1" || werr.Kind != tt.cerr.Kind {
				t.Errorf("unexpected error identity: %+v", werr)
			}
			if werr.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, werr.Message)
			}
		})
	}
}

func TestChainEventDecode(t *testing.T) {
	payload := []byte(`{"hash":[1,2,255],"parent_hash":null,"event_type":"error","data":"boom","timestamp":17,"description":"d"}`)

	var ev ChainEvent
	if err := protocol.Unmarshal(payload, &ev); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !bytes.Equal(ev.Hash, []byte{1, 2, 255}) {
		t.Errorf("Hash = %v", ev.Hash)
	}
	if ev.ParentHash != nil {
		t.Errorf("ParentHash = %v, want nil", ev.ParentHash)
	}
	if string(ev.Data) != "boom" || ev.Timestamp != 17 {
		t.Errorf("event = %+v", ev)
	}
	if ev.Description == nil || *ev.Description != "d" {
		t.Errorf("Description = %v", ev.Description)
	}

	data, err := protocol.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"hash":[1,2,255],"parent_hash":null,"event_type":"error","data":[98,111,111,109],"timestamp":17,"description":"d"}`
	if string(data) != want {
		t.Errorf("Marshal = %s\nwant %s", data, want)
	}
}

func TestByteListRejectsNonBytes(t *testing.T) {
	for _, input := range []string{`[-1]`, `[256]`, `[1.5]`, `{}`, `7`} {
		var b ByteList
		if err := protocol.Unmarshal([]byte(input), &b); err == nil {
			t.Errorf("Unmarshal(%s) should fail, got %v", input, b)
		}
	}
}
