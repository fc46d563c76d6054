package host

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ShayCichocki/taskmgr/internal/orchestrator"
	"github.com/ShayCichocki/taskmgr/internal/protocol"
	"github.com/ShayCichocki/taskmgr/internal/state"
	"github.com/ShayCichocki/taskmgr/pkg/models"
)

const testManifest = "actors/chat-state/manifest.toml"

func newTestRuntime(t *testing.T) (*Runtime, *state.DB) {
	t.Helper()
	db, err := state.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(Config{Store: db, ChatStateManifest: testManifest}), db
}

func mustCreate(t *testing.T, rt *Runtime, params string) (string, string) {
	t.Helper()
	id, err := rt.Create(context.Background(), []byte(params))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	worker, err := rt.Actors(nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range worker {
		if a.ParentID == id {
			return id, a.ID
		}
	}
	t.Fatalf("no worker spawned for %s", id)
	return "", ""
}

func mustRequest(t *testing.T, rt *Runtime, id string, req protocol.Request) *protocol.Response {
	t.Helper()
	data, err := req.Encode()
	if err != nil {
		t.Fatal(err)
	}
	out, err := rt.Request(context.Background(), id, data)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp, err := protocol.DecodeResponse(out)
	if err != nil {
		t.Fatalf("DecodeResponse(%s) failed: %v", out, err)
	}
	return resp
}

func outboxTypes(t *testing.T, rt *Runtime, workerID string) []string {
	t.Helper()
	msgs, err := rt.Outbox(workerID)
	if err != nil {
		t.Fatalf("Outbox failed: %v", err)
	}
	types := make([]string, 0, len(msgs))
	for _, m := range msgs {
		req, err := protocol.DecodeWorkerRequest(m.Payload)
		if err != nil {
			t.Fatalf("undecodable outbox message %s: %v", m.Payload, err)
		}
		types = append(types, string(req.Type))
	}
	return types
}

func actorStatus(t *testing.T, rt *Runtime, id string) *models.Actor {
	t.Helper()
	a, err := rt.Actor(id)
	if err != nil {
		t.Fatalf("Actor(%s) failed: %v", id, err)
	}
	return a
}

func TestCreate(t *testing.T) {
	rt, _ := newTestRuntime(t)

	id, workerID := mustCreate(t, rt, `{"task":"commit","directory":"/repo"}`)

	orch := actorStatus(t, rt, id)
	if orch.Kind != models.ActorKindOrchestrator || orch.Status != models.ActorStatusRunning {
		t.Errorf("expected running orchestrator, got %s/%s", orch.Kind, orch.Status)
	}
	st, err := orchestrator.DecodeState(orch.State)
	if err != nil {
		t.Fatalf("stored state does not decode: %v", err)
	}
	got, err := st.Worker()
	if err != nil || got != workerID {
		t.Errorf("expected worker %s in state, got %q (%v)", workerID, got, err)
	}

	worker := actorStatus(t, rt, workerID)
	if worker.Manifest != testManifest {
		t.Errorf("expected manifest %s, got %s", testManifest, worker.Manifest)
	}
	if !strings.Contains(string(worker.State), `"title":"Git Commit Assistant"`) {
		t.Errorf("expected worker state to be the configuration document, got %s", worker.State)
	}
	if string(worker.State) != string(st.OriginalConfig) {
		t.Error("expected worker init bytes to match the stored original config")
	}

	events, err := rt.Events(id, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) == 0 || events[0].Type != state.EventCreated {
		t.Errorf("expected first event to be created, got %v", events)
	}
}

func TestCreate_SpawnFailure(t *testing.T) {
	rt, _ := newTestRuntime(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	id, err := rt.Create(ctx, nil)
	if !errors.Is(err, orchestrator.ErrSpawnFailed) {
		t.Fatalf("expected ErrSpawnFailed, got %v", err)
	}
	orch := actorStatus(t, rt, id)
	if orch.Status != models.ActorStatusFailed {
		t.Errorf("expected failed status, got %s", orch.Status)
	}
	if orch.State != nil {
		t.Errorf("expected no state, got %s", orch.State)
	}
}

func TestRequest_QueryWorkerID(t *testing.T) {
	rt, _ := newTestRuntime(t)
	id, workerID := mustCreate(t, rt, "")

	resp := mustRequest(t, rt, id, protocol.QueryWorkerID())
	if resp.Type != protocol.ResponseWorkerID || resp.ActorID != workerID {
		t.Errorf("expected worker-id %s, got %+v", workerID, resp)
	}
}

func TestRequest_StartSession(t *testing.T) {
	tests := []struct {
		name   string
		params string
		want   []string
	}{
		{"task sends pair", `{"task":"commit"}`, []string{"add_message", "generate_completion"}},
		{"no task no message", `{}`, []string{}},
		{"explicit message", `{"initial_message":"hi"}`, []string{"add_message"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, _ := newTestRuntime(t)
			id, workerID := mustCreate(t, rt, tt.params)

			resp := mustRequest(t, rt, id, protocol.StartSession())
			if resp.Type != protocol.ResponseSuccess {
				t.Fatalf("expected success, got %+v", resp)
			}
			got := outboxTypes(t, rt, workerID)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("expected outbox %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRequest_AddMessage(t *testing.T) {
	rt, _ := newTestRuntime(t)
	id, workerID := mustCreate(t, rt, `{"task":"review"}`)
	before := actorStatus(t, rt, id).State

	resp := mustRequest(t, rt, id, protocol.AddMessage(models.NewTextMessage(models.RoleUser, "look at main.go")))
	if resp.Type != protocol.ResponseSuccess {
		t.Fatalf("expected success, got %+v", resp)
	}

	msgs, err := rt.Outbox(workerID)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if !strings.Contains(string(msgs[0].Payload), "look at main.go") {
		t.Errorf("expected forwarded text, got %s", msgs[0].Payload)
	}
	if msgs[0].SenderID != id {
		t.Errorf("expected sender %s, got %s", id, msgs[0].SenderID)
	}
	if string(actorStatus(t, rt, id).State) != string(before) {
		t.Error("expected request to leave state unchanged")
	}
}

func TestRequest_Malformed(t *testing.T) {
	rt, _ := newTestRuntime(t)
	id, _ := mustCreate(t, rt, "")

	out, err := rt.Request(context.Background(), id, []byte("not json"))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp, err := protocol.DecodeResponse(out)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.IsError() {
		t.Errorf("expected error response, got %+v", resp)
	}
	if actorStatus(t, rt, id).Status != models.ActorStatusRunning {
		t.Error("expected orchestrator to keep running")
	}
}

func TestRequest_CorruptState(t *testing.T) {
	rt, db := newTestRuntime(t)
	id, _ := mustCreate(t, rt, "")

	orch := actorStatus(t, rt, id)
	orch.State = []byte("garbage")
	if err := db.UpdateActor(orch); err != nil {
		t.Fatal(err)
	}

	resp := mustRequest(t, rt, id, protocol.QueryWorkerID())
	if !resp.IsError() {
		t.Errorf("expected error response, got %+v", resp)
	}
	got := actorStatus(t, rt, id)
	if got.Status != models.ActorStatusFailed || got.Reason != reasonStateDiscarded {
		t.Errorf("expected failed/%s, got %s/%s", reasonStateDiscarded, got.Status, got.Reason)
	}
}

func TestRequest_UnknownActor(t *testing.T) {
	rt, _ := newTestRuntime(t)

	_, err := rt.Request(context.Background(), "ghost", []byte(`{"type":"start-session"}`))
	if !errors.Is(err, state.ErrActorNotFound) {
		t.Errorf("expected ErrActorNotFound, got %v", err)
	}
}

func TestRequest_Worker(t *testing.T) {
	rt, _ := newTestRuntime(t)
	_, workerID := mustCreate(t, rt, "")

	_, err := rt.Request(context.Background(), workerID, []byte(`{"type":"start-session"}`))
	if !errors.Is(err, ErrWrongKind) {
		t.Errorf("expected ErrWrongKind, got %v", err)
	}
}

func TestComplete(t *testing.T) {
	rt, _ := newTestRuntime(t)
	id, workerID := mustCreate(t, rt, `{"task":"commit"}`)

	if err := rt.Complete(context.Background(), id, "committed"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	orch := actorStatus(t, rt, id)
	if orch.Status != models.ActorStatusShutdownRequested {
		t.Errorf("expected shutdown_requested, got %s", orch.Status)
	}
	if orch.Reason != "task completed" {
		t.Errorf("expected reason 'task completed', got %q", orch.Reason)
	}
	if actorStatus(t, rt, workerID).Status != models.ActorStatusRunning {
		t.Error("expected completion to leave the worker alone")
	}

	_, err := rt.Request(context.Background(), id, []byte(`{"type":"start-session"}`))
	if !errors.Is(err, ErrActorTerminated) {
		t.Errorf("expected ErrActorTerminated after shutdown, got %v", err)
	}
}

func lockCount(rt *Runtime) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.locks)
}

func TestLocksReleasedForTerminalActors(t *testing.T) {
	rt, _ := newTestRuntime(t)
	first, _ := mustCreate(t, rt, `{"task":"commit"}`)
	second, _ := mustCreate(t, rt, "")
	if got := lockCount(rt); got < 2 {
		t.Fatalf("expected locks for running orchestrators, got %d", got)
	}

	if err := rt.Complete(context.Background(), first, "done"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	rt.mu.Lock()
	_, held := rt.locks[first]
	rt.mu.Unlock()
	if held {
		t.Error("expected completed orchestrator's lock to be dropped")
	}

	if _, err := rt.Request(context.Background(), second, []byte(`{"type":"query-worker-id"}`)); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	rt.mu.Lock()
	_, held = rt.locks[second]
	rt.mu.Unlock()
	if !held {
		t.Error("expected running orchestrator to keep its lock")
	}
}

func TestComplete_AutoExitDisabled(t *testing.T) {
	rt, _ := newTestRuntime(t)
	id, _ := mustCreate(t, rt, `{"task":"commit","auto_exit_on_completion":false}`)

	if err := rt.Complete(context.Background(), id, ""); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got := actorStatus(t, rt, id).Status; got != models.ActorStatusRunning {
		t.Errorf("expected running, got %s", got)
	}
}

func TestSend_Unrecognized(t *testing.T) {
	rt, _ := newTestRuntime(t)
	id, _ := mustCreate(t, rt, "")
	before := actorStatus(t, rt, id).State

	err := rt.Send(context.Background(), id, []byte(`{"type":"bogus"}`))
	if !errors.Is(err, protocol.ErrUnknownDirectMessage) {
		t.Errorf("expected ErrUnknownDirectMessage, got %v", err)
	}
	got := actorStatus(t, rt, id)
	if got.Status != models.ActorStatusRunning {
		t.Errorf("expected running, got %s", got.Status)
	}
	if string(got.State) != string(before) {
		t.Error("expected state unchanged")
	}
}

func TestChannels(t *testing.T) {
	rt, _ := newTestRuntime(t)
	id, _ := mustCreate(t, rt, "")
	ctx := context.Background()

	accept, err := rt.OpenChannel(ctx, id, []byte("hello"))
	if err != nil {
		t.Fatalf("OpenChannel failed: %v", err)
	}
	if !accept.Accepted || accept.Message != nil {
		t.Errorf("expected accepted with no message, got %+v", accept)
	}
	if err := rt.ChannelMessage(ctx, id, "ch-1", []byte("data")); err != nil {
		t.Errorf("ChannelMessage failed: %v", err)
	}
	if err := rt.CloseChannel(ctx, id, "ch-1"); err != nil {
		t.Errorf("CloseChannel failed: %v", err)
	}
	if got := actorStatus(t, rt, id).Status; got != models.ActorStatusRunning {
		t.Errorf("expected running, got %s", got)
	}
}
