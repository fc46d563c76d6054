package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type sentMessage struct {
	to   string
	data []byte
}

// fakeHost records every host call. failSendAt makes the Nth send (1-based)
// fail; zero means sends never fail.
type fakeHost struct {
	spawnID    string
	spawnErr   error
	spawned    [][]byte
	manifests  []string
	sent       []sentMessage
	sendCount  int
	failSendAt int
	logs       []string
	shutdowns  []string
}

func newFakeHost() *fakeHost {
	return &fakeHost{spawnID: "worker-1"}
}

func (h *fakeHost) Spawn(ctx context.Context, manifest string, init []byte) (string, error) {
	h.manifests = append(h.manifests, manifest)
	h.spawned = append(h.spawned, init)
	if h.spawnErr != nil {
		return "", h.spawnErr
	}
	return h.spawnID, nil
}

func (h *fakeHost) Send(ctx context.Context, actorID string, data []byte) error {
	h.sendCount++
	if h.failSendAt != 0 && h.sendCount == h.failSendAt {
		return errors.New("mailbox unavailable")
	}
	h.sent = append(h.sent, sentMessage{to: actorID, data: data})
	return nil
}

func (h *fakeHost) Log(msg string) {
	h.logs = append(h.logs, msg)
}

func (h *fakeHost) RequestShutdown(ctx context.Context, reason string) error {
	h.shutdowns = append(h.shutdowns, reason)
	return nil
}

func (h *fakeHost) logged(substr string) bool {
	for _, l := range h.logs {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func (h *fakeHost) sentTypes() []string {
	types := make([]string, 0, len(h.sent))
	for _, m := range h.sent {
		s := string(m.data)
		switch {
		case strings.Contains(s, `"type":"add_message"`):
			types = append(types, "add_message")
		case strings.Contains(s, `"type":"generate_completion"`):
			types = append(types, "generate_completion")
		default:
			types = append(types, fmt.Sprintf("unknown(%s)", s))
		}
	}
	return types
}
