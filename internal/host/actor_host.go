package host

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ShayCichocki/taskmgr/internal/orchestrator"
	"github.com/ShayCichocki/taskmgr/internal/state"
	"github.com/ShayCichocki/taskmgr/pkg/models"
)

// actorHost binds the host ports to one calling actor for the duration of
// a single entry point.
type actorHost struct {
	rt   *Runtime
	self string

	shutdown       bool
	shutdownReason string
}

var _ orchestrator.Host = (*actorHost)(nil)

func (r *Runtime) hostFor(id string) *actorHost {
	return &actorHost{rt: r, self: id}
}

// Spawn records a running worker supervised by the calling actor. The init
// bytes become the worker's state.
func (h *actorHost) Spawn(ctx context.Context, manifest string, init []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := h.rt.newID()
	w := &models.Actor{
		ID:       id,
		Kind:     models.ActorKindWorker,
		ParentID: h.self,
		Manifest: manifest,
		Status:   models.ActorStatusRunning,
		State:    init,
	}
	if err := h.rt.store.CreateActor(w); err != nil {
		return "", fmt.Errorf("spawn %s: %w", manifest, err)
	}
	h.rt.record(h.self, state.EventSpawned, id)
	return id, nil
}

// Send appends data to a running actor's mailbox.
func (h *actorHost) Send(ctx context.Context, actorID string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := h.rt.store.GetActor(actorID)
	if err != nil {
		return err
	}
	if target.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrActorTerminated, actorID, target.Status)
	}
	return h.rt.store.EnqueueMessage(&state.Message{ActorID: actorID, SenderID: h.self, Payload: data})
}

func (h *actorHost) Log(msg string) {
	h.rt.logger.Info(msg, zap.String("actor_id", h.self))
	h.rt.record(h.self, state.EventLog, msg)
}

// RequestShutdown is applied once the entry point returns, together with the
// state it produced.
func (h *actorHost) RequestShutdown(ctx context.Context, reason string) error {
	h.shutdown = true
	h.shutdownReason = reason
	return nil
}
