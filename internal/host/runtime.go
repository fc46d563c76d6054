// Package host is an in-process actor runtime for task orchestrators.
//
// It persists every actor's state blob in the SQLite store between calls,
// serializes entry points per actor, keeps worker mailboxes, and turns the
// orchestrator's host calls (spawn, send, log, shutdown) into store updates.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShayCichocki/taskmgr/internal/orchestrator"
	"github.com/ShayCichocki/taskmgr/internal/protocol"
	"github.com/ShayCichocki/taskmgr/internal/state"
	"github.com/ShayCichocki/taskmgr/internal/taskconfig"
	"github.com/ShayCichocki/taskmgr/pkg/models"
)

var (
	// ErrActorTerminated is returned when calling an actor that left the running state.
	ErrActorTerminated = errors.New("actor is not running")
	// ErrWrongKind is returned when an operation targets the wrong kind of actor.
	ErrWrongKind = errors.New("wrong actor kind")
)

// reasonStateDiscarded is recorded when an entry point returns no state.
const reasonStateDiscarded = "state discarded"

// Config configures a Runtime.
type Config struct {
	// Store persists actors, mailboxes and events. Required.
	Store state.Store
	// ChatStateManifest locates the conversation-state worker. Required.
	ChatStateManifest string
	// Deriver builds worker configuration. Defaults to the built-in profiles.
	Deriver *taskconfig.Deriver
	// Logger receives host and actor log lines. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Runtime hosts task orchestrators and their workers.
type Runtime struct {
	store    state.Store
	manifest string
	deriver  *taskconfig.Deriver
	logger   *zap.Logger
	newID    func() string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Runtime.
func New(cfg Config) *Runtime {
	if cfg.Deriver == nil {
		cfg.Deriver = taskconfig.NewDeriver(nil, taskconfig.DefaultSettings())
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Runtime{
		store:    cfg.Store,
		manifest: cfg.ChatStateManifest,
		deriver:  cfg.Deriver,
		logger:   cfg.Logger.Named("host"),
		newID:    uuid.NewString,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lock serializes entry points for one actor.
func (r *Runtime) lock(id string) func() {
	r.mu.Lock()
	m, ok := r.locks[id]
	if !ok {
		m = &sync.Mutex{}
		r.locks[id] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// forget drops the lock of an actor that is terminal or unknown. The
// caller holds that lock. A caller still queued on it only finds the actor
// terminated or missing and returns.
func (r *Runtime) forget(id string) {
	r.mu.Lock()
	delete(r.locks, id)
	r.mu.Unlock()
}

func (r *Runtime) actorFor(h *actorHost) *orchestrator.Actor {
	return orchestrator.New(
		orchestrator.RequiredConfig{Host: h, ChatStateManifest: r.manifest},
		orchestrator.WithDeriver(r.deriver),
	)
}

// Create starts a new orchestrator from a creation payload and returns its id.
// The orchestrator record survives a failed creation with status failed.
func (r *Runtime) Create(ctx context.Context, params []byte) (string, error) {
	id := r.newID()
	unlock := r.lock(id)
	defer unlock()

	rec := &models.Actor{
		ID:     id,
		Kind:   models.ActorKindOrchestrator,
		Status: models.ActorStatusRunning,
	}
	if err := r.store.CreateActor(rec); err != nil {
		return "", err
	}
	r.record(id, state.EventCreated, string(params))

	h := r.hostFor(id)
	st, err := r.actorFor(h).Init(ctx, params, id)
	if err != nil {
		rec.Status = models.ActorStatusFailed
		rec.Reason = err.Error()
		r.record(id, state.EventFailed, err.Error())
		if uerr := r.store.UpdateActor(rec); uerr != nil {
			r.logger.Warn("failed to record creation failure", zap.String("actor_id", id), zap.Error(uerr))
		}
		r.forget(id)
		return id, err
	}

	rec.State = st
	if err := r.store.UpdateActor(rec); err != nil {
		return id, err
	}
	r.logger.Info("orchestrator created", zap.String("actor_id", id))
	return id, nil
}

// call runs one entry point against a running orchestrator and persists the
// outcome.
func (r *Runtime) call(ctx context.Context, id string, ev state.EventType, detail string,
	fn func(a *orchestrator.Actor, st []byte) ([]byte, error)) error {
	unlock := r.lock(id)
	defer unlock()

	rec, err := r.store.GetActor(id)
	if err != nil {
		r.forget(id)
		return err
	}
	if rec.Kind != models.ActorKindOrchestrator {
		return fmt.Errorf("%w: %s is a %s", ErrWrongKind, id, rec.Kind)
	}
	if rec.Status.Terminal() {
		r.forget(id)
		return fmt.Errorf("%w: %s is %s", ErrActorTerminated, id, rec.Status)
	}

	r.record(id, ev, detail)
	h := r.hostFor(id)
	next, callErr := fn(r.actorFor(h), rec.State)
	return r.commit(rec, h, next, callErr)
}

// commit applies an entry point result. A worker failure is fatal to the
// orchestrator. A nil state leaves the stored bytes alone and fails the actor,
// since there is nothing left to resume from.
func (r *Runtime) commit(rec *models.Actor, h *actorHost, next []byte, callErr error) error {
	var workerErr *orchestrator.WorkerError
	switch {
	case errors.As(callErr, &workerErr):
		rec.Status = models.ActorStatusFailed
		rec.Reason = workerErr.Error()
		r.record(rec.ID, state.EventFailed, rec.Reason)
		r.logger.Error("orchestrator failed", zap.String("actor_id", rec.ID), zap.Error(callErr))
	case next == nil:
		rec.Status = models.ActorStatusFailed
		rec.Reason = reasonStateDiscarded
		detail := reasonStateDiscarded
		if callErr != nil {
			detail = callErr.Error()
		}
		r.record(rec.ID, state.EventStateDiscarded, detail)
		r.logger.Warn("entry point returned no state", zap.String("actor_id", rec.ID), zap.Error(callErr))
	default:
		rec.State = next
		if h.shutdown {
			rec.Status = models.ActorStatusShutdownRequested
			rec.Reason = h.shutdownReason
			r.record(rec.ID, state.EventShutdownRequested, h.shutdownReason)
		}
	}

	if err := r.store.UpdateActor(rec); err != nil {
		return err
	}
	if rec.Status.Terminal() {
		r.forget(rec.ID)
	}
	return callErr
}

// Request delivers a request and returns the encoded response.
func (r *Runtime) Request(ctx context.Context, id string, data []byte) ([]byte, error) {
	var resp []byte
	err := r.call(ctx, id, state.EventRequest, string(data), func(a *orchestrator.Actor, st []byte) ([]byte, error) {
		var next []byte
		next, resp = a.HandleRequest(ctx, st, r.newID(), data)
		return next, nil
	})
	return resp, err
}

// Send delivers a one-way message. An unrecognized message is returned as an
// error but leaves the orchestrator running.
func (r *Runtime) Send(ctx context.Context, id string, data []byte) error {
	return r.call(ctx, id, state.EventDirectMessage, string(data), func(a *orchestrator.Actor, st []byte) ([]byte, error) {
		return a.HandleSend(ctx, st, data)
	})
}

// Complete tells an orchestrator its task is finished.
func (r *Runtime) Complete(ctx context.Context, id, summary string) error {
	data, err := protocol.TaskComplete(summary).Encode()
	if err != nil {
		return err
	}
	return r.Send(ctx, id, data)
}

// OpenChannel asks an orchestrator to accept a channel.
func (r *Runtime) OpenChannel(ctx context.Context, id string, data []byte) (orchestrator.ChannelAccept, error) {
	var accept orchestrator.ChannelAccept
	err := r.call(ctx, id, state.EventChannel, "open", func(a *orchestrator.Actor, st []byte) ([]byte, error) {
		var next []byte
		next, accept = a.HandleChannelOpen(ctx, st, data)
		return next, nil
	})
	return accept, err
}

// CloseChannel notifies an orchestrator that a channel closed.
func (r *Runtime) CloseChannel(ctx context.Context, id, channelID string) error {
	return r.call(ctx, id, state.EventChannel, "close "+channelID, func(a *orchestrator.Actor, st []byte) ([]byte, error) {
		return a.HandleChannelClose(ctx, st, channelID), nil
	})
}

// ChannelMessage delivers a message received on a channel.
func (r *Runtime) ChannelMessage(ctx context.Context, id, channelID string, data []byte) error {
	return r.call(ctx, id, state.EventChannel, "message "+channelID, func(a *orchestrator.Actor, st []byte) ([]byte, error) {
		return a.HandleChannelMessage(ctx, st, channelID, data), nil
	})
}

// Actor returns an actor record.
func (r *Runtime) Actor(id string) (*models.Actor, error) {
	return r.store.GetActor(id)
}

// Actors lists actors, optionally filtered by kind.
func (r *Runtime) Actors(kind *models.ActorKind) ([]models.Actor, error) {
	return r.store.ListActors(kind)
}

// Outbox returns the messages delivered to a worker.
func (r *Runtime) Outbox(workerID string) ([]state.Message, error) {
	return r.store.ListMessages(workerID)
}

// Events returns an actor's most recent lifecycle events.
func (r *Runtime) Events(id string, limit int) ([]state.Event, error) {
	return r.store.ListEvents(id, limit)
}

func (r *Runtime) record(id string, typ state.EventType, detail string) {
	if err := r.store.RecordEvent(&state.Event{ActorID: id, Type: typ, Detail: detail}); err != nil {
		r.logger.Warn("failed to record event", zap.String("actor_id", id), zap.String("type", string(typ)), zap.Error(err))
	}
}
