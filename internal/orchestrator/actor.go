package orchestrator

import (
	"context"
	"fmt"

	"github.com/ShayCichocki/taskmgr/internal/taskconfig"
)

// Actor is the orchestrator composition root. Each method is one host entry
// point; the host serializes calls per actor.
type Actor struct {
	host              Host
	chatStateManifest string
	deriver           *taskconfig.Deriver
	dispatcher        *Dispatcher
	monitor           *Monitor
}

// New creates an Actor.
func New(req RequiredConfig, opts ...Option) *Actor {
	o := &actorOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.deriver == nil {
		o.deriver = taskconfig.NewDeriver(nil, taskconfig.DefaultSettings())
	}
	return &Actor{
		host:              req.Host,
		chatStateManifest: req.ChatStateManifest,
		deriver:           o.deriver,
		dispatcher:        NewDispatcher(req.Host),
		monitor:           NewMonitor(req.Host),
	}
}

// Init creates the orchestrator: it derives the worker configuration from
// params, spawns the worker and returns the initial state. A malformed
// params payload falls back to defaults. Spawn failure is fatal.
func (a *Actor) Init(ctx context.Context, params []byte, selfID string) ([]byte, error) {
	a.host.Log(fmt.Sprintf("Initializing task orchestrator %s", selfID))

	create, err := taskconfig.ParseCreateParams(params)
	if err != nil {
		a.host.Log(fmt.Sprintf("Failed to parse initial configuration, using defaults: %v", err))
		create = &taskconfig.CreateParams{}
	}

	plan, err := a.deriver.Plan(selfID, create)
	if err != nil {
		return nil, fmt.Errorf("failed to derive configuration: %w", err)
	}
	doc, err := plan.Document.Encode()
	if err != nil {
		return nil, err
	}

	workerID, err := a.host.Spawn(ctx, a.chatStateManifest, doc)
	if err != nil {
		a.host.Log(fmt.Sprintf("Failed to spawn chat state actor: %v", err))
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	st := NewState(selfID, doc, plan)
	if err := st.SetWorker(workerID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}
	a.host.Log(fmt.Sprintf("Chat state actor spawned: %s", workerID))

	return EncodeState(st)
}

// HandleChildError always fails with a *WorkerError.
func (a *Actor) HandleChildError(ctx context.Context, state []byte, childID string, cerr ChildError) ([]byte, error) {
	return a.monitor.ChildError(ctx, state, childID, cerr)
}

// HandleChildExit requests shutdown when the supervised worker exits.
func (a *Actor) HandleChildExit(ctx context.Context, state []byte, childID string, exitData []byte) []byte {
	return a.monitor.ChildExit(ctx, state, childID, exitData)
}

// HandleChildExternalStop logs an operator stop.
func (a *Actor) HandleChildExternalStop(ctx context.Context, state []byte, childID string) []byte {
	return a.monitor.ChildExternalStop(ctx, state, childID)
}

// HandleSend handles a one-way direct message.
func (a *Actor) HandleSend(ctx context.Context, state []byte, data []byte) ([]byte, error) {
	return a.dispatcher.HandleSend(ctx, state, data)
}

// HandleRequest handles a request and returns the encoded response.
func (a *Actor) HandleRequest(ctx context.Context, state []byte, requestID string, data []byte) ([]byte, []byte) {
	return a.dispatcher.HandleRequest(ctx, state, requestID, data)
}

// HandleChannelOpen always accepts.
func (a *Actor) HandleChannelOpen(ctx context.Context, state []byte, data []byte) ([]byte, ChannelAccept) {
	return a.dispatcher.HandleChannelOpen(state, data)
}

// HandleChannelClose logs the close.
func (a *Actor) HandleChannelClose(ctx context.Context, state []byte, channelID string) []byte {
	return a.dispatcher.HandleChannelClose(state, channelID)
}

// HandleChannelMessage logs the message.
func (a *Actor) HandleChannelMessage(ctx context.Context, state []byte, channelID string, data []byte) []byte {
	return a.dispatcher.HandleChannelMessage(state, channelID, data)
}
