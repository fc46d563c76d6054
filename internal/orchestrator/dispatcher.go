package orchestrator

import (
	"context"
	"fmt"

	"github.com/ShayCichocki/taskmgr/internal/protocol"
	"github.com/ShayCichocki/taskmgr/pkg/models"
)

// Dispatcher answers requests and direct messages addressed to the
// orchestrator and forwards work to the worker.
type Dispatcher struct {
	host Host
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(host Host) *Dispatcher {
	return &Dispatcher{host: host}
}

// HandleSend handles a one-way direct message. Unrecognized payloads fail
// and leave state unchanged.
func (d *Dispatcher) HandleSend(ctx context.Context, state []byte, data []byte) ([]byte, error) {
	d.host.Log("Handling send message")

	st, err := DecodeState(state)
	if err != nil {
		d.host.Log(fmt.Sprintf("Cannot handle send: %v", err))
		return nil, err
	}

	msg, err := protocol.DecodeDirectMessage(data)
	if err != nil {
		d.host.Log(fmt.Sprintf("Rejected direct message: %v", err))
		return state, err
	}

	switch msg.Type {
	case protocol.DirectTaskComplete:
		if msg.Summary != "" {
			d.host.Log(fmt.Sprintf("Task completed: %s", msg.Summary))
		} else {
			d.host.Log("Task completed")
		}
		if !st.Policy.AutoExitOnCompletion {
			return state, nil
		}
		if err := d.host.RequestShutdown(ctx, "task completed"); err != nil {
			return state, fmt.Errorf("failed to request shutdown: %w", err)
		}
	}
	return state, nil
}

// HandleRequest handles a request and always produces a response. The
// returned state is the input state; requests never mutate it. When the
// state cannot be decoded no state is returned.
func (d *Dispatcher) HandleRequest(ctx context.Context, state []byte, requestID string, data []byte) ([]byte, []byte) {
	st, err := DecodeState(state)
	if err != nil {
		d.host.Log(fmt.Sprintf("Request %s: %v", requestID, err))
		return nil, protocol.Error(err.Error()).Encode()
	}

	req, err := protocol.DecodeRequest(data)
	if err != nil {
		d.host.Log(fmt.Sprintf("Request %s: %v", requestID, err))
		return state, protocol.Error(err.Error()).Encode()
	}
	d.host.Log(fmt.Sprintf("Handling request %s: %s", requestID, req.Type))

	var resp protocol.Response
	switch req.Type {
	case protocol.RequestQueryWorkerID:
		resp = d.queryWorkerID(st)
	case protocol.RequestAddMessage:
		resp = d.addMessage(ctx, st, *req.Message)
	case protocol.RequestStartSession:
		resp = d.startSession(ctx, st)
	default:
		resp = protocol.Errorf("unsupported request type: %s", req.Type)
	}
	return state, resp.Encode()
}

func (d *Dispatcher) queryWorkerID(st *State) protocol.Response {
	id, err := st.Worker()
	if err != nil {
		return protocol.Error(err.Error())
	}
	return protocol.WorkerID(id)
}

func (d *Dispatcher) addMessage(ctx context.Context, st *State, msg models.Message) protocol.Response {
	if err := d.forward(ctx, st, msg); err != nil {
		d.host.Log(err.Error())
		return protocol.Error(err.Error())
	}
	return protocol.Success()
}

func (d *Dispatcher) startSession(ctx context.Context, st *State) protocol.Response {
	if st.InitialMessage == nil {
		d.host.Log("No initial message configured")
		return protocol.Success()
	}

	d.host.Log("Sending initial message to chat state actor")
	err := d.forward(ctx, st, models.NewTextMessage(models.RoleUser, *st.InitialMessage))
	if err == nil {
		return protocol.Success()
	}
	if st.Policy.StrictInitiation {
		d.host.Log(err.Error())
		return protocol.Error(err.Error())
	}
	d.host.Log(fmt.Sprintf("Ignoring initial message failure: %v", err))
	return protocol.Success()
}

// forward appends msg to the worker's history and, when pairing is
// enabled, asks for a completion. The second send is never issued if the
// first fails.
func (d *Dispatcher) forward(ctx context.Context, st *State, msg models.Message) error {
	workerID, err := st.Worker()
	if err != nil {
		return err
	}

	data, err := protocol.AppendMessage(msg).Encode()
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}
	if err := d.host.Send(ctx, workerID, data); err != nil {
		return fmt.Errorf("failed to send message to chat state actor: %w", err)
	}

	if !st.Policy.PairGeneration {
		return nil
	}
	data, err = protocol.GenerateCompletion().Encode()
	if err != nil {
		return fmt.Errorf("failed to serialize completion request: %w", err)
	}
	if err := d.host.Send(ctx, workerID, data); err != nil {
		return fmt.Errorf("failed to request completion from chat state actor: %w", err)
	}
	return nil
}

// HandleChannelOpen accepts every channel.
func (d *Dispatcher) HandleChannelOpen(state []byte, data []byte) ([]byte, ChannelAccept) {
	d.host.Log("Channel open requested")
	return state, ChannelAccept{Accepted: true}
}

// HandleChannelClose is an observability hook.
func (d *Dispatcher) HandleChannelClose(state []byte, channelID string) []byte {
	d.host.Log(fmt.Sprintf("Channel closed: %s", channelID))
	return state
}

// HandleChannelMessage is an observability hook.
func (d *Dispatcher) HandleChannelMessage(state []byte, channelID string, data []byte) []byte {
	d.host.Log(fmt.Sprintf("Channel message on %s (%d bytes)", channelID, len(data)))
	return state
}
