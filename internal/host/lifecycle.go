package host

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ShayCichocki/taskmgr/internal/orchestrator"
	"github.com/ShayCichocki/taskmgr/internal/state"
	"github.com/ShayCichocki/taskmgr/pkg/models"
)

// ExitWorker marks a worker as exited and tells its supervisor.
func (r *Runtime) ExitWorker(ctx context.Context, workerID string, data []byte) error {
	w, err := r.retireWorker(workerID, models.ActorStatusExited, "exited")
	if err != nil {
		return err
	}
	return r.notifyParent(ctx, w, state.EventChildExited, func(a *orchestrator.Actor, st []byte) ([]byte, error) {
		return a.HandleChildExit(ctx, st, workerID, data), nil
	})
}

// StopWorker marks a worker as stopped by an operator and tells its supervisor.
func (r *Runtime) StopWorker(ctx context.Context, workerID string) error {
	w, err := r.retireWorker(workerID, models.ActorStatusStopped, "stopped by operator")
	if err != nil {
		return err
	}
	return r.notifyParent(ctx, w, state.EventChildStopped, func(a *orchestrator.Actor, st []byte) ([]byte, error) {
		return a.HandleChildExternalStop(ctx, st, workerID), nil
	})
}

// FailWorker marks a worker as failed and reports the error to its
// supervisor. The supervisor's *orchestrator.WorkerError is returned.
func (r *Runtime) FailWorker(ctx context.Context, workerID string, cerr orchestrator.ChildError) error {
	w, err := r.retireWorker(workerID, models.ActorStatusFailed, string(cerr.Kind))
	if err != nil {
		return err
	}
	return r.notifyParent(ctx, w, state.EventChildError, func(a *orchestrator.Actor, st []byte) ([]byte, error) {
		return a.HandleChildError(ctx, st, workerID, cerr)
	})
}

func (r *Runtime) retireWorker(id string, status models.ActorStatus, reason string) (*models.Actor, error) {
	unlock := r.lock(id)
	defer unlock()

	w, err := r.store.GetActor(id)
	if err != nil {
		r.forget(id)
		return nil, err
	}
	if w.Kind != models.ActorKindWorker {
		return nil, fmt.Errorf("%w: %s is a %s", ErrWrongKind, id, w.Kind)
	}
	if w.Status.Terminal() {
		r.forget(id)
		return nil, fmt.Errorf("%w: %s is %s", ErrActorTerminated, id, w.Status)
	}

	w.Status = status
	w.Reason = reason
	if err := r.store.UpdateActor(w); err != nil {
		return nil, err
	}
	r.forget(id)
	return w, nil
}

// notifyParent delivers a child event. A supervisor that already left the
// running state has nobody left to tell.
func (r *Runtime) notifyParent(ctx context.Context, w *models.Actor, ev state.EventType,
	fn func(a *orchestrator.Actor, st []byte) ([]byte, error)) error {
	if w.ParentID == "" {
		return nil
	}
	err := r.call(ctx, w.ParentID, ev, w.ID, fn)
	if errors.Is(err, ErrActorTerminated) {
		r.logger.Debug("supervisor not running, dropping child event",
			zap.String("actor_id", w.ParentID), zap.String("child_id", w.ID), zap.String("event", string(ev)))
		return nil
	}
	return err
}

// Recover redelivers worker exits and failures that never reached their
// supervisor, e.g. because the host stopped in between. It returns the
// number of events delivered.
func (r *Runtime) Recover(ctx context.Context) (int, error) {
	orphans, err := state.NewRecoveryManager(r.store).FindOrphans()
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, o := range orphans {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		workerID := o.WorkerID

		switch o.WorkerStatus {
		case models.ActorStatusExited:
			err = r.call(ctx, o.OrchestratorID, state.EventChildExited, workerID, func(a *orchestrator.Actor, st []byte) ([]byte, error) {
				return a.HandleChildExit(ctx, st, workerID, nil), nil
			})
		case models.ActorStatusFailed:
			cerr := orchestrator.ChildError{Kind: orchestrator.ErrorKind(o.Reason)}
			err = r.call(ctx, o.OrchestratorID, state.EventChildError, workerID, func(a *orchestrator.Actor, st []byte) ([]byte, error) {
				return a.HandleChildError(ctx, st, workerID, cerr)
			})
		default:
			// An operator stop does not change the supervisor.
			continue
		}

		var workerErr *orchestrator.WorkerError
		if err != nil && !errors.As(err, &workerErr) {
			return delivered, fmt.Errorf("recover %s: %w", o.OrchestratorID, err)
		}
		r.logger.Info("recovered child event",
			zap.String("actor_id", o.OrchestratorID), zap.String("child_id", workerID), zap.String("status", string(o.WorkerStatus)))
		delivered++
	}
	return delivered, nil
}
