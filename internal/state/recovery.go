package state

import (
	"fmt"

	"github.com/ShayCichocki/taskmgr/pkg/models"
)

// Orphan is a running orchestrator whose worker left the running state
// without the orchestrator being told, e.g. because the host stopped
// between the two updates.
type Orphan struct {
	OrchestratorID string
	WorkerID       string
	WorkerStatus   models.ActorStatus
	Reason         string
}

// RecoveryManager handles detection of interrupted supervision.
type RecoveryManager struct {
	store ActorStore
}

// NewRecoveryManager creates a new RecoveryManager over the given store.
func NewRecoveryManager(store ActorStore) *RecoveryManager {
	return &RecoveryManager{store: store}
}

// FindOrphans lists running orchestrators with a terminated worker.
func (rm *RecoveryManager) FindOrphans() ([]Orphan, error) {
	kind := models.ActorKindOrchestrator
	orchestrators, err := rm.store.ListActors(&kind)
	if err != nil {
		return nil, fmt.Errorf("list orchestrators: %w", err)
	}

	var orphans []Orphan
	for _, o := range orchestrators {
		if o.Status != models.ActorStatusRunning {
			continue
		}
		children, err := rm.store.ListChildren(o.ID)
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", o.ID, err)
		}
		for _, c := range children {
			if c.Kind != models.ActorKindWorker || !c.Status.Terminal() {
				continue
			}
			orphans = append(orphans, Orphan{
				OrchestratorID: o.ID,
				WorkerID:       c.ID,
				WorkerStatus:   c.Status,
				Reason:         c.Reason,
			})
		}
	}
	return orphans, nil
}
