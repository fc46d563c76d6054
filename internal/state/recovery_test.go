package state

import (
	"testing"

	"github.com/ShayCichocki/taskmgr/pkg/models"
)

func TestFindOrphans(t *testing.T) {
	db := setupTestDB(t)

	// Healthy pair.
	createTestActor(t, db, "orch-ok", models.ActorKindOrchestrator, "")
	createTestActor(t, db, "w-ok", models.ActorKindWorker, "orch-ok")

	// Worker exited but the orchestrator never heard about it.
	createTestActor(t, db, "orch-orphan", models.ActorKindOrchestrator, "")
	w := createTestActor(t, db, "w-dead", models.ActorKindWorker, "orch-orphan")
	w.Status = models.ActorStatusExited
	w.Reason = "done"
	if err := db.UpdateActor(w); err != nil {
		t.Fatal(err)
	}

	// Already shut down, nothing to recover.
	o := createTestActor(t, db, "orch-done", models.ActorKindOrchestrator, "")
	w2 := createTestActor(t, db, "w-done", models.ActorKindWorker, "orch-done")
	for _, a := range []*models.Actor{o, w2} {
		a.Status = models.ActorStatusShutdownRequested
		if err := db.UpdateActor(a); err != nil {
			t.Fatal(err)
		}
	}

	orphans, err := NewRecoveryManager(db).FindOrphans()
	if err != nil {
		t.Fatalf("FindOrphans failed: %v", err)
	}
	if len(orphans) != 1 {
		t.Fatalf("expected 1 orphan, got %d", len(orphans))
	}

	got := orphans[0]
	if got.OrchestratorID != "orch-orphan" || got.WorkerID != "w-dead" {
		t.Errorf("unexpected orphan %+v", got)
	}
	if got.WorkerStatus != models.ActorStatusExited {
		t.Errorf("expected status exited, got %s", got.WorkerStatus)
	}
	if got.Reason != "done" {
		t.Errorf("expected reason done, got %q", got.Reason)
	}
}

func TestFindOrphans_Empty(t *testing.T) {
	db := setupTestDB(t)

	orphans, err := NewRecoveryManager(db).FindOrphans()
	if err != nil {
		t.Fatalf("FindOrphans failed: %v", err)
	}
	if len(orphans) != 0 {
		t.Errorf("expected no orphans, got %d", len(orphans))
	}
}
