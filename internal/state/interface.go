// Package state provides SQLite-based persistence for the local actor host.
package state

import (
	"io"

	"github.com/ShayCichocki/taskmgr/pkg/models"
)

// ActorStore handles actor-related persistence operations.
type ActorStore interface {
	CreateActor(a *models.Actor) error
	GetActor(id string) (*models.Actor, error)
	UpdateActor(a *models.Actor) error
	ListActors(kind *models.ActorKind) ([]models.Actor, error)
	ListChildren(parentID string) ([]models.Actor, error)
}

// MailboxStore handles actor mailboxes.
type MailboxStore interface {
	EnqueueMessage(m *Message) error
	ListMessages(actorID string) ([]Message, error)
}

// EventStore handles lifecycle events.
type EventStore interface {
	RecordEvent(e *Event) error
	ListEvents(actorID string, limit int) ([]Event, error)
}

// Migrator handles database schema migrations.
// Separating this allows clients to depend only on migration functionality.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// Store defines the interface for actor persistence.
// This interface allows the host to work with any state backend
// without depending on the concrete SQLite implementation.
type Store interface {
	io.Closer
	Migrator
	ActorStore
	MailboxStore
	EventStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ Store        = (*DB)(nil)
	_ Migrator     = (*DB)(nil)
	_ ActorStore   = (*DB)(nil)
	_ MailboxStore = (*DB)(nil)
	_ EventStore   = (*DB)(nil)
)
