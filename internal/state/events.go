package state

import (
	"fmt"
	"time"
)

// EventType is the kind of lifecycle event recorded for an actor.
type EventType string

const (
	EventCreated           EventType = "created"
	EventSpawned           EventType = "spawned"
	EventRequest           EventType = "request"
	EventDirectMessage     EventType = "direct_message"
	EventShutdownRequested EventType = "shutdown_requested"
	EventChildExited       EventType = "child_exited"
	EventChildStopped      EventType = "child_stopped"
	EventChildError        EventType = "child_error"
	EventFailed            EventType = "failed"
	EventStateDiscarded    EventType = "state_discarded"
	EventChannel           EventType = "channel"
	EventLog               EventType = "log"
)

// Event is a lifecycle record.
type Event struct {
	ID        int64     `json:"id"`
	ActorID   string    `json:"actor_id"`
	Type      EventType `json:"type"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordEvent appends an event.
func (db *DB) RecordEvent(e *Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	result, err := db.Exec(`
		INSERT INTO events (actor_id, type, detail, created_at)
		VALUES (?, ?, ?, ?)
	`, e.ActorID, string(e.Type), e.Detail, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		e.ID = id
	}
	return nil
}

// ListEvents returns an actor's most recent events, oldest first. A limit
// of zero or less returns all of them.
func (db *DB) ListEvents(actorID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`
		SELECT id, actor_id, type, detail, created_at FROM (
			SELECT * FROM events WHERE actor_id = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id
	`, actorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var typ, createdAt string
		if err := rows.Scan(&e.ID, &e.ActorID, &typ, &e.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Type = EventType(typ)
		e.CreatedAt, _ = parseTime(createdAt)
		events = append(events, e)
	}
	return events, rows.Err()
}
