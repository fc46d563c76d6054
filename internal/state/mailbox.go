package state

import (
	"fmt"
	"time"
)

// Message is a payload delivered to an actor's mailbox.
type Message struct {
	ID        int64     `json:"id"`
	ActorID   string    `json:"actor_id"`
	SenderID  string    `json:"sender_id"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// EnqueueMessage appends a message to an actor's mailbox.
func (db *DB) EnqueueMessage(m *Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	result, err := db.Exec(`
		INSERT INTO messages (actor_id, sender_id, payload, created_at)
		VALUES (?, ?, ?, ?)
	`, m.ActorID, m.SenderID, m.Payload, formatTime(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("enqueue message: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		m.ID = id
	}
	return nil
}

// ListMessages returns an actor's mailbox in delivery order.
func (db *DB) ListMessages(actorID string) ([]Message, error) {
	rows, err := db.Query(`
		SELECT id, actor_id, sender_id, payload, created_at
		FROM messages WHERE actor_id = ? ORDER BY id
	`, actorID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		var createdAt string
		if err := rows.Scan(&m.ID, &m.ActorID, &m.SenderID, &m.Payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt, _ = parseTime(createdAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
