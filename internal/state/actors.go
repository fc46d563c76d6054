package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ShayCichocki/taskmgr/pkg/models"
)

// ErrActorNotFound is returned when an actor id is unknown.
var ErrActorNotFound = errors.New("actor not found")

const actorColumns = `id, kind, parent_id, manifest, status, state, reason, created_at, updated_at`

// CreateActor inserts a new actor record. Zero timestamps are set to now.
func (db *DB) CreateActor(a *models.Actor) error {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	_, err := db.Exec(`
		INSERT INTO actors (`+actorColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, string(a.Kind), nullString(a.ParentID), a.Manifest, string(a.Status), a.State, a.Reason,
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create actor: %w", err)
	}
	return nil
}

// GetActor retrieves an actor by ID.
func (db *DB) GetActor(id string) (*models.Actor, error) {
	row := db.QueryRow(`SELECT `+actorColumns+` FROM actors WHERE id = ?`, id)

	a, err := scanActor(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrActorNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get actor: %w", err)
	}
	return a, nil
}

// UpdateActor writes the mutable fields of an actor and bumps UpdatedAt.
func (db *DB) UpdateActor(a *models.Actor) error {
	a.UpdatedAt = time.Now()
	result, err := db.Exec(`
		UPDATE actors SET status = ?, state = ?, reason = ?, updated_at = ?
		WHERE id = ?
	`, string(a.Status), a.State, a.Reason, formatTime(a.UpdatedAt), a.ID)
	if err != nil {
		return fmt.Errorf("update actor: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update actor: %w: %s", ErrActorNotFound, a.ID)
	}
	return nil
}

// ListActors lists actors, optionally filtered by kind, oldest first.
func (db *DB) ListActors(kind *models.ActorKind) ([]models.Actor, error) {
	var rows *sql.Rows
	var err error

	if kind != nil {
		rows, err = db.Query(`SELECT `+actorColumns+` FROM actors WHERE kind = ? ORDER BY created_at, id`, string(*kind))
	} else {
		rows, err = db.Query(`SELECT ` + actorColumns + ` FROM actors ORDER BY created_at, id`)
	}
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	return collectActors(rows)
}

// ListChildren lists the actors supervised by parentID.
func (db *DB) ListChildren(parentID string) ([]models.Actor, error) {
	rows, err := db.Query(`SELECT `+actorColumns+` FROM actors WHERE parent_id = ? ORDER BY created_at, id`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return collectActors(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActor(row rowScanner) (*models.Actor, error) {
	var a models.Actor
	var kind, status, createdAt, updatedAt string
	var parentID sql.NullString

	if err := row.Scan(&a.ID, &kind, &parentID, &a.Manifest, &status, &a.State, &a.Reason, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	a.Kind = models.ActorKind(kind)
	a.Status = models.ActorStatus(status)
	a.ParentID = parentID.String
	a.CreatedAt, _ = parseTime(createdAt)
	a.UpdatedAt, _ = parseTime(updatedAt)
	return &a, nil
}

func collectActors(rows *sql.Rows) ([]models.Actor, error) {
	defer rows.Close()

	var actors []models.Actor
	for rows.Next() {
		a, err := scanActor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan actor: %w", err)
		}
		actors = append(actors, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actors: %w", err)
	}
	return actors, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
