// Package task owns the canonical in-memory task list for a session and
// keeps the derived pending/completed counters consistent with it.
package task

import (
	"strconv"
	"time"

	"github.com/taskdeck/taskdeck/internal/api"
)

// Task is the client-canonical form of a to-do item. The backend's numeric
// id is converted to a string once at the wire boundary and treated as
// opaque afterwards.
type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FromWire converts a backend task into its canonical form.
func FromWire(w api.Task) Task {
	return Task{
		ID:          strconv.FormatInt(w.ID, 10),
		Title:       w.Title,
		Description: w.Description,
		Completed:   w.Completed,
		OwnerID:     w.UserID,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}
