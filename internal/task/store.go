package task

import (
	"context"
	"errors"
	"sync"

	"github.com/taskdeck/taskdeck/internal/api"
)

// ErrTaskBusy is returned when an operation targets a task that already
// has a call in flight. Operations on distinct tasks may overlap freely.
var ErrTaskBusy = errors.New("task has an operation in flight")

// Backend is the slice of the API client the store depends on.
type Backend interface {
	ListTasks(ctx context.Context, userID string) ([]api.Task, error)
	CreateTask(ctx context.Context, userID string, in api.CreateTaskInput) (api.Task, error)
	UpdateTask(ctx context.Context, userID, taskID string, in api.UpdateTaskInput) (api.Task, error)
	ToggleComplete(ctx context.Context, userID, taskID string) (api.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) error
}

// Store holds the canonical ordered task list for one user together with
// the two derived counters. Every mutation round-trips to the backend
// first and reconciles locally only on success, so a failed call leaves
// both list and counters untouched. Counters are maintained incrementally;
// Refresh is the only full recount.
//
// A Store is bound to a single user for its whole lifetime. Switching
// sessions means constructing a new Store, which is what discards the
// previous user's tasks.
type Store struct {
	backend Backend
	userID  string

	mu        sync.Mutex
	tasks     []Task
	pending   int
	completed int
	busy      map[string]bool
}

// NewStore creates a store for the given user. The user id must already
// be resolved: an empty id means the session is unusable and no store
// (and therefore no network call) can exist for it.
func NewStore(backend Backend, userID string) (*Store, error) {
	if userID == "" {
		return nil, api.ErrNoUserID
	}
	return &Store{
		backend: backend,
		userID:  userID,
		busy:    make(map[string]bool),
	}, nil
}

// UserID returns the owning user's id.
func (s *Store) UserID() string {
	return s.userID
}

// Refresh replaces the canonical list wholesale with the backend's view
// and recomputes both counters from scratch.
func (s *Store) Refresh(ctx context.Context) error {
	wire, err := s.backend.ListTasks(ctx, s.userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make([]Task, 0, len(wire))
	s.pending, s.completed = 0, 0
	for _, w := range wire {
		t := FromWire(w)
		s.tasks = append(s.tasks, t)
		if t.Completed {
			s.completed++
		} else {
			s.pending++
		}
	}
	return nil
}

// Create posts a new task and prepends the server's copy to the list,
// bumping the counter matching its completion flag.
func (s *Store) Create(ctx context.Context, title, description string) (Task, error) {
	wire, err := s.backend.CreateTask(ctx, s.userID, api.CreateTaskInput{
		Title:       title,
		Description: description,
	})
	if err != nil {
		return Task{}, err
	}
	t := FromWire(wire)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]Task{t}, s.tasks...)
	if t.Completed {
		s.completed++
	} else {
		s.pending++
	}
	return t, nil
}

// Update edits a task's fields and replaces the local copy with the
// server's response. An edit that flips the completion flag moves one
// unit between the counters; other edits leave them alone.
func (s *Store) Update(ctx context.Context, id string, in api.UpdateTaskInput) (Task, error) {
	if err := s.beginOp(id); err != nil {
		return Task{}, err
	}
	defer s.endOp(id)

	wire, err := s.backend.UpdateTask(ctx, s.userID, id, in)
	if err != nil {
		return Task{}, err
	}
	t := FromWire(wire)
	s.replace(id, t)
	return t, nil
}

// Toggle flips a task's completion state through the backend and replaces
// the local copy with the returned state, moving one unit from the old
// state's counter to the new state's.
func (s *Store) Toggle(ctx context.Context, id string) (Task, error) {
	if err := s.beginOp(id); err != nil {
		return Task{}, err
	}
	defer s.endOp(id)

	wire, err := s.backend.ToggleComplete(ctx, s.userID, id)
	if err != nil {
		return Task{}, err
	}
	t := FromWire(wire)
	s.replace(id, t)
	return t, nil
}

// Delete removes a task server-side, then locally, decrementing the
// counter matching the deleted task's state (clamped at zero). Deleting
// an id not held locally leaves list and counters unchanged.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.beginOp(id); err != nil {
		return err
	}
	defer s.endOp(id)

	if err := s.backend.DeleteTask(ctx, s.userID, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return nil
	}
	old := s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	if old.Completed {
		if s.completed > 0 {
			s.completed--
		}
	} else {
		if s.pending > 0 {
			s.pending--
		}
	}
	return nil
}

// replace swaps the task with the given id for the server's copy and
// reconciles the counters when the completion flag changed. Both the
// swap and the counter move happen under one lock acquisition, so no
// partial update is ever observable.
func (s *Store) replace(id string, t Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return
	}
	old := s.tasks[i]
	s.tasks[i] = t
	switch {
	case !old.Completed && t.Completed:
		s.pending--
		s.completed++
	case old.Completed && !t.Completed:
		s.completed--
		s.pending++
	}
}

// index returns the position of the task with the given id, or -1.
// Caller holds s.mu.
func (s *Store) index(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// beginOp marks a task as having a call in flight.
func (s *Store) beginOp(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[id] {
		return ErrTaskBusy
	}
	s.busy[id] = true
	return nil
}

func (s *Store) endOp(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, id)
}

// Busy reports whether the task has an operation in flight.
func (s *Store) Busy(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy[id]
}

// Tasks returns a copy of the canonical list in its current order.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// Len returns the size of the canonical list.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Counts returns the derived pending and completed counters.
func (s *Store) Counts() (pending, completed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, s.completed
}
