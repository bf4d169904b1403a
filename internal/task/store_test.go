package task

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/taskdeck/taskdeck/internal/api"
)

// fakeBackend is an in-memory Backend that assigns ids and timestamps the
// way the real server does. calls counts every network-shaped method hit.
type fakeBackend struct {
	nextID int64
	tasks  []api.Task
	calls  int
	err    error // when set, every method fails with it
}

func (f *fakeBackend) find(taskID string) int {
	id, err := strconv.ParseInt(taskID, 10, 64)
	if err != nil {
		return -1
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeBackend) ListTasks(ctx context.Context, userID string) ([]api.Task, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]api.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *fakeBackend) CreateTask(ctx context.Context, userID string, in api.CreateTaskInput) (api.Task, error) {
	f.calls++
	if f.err != nil {
		return api.Task{}, f.err
	}
	f.nextID++
	now := time.Now().UTC()
	t := api.Task{
		ID:          f.nextID,
		Title:       in.Title,
		Description: in.Description,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeBackend) UpdateTask(ctx context.Context, userID, taskID string, in api.UpdateTaskInput) (api.Task, error) {
	f.calls++
	if f.err != nil {
		return api.Task{}, f.err
	}
	i := f.find(taskID)
	if i < 0 {
		return api.Task{}, &api.ProtocolError{StatusCode: 404, Detail: "Task not found"}
	}
	if in.Title != nil {
		f.tasks[i].Title = *in.Title
	}
	if in.Description != nil {
		f.tasks[i].Description = *in.Description
	}
	if in.Completed != nil {
		f.tasks[i].Completed = *in.Completed
	}
	f.tasks[i].UpdatedAt = time.Now().UTC()
	return f.tasks[i], nil
}

func (f *fakeBackend) ToggleComplete(ctx context.Context, userID, taskID string) (api.Task, error) {
	f.calls++
	if f.err != nil {
		return api.Task{}, f.err
	}
	i := f.find(taskID)
	if i < 0 {
		return api.Task{}, &api.ProtocolError{StatusCode: 404, Detail: "Task not found"}
	}
	f.tasks[i].Completed = !f.tasks[i].Completed
	f.tasks[i].UpdatedAt = time.Now().UTC()
	return f.tasks[i], nil
}

func (f *fakeBackend) DeleteTask(ctx context.Context, userID, taskID string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if i := f.find(taskID); i >= 0 {
		f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	}
	return nil
}

func newTestStore(t *testing.T) (*Store, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	s, err := NewStore(backend, "u1")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s, backend
}

// checkInvariant asserts pending + completed == len(list).
func checkInvariant(t *testing.T, s *Store) {
	t.Helper()
	pending, completed := s.Counts()
	if pending+completed != s.Len() {
		t.Fatalf("counter invariant broken: pending %d + completed %d != %d tasks",
			pending, completed, s.Len())
	}
	if pending < 0 || completed < 0 {
		t.Fatalf("negative counter: pending %d, completed %d", pending, completed)
	}
}

func TestNewStoreRequiresUserID(t *testing.T) {
	if _, err := NewStore(&fakeBackend{}, ""); !errors.Is(err, api.ErrNoUserID) {
		t.Errorf("NewStore with empty user id: got error %v, want ErrNoUserID", err)
	}
}

func TestRefreshReplacesAndRecounts(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	backend.tasks = []api.Task{
		{ID: 1, Title: "a", Completed: false, UserID: "u1"},
		{ID: 2, Title: "b", Completed: true, UserID: "u1"},
		{ID: 3, Title: "c", Completed: false, UserID: "u1"},
	}
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if s.Len() != 3 {
		t.Errorf("Len: got %d, want 3", s.Len())
	}
	pending, completed := s.Counts()
	if pending != 2 || completed != 1 {
		t.Errorf("counts: got pending %d completed %d, want 2/1", pending, completed)
	}
	checkInvariant(t, s)
}

func TestRefreshEmptyListZeroesCounters(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	// Start with stale state, then refresh against an empty server.
	backend.tasks = []api.Task{{ID: 1, Title: "a", UserID: "u1"}}
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	backend.tasks = nil
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("second Refresh failed: %v", err)
	}

	if s.Len() != 0 {
		t.Errorf("Len: got %d, want 0", s.Len())
	}
	pending, completed := s.Counts()
	if pending != 0 || completed != 0 {
		t.Errorf("counts: got pending %d completed %d, want 0/0", pending, completed)
	}
}

func TestCreatePrependsAndBumpsPending(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, "older", ""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	created, err := s.Create(ctx, "Buy milk", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.Completed {
		t.Error("new task reported completed")
	}
	if created.OwnerID != "u1" {
		t.Errorf("owner: got %q, want u1", created.OwnerID)
	}
	tasks := s.Tasks()
	if len(tasks) != 2 || tasks[0].Title != "Buy milk" {
		t.Errorf("list head: got %+v, want Buy milk first", tasks)
	}
	pending, completed := s.Counts()
	if pending != 2 || completed != 0 {
		t.Errorf("counts: got pending %d completed %d, want 2/0", pending, completed)
	}
	checkInvariant(t, s)
}

func TestToggleMovesOneUnitBetweenCounters(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "Buy milk", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	toggled, err := s.Toggle(ctx, created.ID)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !toggled.Completed {
		t.Error("Completed after toggle: got false, want true")
	}
	pending, completed := s.Counts()
	if pending != 0 || completed != 1 {
		t.Errorf("counts after toggle: got pending %d completed %d, want 0/1", pending, completed)
	}
	checkInvariant(t, s)

	// Toggling twice returns flag and counters to their original values.
	back, err := s.Toggle(ctx, created.ID)
	if err != nil {
		t.Fatalf("second Toggle failed: %v", err)
	}
	if back.Completed {
		t.Error("Completed after double toggle: got true, want false")
	}
	pending, completed = s.Counts()
	if pending != 1 || completed != 0 {
		t.Errorf("counts after double toggle: got pending %d completed %d, want 1/0", pending, completed)
	}
	checkInvariant(t, s)
}

func TestUpdateFieldsLeavesCountersAlone(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "old title", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	title := "new title"
	updated, err := s.Update(ctx, created.ID, api.UpdateTaskInput{Title: &title})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "new title" {
		t.Errorf("title: got %q, want new title", updated.Title)
	}
	got, ok := s.Get(created.ID)
	if !ok || got.Title != "new title" {
		t.Errorf("local copy: got %+v, want replaced title", got)
	}
	pending, completed := s.Counts()
	if pending != 1 || completed != 0 {
		t.Errorf("counts: got pending %d completed %d, want 1/0", pending, completed)
	}
}

func TestUpdateFlippingCompletedMovesCounters(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "t", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	done := true
	if _, err := s.Update(ctx, created.ID, api.UpdateTaskInput{Completed: &done}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	pending, completed := s.Counts()
	if pending != 0 || completed != 1 {
		t.Errorf("counts: got pending %d completed %d, want 0/1", pending, completed)
	}

	undone := false
	if _, err := s.Update(ctx, created.ID, api.UpdateTaskInput{Completed: &undone}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	pending, completed = s.Counts()
	if pending != 1 || completed != 0 {
		t.Errorf("counts: got pending %d completed %d, want 1/0", pending, completed)
	}
	checkInvariant(t, s)
}

func TestDeleteDecrementsMatchingCounter(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a, _ := s.Create(ctx, "a", "")
	b, _ := s.Create(ctx, "b", "")
	if _, err := s.Toggle(ctx, b.ID); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	if err := s.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	pending, completed := s.Counts()
	if pending != 1 || completed != 0 {
		t.Errorf("counts: got pending %d completed %d, want 1/0", pending, completed)
	}
	if _, ok := s.Get(b.ID); ok {
		t.Error("deleted task still present")
	}
	if _, ok := s.Get(a.ID); !ok {
		t.Error("unrelated task removed")
	}
	checkInvariant(t, s)
}

func TestDeleteUnknownIDLeavesCountersUnchanged(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, "a", ""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.Delete(ctx, "9999"); err != nil {
		t.Fatalf("Delete of unknown id failed: %v", err)
	}
	pending, completed := s.Counts()
	if pending != 1 || completed != 0 {
		t.Errorf("counts: got pending %d completed %d, want 1/0", pending, completed)
	}

	// Deleting from an empty store never drives a counter below zero.
	empty, _ := newTestStore(t)
	if err := empty.Delete(ctx, "1"); err != nil {
		t.Fatalf("Delete on empty store failed: %v", err)
	}
	pending, completed = empty.Counts()
	if pending != 0 || completed != 0 {
		t.Errorf("counts on empty store: got pending %d completed %d, want 0/0", pending, completed)
	}
}

func TestFailedMutationLeavesStateUntouched(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "a", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	before := s.Tasks()
	beforePending, beforeCompleted := s.Counts()

	backend.err = fmt.Errorf("server down")
	if _, err := s.Toggle(ctx, created.ID); err == nil {
		t.Fatal("Toggle: expected error, got nil")
	}
	if _, err := s.Create(ctx, "b", ""); err == nil {
		t.Fatal("Create: expected error, got nil")
	}
	if err := s.Delete(ctx, created.ID); err == nil {
		t.Fatal("Delete: expected error, got nil")
	}

	after := s.Tasks()
	if len(after) != len(before) || after[0] != before[0] {
		t.Errorf("list changed after failed mutations: %+v vs %+v", after, before)
	}
	pending, completed := s.Counts()
	if pending != beforePending || completed != beforeCompleted {
		t.Errorf("counters changed after failed mutations: got %d/%d, want %d/%d",
			pending, completed, beforePending, beforeCompleted)
	}
}

func TestCounterSumInvariantAcrossSequence(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		created, err := s.Create(ctx, fmt.Sprintf("task %d", i), "")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		ids = append(ids, created.ID)
		checkInvariant(t, s)
	}
	for _, id := range []string{ids[0], ids[2], ids[4]} {
		if _, err := s.Toggle(ctx, id); err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
		checkInvariant(t, s)
	}
	for _, id := range []string{ids[1], ids[2]} {
		if err := s.Delete(ctx, id); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		checkInvariant(t, s)
	}
	if _, err := s.Toggle(ctx, ids[0]); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	checkInvariant(t, s)

	pending, completed := s.Counts()
	if pending != 2 || completed != 1 {
		t.Errorf("final counts: got pending %d completed %d, want 2/1", pending, completed)
	}
}

// blockingBackend lets a test hold a toggle call in flight.
type blockingBackend struct {
	fakeBackend
	started chan struct{}
	release chan struct{}
}

func (b *blockingBackend) ToggleComplete(ctx context.Context, userID, taskID string) (api.Task, error) {
	close(b.started)
	<-b.release
	return b.fakeBackend.ToggleComplete(ctx, userID, taskID)
}

func TestPerTaskBusyGuard(t *testing.T) {
	backend := &blockingBackend{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s, err := NewStore(backend, "u1")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	ctx := context.Background()

	created, err := s.Create(ctx, "a", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Toggle(ctx, created.ID)
		done <- err
	}()

	<-backend.started
	if !s.Busy(created.ID) {
		t.Error("Busy: got false for in-flight task")
	}
	if _, err := s.Toggle(ctx, created.ID); !errors.Is(err, ErrTaskBusy) {
		t.Errorf("second Toggle: got error %v, want ErrTaskBusy", err)
	}

	close(backend.release)
	if err := <-done; err != nil {
		t.Fatalf("first Toggle failed: %v", err)
	}
	if s.Busy(created.ID) {
		t.Error("Busy: got true after operation completed")
	}
	checkInvariant(t, s)
}
