package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrTaskRegistered reports an attempt to register a task twice;
	// identifiers are assigned exactly once.
	ErrTaskRegistered = errors.New("task already registered")

	// ErrTaskNotFound reports a remove or lookup of an unknown identifier.
	ErrTaskNotFound = errors.New("task not found")
)

// TaskStatus is the terminal-state marker passed to StreamUpdate.
type TaskStatus string

const (
	TaskRunning TaskStatus = "running"
	TaskDone    TaskStatus = "done"
	TaskFailed  TaskStatus = "failed"
)

// Task is a long-running, user-visible operation. The identifier is owned
// by the TaskRegistry; the rest of the object is mutated by whichever
// component drives the underlying work.
type Task struct {
	mu       sync.Mutex
	id       uuid.UUID
	hasID    bool
	subtitle string

	Title string

	// Hidden tasks are tracked but excluded from UI enumeration.
	Hidden bool

	// Cancellable is advisory metadata for the UI; nothing here enforces it.
	Cancellable bool

	registry *TaskRegistry
}

func NewTask(title string) *Task {
	return &Task{Title: title}
}

// ID returns the identifier assigned at registration, or uuid.Nil before it.
func (t *Task) ID() uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

func (t *Task) Subtitle() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.subtitle
}

// SetSubtitle updates the progress line and publishes TaskUpdated with the
// task's identifier. This is the only channel by which progress reaches
// subscribers. Before registration the update is kept but not published.
func (t *Task) SetSubtitle(s string) {
	t.mu.Lock()
	t.subtitle = s
	reg, id := t.registry, t.id
	t.mu.Unlock()

	if reg != nil {
		reg.bus.Publish(TaskUpdated, Result{Status: true, Data: id})
	}
}

// StreamUpdate is the default progress handler for streaming downloads.
// A terminal status deregisters the task; while the total is unknown the
// subtitle reads "Calculating…", otherwise an integer percentage. Servers
// that send no Content-Length keep the total at zero for the whole
// transfer, so received alone never produces a percentage.
func (t *Task) StreamUpdate(received, total int64, status TaskStatus) {
	if status == TaskDone || status == TaskFailed {
		t.mu.Lock()
		reg := t.registry
		t.mu.Unlock()
		if reg != nil {
			_ = reg.RemoveTask(t)
		}
		return
	}

	if total == 0 {
		t.SetSubtitle("Calculating…")
		return
	}
	t.SetSubtitle(fmt.Sprintf("%d%%", int(float64(received)/float64(total)*100)))
}

// TaskRegistry tracks in-flight long-running operations by identifier and
// announces membership changes on the signal bus.
type TaskRegistry struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*Task
	bus   *SignalBus
	log   *zap.Logger
}

func NewTaskRegistry(bus *SignalBus, log *zap.Logger) *TaskRegistry {
	return &TaskRegistry{
		tasks: make(map[uuid.UUID]*Task),
		bus:   bus,
		log:   log,
	}
}

// Add assigns a fresh identifier to task, stores it and publishes
// TaskAdded. Registering a task that already holds an identifier is a
// caller bug and fails.
func (r *TaskRegistry) Add(task *Task) (uuid.UUID, error) {
	task.mu.Lock()
	if task.hasID {
		task.mu.Unlock()
		return uuid.Nil, fmt.Errorf("%w: %s", ErrTaskRegistered, task.id)
	}
	id := uuid.New()
	task.id = id
	task.hasID = true
	task.registry = r
	task.mu.Unlock()

	r.mu.Lock()
	r.tasks[id] = task
	r.mu.Unlock()

	r.bus.Publish(TaskAdded, Result{Status: true, Data: id})
	return id, nil
}

// Remove drops the task with the given identifier and publishes
// TaskRemoved. Removing an unknown identifier fails.
func (r *TaskRegistry) Remove(id uuid.UUID) error {
	r.mu.Lock()
	if _, ok := r.tasks[id]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	delete(r.tasks, id)
	r.mu.Unlock()

	r.bus.Publish(TaskRemoved, Result{Status: true, Data: id})
	return nil
}

// RemoveTask removes by task object, resolving its identifier.
func (r *TaskRegistry) RemoveTask(task *Task) error {
	return r.Remove(task.ID())
}

// Get returns the task for id without blocking.
func (r *TaskRegistry) Get(id uuid.UUID) (*Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	return t, ok
}

// List returns the tracked tasks visible to the UI, skipping hidden ones.
func (r *TaskRegistry) List() []*Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if !t.Hidden {
			out = append(out, t)
		}
	}
	return out
}
