package state

import "go.uber.org/zap"

// State is the unified coordination context: one instance per process,
// owned by the application root and shared by reference. It is never torn
// down; its pools grow lazily and live as long as the process.
type State struct {
	Signals *SignalBus
	Locks   *LockRegistry
	Tasks   *TaskRegistry
	Ops     *OperationTracker
}

func New(log *zap.Logger) *State {
	bus := NewSignalBus(log)
	return &State{
		Signals: bus,
		Locks:   NewLockRegistry(),
		Tasks:   NewTaskRegistry(bus, log),
		Ops:     NewOperationTracker(log),
	}
}
