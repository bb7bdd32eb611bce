package state

import (
	"sync"

	"go.uber.org/zap"
)

// OperationTracker maps operation names (by convention "<repo>.fetching")
// to binary readiness gates. A gate is created not-signaled on first
// reference from any of Start, Done or Wait, exactly once per name.
type OperationTracker struct {
	mu    sync.Mutex
	gates map[string]*gate
	log   *zap.Logger
}

type gate struct {
	mu       sync.Mutex
	ch       chan struct{}
	signaled bool
}

func NewOperationTracker(log *zap.Logger) *OperationTracker {
	return &OperationTracker{
		gates: make(map[string]*gate),
		log:   log,
	}
}

func (t *OperationTracker) gate(name string) *gate {
	t.mu.Lock()
	defer t.mu.Unlock()
	g, ok := t.gates[name]
	if !ok {
		g = &gate{ch: make(chan struct{})}
		t.gates[name] = g
	}
	return g
}

// Start arms the gate for name, re-arming it if a previous cycle already
// completed. Calling Start on an armed gate changes nothing.
func (t *OperationTracker) Start(name string) {
	g := t.gate(name)
	g.mu.Lock()
	if g.signaled {
		g.ch = make(chan struct{})
		g.signaled = false
	}
	g.mu.Unlock()
	t.log.Debug("start operation", zap.String("name", name))
}

// Done signals the gate for name, releasing every current and future
// waiter until the next Start.
func (t *OperationTracker) Done(name string) {
	g := t.gate(name)
	g.mu.Lock()
	if !g.signaled {
		close(g.ch)
		g.signaled = true
	}
	g.mu.Unlock()
	t.log.Debug("done operation", zap.String("name", name))
}

// Wait blocks the calling goroutine until the gate for name is signaled.
// There is no timeout; callers needing one must wrap Wait themselves.
func (t *OperationTracker) Wait(name string) {
	g := t.gate(name)
	g.mu.Lock()
	ch := g.ch
	g.mu.Unlock()
	<-ch
	t.log.Debug("done waiting for operation", zap.String("name", name))
}
