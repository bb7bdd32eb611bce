// Package state holds the process-wide coordination primitives shared by
// every backend component: the signal bus, the named lock pool, the task
// registry and the operation gates. A single *State is built at the
// application root and passed by reference; tests build their own.
package state

import (
	"sync"

	"go.uber.org/zap"
)

// Signal identifies a backend event kind. The set is closed; the payload
// shape carried by each kind is a documented convention, not enforced.
type Signal string

const (
	// ManagerLocalBottlesLoaded carries no extra data.
	ManagerLocalBottlesLoaded Signal = "Manager.local_bottles_loaded"

	// RepositoryFetched carries Status (fetch success) and Data(int),
	// the total number of repositories.
	RepositoryFetched Signal = "RepositoryManager.repo_fetched"

	// NetworkStatusChanged carries Status(bool), whether the network is up.
	NetworkStatusChanged Signal = "ConnectionUtils.status_changed"

	// GNotification carries Data(Notification) for the desktop shell.
	GNotification Signal = "G.send_notification"

	// GShowUri carries Data(string), the URI to open.
	GShowUri Signal = "G.show_uri"

	// Task signals carry Data(uuid.UUID), the task identifier.
	TaskAdded   Signal = "task.added"
	TaskRemoved Signal = "task.removed"
	TaskUpdated Signal = "task.updated"
)

// Result is the payload attached to a published signal.
type Result struct {
	Status bool
	Data   any
}

// Notification is the payload for GNotification.
type Notification struct {
	Title string
	Text  string
	Image string
}

// SignalHandler reacts to a published signal. Handlers run synchronously
// on the publishing goroutine and must not assume a particular one.
type SignalHandler func(res Result)

// SignalBus is a typed publish/subscribe registry syncing backend state to
// whoever subscribed, usually the UI shell.
type SignalBus struct {
	mu       sync.RWMutex
	handlers map[Signal][]SignalHandler
	log      *zap.Logger
}

func NewSignalBus(log *zap.Logger) *SignalBus {
	return &SignalBus{
		handlers: make(map[Signal][]SignalHandler),
		log:      log,
	}
}

// Subscribe registers handler for every future publish of sig. Handlers
// for a kind run in registration order; duplicates are not collapsed.
func (b *SignalBus) Subscribe(sig Signal, handler SignalHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[sig] = append(b.handlers[sig], handler)
}

// Publish invokes every handler registered for sig, in order, on the
// calling goroutine. Publishing a kind nobody subscribed to is a no-op.
func (b *SignalBus) Publish(sig Signal, res Result) {
	b.mu.RLock()
	handlers := b.handlers[sig]
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.log.Debug("no handler registered for signal", zap.String("signal", string(sig)))
		return
	}
	for _, fn := range handlers {
		fn(res)
	}
}
