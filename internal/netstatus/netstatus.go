// Package netstatus tracks whether the configured status endpoint is
// reachable and announces transitions on the signal bus.
package netstatus

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"cellar/internal/httpclient"
	"cellar/internal/state"
)

// DefaultStatusURL is probed when no endpoint is configured.
const DefaultStatusURL = "https://repo.usebottles.com/components/index.yml"

// Checker probes a status URL on demand. Only transitions are published;
// re-checking an unchanged state stays quiet.
type Checker struct {
	mu     sync.Mutex
	online bool
	known  bool

	url    string
	client httpclient.Client
	bus    *state.SignalBus
	log    *zap.Logger
}

func New(url string, client httpclient.Client, bus *state.SignalBus, log *zap.Logger) *Checker {
	if url == "" {
		url = DefaultStatusURL
	}
	return &Checker{
		url:    url,
		client: client,
		bus:    bus,
		log:    log,
	}
}

// Check probes the endpoint once and returns whether the network is up.
// The first check always publishes; afterwards only changes do.
func (c *Checker) Check(ctx context.Context) bool {
	_, err := c.client.Get(ctx, c.url)
	online := err == nil

	c.mu.Lock()
	changed := !c.known || c.online != online
	c.online = online
	c.known = true
	c.mu.Unlock()

	if changed {
		c.log.Debug("network status changed", zap.Bool("online", online))
		c.bus.Publish(state.NetworkStatusChanged, state.Result{Status: online})
	}
	return online
}

// Online returns the last observed state without probing. Before the
// first check it reports false.
func (c *Checker) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}
