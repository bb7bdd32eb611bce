package netstatus_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"cellar/internal/netstatus"
	"cellar/internal/state"
)

// flakyClient fails or succeeds per a scripted sequence.
type flakyClient struct {
	mu   sync.Mutex
	fail []bool
	next int
}

func (c *flakyClient) Get(context.Context, string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fail := c.fail[c.next]
	if c.next < len(c.fail)-1 {
		c.next++
	}
	if fail {
		return nil, errors.New("no route to host")
	}
	return []byte("ok"), nil
}

func newChecker(fail ...bool) (*netstatus.Checker, *[]bool) {
	bus := state.NewSignalBus(zap.NewNop())
	var published []bool
	bus.Subscribe(state.NetworkStatusChanged, func(res state.Result) {
		published = append(published, res.Status)
	})
	c := netstatus.New("http://status.invalid/ping", &flakyClient{fail: fail}, bus, zap.NewNop())
	return c, &published
}

func TestChecker_FirstCheckPublishes(t *testing.T) {
	t.Parallel()

	c, published := newChecker(false)
	assert.True(t, c.Check(context.Background()))
	assert.Equal(t, []bool{true}, *published)
	assert.True(t, c.Online())
}

func TestChecker_UnchangedStateStaysQuiet(t *testing.T) {
	t.Parallel()

	c, published := newChecker(false, false, false)
	ctx := context.Background()
	c.Check(ctx)
	c.Check(ctx)
	c.Check(ctx)
	assert.Equal(t, []bool{true}, *published, "repeat checks with the same outcome publish once")
}

func TestChecker_TransitionsPublish(t *testing.T) {
	t.Parallel()

	c, published := newChecker(false, true, true, false)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		c.Check(ctx)
	}
	assert.Equal(t, []bool{true, false, true}, *published)
}

func TestChecker_OfflineBeforeFirstCheck(t *testing.T) {
	t.Parallel()

	c, _ := newChecker(true)
	assert.False(t, c.Online())
}
