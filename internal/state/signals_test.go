package state_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cellar/internal/state"
)

func TestSignalBus_HandlersRunInSubscriptionOrder(t *testing.T) {
	t.Parallel()

	bus := state.NewSignalBus(zap.NewNop())

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		bus.Subscribe(state.RepositoryFetched, func(state.Result) {
			order = append(order, i)
		})
	}

	bus.Publish(state.RepositoryFetched, state.Result{Status: true})

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestSignalBus_PublishWithoutSubscriberIsNoOp(t *testing.T) {
	t.Parallel()

	bus := state.NewSignalBus(zap.NewNop())

	require.NotPanics(t, func() {
		bus.Publish(state.NetworkStatusChanged, state.Result{Status: false})
	})
}

func TestSignalBus_PayloadReachesEveryHandler(t *testing.T) {
	t.Parallel()

	bus := state.NewSignalBus(zap.NewNop())

	var got []state.Result
	bus.Subscribe(state.GNotification, func(res state.Result) { got = append(got, res) })
	bus.Subscribe(state.GNotification, func(res state.Result) { got = append(got, res) })

	note := state.Notification{Title: "Cellar", Text: "component installed"}
	bus.Publish(state.GNotification, state.Result{Status: true, Data: note})

	require.Len(t, got, 2)
	for _, res := range got {
		assert.True(t, res.Status)
		assert.Equal(t, note, res.Data)
	}
}

func TestSignalBus_ConcurrentPublishIsSafe(t *testing.T) {
	t.Parallel()

	bus := state.NewSignalBus(zap.NewNop())

	var mu sync.Mutex
	count := 0
	bus.Subscribe(state.TaskUpdated, func(state.Result) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(state.TaskUpdated, state.Result{Status: true})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, count)
}
