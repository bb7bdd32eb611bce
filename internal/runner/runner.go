// Package runner executes backend work off the calling goroutine and
// hands the outcome to a completion callback, mirroring the contract the
// rest of the backend depends on: submit work, get (result, error) back
// from worker context.
package runner

import "fmt"

// Go runs fn on its own goroutine and invokes done with fn's result from
// that goroutine. A panic in fn is recovered and surfaced as the error.
// done may be nil when the caller only cares about side effects.
func Go(fn func() (any, error), done func(result any, err error)) {
	go func() {
		var (
			result any
			err    error
		)
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("async task panicked: %v", r)
				}
			}()
			result, err = fn()
		}()
		if done != nil {
			done(result, err)
		}
	}()
}
