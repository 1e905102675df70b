package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultTimeout is the evaluation limit when none is configured.
const DefaultTimeout = 30 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine timeout.
	ErrTimeout = errors.New("evaluation timed out")

	// ErrSuperseded is returned to an evaluation that finished after a newer
	// one had started on the same engine.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

type evalResult struct {
	job    *Job
	errors []EvalError
	err    error
}

// waitWithTimeout waits up to timeout for ch. A result whose generation is
// no longer current is discarded. On timeout the evaluating goroutine keeps
// running and its result is dropped when it arrives.
func waitWithTimeout(
	ch <-chan evalResult,
	timeout time.Duration,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
) (*Job, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()
		if gen != current {
			return nil, nil, ErrSuperseded
		}
		return res.job, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}
