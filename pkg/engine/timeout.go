package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout is the limit for a single evaluation unless the Engine
// was built WithTimeout.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs longer than the engine's timeout.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned to an evaluation whose result arrived after
	// a newer evaluation had started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
	// ErrPanic wraps a panic raised inside the interpreter.
	ErrPanic = errors.New("panic during evaluation")
)

type evalResult struct {
	script *Script
	errors []EvalError
	err    error
}

// wait delivers the result from ch unless the timeout or ctx fires first.
// A result belonging to an older generation is discarded.
func (e *Engine) wait(ctx context.Context, ch <-chan evalResult, gen uint64) (*Script, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !e.current(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.script, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}
