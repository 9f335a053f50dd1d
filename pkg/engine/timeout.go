package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/chazu/partscan/pkg/graph"
)

var (
	// ErrTimeout is returned when a script runs past the engine timeout.
	ErrTimeout = errors.New("engine: evaluation timed out")
	// ErrSuperseded is returned when a newer Evaluate call started first.
	ErrSuperseded = errors.New("engine: evaluation superseded by newer request")
)

// outcome carries one evaluation back from the interpreter goroutine.
type outcome struct {
	graph  *graph.DesignGraph
	errors []EvalError
	err    error
}

// await blocks until the interpreter reports, the timeout fires or ctx is
// done. A result from a superseded generation is dropped. On timeout the
// interpreter goroutine is left running; its buffered send never blocks.
func (e *Engine) await(ctx context.Context, ch <-chan outcome, gen uint64) (*graph.DesignGraph, []EvalError, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	select {
	case res := <-ch:
		if !e.isCurrent(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.graph, res.errors, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
		}
		return nil, nil, fmt.Errorf("engine: %w", ctx.Err())
	}
}

// next starts a new generation and returns its number.
func (e *Engine) next() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

func (e *Engine) isCurrent(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}
