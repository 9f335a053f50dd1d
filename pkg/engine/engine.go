// Package engine evaluates part scripts. It runs each script in a fresh
// zygomys sandbox and collects the parts it defines into a DesignGraph.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/partscan/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// DefaultTimeout bounds a single script evaluation.
const DefaultTimeout = 5 * time.Second

// EvalError is a non-fatal script error such as a parse failure or a
// builtin rejecting its arguments.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates part scripts. A call to Evaluate supersedes any
// evaluation still in flight on the same Engine, so independent callers
// need their own Engine.
type Engine struct {
	timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds each evaluation. Zero or negative leaves only the
// caller's context.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// NewEngine returns an Engine with DefaultTimeout.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs source and returns the design graph it builds.
//
//   - success: graph, nil, nil
//   - script errors: nil, eval errors, nil
//   - timeout, cancellation or interpreter panic: nil, nil, error
func (e *Engine) Evaluate(ctx context.Context, source string) (*graph.DesignGraph, []EvalError, error) {
	gen := e.next()
	ch := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("engine: panic during evaluation: %v", r)}
			}
		}()
		g, evalErrs, err := run(source)
		ch <- outcome{graph: g, errors: evalErrs, err: err}
	}()

	return e.await(ctx, ch, gen)
}

// run evaluates source in a fresh sandbox with no filesystem or syscall access.
func run(source string) (*graph.DesignGraph, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return graph.New(), nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	g := graph.New()
	registerBuiltins(env, g)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return g, nil, nil
}

// linePatterns match the position prefixes zygomys puts on its errors,
// "Error on line N: ..." and the bare "line N: ...".
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`),
	regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`),
}

// parseZygomysError converts an interpreter error into EvalErrors,
// keeping the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range linePatterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
