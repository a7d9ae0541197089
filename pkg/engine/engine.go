// Package engine evaluates reactor parameter scripts.
//
// Scripts are zygomys programs run in a sandbox. The reactor builtin records
// the archetype and its parameters; Evaluate hands that back as an
// archetype.Request for the archetype registry to decode.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"

	"github.com/chazu/reactorcad/pkg/archetype"
)

// EvalError is a parse or runtime error in the script itself. It is
// reported to the user rather than failing the caller.
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

// Engine evaluates scripts. Each evaluation gets a fresh sandbox, so an
// Engine may be shared between goroutines; only the newest evaluation's
// result is delivered.
type Engine struct {
	timeout    time.Duration
	log        *zap.Logger
	generation atomic.Uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the evaluation time limit. Non-positive values are
// ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine returns an Engine with DefaultTimeout and a no-op logger.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: DefaultTimeout, log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate runs source and returns the reactor request it defines.
//
//   - success: the request, or nil when the script defines no reactor
//   - script errors: nil request and the EvalErrors, with a nil error
//   - timeout, cancellation, supersession or interpreter panic: a non-nil error
func (e *Engine) Evaluate(ctx context.Context, source string) (*archetype.Request, []EvalError, error) {
	gen := e.generation.Add(1)
	ch := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("engine: panic during evaluation: %v", r)}
			}
		}()
		req, evalErrs, err := evaluate(source)
		ch <- outcome{request: req, errors: evalErrs, err: err}
	}()

	start := time.Now()
	req, evalErrs, err := e.await(ctx, ch, gen)
	e.log.Debug("script evaluated",
		zap.Uint64("generation", gen),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("eval_errors", len(evalErrs)),
		zap.Error(err))
	return req, evalErrs, err
}

// evaluate runs source in a fresh sandbox, which has no filesystem or
// syscall access.
func evaluate(source string) (*archetype.Request, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	var s script
	registerBuiltins(env, &s)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, evalErrors(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, evalErrors(err), nil
	}
	return s.request, nil, nil
}

// linePatterns match the forms zygomys uses to report a line: "Error on
// line N: ..." for parse errors and "line N: ..." elsewhere.
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`),
	regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`),
}

// evalErrors converts an interpreter error into EvalErrors, keeping the
// line number when the message carries one.
func evalErrors(err error) []EvalError {
	msg := err.Error()
	for _, p := range linePatterns {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
