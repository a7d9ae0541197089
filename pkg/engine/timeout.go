package engine

import (
	"context"
	"errors"
	"time"

	"github.com/chazu/reactorcad/pkg/archetype"
)

// DefaultTimeout bounds a single evaluation unless WithTimeout overrides it.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine timeout.
	ErrTimeout = errors.New("engine: evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one had started.
	ErrSuperseded = errors.New("engine: evaluation superseded by a newer one")
)

// outcome carries one evaluation back from its goroutine.
type outcome struct {
	request *archetype.Request
	errors  []EvalError
	err     error
}

// await waits for the outcome of generation gen. The interpreter cannot be
// interrupted, so on timeout or cancellation its goroutine is abandoned and
// the buffered channel absorbs the late send.
func (e *Engine) await(ctx context.Context, ch <-chan outcome, gen uint64) (*archetype.Request, []EvalError, error) {
	ctx, cancel := context.WithTimeoutCause(ctx, e.timeout, ErrTimeout)
	defer cancel()

	select {
	case o := <-ch:
		if gen != e.generation.Load() {
			return nil, nil, ErrSuperseded
		}
		return o.request, o.errors, o.err
	case <-ctx.Done():
		return nil, nil, context.Cause(ctx)
	}
}
