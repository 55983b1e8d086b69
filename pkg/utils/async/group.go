package async

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// Group runs handlers with bounded concurrency and a shared cancellation
//
// Behavior:
//   - At most limit handlers run at the same time; Go blocks until a slot is free
//   - The first handler error cancels the context passed to every handler
//   - Handlers scheduled after cancellation are skipped without being called
//   - Panics are recovered, logged with their stack and turned into errors
type Group struct {
	eg  *errgroup.Group
	ctx context.Context
}

// NewGroup creates a Group derived from ctx. limit <= 0 means no limit.
func NewGroup(ctx context.Context, limit int) *Group {
	eg, egCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}
	return &Group{eg: eg, ctx: egCtx}
}

// Go schedules handler.
func (g *Group) Go(handler func(ctx context.Context) error) {
	g.eg.Go(func() (err error) {
		if g.ctx.Err() != nil {
			return nil
		}

		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				ctxlog.From(g.ctx).Error("panic in async handler",
					"recover", r,
					"stack", string(stack))
				err = goerr.New(fmt.Sprintf("panic in async handler: %v", r))
			}
		}()

		return handler(g.ctx)
	})
}

// Wait blocks until every scheduled handler returned and reports the first
// error.
func (g *Group) Wait() error {
	return g.eg.Wait()
}
