package interfaces

import (
	"context"

	"github.com/m-mizutani/ghdir/pkg/domain/model"
)

// Reporter receives status events of a run. Implementations must be safe for
// concurrent use.
type Reporter interface {
	Report(ctx context.Context, event model.Event)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(ctx context.Context, event model.Event)

func (f ReporterFunc) Report(ctx context.Context, event model.Event) {
	f(ctx, event)
}
