// Package console renders run status events for a terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/m-mizutani/ghdir/pkg/domain/interfaces"
	"github.com/m-mizutani/ghdir/pkg/domain/model"
)

var (
	infoClr    = color.New(color.FgCyan)
	warnClr    = color.New(color.FgYellow)
	errorClr   = color.New(color.FgRed, color.Bold)
	successClr = color.New(color.FgGreen, color.Bold)
	fileClr    = color.New(color.Faint)
)

// Reporter writes one line per event. Per-file events are only shown in
// verbose mode. With progress enabled, saved files advance a progress bar
// started by the file count event.
type Reporter struct {
	mu       sync.Mutex
	w        io.Writer
	verbose  bool
	progress bool
	bar      *pb.ProgressBar
}

var _ interfaces.Reporter = (*Reporter)(nil)

// Option configures Reporter
type Option func(*Reporter)

// WithVerbose enables per-file download lines
func WithVerbose(verbose bool) Option {
	return func(r *Reporter) {
		r.verbose = verbose
	}
}

// WithProgress enables the progress bar
func WithProgress(progress bool) Option {
	return func(r *Reporter) {
		r.progress = progress
	}
}

// New creates a Reporter writing to w
func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{w: w}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reporter) Report(ctx context.Context, event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Kind {
	case model.EventFailed:
		r.finishBar()
		errorClr.Fprintln(r.w, "✗ "+event.Message)
	case model.EventSucceeded:
		r.finishBar()
		successClr.Fprintln(r.w, "✓ "+event.Message)
	case model.EventFileCount:
		infoClr.Fprintln(r.w, event.Message)
		if count, ok := event.Data["count"].(int); ok && r.progress && !r.verbose {
			r.bar = pb.Full.New(count).SetWriter(r.w).Start()
		}
	case model.EventFileSaved:
		if r.bar != nil {
			r.bar.Increment()
		}
	case model.EventFileDownload:
		if !r.verbose {
			return
		}
		msg := event.Message
		if size, ok := event.Data["size"].(int64); ok && size > 0 {
			msg = fmt.Sprintf("%s (%s)", msg, humanize.Bytes(uint64(size)))
		}
		fileClr.Fprintln(r.w, "  "+msg)
	default:
		if event.IsWarning() {
			warnClr.Fprintln(r.w, "! "+event.Message)
			return
		}
		infoClr.Fprintln(r.w, event.Message)
	}
}

func (r *Reporter) finishBar() {
	if r.bar == nil {
		return
	}
	r.bar.Finish()
	r.bar = nil
}
