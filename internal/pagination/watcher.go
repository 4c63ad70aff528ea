package pagination

import (
	"context"
	"time"

	"github.com/jonathan/resume-editor/internal/logger"
)

// Watcher funnels change notifications and per-frame re-measurement into
// Engine.Recompute on a single goroutine.
type Watcher struct {
	engine  *Engine
	surface Surface
	frame   time.Duration
	changes chan struct{}
	updates chan func(context.Context) error
	log     *logger.Logger
}

// NewWatcher creates a watcher. A non-positive frame interval disables the
// per-frame trigger, leaving only explicit notifications.
func NewWatcher(engine *Engine, surface Surface, frame time.Duration, log *logger.Logger) *Watcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Watcher{
		engine:  engine,
		surface: surface,
		frame:   frame,
		changes: make(chan struct{}, 1),
		updates: make(chan func(context.Context) error),
		log:     log,
	}
}

// Notify signals that block geometry may have changed. Notifications that
// arrive before the next pass are coalesced; Notify never blocks.
func (w *Watcher) Notify() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

// Update hands fn to the Run goroutine, which calls it between passes and
// recomputes when it succeeds. Surfaces must only be mutated this way while
// Run is active. Update blocks until fn is accepted or ctx is done.
func (w *Watcher) Update(ctx context.Context, fn func(context.Context) error) error {
	select {
	case w.updates <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run performs an initial pass and then recomputes on every trigger until ctx
// is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if w.frame > 0 {
		ticker := time.NewTicker(w.frame)
		defer ticker.Stop()
		tick = ticker.C
	}

	w.recompute(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.changes:
			w.recompute(ctx)
		case fn := <-w.updates:
			if err := fn(ctx); err != nil {
				w.log.Warn("surface update failed", "error", err)
				continue
			}
			w.recompute(ctx)
		case <-tick:
			w.recompute(ctx)
		}
	}
}

func (w *Watcher) recompute(ctx context.Context) {
	if _, err := w.engine.Recompute(ctx, w.surface); err != nil && ctx.Err() == nil {
		// Content may not be mounted yet; the next trigger retries.
		w.log.Warn("layout pass failed", "error", err)
	}
}
