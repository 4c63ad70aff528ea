package browser

import (
	"context"
	"time"

	"github.com/jonathan/resume-editor/internal/logger"
	"github.com/jonathan/resume-editor/internal/pagination"
	"github.com/jonathan/resume-editor/internal/richtext"
	"github.com/jonathan/resume-editor/internal/types"
)

// Paginate renders html in a fresh headless browser and lays out its
// canonical flow, replicating corrections to the page copies.
func Paginate(ctx context.Context, html string, capacity float64, timeout time.Duration, log *logger.Logger, opts ...pagination.Option) (types.Layout, error) {
	if log == nil {
		log = logger.Nop()
	}
	if n, err := richtext.CountAtomicBlocks(html, CanonicalSelector); err == nil && n == 0 {
		log.Warn("no atomic blocks in canonical flow", "selector", CanonicalSelector)
	}

	b, err := Launch(ctx, log)
	if err != nil {
		return types.Layout{}, err
	}
	defer b.Close()

	if err := b.Load(ctx, html, timeout); err != nil {
		return types.Layout{}, err
	}

	engine := pagination.New(capacity, append([]pagination.Option{pagination.WithLogger(log)}, opts...)...)
	engine.AddView(b.View(PageSelector))
	return engine.Recompute(ctx, b.Surface(CanonicalSelector))
}

// Watch keeps html open in a headless browser and lays it out on every frame
// and whenever reload delivers new markup. onLayout receives every computed
// layout. It returns when ctx is cancelled.
func Watch(ctx context.Context, html string, capacity float64, frame, timeout time.Duration, reload <-chan string, onLayout func(types.Layout), log *logger.Logger, opts ...pagination.Option) error {
	if log == nil {
		log = logger.Nop()
	}

	b, err := Launch(ctx, log)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.Load(ctx, html, timeout); err != nil {
		return err
	}

	engine := pagination.New(capacity, append([]pagination.Option{pagination.WithLogger(log)}, opts...)...)
	engine.AddView(b.View(PageSelector))
	if onLayout != nil {
		engine.OnLayout(onLayout)
	}
	watcher := pagination.NewWatcher(engine, b.Surface(CanonicalSelector), frame, log)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case next, ok := <-reload:
				if !ok {
					return
				}
				load := func(ctx context.Context) error {
					return b.Load(ctx, next, timeout)
				}
				if err := watcher.Update(ctx, load); err != nil {
					return
				}
			}
		}
	}()

	return watcher.Run(ctx)
}
