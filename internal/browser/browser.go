// Package browser measures real rendered HTML in headless Chrome. It provides
// the canonical pagination surface and the page-copy views for documents
// rendered by a template.
//
// Markup contract: the canonical flow is the element matching
// CanonicalSelector, each page copy matches PageSelector, and every block
// inside a flow carries a data-block attribute (data-atomic for blocks that
// must not be split). Ordinals are the document-order index of data-block
// elements within their flow.
package browser

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/resume-editor/internal/logger"
)

// Selectors for the rendered flows.
const (
	CanonicalSelector = `[data-flow="canonical"]`
	PageSelector      = `[data-flow="page"]`
)

// DefaultTimeout bounds loading a document into the browser.
const DefaultTimeout = 30 * time.Second

// Browser is one headless Chrome tab.
type Browser struct {
	ctx     context.Context
	cancels []context.CancelFunc
	log     *logger.Logger
}

// Launch starts headless Chrome. Requires Chrome/Chromium to be installed on
// the system.
func Launch(ctx context.Context, log *logger.Logger) (*Browser, error) {
	if log == nil {
		log = logger.Nop()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.WindowSize(1280, 1024),
		)...,
	)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Start the browser so launch failures surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Debug("headless browser started")
	return &Browser{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAlloc},
		log:     log,
	}, nil
}

// Close shuts the browser down.
func (b *Browser) Close() {
	for _, cancel := range b.cancels {
		cancel()
	}
}

// Load replaces the tab's content with html and waits for it to render.
func (b *Browser) Load(ctx context.Context, html string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(b.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx,
		chromedp.Navigate(DataURL(html)),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(`document.fonts ? document.fonts.ready.then(() => true) : true`, nil, awaitPromise),
	)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	b.log.Debug("document loaded into browser", "bytes", len(html))
	return nil
}

// Surface returns the canonical flow matching selector.
func (b *Browser) Surface(selector string) *Surface {
	return &Surface{b: b, selector: selector}
}

// View returns the page copies matching selector.
func (b *Browser) View(selector string) *View {
	return &View{b: b, selector: selector}
}

// eval runs a script in the tab, stopping early when ctx is cancelled.
func (b *Browser) eval(ctx context.Context, script string, res interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, chromedp.Evaluate(script, res))
}

// DataURL encodes html as a data: URL.
func DataURL(html string) string {
	return "data:text/html;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(html))
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}
