// Package pagination turns one continuously flowing rendered document into a
// sequence of fixed-capacity pages without splitting atomic blocks across a
// page boundary.
//
// Pages are viewports over a single flow. The engine measures the canonical
// copy of the flow, pushes the first straddling atomic block down to the next
// page boundary with a corrective top margin, re-measures, and repeats until
// nothing straddles or the iteration cap is reached. The final correction
// table is replicated by ordinal to every other rendered copy.
package pagination

import (
	"context"
	"math"
	"sync"

	"github.com/jonathan/resume-editor/internal/logger"
	"github.com/jonathan/resume-editor/internal/types"
)

const (
	// DefaultCapacity is the usable height of one printable page in CSS pixels
	// (A4 at 96dpi minus print margins).
	DefaultCapacity = 1043
	// DefaultMaxIterations bounds the relaxation loop.
	DefaultMaxIterations = 15
)

// Measurement is the geometry of the canonical copy at one point in time.
// Block positions are relative to the container top.
type Measurement struct {
	Blocks        []types.Block
	ContentHeight float64
}

// Surface is the canonical rendered copy of the content flow.
type Surface interface {
	ClearCorrections(ctx context.Context) error
	Measure(ctx context.Context) (Measurement, error)
	SetCorrection(ctx context.Context, ordinal int, margin float64) error
}

// View is another rendered copy of the same flow that must mirror the
// canonical copy's corrections.
type View interface {
	ApplyCorrections(ctx context.Context, corrections map[int]float64) error
}

// Option configures an Engine
type Option func(*Engine)

// WithMaxIterations overrides the relaxation cap.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine computes corrective margins and page counts.
type Engine struct {
	mu sync.Mutex

	capacity      float64
	maxIterations int
	views         []View
	listeners     []func(types.Layout)
	log           *logger.Logger
}

// New creates an engine for pages of the given capacity. A non-positive
// capacity selects DefaultCapacity.
func New(capacity float64, opts ...Option) *Engine {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	e := &Engine{
		capacity:      capacity,
		maxIterations: DefaultMaxIterations,
		log:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Capacity returns the page capacity.
func (e *Engine) Capacity() float64 {
	return e.capacity
}

// AddView registers a copy that receives the correction table after every pass.
func (e *Engine) AddView(v View) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.views = append(e.views, v)
}

// OnLayout registers a callback invoked with every computed layout.
func (e *Engine) OnLayout(fn func(types.Layout)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Recompute runs one full layout pass over the canonical surface. It is safe
// to call repeatedly; blocks that are not rendered yet (zero height) are left
// alone until a later pass.
func (e *Engine) Recompute(ctx context.Context, s Surface) (types.Layout, error) {
	layout, listeners, err := e.recompute(ctx, s)
	if err != nil {
		return types.Layout{}, err
	}
	for _, fn := range listeners {
		fn(layout)
	}
	return layout, nil
}

func (e *Engine) recompute(ctx context.Context, s Surface) (types.Layout, []func(types.Layout), error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := s.ClearCorrections(ctx); err != nil {
		return types.Layout{}, nil, err
	}

	corrections := make(map[int]float64)
	layout := types.Layout{Capacity: e.capacity}

	for layout.Iterations < e.maxIterations {
		if err := ctx.Err(); err != nil {
			return types.Layout{}, nil, err
		}
		m, err := s.Measure(ctx)
		if err != nil {
			return types.Layout{}, nil, err
		}
		layout.Iterations++

		block, startPage, found := e.firstStraddler(m.Blocks)
		if !found {
			layout.Converged = true
			break
		}

		// One fix per pass: the push moves every later block.
		push := float64(startPage+1)*e.capacity - block.Top
		corrections[block.Ordinal] += push
		if err := s.SetCorrection(ctx, block.Ordinal, corrections[block.Ordinal]); err != nil {
			return types.Layout{}, nil, err
		}
		e.log.Debug("pushed straddling block",
			"ordinal", block.Ordinal,
			"top", block.Top,
			"bottom", block.Bottom,
			"margin", corrections[block.Ordinal],
			"iteration", layout.Iterations,
		)
	}

	final, err := s.Measure(ctx)
	if err != nil {
		return types.Layout{}, nil, err
	}
	if !layout.Converged {
		_, _, straddling := e.firstStraddler(final.Blocks)
		layout.Converged = !straddling
		if straddling {
			e.log.Warn("pagination hit iteration cap with straddling blocks",
				"iterations", layout.Iterations,
				"corrections", len(corrections),
			)
		}
	}

	for _, v := range e.views {
		if err := v.ApplyCorrections(ctx, copyCorrections(corrections)); err != nil {
			return types.Layout{}, nil, err
		}
	}

	layout.Corrections = corrections
	layout.ContentHeight = final.ContentHeight
	layout.PageCount = PageCount(final.ContentHeight, e.capacity)
	layout.Pages = Pages(layout.PageCount, e.capacity)

	listeners := make([]func(types.Layout), len(e.listeners))
	copy(listeners, e.listeners)
	return layout, listeners, nil
}

// firstStraddler returns the first atomic block whose start and end fall on
// different pages.
func (e *Engine) firstStraddler(blocks []types.Block) (types.Block, int, bool) {
	for _, b := range blocks {
		if !b.Atomic {
			continue
		}
		h := b.Height()
		// Zero height: not rendered yet. Taller than a page: cannot fit anyway.
		if h <= 0 || h > e.capacity || b.Top <= 0 {
			continue
		}
		startPage := int(math.Floor(b.Top / e.capacity))
		endPage := int(math.Floor(math.Max(b.Bottom-1, b.Top) / e.capacity))
		if startPage != endPage {
			return b, startPage, true
		}
	}
	return types.Block{}, 0, false
}

// PageCount derives the number of pages needed for height.
func PageCount(height, capacity float64) int {
	if capacity <= 0 || height <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(height/capacity)))
}

// Pages returns the page viewports for count pages.
func Pages(count int, capacity float64) []types.Page {
	pages := make([]types.Page, count)
	for i := range pages {
		pages[i] = types.Page{
			Index:  i,
			Offset: float64(-i) * capacity,
			Height: capacity,
		}
	}
	return pages
}

func copyCorrections(in map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
