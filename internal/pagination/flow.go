package pagination

import (
	"context"
	"sort"
	"sync"

	"github.com/jonathan/resume-editor/internal/types"
)

// FlowSurface is an in-memory canonical flow built from geometry reported by
// the rendering collaborator. A correction on a block shifts that block,
// every block after it, and the content height.
type FlowSurface struct {
	mu            sync.Mutex
	blocks        []types.Block
	contentHeight float64
	corrections   map[int]float64
}

// NewFlowSurface copies blocks in flow order. The content height is raised to
// the lowest block bottom when it is smaller.
func NewFlowSurface(blocks []types.Block, contentHeight float64) *FlowSurface {
	sorted := make([]types.Block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Top < sorted[j].Top
	})
	for _, b := range sorted {
		contentHeight = max(contentHeight, b.Bottom)
	}
	return &FlowSurface{
		blocks:        sorted,
		contentHeight: contentHeight,
		corrections:   make(map[int]float64),
	}
}

// ClearCorrections implements Surface.
func (f *FlowSurface) ClearCorrections(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.corrections = make(map[int]float64)
	return nil
}

// SetCorrection implements Surface.
func (f *FlowSurface) SetCorrection(_ context.Context, ordinal int, margin float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.corrections[ordinal] = margin
	return nil
}

// Measure implements Surface.
func (f *FlowSurface) Measure(_ context.Context) (Measurement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	shift := 0.0
	blocks := make([]types.Block, len(f.blocks))
	for i, b := range f.blocks {
		shift += f.corrections[b.Ordinal]
		blocks[i] = types.Block{
			Ordinal: b.Ordinal,
			Top:     b.Top + shift,
			Bottom:  b.Bottom + shift,
			Atomic:  b.Atomic,
		}
	}
	return Measurement{Blocks: blocks, ContentHeight: f.contentHeight + shift}, nil
}

// Corrections returns a copy of the currently applied correction table.
func (f *FlowSurface) Corrections() map[int]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyCorrections(f.corrections)
}

// ApplyCorrections implements View, so a FlowSurface can stand in for a
// page copy of the flow.
func (f *FlowSurface) ApplyCorrections(_ context.Context, corrections map[int]float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.corrections = copyCorrections(corrections)
	return nil
}

// Paginate lays out geometry supplied by the rendering collaborator.
func Paginate(blocks []types.Block, contentHeight, capacity float64, opts ...Option) types.Layout {
	// FlowSurface never fails and the context is never cancelled.
	layout, _ := New(capacity, opts...).Recompute(context.Background(), NewFlowSurface(blocks, contentHeight))
	return layout
}
