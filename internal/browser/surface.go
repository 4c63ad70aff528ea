package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/resume-editor/internal/pagination"
	"github.com/jonathan/resume-editor/internal/types"
)

// Corrections are applied as an extra top margin on top of the block's own
// margin, which is remembered in data-base-margin until cleared.
const correctionsJS = `(function(root, corrections) {
	if (!root) return 0;
	const blocks = root.querySelectorAll('[data-block]');
	for (const el of root.querySelectorAll('[data-base-margin]')) {
		el.style.marginTop = '';
		el.removeAttribute('data-base-margin');
	}
	let applied = 0;
	for (const [key, margin] of Object.entries(corrections)) {
		const el = blocks[Number(key)];
		if (!el) continue;
		const base = getComputedStyle(el).marginTop;
		el.setAttribute('data-base-margin', base);
		el.style.marginTop = 'calc(' + base + ' + ' + margin + 'px)';
		applied++;
	}
	return applied;
})`

const measureJS = `(function(root) {
	if (!root) return { mounted: false, blocks: [], contentHeight: 0 };
	const origin = root.getBoundingClientRect().top;
	const blocks = Array.from(root.querySelectorAll('[data-block]')).map((el, i) => {
		const r = el.getBoundingClientRect();
		return {
			ordinal: i,
			top: Math.max(0, r.top - origin),
			bottom: Math.max(0, r.bottom - origin),
			atomic: el.hasAttribute('data-atomic'),
		};
	});
	return { mounted: true, blocks: blocks, contentHeight: root.scrollHeight };
})`

type measureResult struct {
	Mounted       bool          `json:"mounted"`
	Blocks        []types.Block `json:"blocks"`
	ContentHeight float64       `json:"contentHeight"`
}

// Surface is the canonical flow in a loaded document.
type Surface struct {
	b        *Browser
	selector string
	current  map[int]float64
}

var _ pagination.Surface = (*Surface)(nil)

// ClearCorrections implements pagination.Surface.
func (s *Surface) ClearCorrections(ctx context.Context) error {
	s.current = map[int]float64{}
	return s.apply(ctx)
}

// SetCorrection implements pagination.Surface.
func (s *Surface) SetCorrection(ctx context.Context, ordinal int, margin float64) error {
	if s.current == nil {
		s.current = map[int]float64{}
	}
	s.current[ordinal] = margin
	return s.apply(ctx)
}

// Measure implements pagination.Surface.
func (s *Surface) Measure(ctx context.Context) (pagination.Measurement, error) {
	var res measureResult
	script := fmt.Sprintf("%s(document.querySelector(%s))", measureJS, jsString(s.selector))
	if err := s.b.eval(ctx, script, &res); err != nil {
		return pagination.Measurement{}, fmt.Errorf("failed to measure %s: %w", s.selector, err)
	}
	if !res.Mounted {
		return pagination.Measurement{}, &NotMountedError{Selector: s.selector}
	}
	return pagination.Measurement{Blocks: res.Blocks, ContentHeight: res.ContentHeight}, nil
}

func (s *Surface) apply(ctx context.Context) error {
	script, err := correctionsScript(fmt.Sprintf("[document.querySelector(%s)]", jsString(s.selector)), s.current)
	if err != nil {
		return err
	}
	var applied []int
	if err := s.b.eval(ctx, script, &applied); err != nil {
		return fmt.Errorf("failed to apply corrections to %s: %w", s.selector, err)
	}
	return nil
}

// View is the set of page copies in a loaded document. Every copy receives
// the same correction table.
type View struct {
	b        *Browser
	selector string
}

var _ pagination.View = (*View)(nil)

// ApplyCorrections implements pagination.View.
func (v *View) ApplyCorrections(ctx context.Context, corrections map[int]float64) error {
	script, err := correctionsScript(fmt.Sprintf("Array.from(document.querySelectorAll(%s))", jsString(v.selector)), corrections)
	if err != nil {
		return err
	}
	var applied []int
	if err := v.b.eval(ctx, script, &applied); err != nil {
		return fmt.Errorf("failed to apply corrections to %s: %w", v.selector, err)
	}
	return nil
}

func correctionsScript(rootsExpr string, corrections map[int]float64) (string, error) {
	table, err := json.Marshal(corrections)
	if err != nil {
		return "", fmt.Errorf("failed to encode corrections: %w", err)
	}
	return fmt.Sprintf("%s.map(root => %s(root, %s))", rootsExpr, correctionsJS, table), nil
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
