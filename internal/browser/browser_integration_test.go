//go:build integration

package browser

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-editor/internal/types"
)

const fixture = `<!doctype html>
<html><head><style>
body { margin: 0; }
.flow { width: 600px; }
.flow > div { margin: 0; padding: 0; }
</style></head><body>
<div class="flow" data-flow="canonical">
  <div data-block style="height: 100px"></div>
  <div data-block data-atomic style="height: 300px"></div>
  <div data-block data-atomic style="height: 300px"></div>
</div>
<div class="flow" data-flow="page">
  <div data-block style="height: 100px"></div>
  <div data-block data-atomic style="height: 300px"></div>
  <div data-block data-atomic style="height: 300px"></div>
</div>
</body></html>`

func launchOrSkip(t *testing.T) *Browser {
	b, err := Launch(context.Background(), nil)
	if err != nil {
		t.Skipf("Skipping integration test: chrome not available: %v", err)
	}
	return b
}

func TestIntegration_SurfaceMeasureAndCorrect(t *testing.T) {
	b := launchOrSkip(t)
	defer b.Close()
	ctx := context.Background()

	require.NoError(t, b.Load(ctx, fixture, 10*time.Second))

	surface := b.Surface(CanonicalSelector)
	m, err := surface.Measure(ctx)
	require.NoError(t, err)
	require.Len(t, m.Blocks, 3)
	assert.Equal(t, 100.0, m.Blocks[1].Top)
	assert.Equal(t, 400.0, m.Blocks[1].Bottom)
	assert.Equal(t, 700.0, m.ContentHeight)

	require.NoError(t, surface.SetCorrection(ctx, 2, 100))
	m, err = surface.Measure(ctx)
	require.NoError(t, err)
	assert.Equal(t, 500.0, m.Blocks[2].Top)

	require.NoError(t, surface.ClearCorrections(ctx))
	m, err = surface.Measure(ctx)
	require.NoError(t, err)
	assert.Equal(t, 400.0, m.Blocks[2].Top)
}

func TestIntegration_PaginateReplicatesToPages(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	layout, err := Paginate(ctx, fixture, 500, 10*time.Second, nil)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		t.Skip("browser too slow")
	}
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
	}

	// Second atomic block spans 400..700 on a 500px page.
	assert.Equal(t, map[int]float64{2: 100}, layout.Corrections)
	assert.True(t, layout.Converged)
	assert.Equal(t, 2, layout.PageCount)
}

func TestIntegration_NotMounted(t *testing.T) {
	b := launchOrSkip(t)
	defer b.Close()
	ctx := context.Background()

	require.NoError(t, b.Load(ctx, "<html><body></body></html>", 10*time.Second))
	_, err := b.Surface(CanonicalSelector).Measure(ctx)
	var notMounted *NotMountedError
	assert.True(t, errors.As(err, &notMounted))
}

func TestIntegration_WatchReloads(t *testing.T) {
	b := launchOrSkip(t)
	b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reload := make(chan string, 1)
	layouts := make(chan map[int]float64, 64)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, fixture, 500, 50*time.Millisecond, 10*time.Second, reload,
			func(l types.Layout) {
				select {
				case layouts <- l.Corrections:
				default:
				}
			}, nil)
	}()

	require.Equal(t, map[int]float64{2: 100}, <-layouts)

	// Shorter first block: nothing straddles the boundary any more.
	reload <- strings.Replace(fixture, "height: 100px", "height: 200px", 1)
	assert.Eventually(t, func() bool {
		select {
		case c := <-layouts:
			return len(c) == 0
		default:
			return false
		}
	}, 20*time.Second, 20*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
