package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Shipped X", "Shipped X"},
		{"ampersand", "R&D", "R&amp;D"},
		{"tags", "<script>alert(1)</script>", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"quotes", `say "hi" it's`, "say &#34;hi&#34; it&#39;s"},
		{"percent untouched", "Cut costs 40%", "Cut costs 40%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeHTML(tt.in))
		})
	}
}

func TestFromSummaryAndHighlights(t *testing.T) {
	t.Run("summary then highlights", func(t *testing.T) {
		got := FromSummaryAndHighlights("Led team", []string{"Shipped X", "Cut costs 40%"})
		assert.Equal(t, "<p>Led team</p><ul><li>Shipped X</li><li>Cut costs 40%</li></ul>", got)
	})

	t.Run("highlights only", func(t *testing.T) {
		got := FromSummaryAndHighlights("", []string{"A", "  ", "B"})
		assert.Equal(t, "<ul><li>A</li><li>B</li></ul>", got)
	})

	t.Run("summary only", func(t *testing.T) {
		assert.Equal(t, "<p>Led team</p>", FromSummaryAndHighlights("Led team", nil))
	})

	t.Run("nothing", func(t *testing.T) {
		assert.Equal(t, "", FromSummaryAndHighlights("  ", []string{""}))
	})

	t.Run("escapes highlights", func(t *testing.T) {
		got := FromSummaryAndHighlights("", []string{"Built <b>fast</b> & safe"})
		assert.Equal(t, "<ul><li>Built &lt;b&gt;fast&lt;/b&gt; &amp; safe</li></ul>", got)
	})

	t.Run("rich summary kept", func(t *testing.T) {
		got := FromSummaryAndHighlights("<p>Already <em>rich</em></p>", []string{"X"})
		assert.Equal(t, "<p>Already <em>rich</em></p><ul><li>X</li></ul>", got)
	})
}

func TestIsRichText(t *testing.T) {
	assert.True(t, IsRichText("<p>Led team</p>"))
	assert.True(t, IsRichText("  <ul><li>x</li></ul>"))
	assert.False(t, IsRichText("Led team"))
	assert.False(t, IsRichText("<3 my job"))
	assert.False(t, IsRichText(""))
}

func TestPlainText(t *testing.T) {
	got := PlainText("<p>Led   team</p><ul><li>Shipped X</li><li>Cut costs 40%</li></ul>")
	assert.Equal(t, "Led team\nShipped X\nCut costs 40%", got)

	assert.Equal(t, "just text", PlainText("  just   text "))
	assert.Equal(t, "", PlainText(""))
	assert.Equal(t, "A & B", PlainText("<p>A &amp; B</p>"))
}

func TestCountAtomicBlocks(t *testing.T) {
	html := `<html><body>
<div data-flow="canonical"><section data-atomic>a</section><section data-atomic>b</section><p>x</p></div>
<div data-flow="page"><section data-atomic>a</section></div>
</body></html>`

	n, err := CountAtomicBlocks(html, `[data-flow="canonical"]`)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = CountAtomicBlocks(html, `#missing`)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
