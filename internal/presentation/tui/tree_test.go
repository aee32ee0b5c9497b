package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/thicket/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var groceries = []domain.Item{
	{ID: "fruits", Label: "Fruits", Icon: "🍎", Children: []domain.Item{
		{ID: "apple", Label: "Apple", Description: "Red ones"},
		{ID: "pear", Label: "Pear"},
	}},
	{ID: "bakery", Label: "Bakery", Disabled: true, Children: []domain.Item{
		{ID: "bread", Label: "Bread"},
	}},
}

func TestGlyph(t *testing.T) {
	assert.Equal(t, "[x]", Glyph(domain.ItemState{Checked: true}))
	assert.Equal(t, "[-]", Glyph(domain.ItemState{Indeterminate: true}))
	assert.Equal(t, "[ ]", Glyph(domain.ItemState{Expanded: true}))
}

func TestTreeRenderer_Flat(t *testing.T) {
	states := map[string]domain.ItemState{
		"fruits": {Indeterminate: true},
		"apple":  {Checked: true},
	}
	r := NewTreeRenderer(domain.DefaultOptions(), WithProfile(termenv.Ascii))

	want := strings.Join([]string{
		"[-] Fruits",
		"  [x] Apple",
		"  [ ] Pear",
		"[ ] Bakery (disabled)",
		"  [ ] Bread (disabled)",
		"",
	}, "\n")
	assert.Equal(t, want, r.Render(groceries, states))
}

func TestTreeRenderer_Expandable(t *testing.T) {
	opts := domain.DefaultOptions()
	opts.Expandable = true
	r := NewTreeRenderer(opts, WithProfile(termenv.Ascii), WithIDs(true))

	collapsed := r.Render(groceries, nil)
	assert.Equal(t, "▸ [ ] Fruits (fruits)\n▸ [ ] Bakery (bakery) (disabled)\n", collapsed)

	expanded := r.Render(groceries, map[string]domain.ItemState{"fruits": {Expanded: true}})
	assert.Contains(t, expanded, "▾ [ ] Fruits (fruits)\n")
	assert.Contains(t, expanded, "    [ ] Apple (apple)\n")
	assert.NotContains(t, expanded, "Bread")
}

func TestTreeRenderer_DisplayHints(t *testing.T) {
	opts := domain.DefaultOptions()
	opts.ShowIcons = true
	opts.ShowDescriptions = true
	r := NewTreeRenderer(opts, WithProfile(termenv.Ascii))

	out := r.Render(groceries, nil)
	assert.Contains(t, out, "[ ] 🍎 Fruits\n")
	assert.Contains(t, out, "[ ] Apple - Red ones\n")
}

func TestTreeRenderer_Colors(t *testing.T) {
	r := NewTreeRenderer(domain.DefaultOptions(), WithProfile(termenv.TrueColor))
	out := r.Render(groceries, map[string]domain.ItemState{"apple": {Checked: true}})
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "Apple")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, termenv.Ascii)
	assert.Contains(t, buf.String(), bannerLines[2])
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestMarkdownRenderer(t *testing.T) {
	render := NewMarkdownRenderer(80)

	out, err := render("# Weekly list\n\nBuy **fruit**.")
	require.NoError(t, err)
	assert.Contains(t, out, "Weekly list")
	assert.Contains(t, out, "fruit")

	out, err = render("   ")
	require.NoError(t, err)
	assert.Empty(t, out)
}
