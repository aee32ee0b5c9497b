package tui

import (
	"strings"

	"github.com/aretw0/thicket/pkg/domain"
	"github.com/muesli/termenv"
)

// Checkbox glyphs.
const (
	GlyphChecked       = "[x]"
	GlyphIndeterminate = "[-]"
	GlyphUnchecked     = "[ ]"
)

// TreeRenderer draws a selection tree as indented checkbox lines.
type TreeRenderer struct {
	profile termenv.Profile
	opts    domain.Options
	showIDs bool
}

// TreeOption configures a TreeRenderer.
type TreeOption func(*TreeRenderer)

// WithProfile forces a color profile. termenv.Ascii disables styling.
func WithProfile(p termenv.Profile) TreeOption {
	return func(r *TreeRenderer) {
		r.profile = p
	}
}

// WithIDs appends the item id to every line, for hosts that address items by id.
func WithIDs(show bool) TreeOption {
	return func(r *TreeRenderer) {
		r.showIDs = show
	}
}

// NewTreeRenderer creates a renderer honoring the display hints of opts.
// The color profile defaults to the one detected on stdout.
func NewTreeRenderer(opts domain.Options, options ...TreeOption) *TreeRenderer {
	r := &TreeRenderer{
		profile: termenv.ColorProfile(),
		opts:    opts,
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Glyph returns the checkbox glyph for st.
func Glyph(st domain.ItemState) string {
	switch {
	case st.Checked:
		return GlyphChecked
	case st.Indeterminate:
		return GlyphIndeterminate
	default:
		return GlyphUnchecked
	}
}

// Render returns one line per visible item. On expandable trees the
// children of collapsed items are hidden.
func (r *TreeRenderer) Render(items []domain.Item, states map[string]domain.ItemState) string {
	var b strings.Builder
	r.render(&b, items, states, 0, false)
	return b.String()
}

func (r *TreeRenderer) render(b *strings.Builder, items []domain.Item, states map[string]domain.ItemState, depth int, disabled bool) {
	for _, it := range items {
		st := states[it.ID]
		off := disabled || it.Disabled

		b.WriteString(strings.Repeat("  ", depth))
		if r.opts.Expandable {
			switch {
			case it.IsLeaf():
				b.WriteString("  ")
			case st.Expanded:
				b.WriteString("▾ ")
			default:
				b.WriteString("▸ ")
			}
		}
		b.WriteString(r.glyph(st, off))
		b.WriteString(" ")
		b.WriteString(r.label(it, off))
		b.WriteString("\n")

		if !it.IsLeaf() && (!r.opts.Expandable || st.Expanded) {
			r.render(b, it.Children, states, depth+1, off)
		}
	}
}

func (r *TreeRenderer) glyph(st domain.ItemState, disabled bool) string {
	g := Glyph(st)
	s := r.profile.String(g)
	switch {
	case disabled:
		return s.Faint().String()
	case st.Checked:
		return s.Foreground(r.profile.Color("#10b981")).Bold().String()
	case st.Indeterminate:
		return s.Foreground(r.profile.Color("#f59e0b")).String()
	default:
		return s.String()
	}
}

func (r *TreeRenderer) label(it domain.Item, disabled bool) string {
	var parts []string
	if r.opts.ShowIcons && it.Icon != "" {
		parts = append(parts, it.Icon)
	}
	label := r.profile.String(it.Label)
	if disabled {
		label = label.Faint()
	}
	parts = append(parts, label.String())
	if r.showIDs {
		parts = append(parts, r.profile.String("("+it.ID+")").Faint().String())
	}
	if disabled {
		parts = append(parts, r.profile.String("(disabled)").Faint().String())
	}
	line := strings.Join(parts, " ")
	if r.opts.ShowDescriptions && it.Description != "" {
		line += r.profile.String(" - " + it.Description).Faint().String()
	}
	return line
}
