package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/thicket/pkg/domain"
)

// Overlay contains session state to visualize on the graph.
type Overlay struct {
	States map[string]domain.ItemState
}

// GenerateMermaid produces a Mermaid flowchart of a selection tree.
// It applies semantic styling:
// - Parent: [Rectangle]
// - Leaf: (Rounded)
// - Disabled subtrees use dotted edges.
// With an overlay, labels carry the checkbox glyph and items are classed
// checked, partial or disabled.
func GenerateMermaid(items []domain.Item, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var disabled []string
	var walk func(items []domain.Item, parent string, off bool)
	walk = func(items []domain.Item, parent string, off bool) {
		for _, it := range items {
			safeID := sanitizeMermaidID(it.ID)
			itemOff := off || it.Disabled
			if itemOff {
				disabled = append(disabled, safeID)
			}

			opener, closer := "[", "]"
			if it.IsLeaf() {
				opener, closer = "(", ")"
			}
			fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label(it, overlay), closer)

			if parent != "" {
				arrow := "-->"
				if itemOff {
					arrow = "-.->"
				}
				fmt.Fprintf(&sb, "    %s %s %s\n", parent, arrow, safeID)
			}
			walk(it.Children, safeID, itemOff)
		}
	}
	walk(items, "", false)

	if overlay == nil {
		return sb.String()
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	// Black text keeps contrast on both light and dark themes.
	sb.WriteString("    classDef checked fill:#d1fae5,stroke:#047857,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef partial fill:#fef3c7,stroke:#b45309,stroke-width:2px,stroke-dasharray:4,color:#000;\n")
	sb.WriteString("    classDef disabled fill:#e5e7eb,stroke:#9ca3af,color:#6b7280;\n")

	var checked, partial []string
	var collect func(items []domain.Item)
	collect = func(items []domain.Item) {
		for _, it := range items {
			st := overlay.States[it.ID]
			switch {
			case st.Checked:
				checked = append(checked, sanitizeMermaidID(it.ID))
			case st.Indeterminate:
				partial = append(partial, sanitizeMermaidID(it.ID))
			}
			collect(it.Children)
		}
	}
	collect(items)

	writeClass(&sb, checked, "checked")
	writeClass(&sb, partial, "partial")
	writeClass(&sb, disabled, "disabled")
	return sb.String()
}

func writeClass(sb *strings.Builder, ids []string, class string) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(sb, "    class %s %s;\n", strings.Join(ids, ","), class)
}

func label(it domain.Item, overlay *Overlay) string {
	text := it.Label
	if text == "" {
		text = it.ID
	}
	// Mermaid labels cannot contain raw double quotes.
	text = strings.ReplaceAll(text, "\"", "'")
	if overlay == nil {
		return text
	}
	st := overlay.States[it.ID]
	glyph := "☐"
	switch {
	case st.Checked:
		glyph = "☑"
	case st.Indeterminate:
		glyph = "◩"
	}
	return glyph + " " + text
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
