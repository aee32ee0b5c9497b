package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// NewMarkdownRenderer returns a function that renders markdown using glamour.
// When the terminal renderer cannot be built the markdown is returned as is.
func NewMarkdownRenderer(wordWrap int) func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		if strings.TrimSpace(markdown) == "" {
			return "", nil
		}
		return r.Render(markdown)
	}
}
