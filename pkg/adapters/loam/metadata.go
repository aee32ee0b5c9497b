package loam

import (
	"github.com/aretw0/thicket/pkg/domain"
)

// TreeMetadata represents the front matter of a tree document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type TreeMetadata struct {
	ID    string `json:"id" mapstructure:"id"`
	Title string `json:"title" mapstructure:"title"`

	// Description overrides the document body as the tree description.
	Description string `json:"description" mapstructure:"description"`

	Items   []domain.Item    `json:"items" mapstructure:"items"`
	Options *OptionsMetadata `json:"options,omitempty" mapstructure:"options"`
}

// OptionsMetadata mirrors domain.Options with optional fields, so keys left
// out of a document keep their default value.
type OptionsMetadata struct {
	AllowPartialSelection *bool  `json:"allow_partial_selection,omitempty" mapstructure:"allow_partial_selection"`
	Expandable            *bool  `json:"expandable,omitempty" mapstructure:"expandable"`
	ShowIcons             *bool  `json:"show_icons,omitempty" mapstructure:"show_icons"`
	ShowDescriptions      *bool  `json:"show_descriptions,omitempty" mapstructure:"show_descriptions"`
	SelectionOrder        string `json:"selection_order,omitempty" mapstructure:"selection_order"`
}

// Resolve applies the declared fields on top of domain.DefaultOptions.
func (m *OptionsMetadata) Resolve() *domain.Options {
	if m == nil {
		return nil
	}
	opts := domain.DefaultOptions()
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&opts.AllowPartialSelection, m.AllowPartialSelection)
	set(&opts.Expandable, m.Expandable)
	set(&opts.ShowIcons, m.ShowIcons)
	set(&opts.ShowDescriptions, m.ShowDescriptions)
	if m.SelectionOrder != "" {
		opts.SelectionOrder = domain.SelectionOrder(m.SelectionOrder)
	}
	return &opts
}
