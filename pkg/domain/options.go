package domain

import "encoding/json"

// SelectionOrder defines how the selection set is materialized into a list.
type SelectionOrder string

const (
	// OrderDocument lists selected ids in tree pre-order.
	OrderDocument SelectionOrder = "document"
	// OrderInsertion lists selected ids in the order they entered the set.
	OrderInsertion SelectionOrder = "insertion"
)

// Options configures the behavior of a mounted selection tree.
type Options struct {
	// AllowPartialSelection enables the indeterminate flag on parents whose
	// children are mixed. When false, parents are either checked or not.
	AllowPartialSelection bool `json:"allow_partial_selection" yaml:"allow_partial_selection"`

	// Expandable gates ToggleExpansion and the expand affordance of renderers.
	Expandable bool `json:"expandable" yaml:"expandable"`

	// Renderer hints.
	ShowIcons        bool `json:"show_icons" yaml:"show_icons"`
	ShowDescriptions bool `json:"show_descriptions" yaml:"show_descriptions"`

	SelectionOrder SelectionOrder `json:"selection_order,omitempty" yaml:"selection_order,omitempty"`
}

// DefaultOptions returns the options used when none are supplied.
func DefaultOptions() Options {
	return Options{
		AllowPartialSelection: true,
		SelectionOrder:        OrderDocument,
	}
}

// UnmarshalJSON decodes options on top of DefaultOptions, so omitted keys keep
// their default value instead of the zero value.
func (o *Options) UnmarshalJSON(data []byte) error {
	type plain Options
	p := plain(DefaultOptions())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = Options(p)
	if o.SelectionOrder == "" {
		o.SelectionOrder = OrderDocument
	}
	return nil
}
