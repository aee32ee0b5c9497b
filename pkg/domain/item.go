package domain

// Item represents an entry of a caller-supplied selection tree.
// Items carry no back-reference to their parent; ID is the only identity key
// and must be unique across the whole tree.
type Item struct {
	ID    string `json:"id" yaml:"id" mapstructure:"id"`
	Label string `json:"label" yaml:"label" mapstructure:"label"`

	// Children is the ordered list of nested items. Empty means leaf.
	Children []Item `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`

	// Disabled items and their subtree ignore toggles but are still displayed.
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty" mapstructure:"disabled"`

	// Display-only metadata, opaque to the engine.
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty" mapstructure:"icon"`
}

// IsLeaf reports whether the item has no children.
func (i Item) IsLeaf() bool {
	return len(i.Children) == 0
}

// Clone returns a deep copy of the item and its subtree.
func (i Item) Clone() Item {
	c := i
	if i.Children != nil {
		c.Children = CloneItems(i.Children)
	}
	return c
}

// CloneItems deep copies a list of items.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// Tree is a named top-level item list, as served by a TreeLoader.
type Tree struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Description is free-form markdown shown above the tree by terminal hosts.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Items []Item `json:"items" yaml:"items"`

	// Options overrides the host defaults for this tree. Nil means defaults.
	Options *Options `json:"options,omitempty" yaml:"options,omitempty"`
}

// ResolvedOptions returns the tree options, falling back to DefaultOptions.
func (t Tree) ResolvedOptions() Options {
	if t.Options == nil {
		return DefaultOptions()
	}
	return *t.Options
}
