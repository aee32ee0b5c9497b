package dsl

import "github.com/aretw0/thicket/pkg/domain"

// ItemBuilder provides a fluent API for configuring an item and its children.
type ItemBuilder struct {
	item     domain.Item
	parent   *ItemBuilder
	children []*ItemBuilder
}

// Add appends a child and returns the child's builder.
func (ib *ItemBuilder) Add(id, label string) *ItemBuilder {
	child := &ItemBuilder{item: domain.Item{ID: id, Label: label}, parent: ib}
	ib.children = append(ib.children, child)
	return child
}

// Leaf appends a child and returns the receiver, so siblings chain.
func (ib *ItemBuilder) Leaf(id, label string) *ItemBuilder {
	ib.Add(id, label)
	return ib
}

// Up returns the parent builder. At the top level it returns the receiver.
func (ib *ItemBuilder) Up() *ItemBuilder {
	if ib.parent == nil {
		return ib
	}
	return ib.parent
}

// Disabled marks the item, and with it its subtree, as not toggleable.
func (ib *ItemBuilder) Disabled() *ItemBuilder {
	ib.item.Disabled = true
	return ib
}

// Description sets the display description.
func (ib *ItemBuilder) Description(text string) *ItemBuilder {
	ib.item.Description = text
	return ib
}

// Icon sets the display icon.
func (ib *ItemBuilder) Icon(icon string) *ItemBuilder {
	ib.item.Icon = icon
	return ib
}

// Build returns the item with its assembled subtree.
func (ib *ItemBuilder) Build() domain.Item {
	it := ib.item
	it.Children = assemble(ib.children)
	return it
}
