package dsl

import (
	"fmt"

	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/tree"
)

// Builder manages the tree construction.
type Builder struct {
	tree  domain.Tree
	opts  domain.Options
	set   bool
	roots []*ItemBuilder
}

// New creates a new tree builder.
func New(id string) *Builder {
	return &Builder{
		tree: domain.Tree{ID: id},
		opts: domain.DefaultOptions(),
	}
}

// Title sets the display title.
func (b *Builder) Title(title string) *Builder {
	b.tree.Title = title
	return b
}

// Description sets the markdown shown above the tree.
func (b *Builder) Description(md string) *Builder {
	b.tree.Description = md
	return b
}

// Expandable enables expansion toggles.
func (b *Builder) Expandable() *Builder {
	b.set = true
	b.opts.Expandable = true
	return b
}

// NoPartialSelection disables the indeterminate flag.
func (b *Builder) NoPartialSelection() *Builder {
	b.set = true
	b.opts.AllowPartialSelection = false
	return b
}

// Order sets how the selection is listed.
func (b *Builder) Order(order domain.SelectionOrder) *Builder {
	b.set = true
	b.opts.SelectionOrder = order
	return b
}

// Add appends a top-level item and returns its builder.
func (b *Builder) Add(id, label string) *ItemBuilder {
	ib := &ItemBuilder{item: domain.Item{ID: id, Label: label}}
	b.roots = append(b.roots, ib)
	return ib
}

// Build assembles and validates the tree. Every problem is reported in a
// single *tree.AggregateError.
func (b *Builder) Build() (domain.Tree, error) {
	tr := b.tree
	tr.Items = assemble(b.roots)
	if b.set {
		opts := b.opts
		tr.Options = &opts
	}
	if err := tree.Validate(tr.Items); err != nil {
		return domain.Tree{}, fmt.Errorf("tree %q: %w", tr.ID, err)
	}
	return tr, nil
}

// Loader builds the tree and serves it from a memory loader.
func (b *Builder) Loader() (*memory.Loader, error) {
	tr, err := b.Build()
	if err != nil {
		return nil, err
	}
	loader, err := memory.NewFromTrees(tr)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}

func assemble(builders []*ItemBuilder) []domain.Item {
	if len(builders) == 0 {
		return nil
	}
	items := make([]domain.Item, len(builders))
	for i, ib := range builders {
		items[i] = ib.Build()
	}
	return items
}
