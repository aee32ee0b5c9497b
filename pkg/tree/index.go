package tree

import (
	"fmt"
	"strconv"

	"github.com/aretw0/thicket/pkg/domain"
)

// Index is an immutable arena of ids over a private copy of a tree.
// Descendants of an item occupy a contiguous range of the pre-order, which
// makes subtree queries slice operations.
type Index struct {
	items  []domain.Item
	nodes  map[string]*domain.Item
	parent map[string]string
	order  []string
	pos    map[string]int
	end    map[string]int // exclusive end of the subtree in order
	depth  map[string]int
	roots  []string
}

// Validate checks that every id is non-empty and unique across the tree.
// All problems are reported in a single AggregateError.
func Validate(items []domain.Item) error {
	_, err := NewIndex(items)
	return err
}

// NewIndex copies items and builds the id arena.
// It fails with an AggregateError wrapping domain.ErrEmptyID or
// domain.ErrDuplicateID when ids are not globally unique.
func NewIndex(items []domain.Item) (*Index, error) {
	idx := &Index{
		items:  domain.CloneItems(items),
		nodes:  make(map[string]*domain.Item),
		parent: make(map[string]string),
		pos:    make(map[string]int),
		end:    make(map[string]int),
		depth:  make(map[string]int),
	}

	var errs []error
	var build func(items []domain.Item, parentID, path string, depth int)
	build = func(items []domain.Item, parentID, path string, depth int) {
		for i := range items {
			it := &items[i]
			p := strconv.Itoa(i)
			if path != "" {
				p = path + "/" + p
			}

			if it.ID == "" {
				errs = append(errs, &ValidationError{Path: p, Err: domain.ErrEmptyID})
				build(it.Children, parentID, p, depth+1)
				continue
			}
			if _, dup := idx.nodes[it.ID]; dup {
				errs = append(errs, &ValidationError{ItemID: it.ID, Path: p, Err: domain.ErrDuplicateID})
				build(it.Children, parentID, p, depth+1)
				continue
			}

			idx.nodes[it.ID] = it
			idx.pos[it.ID] = len(idx.order)
			idx.depth[it.ID] = depth
			idx.order = append(idx.order, it.ID)
			if parentID == "" {
				idx.roots = append(idx.roots, it.ID)
			} else {
				idx.parent[it.ID] = parentID
			}

			build(it.Children, it.ID, p, depth+1)
			idx.end[it.ID] = len(idx.order)
		}
	}
	build(idx.items, "", "", 0)

	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return idx, nil
}

// MustIndex is like NewIndex but panics on invalid trees. Intended for tests
// and static fixtures.
func MustIndex(items []domain.Item) *Index {
	idx, err := NewIndex(items)
	if err != nil {
		panic(fmt.Sprintf("tree: invalid fixture: %v", err))
	}
	return idx
}

// Len returns the number of items in the tree.
func (x *Index) Len() int {
	return len(x.order)
}

// Items returns a deep copy of the indexed tree.
func (x *Index) Items() []domain.Item {
	return domain.CloneItems(x.items)
}

// Has reports whether id belongs to the tree.
func (x *Index) Has(id string) bool {
	_, ok := x.nodes[id]
	return ok
}

// Item returns a copy of the item with the given id.
func (x *Index) Item(id string) (domain.Item, bool) {
	n, ok := x.nodes[id]
	if !ok {
		return domain.Item{}, false
	}
	return n.Clone(), true
}

// Parent returns the id of the enclosing item. False for roots and unknown ids.
func (x *Index) Parent(id string) (string, bool) {
	p, ok := x.parent[id]
	return p, ok
}

// Children returns the ids of the direct children of id, in order.
func (x *Index) Children(id string) []string {
	n, ok := x.nodes[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c.ID)
	}
	return out
}

// Ancestors returns the ids above id, nearest first, ending with its root.
func (x *Index) Ancestors(id string) []string {
	var out []string
	for p, ok := x.parent[id]; ok; p, ok = x.parent[p] {
		out = append(out, p)
	}
	return out
}

// Descendants returns every id below id in pre-order, excluding id itself.
func (x *Index) Descendants(id string) []string {
	start, ok := x.pos[id]
	if !ok {
		return nil
	}
	out := make([]string, x.end[id]-start-1)
	copy(out, x.order[start+1:x.end[id]])
	return out
}

// Order returns every id in document (pre-)order.
func (x *Index) Order() []string {
	out := make([]string, len(x.order))
	copy(out, x.order)
	return out
}

// Position returns the pre-order position of id.
func (x *Index) Position(id string) (int, bool) {
	p, ok := x.pos[id]
	return p, ok
}

// Depth returns the nesting level of id (roots are 0).
func (x *Index) Depth(id string) int {
	return x.depth[id]
}

// Roots returns the ids of the top-level items.
func (x *Index) Roots() []string {
	out := make([]string, len(x.roots))
	copy(out, x.roots)
	return out
}

// IsDisabled reports whether id or any of its ancestors is disabled.
func (x *Index) IsDisabled(id string) bool {
	for cur, ok := id, true; ok; cur, ok = x.parent[cur] {
		if n := x.nodes[cur]; n != nil && n.Disabled {
			return true
		}
	}
	return false
}

// IsLeaf reports whether id has no children.
func (x *Index) IsLeaf(id string) bool {
	n, ok := x.nodes[id]
	return ok && len(n.Children) == 0
}
