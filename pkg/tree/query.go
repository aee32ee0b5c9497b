package tree

import "github.com/aretw0/thicket/pkg/domain"

// FindItem searches items depth-first and returns the first item with the given id.
func FindItem(id string, items []domain.Item) (*domain.Item, bool) {
	for i := range items {
		if items[i].ID == id {
			return &items[i], true
		}
		if found, ok := FindItem(id, items[i].Children); ok {
			return found, true
		}
	}
	return nil, false
}

// FindParentID returns the id of the item enclosing targetID.
// It returns false when the target is a root item or is not in the tree.
func FindParentID(targetID string, items []domain.Item) (string, bool) {
	for i := range items {
		for _, child := range items[i].Children {
			if child.ID == targetID {
				return items[i].ID, true
			}
		}
		if parent, ok := FindParentID(targetID, items[i].Children); ok {
			return parent, true
		}
	}
	return "", false
}

// CollectDescendantIDs flattens every descendant of item in pre-order.
// The item itself is not included.
func CollectDescendantIDs(item domain.Item) []string {
	var ids []string
	var visit func(children []domain.Item)
	visit = func(children []domain.Item) {
		for _, c := range children {
			ids = append(ids, c.ID)
			visit(c.Children)
		}
	}
	visit(item.Children)
	return ids
}

// VisitFunc is called by Walk for every item. Returning false skips the subtree.
type VisitFunc func(item *domain.Item, parentID string, depth int) bool

// Walk visits items in pre-order.
func Walk(items []domain.Item, fn VisitFunc) {
	walk(items, "", 0, fn)
}

func walk(items []domain.Item, parentID string, depth int, fn VisitFunc) {
	for i := range items {
		if !fn(&items[i], parentID, depth) {
			continue
		}
		walk(items[i].Children, items[i].ID, depth+1, fn)
	}
}

// IDs returns every id of the tree in pre-order.
func IDs(items []domain.Item) []string {
	var ids []string
	Walk(items, func(it *domain.Item, _ string, _ int) bool {
		ids = append(ids, it.ID)
		return true
	})
	return ids
}
