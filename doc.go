/*
Package thicket maintains tri-state selection over nested item hierarchies:
the state behind a tree of checkboxes where checking a parent checks its
subtree and every parent reflects whether its children are all, some or none
checked.

# Concept

The caller owns the tree of items. thicket keeps the mutable flags of each
item (checked, indeterminate, expanded) in a flat map keyed by id and derives
every change functionally: a new session is computed from the old one and
committed at once, so observers never see a parent that disagrees with its
children.

Propagation goes both ways. Checking an item sets its whole subtree, then
each ancestor is recomputed from its direct children: checked when all of
them are, indeterminate when only some are.

# Usage

	items := []domain.Item{
		{ID: "fruits", Label: "Fruits", Children: []domain.Item{
			{ID: "apple", Label: "Apple"},
			{ID: "pear", Label: "Pear"},
		}},
	}

	t, err := thicket.New(items,
		thicket.WithExpandable(true),
		thicket.WithSelectionChange(func(ids []string) {
			fmt.Println("selected:", ids)
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	t.SetChecked("apple", true) // selected: [apple]
	t.SetChecked("pear", true)  // selected: [fruits apple pear]

For many trees and sessions behind a store (HTTP, MCP, CLI), use Service.
*/
package thicket
