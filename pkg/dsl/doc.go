/*
Package dsl provides a fluent builder for selection trees.

It is an alternative to YAML or JSON tree documents when trees are generated
by code, in tests, or when IDE type-checking is wanted.

Example usage:

	b := dsl.New("groceries").Title("Groceries").Expandable()

	b.Add("fruits", "Fruits").
		Leaf("apple", "Apple").
		Leaf("pear", "Pear")

	b.Add("bakery", "Bakery").
		Add("bread", "Bread").Disabled().Up().
		Leaf("cake", "Cake")

	tree, err := b.Build()
	// ... pass tree.Items to thicket.New, or b.Loader() to thicket.NewService.
*/
package dsl
